// Package config loads ls-skyfield settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath    = "LS_SKYFIELD_CONFIG"
	EnvLogLevel      = "LS_SKYFIELD_LOG_LEVEL"
	EnvCatalog       = "LS_SKYFIELD_CATALOG"
	EnvCatalogFile   = "LS_SKYFIELD_CATALOG_FILE"
	EnvMinRadius     = "LS_SKYFIELD_MIN_RADIUS"
	EnvSIMBADURL     = "SIMBAD_TAP_URL"
	EnvAPIKey        = "ASTROMETRY_API_KEY"
	EnvAstrometryURL = "ASTROMETRY_URL"
)

// Catalog provider names.
const (
	CatalogSIMBAD = "simbad"
	CatalogFile   = "file"
)

// Config holds all runtime settings.
type Config struct {
	LogLevel    string  `yaml:"log_level"`
	Descriptors string  `yaml:"descriptors,omitempty"` // YAML type table; empty uses the built-in one
	Catalog     Catalog `yaml:"catalog"`
	Solver      Solver  `yaml:"solver"`
	Overlay     Overlay `yaml:"overlay"`
	Grid        Grid    `yaml:"grid"`
}

// Catalog selects and tunes the catalog provider.
type Catalog struct {
	Provider   string        `yaml:"provider"`
	File       string        `yaml:"file,omitempty"`
	SIMBADURL  string        `yaml:"simbad_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRecords int           `yaml:"max_records"`
}

// Solver configures the astrometry.net client.
type Solver struct {
	APIKey       string        `yaml:"api_key,omitempty"`
	BaseURL      string        `yaml:"base_url"`
	SolveTimeout time.Duration `yaml:"solve_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Overlay tunes overlay generation.
type Overlay struct {
	MinRadius float64 `yaml:"min_radius"`
}

// Grid sets the coordinate grid density.
type Grid struct {
	RACount  int `yaml:"ra_count"`
	DecCount int `yaml:"dec_count"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Catalog: Catalog{
			Provider:   CatalogSIMBAD,
			SIMBADURL:  "https://simbad.cds.unistra.fr/simbad/sim-tap/sync",
			Timeout:    60 * time.Second,
			MaxRecords: 20000,
		},
		Solver: Solver{
			BaseURL:      "https://nova.astrometry.net",
			SolveTimeout: 1800 * time.Second,
			PollInterval: 5 * time.Second,
		},
		Overlay: Overlay{MinRadius: 25},
		Grid:    Grid{RACount: 6, DecCount: 6},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and environment overrides.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		EnvLogLevel:      &c.LogLevel,
		EnvCatalog:       &c.Catalog.Provider,
		EnvCatalogFile:   &c.Catalog.File,
		EnvSIMBADURL:     &c.Catalog.SIMBADURL,
		EnvAPIKey:        &c.Solver.APIKey,
		EnvAstrometryURL: &c.Solver.BaseURL,
	}
	for env, dst := range str {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvMinRadius); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinRadius, err)
		}
		c.Overlay.MinRadius = f
	}
	return nil
}

// Validate checks settings that would otherwise fail later.
func (c Config) Validate() error {
	switch c.Catalog.Provider {
	case CatalogSIMBAD:
	case CatalogFile:
		if c.Catalog.File == "" {
			return errors.New("catalog provider \"file\" needs catalog.file")
		}
	default:
		return fmt.Errorf("unknown catalog provider %q", c.Catalog.Provider)
	}
	if c.Grid.RACount < 1 || c.Grid.DecCount < 1 {
		return fmt.Errorf("grid counts must be positive, got %d x %d", c.Grid.RACount, c.Grid.DecCount)
	}
	if c.Overlay.MinRadius < 0 {
		return fmt.Errorf("overlay.min_radius must not be negative, got %g", c.Overlay.MinRadius)
	}
	return nil
}

// Write encodes the configuration as YAML. The API key is masked.
func (c Config) Write(w io.Writer) error {
	if c.Solver.APIKey != "" {
		c.Solver.APIKey = "********"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
