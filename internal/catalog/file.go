package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-skyfield/internal/astro"
)

// Record formats understood by ReadRecords and WriteRecords.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// record is the on-disk form of an Object; absent values are omitted.
type record struct {
	ID       string   `json:"id" yaml:"id"`
	RA       float64  `json:"ra" yaml:"ra"`
	Dec      float64  `json:"dec" yaml:"dec"`
	MajAxis  *float64 `json:"maj_axis,omitempty" yaml:"maj_axis,omitempty"`
	MinAxis  *float64 `json:"min_axis,omitempty" yaml:"min_axis,omitempty"`
	PosAngle *float64 `json:"pos_angle,omitempty" yaml:"pos_angle,omitempty"`
	OType    string   `json:"otype,omitempty" yaml:"otype,omitempty"`
	U        *float64 `json:"u,omitempty" yaml:"u,omitempty"`
	B        *float64 `json:"b,omitempty" yaml:"b,omitempty"`
	V        *float64 `json:"v,omitempty" yaml:"v,omitempty"`
	Parallax *float64 `json:"parallax,omitempty" yaml:"parallax,omitempty"`
	PMRA     *float64 `json:"pmra,omitempty" yaml:"pmra,omitempty"`
	PMDec    *float64 `json:"pmdec,omitempty" yaml:"pmdec,omitempty"`
	SpType   string   `json:"sp_type,omitempty" yaml:"sp_type,omitempty"`
}

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func pointer(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r record) object() Object {
	o := NewObject(r.ID, r.RA, r.Dec)
	o.MajAxis, o.MinAxis, o.PosAngle = value(r.MajAxis), value(r.MinAxis), value(r.PosAngle)
	o.OType, o.SpType = r.OType, r.SpType
	o.U, o.B, o.V = value(r.U), value(r.B), value(r.V)
	o.Parallax, o.PMRA, o.PMDec = value(r.Parallax), value(r.PMRA), value(r.PMDec)
	return o
}

func toRecord(o Object) record {
	return record{
		ID:       o.ID,
		RA:       o.RA,
		Dec:      o.Dec,
		MajAxis:  pointer(o.MajAxis),
		MinAxis:  pointer(o.MinAxis),
		PosAngle: pointer(o.PosAngle),
		OType:    o.OType,
		U:        pointer(o.U),
		B:        pointer(o.B),
		V:        pointer(o.V),
		Parallax: pointer(o.Parallax),
		PMRA:     pointer(o.PMRA),
		PMDec:    pointer(o.PMDec),
		SpType:   o.SpType,
	}
}

// FormatForPath picks a record format from a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ReadRecords decodes a list of catalog records.
func ReadRecords(r io.Reader, format string) ([]Object, error) {
	var recs []record
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&recs); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode YAML records: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&recs); err != nil {
			return nil, fmt.Errorf("decode JSON records: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown record format %q", format)
	}

	objs := make([]Object, len(recs))
	for i, rec := range recs {
		objs[i] = rec.object()
	}
	return objs, nil
}

// WriteRecords encodes a list of catalog records.
func WriteRecords(w io.Writer, objs []Object, format string) error {
	recs := make([]record, len(objs))
	for i, o := range objs {
		recs[i] = toRecord(o)
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("encode YAML records: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	return fmt.Errorf("unknown record format %q", format)
}

// StaticProvider answers queries from a fixed list of objects, such as a
// catalog saved to disk.
type StaticProvider struct {
	name string
	objs []Object
}

// NewStaticProvider wraps a list of objects.
func NewStaticProvider(name string, objs []Object) *StaticProvider {
	return &StaticProvider{name: name, objs: objs}
}

// LoadFile reads a JSON or YAML record file.
func LoadFile(path string) (*StaticProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	objs, err := ReadRecords(f, FormatForPath(path))
	if err != nil {
		return nil, err
	}
	return NewStaticProvider("file:"+filepath.Base(path), objs), nil
}

// Name implements Provider.
func (p *StaticProvider) Name() string {
	return p.name
}

// Query implements Provider.
func (p *StaticProvider) Query(ctx context.Context, center astro.SkyCoord, radiusDeg float64) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Cone(p.objs, center, radiusDeg), nil
}
