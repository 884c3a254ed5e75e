package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-skyfield/internal/astro"
)

const (
	// DefaultSIMBADURL is the SIMBAD TAP synchronous query endpoint.
	DefaultSIMBADURL = "https://simbad.cds.unistra.fr/simbad/sim-tap/sync"

	// DefaultTimeout for catalog requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRecords caps the rows returned by one query.
	DefaultMaxRecords = 20000
)

// SIMBADProvider queries SIMBAD through its TAP service.
type SIMBADProvider struct {
	client     *http.Client
	url        string
	timeout    time.Duration
	maxRecords int
}

// SIMBADOption configures a SIMBADProvider.
type SIMBADOption func(*SIMBADProvider)

// WithURL sets a custom TAP endpoint.
func WithURL(u string) SIMBADOption {
	return func(p *SIMBADProvider) {
		p.url = u
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) SIMBADOption {
	return func(p *SIMBADProvider) {
		p.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) SIMBADOption {
	return func(p *SIMBADProvider) {
		p.client = c
	}
}

// WithMaxRecords caps the number of rows returned.
func WithMaxRecords(n int) SIMBADOption {
	return func(p *SIMBADProvider) {
		p.maxRecords = n
	}
}

// NewSIMBADProvider creates a SIMBAD TAP client.
func NewSIMBADProvider(opts ...SIMBADOption) *SIMBADProvider {
	p := &SIMBADProvider{
		url:        DefaultSIMBADURL,
		timeout:    DefaultTimeout,
		maxRecords: DefaultMaxRecords,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}
	return p
}

// Name implements Provider.
func (p *SIMBADProvider) Name() string {
	return "simbad"
}

// coneQuery selects positions, dimensions, type, astrometry and UBV
// photometry for objects in a cone.
func coneQuery(center astro.SkyCoord, radiusDeg float64) string {
	return fmt.Sprintf(
		"SELECT b.main_id, b.ra, b.dec, b.galdim_majaxis, b.galdim_minaxis, b.galdim_angle, "+
			"b.otype, b.plx_value, b.pmra, b.pmdec, b.sp_type, f.U, f.B, f.V "+
			"FROM basic AS b LEFT JOIN allfluxes AS f ON f.oidref = b.oid "+
			"WHERE CONTAINS(POINT('ICRS', b.ra, b.dec), CIRCLE('ICRS', %.8f, %.8f, %.8f)) = 1",
		center.RAdeg, center.DecDeg, radiusDeg)
}

type tapResponse struct {
	Metadata []struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Data [][]any `json:"data"`
}

// Query implements Provider.
func (p *SIMBADProvider) Query(ctx context.Context, center astro.SkyCoord, radiusDeg float64) ([]Object, error) {
	form := url.Values{}
	form.Set("REQUEST", "doQuery")
	form.Set("LANG", "ADQL")
	form.Set("FORMAT", "json")
	form.Set("MAXREC", strconv.Itoa(p.maxRecords))
	form.Set("QUERY", coneQuery(center, radiusDeg))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("simbad request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read simbad response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("simbad returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return parseTAP(body)
}

func parseTAP(body []byte) ([]Object, error) {
	var tr tapResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("parse simbad response: %w", err)
	}

	col := make(map[string]int, len(tr.Metadata))
	for i, m := range tr.Metadata {
		col[strings.ToLower(m.Name)] = i
	}
	for _, required := range []string{"main_id", "ra", "dec"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("simbad response missing column %q", required)
		}
	}

	num := func(row []any, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return math.NaN()
		}
		switch v := row[i].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
		return math.NaN()
	}
	str := func(row []any, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		if s, ok := row[i].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}

	objs := make([]Object, 0, len(tr.Data))
	for _, row := range tr.Data {
		o := NewObject(str(row, "main_id"), num(row, "ra"), num(row, "dec"))
		if !o.Coord().IsFinite() {
			continue
		}
		o.MajAxis = num(row, "galdim_majaxis")
		o.MinAxis = num(row, "galdim_minaxis")
		o.PosAngle = num(row, "galdim_angle")
		o.OType = str(row, "otype")
		o.Parallax = num(row, "plx_value")
		o.PMRA = num(row, "pmra")
		o.PMDec = num(row, "pmdec")
		o.SpType = str(row, "sp_type")
		o.U = num(row, "u")
		o.B = num(row, "b")
		o.V = num(row, "v")
		objs = append(objs, o)
	}
	return objs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
