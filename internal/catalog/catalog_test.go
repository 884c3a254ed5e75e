package catalog

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/litescript/ls-skyfield/internal/astro"
)

func TestNormalizePositionAngle(t *testing.T) {
	tests := []struct {
		in      float64
		want    float64
		defined bool
	}{
		{45, 45, true},
		{0, 0, true},
		{UndefinedPositionAngle, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{math.Inf(-1), 0, false},
	}
	for _, tt := range tests {
		got, ok := NormalizePositionAngle(tt.in)
		if got != tt.want || ok != tt.defined {
			t.Errorf("NormalizePositionAngle(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.defined)
		}
	}
}

func TestDefaultDescriptors(t *testing.T) {
	d, err := DefaultDescriptors()
	if err != nil {
		t.Fatalf("DefaultDescriptors: %v", err)
	}
	tests := map[string]string{
		"G":    "Galaxy",
		"PN":   "Planetary Nebula",
		"**":   "Double or Multiple Star",
		"HII":  "HII Region",
		"Y*O":  "Young Stellar Object",
		"zzz":  UnknownType,
		"":     UnknownType,
		" G  ": "Galaxy",
	}
	for code, want := range tests {
		if got := d.Lookup(code); got != want {
			t.Errorf("Lookup(%q) = %q, want %q", code, got, want)
		}
	}
	if d.Len() < 50 {
		t.Errorf("table has only %d codes", d.Len())
	}
	codes := d.Codes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("Codes not sorted at %d", i)
		}
	}
}

func TestNilDescriptors(t *testing.T) {
	var d *Descriptors
	if got := d.Lookup("G"); got != UnknownType {
		t.Errorf("nil Lookup = %q", got)
	}
}

const tapBody = `{
  "metadata": [
    {"name": "main_id"}, {"name": "ra"}, {"name": "dec"},
    {"name": "galdim_majaxis"}, {"name": "galdim_minaxis"}, {"name": "galdim_angle"},
    {"name": "otype"}, {"name": "plx_value"}, {"name": "pmra"}, {"name": "pmdec"},
    {"name": "sp_type"}, {"name": "U"}, {"name": "B"}, {"name": "V"}
  ],
  "data": [
    ["M  31", 10.684708, 41.26875, 199.53, 70.79, 35, "AGN", 0.0, null, null, "", 5.0, 4.36, 3.44],
    ["HD 3651", 9.8416, 21.2501, null, null, null, "PM*", 90.0, -461.5, -370.8, "K0.5V", 6.8, 6.7, 5.88],
    ["bad", null, 10, null, null, null, "*", null, null, null, null, null, null, null]
  ]
}`

func TestSIMBADQuery(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(tapBody))
	}))
	defer srv.Close()

	p := NewSIMBADProvider(WithURL(srv.URL), WithMaxRecords(500))
	objs, err := p.Query(context.Background(), astro.SkyCoord{RAdeg: 10, DecDeg: 20}, 0.72)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if gotForm["REQUEST"] != "doQuery" || gotForm["LANG"] != "ADQL" || gotForm["FORMAT"] != "json" || gotForm["MAXREC"] != "500" {
		t.Errorf("form = %v", gotForm)
	}
	if q := gotForm["QUERY"]; !strings.Contains(q, "CIRCLE('ICRS', 10.00000000, 20.00000000, 0.72000000)") {
		t.Errorf("query = %q", q)
	}

	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}
	m31 := objs[0]
	if m31.ID != "M  31" || m31.MajAxis != 199.53 || m31.PosAngle != 35 || m31.OType != "AGN" || m31.B != 4.36 {
		t.Errorf("M31 = %+v", m31)
	}
	if !math.IsNaN(m31.PMRA) {
		t.Errorf("null pmra decoded as %v", m31.PMRA)
	}
	hd := objs[1]
	if !math.IsNaN(hd.MajAxis) || !math.IsNaN(hd.PosAngle) {
		t.Errorf("null dimensions decoded as %v, %v", hd.MajAxis, hd.PosAngle)
	}
	if hd.SpType != "K0.5V" || hd.Parallax != 90 || hd.V != 5.88 {
		t.Errorf("HD 3651 = %+v", hd)
	}
}

func TestSIMBADErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "query syntax error", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewSIMBADProvider(WithURL(srv.URL))
	_, err := p.Query(context.Background(), astro.SkyCoord{RAdeg: 10, DecDeg: 20}, 0.5)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("err = %v, want status 400", err)
	}
}

func TestSIMBADCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tapBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewSIMBADProvider(WithURL(srv.URL))
	if _, err := p.Query(ctx, astro.SkyCoord{}, 1); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestStaticProviderCone(t *testing.T) {
	objs := []Object{
		NewObject("near", 10.1, 20.1),
		NewObject("far", 12, 20),
		NewObject("nan", math.NaN(), 20),
	}
	p := NewStaticProvider("test", objs)
	got, err := p.Query(context.Background(), astro.SkyCoord{RAdeg: 10, DecDeg: 20}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "near" {
		t.Errorf("cone = %+v", got)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	o := NewObject("NGC 224", 10.68, 41.27)
	o.MajAxis = 190
	o.OType = "G"
	o.PosAngle = UndefinedPositionAngle

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteRecords(&buf, []Object{o}, format); err != nil {
				t.Fatalf("WriteRecords: %v", err)
			}
			got, err := ReadRecords(&buf, format)
			if err != nil {
				t.Fatalf("ReadRecords: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d records", len(got))
			}
			r := got[0]
			if r.ID != o.ID || r.MajAxis != 190 || r.OType != "G" || r.PosAngle != UndefinedPositionAngle {
				t.Errorf("record = %+v", r)
			}
			if !math.IsNaN(r.MinAxis) || !math.IsNaN(r.V) {
				t.Errorf("missing values not NaN: %+v", r)
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"cat.yaml": FormatYAML,
		"cat.YML":  FormatYAML,
		"cat.json": FormatJSON,
		"cat":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
