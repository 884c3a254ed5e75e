package overlay

import (
	"math"
	"testing"

	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/fov"
	"github.com/litescript/ls-skyfield/internal/photometry"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

// 0.001 deg/px is 3.6 arcsec/px, so a 10' object has an 83.3 px semi-axis.
func testAdapter(t *testing.T) *wcs.Adapter {
	t.Helper()
	a, err := wcs.NewAdapter(wcs.Solution{
		Projection: wcs.TAN,
		CRPix:      [2]float64{512, 512},
		CRVal:      [2]float64{10, 20},
		CD:         [2][2]float64{{0.001, 0}, {0, 0.001}},
		Width:      1024,
		Height:     1024,
		Axes:       2,
	})
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func galaxy(id string, ra, dec, maj, min, pa float64) catalog.Object {
	o := catalog.NewObject(id, ra, dec)
	o.OType = "G"
	o.MajAxis = maj
	o.MinAxis = min
	o.PosAngle = pa
	return o
}

func descriptors(t *testing.T) *catalog.Descriptors {
	t.Helper()
	d, err := catalog.DefaultDescriptors()
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func compute(t *testing.T, objs []catalog.Object) Result {
	t.Helper()
	a := testAdapter(t)
	return Compute(objs, fov.Resolve(1024, 1024, a), a, descriptors(t), DefaultOptions())
}

func TestComputeSingleObject(t *testing.T) {
	res := compute(t, []catalog.Object{galaxy("NGC 1", 10, 20, 10, 5, 0)})
	if len(res.Records) != 1 {
		t.Fatalf("got %d records", len(res.Records))
	}
	r := res.Records[0]
	// reference point sits at 0-based pixel CRPIX-1
	if math.Abs(r.X-511) > 1e-6 || math.Abs(r.Y-511) > 1e-6 {
		t.Errorf("pixel = (%.4f, %.4f), want (511, 511)", r.X, r.Y)
	}
	if math.Abs(r.RX-600.0/3.6/2) > 1e-6 || math.Abs(r.RY-300.0/3.6/2) > 1e-6 {
		t.Errorf("axes = (%.3f, %.3f)", r.RX, r.RY)
	}
	if r.Type != "Galaxy" || r.Code != "G" || r.Color != photometry.TypeColor("G") {
		t.Errorf("record = %+v", r)
	}
}

func TestRotation(t *testing.T) {
	tests := []struct {
		name string
		pa   float64
		want float64
	}{
		// north is +y for this solution, east is +x
		{"north", 0, 90},
		{"east", 90, 0},
		{"sentinel", catalog.UndefinedPositionAngle, 0},
		{"missing", math.NaN(), 0},
		{"infinite", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compute(t, []catalog.Object{galaxy("X", 10.1, 20.1, 10, 5, tt.pa)})
			if len(res.Records) != 1 {
				t.Fatalf("got %d records", len(res.Records))
			}
			if got := res.Records[0].Rotation; math.Abs(got-tt.want) > 0.1 {
				t.Errorf("rotation = %.4f, want %.1f", got, tt.want)
			}
		})
	}
}

func TestUndefinedPositionAngleIsExactlyZero(t *testing.T) {
	res := compute(t, []catalog.Object{galaxy("X", 10.1, 20.1, 10, 5, catalog.UndefinedPositionAngle)})
	if len(res.Records) != 1 || res.Records[0].Rotation != 0 {
		t.Errorf("records = %+v", res.Records)
	}
}

func TestMinRadius(t *testing.T) {
	objs := []catalog.Object{
		galaxy("big", 10, 20, 10, 1, 0),    // rx 83, ry 8
		galaxy("edge", 10.1, 20, 3, 3, 0),  // exactly 25 px
		galaxy("small", 10.2, 20, 1, 1, 0), // 8 px
		galaxy("nosize", 10.3, 20, math.NaN(), math.NaN(), 0),
	}
	res := compute(t, objs)

	got := map[string]Record{}
	for _, r := range res.Records {
		got[r.ID] = r
		if r.RX < 0 || r.RY < 0 {
			t.Errorf("%s has negative axis: %+v", r.ID, r)
		}
	}
	if _, ok := got["big"]; !ok {
		t.Error("big dropped although its major axis exceeds the minimum")
	}
	if _, ok := got["edge"]; !ok {
		t.Error("edge dropped although it equals the minimum")
	}
	if _, ok := got["small"]; ok {
		t.Error("small kept")
	}
	if _, ok := got["nosize"]; ok {
		t.Error("object without size kept")
	}
	if res.Dropped.TooSmall != 2 {
		t.Errorf("TooSmall = %d, want 2", res.Dropped.TooSmall)
	}
}

func TestZeroMinRadiusKeepsEverything(t *testing.T) {
	a := testAdapter(t)
	res := Compute(
		[]catalog.Object{galaxy("nosize", 10, 20, math.NaN(), math.NaN(), 0)},
		fov.Resolve(1024, 1024, a), a, nil, Options{},
	)
	if len(res.Records) != 1 {
		t.Fatalf("got %d records", len(res.Records))
	}
	r := res.Records[0]
	if r.RX != 0 || r.RY != 0 {
		t.Errorf("axes = (%v, %v), want zero", r.RX, r.RY)
	}
	if r.Type != catalog.UnknownType {
		t.Errorf("type with nil descriptors = %q", r.Type)
	}
}

func TestDedupe(t *testing.T) {
	first := galaxy("M 31", 10, 20, 5, 8, 30)
	first.OType = "G"
	second := galaxy("M 31", 10.01, 20.01, 12, 2, 60)
	second.OType = "GiG"

	res := compute(t, []catalog.Object{first, second})
	if len(res.Records) != 1 {
		t.Fatalf("got %d records", len(res.Records))
	}
	if res.Dropped.Duplicate != 1 {
		t.Errorf("Duplicate = %d", res.Dropped.Duplicate)
	}
	r := res.Records[0]
	if r.Code != "G" {
		t.Errorf("code = %q, want first record's", r.Code)
	}
	if math.Abs(r.X-511) > 1e-6 {
		t.Errorf("position taken from later record: x = %.3f", r.X)
	}
	if math.Abs(r.RX-12*60/3.6/2) > 1e-6 || math.Abs(r.RY-8*60/3.6/2) > 1e-6 {
		t.Errorf("axes = (%.3f, %.3f), want max of both", r.RX, r.RY)
	}
}

func TestSortOrder(t *testing.T) {
	objs := []catalog.Object{
		galaxy("a", 10.00, 20, 10, 9, 0),
		galaxy("b", 10.05, 20, 20, 2, 0),
		galaxy("c", 10.10, 20, 10, 9.5, 0),
		galaxy("d", 10.15, 20, math.NaN(), 30, 0),
		galaxy("e", 10.20, 20, 10, 9, 0),
	}
	res := compute(t, objs)

	want := []string{"b", "c", "a", "e", "d"}
	if len(res.Records) != len(want) {
		t.Fatalf("got %d records", len(res.Records))
	}
	for i, id := range want {
		if res.Records[i].ID != id {
			t.Errorf("record %d = %s, want %s", i, res.Records[i].ID, id)
		}
	}
}

func TestFieldFilter(t *testing.T) {
	objs := []catalog.Object{
		galaxy("in", 10.2, 20.2, 10, 10, 0),
		galaxy("far", 30, 40, 10, 10, 0),
		galaxy("north", 10, 20.6, 10, 10, 0),
	}
	res := compute(t, objs)
	if len(res.Records) != 1 || res.Records[0].ID != "in" {
		t.Errorf("records = %+v", res.Records)
	}
	if res.Dropped.OutsideField != 2 {
		t.Errorf("OutsideField = %d, want 2", res.Dropped.OutsideField)
	}
}

func TestCompareDesc(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		a, b float64
		want int
	}{
		{2, 1, -1},
		{1, 2, 1},
		{1, 1, 0},
		{1, nan, -1},
		{nan, 1, 1},
		{nan, nan, 0},
	}
	for _, tt := range tests {
		if got := compareDesc(tt.a, tt.b); got != tt.want {
			t.Errorf("compareDesc(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
