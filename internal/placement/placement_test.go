package placement

import (
	"errors"
	"testing"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(catalog.Default())
}

func TestResolveClampsIntoZone(t *testing.T) {
	r := newResolver(t)

	// chest is {0.3,0.7}x{0.4,0.8} with no rotation or scale limits
	got, err := r.Resolve(Request{U: 0.1, V: 0.9, RotationDeg: 0, Scale: 1.0}, "chest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Placement{U: 0.3, V: 0.8, RotationDeg: 0, Scale: 1.0, ZoneID: "chest"}
	if got != want {
		t.Fatalf("Resolve=%+v; want %+v", got, want)
	}
}

func TestResolveBoundsProperty(t *testing.T) {
	r := newResolver(t)
	c := catalog.Default()
	zone, err := c.Zone("chest")
	if err != nil {
		t.Fatalf("zone lookup: %v", err)
	}

	// Every resolved placement must land inside the zone rect, whatever the
	// input — including points far outside [0,1].
	inputs := []Request{
		{U: -5, V: -5, Scale: 1},
		{U: 5, V: 5, Scale: 1},
		{U: 0.5, V: 0.5, Scale: 1},
		{U: 0.3, V: 0.8, Scale: 1},
		{U: 0, V: 1, Scale: 0.01},
		{U: 0.7000001, V: 0.3999999, Scale: 100},
	}
	for _, in := range inputs {
		got, err := r.Resolve(in, "chest")
		if err != nil {
			t.Fatalf("Resolve(%+v): %v", in, err)
		}
		if got.U < zone.MinU || got.U > zone.MaxU || got.V < zone.MinV || got.V > zone.MaxV {
			t.Fatalf("Resolve(%+v)=%+v escapes zone rect", in, got)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := newResolver(t)

	inputs := []struct {
		req  Request
		zone string
	}{
		{Request{U: 0.1, V: 0.9, RotationDeg: 725, Scale: 1.5}, "chest"},
		{Request{U: 0.5, V: 0.5, RotationDeg: -45, Scale: 3}, "back"},
		{Request{U: 0, V: 1, RotationDeg: 90, Scale: 0.1}, "sleeve-left-outer"},
	}
	for _, in := range inputs {
		first, err := r.Resolve(in.req, in.zone)
		if err != nil {
			t.Fatalf("Resolve(%+v, %s): %v", in.req, in.zone, err)
		}
		second, err := r.Resolve(first.Request(), in.zone)
		if err != nil {
			t.Fatalf("re-Resolve(%+v): %v", first, err)
		}
		if second != first {
			t.Fatalf("resolve not idempotent: %+v then %+v", first, second)
		}
	}
}

func TestResolveRotationNormalized(t *testing.T) {
	r := newResolver(t)

	// chest declares no rotation limits, so any angle is normalized into
	// [0,360)
	cases := map[float64]float64{
		0:    0,
		360:  0,
		370:  10,
		-45:  315,
		-720: 0,
		725:  5,
	}
	for in, want := range cases {
		got, err := r.Resolve(Request{U: 0.5, V: 0.5, RotationDeg: in, Scale: 1}, "chest")
		if err != nil {
			t.Fatalf("Resolve rotation %v: %v", in, err)
		}
		if got.RotationDeg != want {
			t.Fatalf("rotation %v normalized to %v; want %v", in, got.RotationDeg, want)
		}
	}
}

func TestResolveRotationClamped(t *testing.T) {
	r := newResolver(t)

	// sleeve zones declare [-30,30] rotation limits
	cases := map[float64]float64{
		0:   0,
		45:  30,
		-90: -30,
		30:  30,
		-30: -30,
	}
	for in, want := range cases {
		got, err := r.Resolve(Request{U: 0.5, V: 0.5, RotationDeg: in, Scale: 0.5}, "sleeve-left-outer")
		if err != nil {
			t.Fatalf("Resolve rotation %v: %v", in, err)
		}
		if got.RotationDeg != want {
			t.Fatalf("rotation %v clamped to %v; want %v", in, got.RotationDeg, want)
		}
	}
}

func TestResolveScaleWithoutLimits(t *testing.T) {
	r := newResolver(t)

	// No scale limits on chest: any positive scale passes through unchanged,
	// non-positive is rejected.
	got, err := r.Resolve(Request{U: 0.5, V: 0.5, Scale: 3.5}, "chest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scale != 3.5 {
		t.Fatalf("scale=%v; want 3.5", got.Scale)
	}

	for _, bad := range []float64{0, -1} {
		if _, err := r.Resolve(Request{U: 0.5, V: 0.5, Scale: bad}, "chest"); !errors.Is(err, ErrInvalidScale) {
			t.Fatalf("scale %v: got %v; want ErrInvalidScale", bad, err)
		}
	}
}

func TestResolveScaleClamped(t *testing.T) {
	r := newResolver(t)

	// back declares [0.5,2.0] scale limits: out-of-range scales clamp, even
	// non-positive ones.
	cases := map[float64]float64{
		1:   1,
		0.1: 0.5,
		5:   2.0,
		0:   0.5,
	}
	for in, want := range cases {
		got, err := r.Resolve(Request{U: 0.5, V: 0.5, Scale: in}, "back")
		if err != nil {
			t.Fatalf("Resolve scale %v: %v", in, err)
		}
		if got.Scale != want {
			t.Fatalf("scale %v clamped to %v; want %v", in, got.Scale, want)
		}
	}
}

func TestResolveUnknownZone(t *testing.T) {
	r := newResolver(t)
	if _, err := r.Resolve(Request{U: 0.5, V: 0.5, Scale: 1}, "nope"); !errors.Is(err, catalog.ErrZoneNotFound) {
		t.Fatalf("got %v; want ErrZoneNotFound", err)
	}
}

func TestReassignZone(t *testing.T) {
	r := newResolver(t)

	placed, err := r.Resolve(Request{U: 0.65, V: 0.45, Scale: 1}, "chest")
	if err != nil {
		t.Fatalf("initial resolve: %v", err)
	}

	// hood-back is {0.4,0.6}x{0.5,0.75}: the gesture re-clamps into the new
	// rect and the placement is re-tagged.
	moved, err := r.ReassignZone(placed, "hood-back")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if moved.ZoneID != "hood-back" {
		t.Fatalf("zoneID=%q; want hood-back", moved.ZoneID)
	}
	if moved.U != 0.6 || moved.V != 0.5 {
		t.Fatalf("moved=(%v,%v); want (0.6,0.5)", moved.U, moved.V)
	}
}
