package placement

import (
	"errors"
	"fmt"
	"math"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
)

var ErrInvalidScale = errors.New("invalid scale")

// Request is a raw placement gesture from the viewer: a surface point plus
// rotation and uniform scale, before any zone constraint is applied.
type Request struct {
	U           float64 `json:"u"`
	V           float64 `json:"v"`
	RotationDeg float64 `json:"rotationDeg"`
	Scale       float64 `json:"scale"`
}

// Placement is a zone-constrained position/rotation/scale. Placements are
// only ever produced by a Resolver; at creation they satisfy the bounds of
// the zone they are tagged with.
type Placement struct {
	U           float64 `json:"u"`
	V           float64 `json:"v"`
	RotationDeg float64 `json:"rotationDeg"`
	Scale       float64 `json:"scale"`
	ZoneID      string  `json:"zoneId"`
}

// Request converts a placement back into the equivalent raw gesture, used
// when re-resolving against a different zone.
func (p Placement) Request() Request {
	return Request{U: p.U, V: p.V, RotationDeg: p.RotationDeg, Scale: p.Scale}
}

// Resolver corrects placement requests against the catalog's zones.
type Resolver struct {
	catalog *catalog.Catalog
}

func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve clamps the request into the named zone and returns the corrected
// placement. Each axis clamps independently against the zone rect — the UV
// parametrization is per-axis, so there is no Euclidean nearest-point step.
// The operation is idempotent: resolving an already-valid placement returns
// it unchanged, which keeps per-pointer-move re-resolution cheap and stable.
func (r *Resolver) Resolve(req Request, zoneID string) (Placement, error) {
	zone, err := r.catalog.Zone(zoneID)
	if err != nil {
		return Placement{}, err
	}

	u := clamp(req.U, zone.MinU, zone.MaxU)
	v := clamp(req.V, zone.MinV, zone.MaxV)

	rotation := req.RotationDeg
	if zone.MinRotation != nil {
		rotation = clamp(rotation, *zone.MinRotation, *zone.MaxRotation)
	} else {
		rotation = normalizeDegrees(rotation)
	}

	scale := req.Scale
	if zone.MinScale != nil {
		scale = clamp(scale, *zone.MinScale, *zone.MaxScale)
	} else if scale <= 0 {
		return Placement{}, fmt.Errorf("%w: %v", ErrInvalidScale, req.Scale)
	}

	return Placement{
		U:           u,
		V:           v,
		RotationDeg: rotation,
		Scale:       scale,
		ZoneID:      zoneID,
	}, nil
}

// ReassignZone re-resolves an existing placement against a different zone.
// Used when a layer is dragged across component boundaries.
func (r *Resolver) ReassignZone(p Placement, newZoneID string) (Placement, error) {
	return r.Resolve(p.Request(), newZoneID)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeDegrees maps an angle into [0,360).
func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
