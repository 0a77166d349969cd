package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrZoneNotFound       = errors.New("zone not found")
	ErrUnknownComponent   = errors.New("unknown component")
	ErrUnknownMaterial    = errors.New("unknown material")
	ErrMaterialNotAllowed = errors.New("material not offered for component")
)

// Zone is an allowed placement region on a garment component, expressed in
// normalized surface coordinates (u,v in [0,1] over the component's UV map).
// Zones are defined once at load time and never mutated.
type Zone struct {
	ID          string   `json:"id"`
	ComponentID string   `json:"componentId"`
	MinU        float64  `json:"minU"`
	MaxU        float64  `json:"maxU"`
	MinV        float64  `json:"minV"`
	MaxV        float64  `json:"maxV"`
	MinRotation *float64 `json:"minRotation,omitempty"` // degrees
	MaxRotation *float64 `json:"maxRotation,omitempty"`
	MinScale    *float64 `json:"minScale,omitempty"`
	MaxScale    *float64 `json:"maxScale,omitempty"`
}

// Contains reports whether the normalized point lies inside the zone rect.
func (z Zone) Contains(u, v float64) bool {
	return u >= z.MinU && u <= z.MaxU && v >= z.MinV && v <= z.MaxV
}

// Material is a fabric/texture entry referenced by ID from the design state.
type Material struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BaseColor  string `json:"baseColor"`
	TextureURL string `json:"textureUrl,omitempty"`
}

// Component is one customizable part of the garment (body, sleeve, hood...).
type Component struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	MaterialIDs     []string `json:"materialIds"`
	DefaultMaterial string   `json:"defaultMaterial"`
}

// Catalog is the static reference data for one garment: its components, the
// materials each accepts, and the placement zones on each component. Built
// once at session start, read-only thereafter.
type Catalog struct {
	GarmentID  string      `json:"garmentId"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	Materials  []Material  `json:"materials"`
	Zones      []Zone      `json:"zones"`

	componentsByID map[string]Component
	materialsByID  map[string]Material
	zonesByID      map[string]Zone
	zonesByComp    map[string][]Zone
}

// New validates the raw catalog data and builds the lookup indexes.
func New(garmentID, name string, components []Component, materials []Material, zones []Zone) (*Catalog, error) {
	c := &Catalog{
		GarmentID:  garmentID,
		Name:       name,
		Components: components,
		Materials:  materials,
		Zones:      zones,
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads a catalog definition from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.componentsByID = make(map[string]Component, len(c.Components))
	c.materialsByID = make(map[string]Material, len(c.Materials))
	c.zonesByID = make(map[string]Zone, len(c.Zones))
	c.zonesByComp = make(map[string][]Zone)

	for _, m := range c.Materials {
		if m.ID == "" {
			return errors.New("material with empty id")
		}
		if _, dup := c.materialsByID[m.ID]; dup {
			return fmt.Errorf("duplicate material id %q", m.ID)
		}
		c.materialsByID[m.ID] = m
	}

	for _, comp := range c.Components {
		if comp.ID == "" {
			return errors.New("component with empty id")
		}
		if _, dup := c.componentsByID[comp.ID]; dup {
			return fmt.Errorf("duplicate component id %q", comp.ID)
		}
		for _, mid := range comp.MaterialIDs {
			if _, ok := c.materialsByID[mid]; !ok {
				return fmt.Errorf("component %q references material %q: %w", comp.ID, mid, ErrUnknownMaterial)
			}
		}
		if comp.DefaultMaterial != "" {
			if _, ok := c.materialsByID[comp.DefaultMaterial]; !ok {
				return fmt.Errorf("component %q default material %q: %w", comp.ID, comp.DefaultMaterial, ErrUnknownMaterial)
			}
		}
		c.componentsByID[comp.ID] = comp
	}

	for _, z := range c.Zones {
		if err := validateZone(z); err != nil {
			return err
		}
		if _, ok := c.componentsByID[z.ComponentID]; !ok {
			return fmt.Errorf("zone %q owned by component %q: %w", z.ID, z.ComponentID, ErrUnknownComponent)
		}
		if _, dup := c.zonesByID[z.ID]; dup {
			return fmt.Errorf("duplicate zone id %q", z.ID)
		}
		c.zonesByID[z.ID] = z
		c.zonesByComp[z.ComponentID] = append(c.zonesByComp[z.ComponentID], z)
	}

	return nil
}

func validateZone(z Zone) error {
	if z.ID == "" {
		return errors.New("zone with empty id")
	}
	if z.MinU < 0 || z.MaxU > 1 || z.MinV < 0 || z.MaxV > 1 {
		return fmt.Errorf("zone %q bounds outside [0,1]", z.ID)
	}
	if z.MinU > z.MaxU || z.MinV > z.MaxV {
		return fmt.Errorf("zone %q has inverted bounds", z.ID)
	}
	if (z.MinRotation == nil) != (z.MaxRotation == nil) {
		return fmt.Errorf("zone %q declares only one rotation limit", z.ID)
	}
	if z.MinRotation != nil && *z.MinRotation > *z.MaxRotation {
		return fmt.Errorf("zone %q has inverted rotation limits", z.ID)
	}
	if (z.MinScale == nil) != (z.MaxScale == nil) {
		return fmt.Errorf("zone %q declares only one scale limit", z.ID)
	}
	if z.MinScale != nil {
		if *z.MinScale <= 0 {
			return fmt.Errorf("zone %q has non-positive scale limit", z.ID)
		}
		if *z.MinScale > *z.MaxScale {
			return fmt.Errorf("zone %q has inverted scale limits", z.ID)
		}
	}
	return nil
}

// Component looks up a component by ID.
func (c *Catalog) Component(componentID string) (Component, error) {
	comp, ok := c.componentsByID[componentID]
	if !ok {
		return Component{}, fmt.Errorf("%w: %s", ErrUnknownComponent, componentID)
	}
	return comp, nil
}

// HasComponent reports whether the component exists in the garment.
func (c *Catalog) HasComponent(componentID string) bool {
	_, ok := c.componentsByID[componentID]
	return ok
}

// Material looks up a material by ID.
func (c *Catalog) Material(materialID string) (Material, error) {
	m, ok := c.materialsByID[materialID]
	if !ok {
		return Material{}, fmt.Errorf("%w: %s", ErrUnknownMaterial, materialID)
	}
	return m, nil
}

// MaterialAllowed reports whether the component accepts the material.
func (c *Catalog) MaterialAllowed(componentID, materialID string) bool {
	comp, ok := c.componentsByID[componentID]
	if !ok {
		return false
	}
	for _, mid := range comp.MaterialIDs {
		if mid == materialID {
			return true
		}
	}
	return false
}

// Zone looks up a zone by ID. Unknown IDs are a programming error on the
// caller's side since zone IDs only ever originate from the catalog itself.
func (c *Catalog) Zone(zoneID string) (Zone, error) {
	z, ok := c.zonesByID[zoneID]
	if !ok {
		return Zone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	}
	return z, nil
}

// ZonesFor returns the placement zones on a component, in definition order.
// Components that accept no overlays return an empty slice.
func (c *Catalog) ZonesFor(componentID string) []Zone {
	zones := c.zonesByComp[componentID]
	out := make([]Zone, len(zones))
	copy(out, zones)
	return out
}
