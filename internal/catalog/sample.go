package catalog

func ptr(v float64) *float64 { return &v }

// Default returns the built-in hoodie catalog used when no CATALOG_PATH is
// configured. Zone rects come from the garment's UV unwrap.
func Default() *Catalog {
	c, err := New(
		"garment_hoodie_classic",
		"Classic Hoodie",
		[]Component{
			{
				ID:              "body",
				Name:            "Body",
				MaterialIDs:     []string{"cotton-01", "fleece-01", "jersey-01"},
				DefaultMaterial: "cotton-01",
			},
			{
				ID:              "sleeve-left",
				Name:            "Left Sleeve",
				MaterialIDs:     []string{"cotton-01", "fleece-01"},
				DefaultMaterial: "cotton-01",
			},
			{
				ID:              "sleeve-right",
				Name:            "Right Sleeve",
				MaterialIDs:     []string{"cotton-01", "fleece-01"},
				DefaultMaterial: "cotton-01",
			},
			{
				ID:              "hood",
				Name:            "Hood",
				MaterialIDs:     []string{"cotton-01", "fleece-01"},
				DefaultMaterial: "fleece-01",
			},
			{
				// Pocket takes no overlays: it has materials but no zones.
				ID:              "pocket",
				Name:            "Kangaroo Pocket",
				MaterialIDs:     []string{"cotton-01", "canvas-01"},
				DefaultMaterial: "cotton-01",
			},
		},
		[]Material{
			{ID: "cotton-01", Name: "Combed Cotton", BaseColor: "#f4f1ea"},
			{ID: "fleece-01", Name: "Brushed Fleece", BaseColor: "#8a8d91"},
			{ID: "jersey-01", Name: "Jersey Knit", BaseColor: "#2b2d42"},
			{ID: "canvas-01", Name: "Heavy Canvas", BaseColor: "#d8c3a5"},
		},
		[]Zone{
			{
				ID: "chest", ComponentID: "body",
				MinU: 0.3, MaxU: 0.7, MinV: 0.4, MaxV: 0.8,
			},
			{
				ID: "back", ComponentID: "body",
				MinU: 0.25, MaxU: 0.75, MinV: 0.2, MaxV: 0.85,
				MinScale: ptr(0.5), MaxScale: ptr(2.0),
			},
			{
				ID: "sleeve-left-outer", ComponentID: "sleeve-left",
				MinU: 0.35, MaxU: 0.65, MinV: 0.15, MaxV: 0.7,
				MinRotation: ptr(-30), MaxRotation: ptr(30),
				MinScale: ptr(0.25), MaxScale: ptr(1.0),
			},
			{
				ID: "sleeve-right-outer", ComponentID: "sleeve-right",
				MinU: 0.35, MaxU: 0.65, MinV: 0.15, MaxV: 0.7,
				MinRotation: ptr(-30), MaxRotation: ptr(30),
				MinScale: ptr(0.25), MaxScale: ptr(1.0),
			},
			{
				ID: "hood-back", ComponentID: "hood",
				MinU: 0.4, MaxU: 0.6, MinV: 0.5, MaxV: 0.75,
			},
		},
	)
	if err != nil {
		// The built-in catalog is static data; a validation failure here is a
		// programming error, not a runtime condition.
		panic("invalid built-in catalog: " + err.Error())
	}
	return c
}
