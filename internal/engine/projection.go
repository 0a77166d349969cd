package engine

import (
	"encoding/json"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
)

// DrawCommand is one 2D drawing operation for the preview renderer. The
// frontend executes the list on a Canvas2D context, in painter's order.
type DrawCommand struct {
	Op        string    `json:"op"` // "zone", "print", "text"
	ZoneID    string    `json:"zoneId,omitempty"`
	LayerID   string    `json:"layerId,omitempty"` // for hit correlation
	Transform []float64 `json:"transform,omitempty"`
	// Zone outline rect in viewport pixels
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	// Print content
	ImageURL string `json:"imageUrl,omitempty"`
	// Text content
	Text      string  `json:"text,omitempty"`
	Font      string  `json:"font,omitempty"`
	SizePt    float64 `json:"sizePt,omitempty"`
	FillColor string  `json:"fillColor,omitempty"`
}

// CompileOverlayCommands projects the current design's overlays for one
// garment component into viewport pixel space. Zone outlines come first so
// layers paint over them; layers follow in z-order (last on top). Hidden
// layers and layers placed on other components are skipped.
func CompileOverlayCommands(c *catalog.Catalog, state design.State, componentID string, viewportW, viewportH float64) []DrawCommand {
	var commands []DrawCommand

	zones := c.ZonesFor(componentID)
	zoneSet := make(map[string]bool, len(zones))
	for _, z := range zones {
		zoneSet[z.ID] = true
		commands = append(commands, DrawCommand{
			Op:     "zone",
			ZoneID: z.ID,
			X:      z.MinU * viewportW,
			Y:      z.MinV * viewportH,
			Width:  (z.MaxU - z.MinU) * viewportW,
			Height: (z.MaxV - z.MinV) * viewportH,
		})
	}

	for _, layer := range state.Layers {
		if !layer.Visible || !zoneSet[layer.Placement.ZoneID] {
			continue
		}
		p := layer.Placement
		transform := OverlayTransform(p.U, p.V, p.RotationDeg, p.Scale, viewportW, viewportH)

		switch layer.Kind {
		case design.KindPrint:
			commands = append(commands, DrawCommand{
				Op:        "print",
				LayerID:   layer.ID,
				ZoneID:    p.ZoneID,
				Transform: transform.ToSlice(),
				ImageURL:  layer.Print.URL,
			})
		case design.KindText:
			commands = append(commands, DrawCommand{
				Op:        "text",
				LayerID:   layer.ID,
				ZoneID:    p.ZoneID,
				Transform: transform.ToSlice(),
				Text:      layer.Text.Value,
				Font:      layer.Text.Font,
				SizePt:    layer.Text.SizePt,
				FillColor: layer.Text.Color,
			})
		}
	}

	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// ZoneForHit maps a viewer hit-test result ({componentId, u, v} from the 3D
// raycaster) onto the owning placement zone. When zones overlap the last
// defined zone wins, matching painter's order in the preview. ok=false means
// the hit landed outside every zone on the component.
func ZoneForHit(c *catalog.Catalog, componentID string, u, v float64) (catalog.Zone, bool) {
	zones := c.ZonesFor(componentID)
	for i := len(zones) - 1; i >= 0; i-- {
		if zones[i].Contains(u, v) {
			return zones[i], true
		}
	}
	return catalog.Zone{}, false
}
