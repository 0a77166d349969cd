package design

import (
	"encoding/json"
	"fmt"

	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

// ExportLayer is one layer in the export document, flattened to exactly the
// fields a downstream renderer or persistence layer needs.
type ExportLayer struct {
	ID        string              `json:"id"`
	Kind      LayerKind           `json:"kind"`
	Print     *PrintContent       `json:"print,omitempty"`
	Text      *TextContent        `json:"text,omitempty"`
	Placement placement.Placement `json:"placement"`
	Visible   bool                `json:"visible"`
}

// ExportDocument is the serialization of a design state: mode, material map,
// color map, and the ordered layer list with resolved placements. Turning
// this into pixels or a mesh is the renderer's job, not the engine's.
type ExportDocument struct {
	Version   int               `json:"version"`
	GarmentID string            `json:"garmentId"`
	Mode      Mode              `json:"mode"`
	Materials map[string]string `json:"materials"`
	Colors    map[string]string `json:"colors"`
	Layers    []ExportLayer     `json:"layers"`
}

const exportVersion = 1

// Export builds the export document for the current state.
func (s *Store) Export() ExportDocument {
	state := s.history.Current()
	return exportState(state, s.catalog.GarmentID)
}

func exportState(state State, garmentID string) ExportDocument {
	doc := ExportDocument{
		Version:   exportVersion,
		GarmentID: garmentID,
		Mode:      state.Mode,
		Materials: map[string]string{},
		Colors:    map[string]string{},
		Layers:    make([]ExportLayer, 0, len(state.Layers)),
	}
	for k, v := range state.Materials {
		doc.Materials[k] = v
	}
	for k, v := range state.Colors {
		doc.Colors[k] = v
	}
	for _, l := range state.Layers {
		el := ExportLayer{
			ID:        l.ID,
			Kind:      l.Kind,
			Placement: l.Placement,
			Visible:   l.Visible,
		}
		switch l.Kind {
		case KindPrint:
			p := *l.Print
			el.Print = &p
		case KindText:
			t := *l.Text
			el.Text = &t
		}
		doc.Layers = append(doc.Layers, el)
	}
	return doc
}

// ImportState rebuilds a State from a previously exported document,
// validating references against the catalog is the caller's concern (the
// store re-validates on the next mutation in any case).
func ImportState(data []byte) (State, error) {
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, fmt.Errorf("parse design document: %w", err)
	}
	state := NewState()
	if doc.Mode != "" {
		state.Mode = doc.Mode
	}
	for k, v := range doc.Materials {
		state.Materials[k] = v
	}
	for k, v := range doc.Colors {
		state.Colors[k] = v
	}
	for _, el := range doc.Layers {
		layer := Layer{
			ID:        el.ID,
			Kind:      el.Kind,
			Placement: el.Placement,
			Visible:   el.Visible,
		}
		// Layers carry exactly the content their kind names; a document that
		// breaks that never reaches the store.
		switch el.Kind {
		case KindPrint:
			if el.Print == nil {
				return State{}, fmt.Errorf("print layer %s has no print content", el.ID)
			}
			p := *el.Print
			layer.Print = &p
		case KindText:
			if el.Text == nil {
				return State{}, fmt.Errorf("text layer %s has no text content", el.ID)
			}
			t := *el.Text
			layer.Text = &t
		default:
			return State{}, fmt.Errorf("unknown layer kind in document: %s", el.Kind)
		}
		state.Layers = append(state.Layers, layer)
	}
	return state, nil
}
