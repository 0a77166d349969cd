package design

import (
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

// Mode is the top-level configurator mode.
type Mode string

const (
	ModeBlank   Mode = "blank"
	ModeBranded Mode = "branded"
	ModeCustom  Mode = "custom"
)

// LayerKind discriminates the layer content variant.
type LayerKind string

const (
	KindPrint LayerKind = "print"
	KindText  LayerKind = "text"
)

// PrintContent references an uploaded print image by URL. The upload itself
// happens in the asset collaborator; a print layer only ever exists once the
// URL is fully resolved.
type PrintContent struct {
	URL     string `json:"url"`
	AssetID string `json:"assetId,omitempty"`
}

// TextContent is a text overlay with its style descriptor.
type TextContent struct {
	Value  string  `json:"value"`
	Font   string  `json:"font"`
	SizePt float64 `json:"sizePt"`
	Color  string  `json:"color"`
}

// Layer is one print or text overlay. Exactly one of Print/Text is set,
// matching Kind; consumers switch exhaustively on Kind.
type Layer struct {
	ID        string              `json:"id"`
	Kind      LayerKind           `json:"kind"`
	Print     *PrintContent       `json:"print,omitempty"`
	Text      *TextContent        `json:"text,omitempty"`
	Placement placement.Placement `json:"placement"`
	Visible   bool                `json:"visible"`
}

func (l Layer) clone() Layer {
	out := l
	if l.Print != nil {
		p := *l.Print
		out.Print = &p
	}
	if l.Text != nil {
		t := *l.Text
		out.Text = &t
	}
	return out
}

// State is the full snapshot of a configurator session. States are treated as
// persistent values: every mutation in the store produces a successor via
// Clone, and snapshots handed to listeners or the history are never written
// to again.
type State struct {
	Mode              Mode              `json:"mode"`
	SelectedComponent string            `json:"selectedComponent,omitempty"` // empty = nothing selected
	Materials         map[string]string `json:"materials"`                   // componentID -> materialID
	Colors            map[string]string `json:"colors"`                      // componentID -> override color
	Layers            []Layer           `json:"layers"`                      // z-order = slice order, last on top
}

// NewState returns the empty design for a fresh session.
func NewState() State {
	return State{
		Mode:      ModeBlank,
		Materials: map[string]string{},
		Colors:    map[string]string{},
		Layers:    []Layer{},
	}
}

// Clone returns a deep copy sharing no mutable structure with the receiver.
func (s State) Clone() State {
	out := s
	out.Materials = make(map[string]string, len(s.Materials))
	for k, v := range s.Materials {
		out.Materials[k] = v
	}
	out.Colors = make(map[string]string, len(s.Colors))
	for k, v := range s.Colors {
		out.Colors[k] = v
	}
	out.Layers = make([]Layer, len(s.Layers))
	for i, l := range s.Layers {
		out.Layers[i] = l.clone()
	}
	return out
}

// layerIndex returns the index of the layer with the given ID, or -1.
func (s State) layerIndex(layerID string) int {
	for i, l := range s.Layers {
		if l.ID == layerID {
			return i
		}
	}
	return -1
}

// Layer returns a copy of the layer with the given ID.
func (s State) Layer(layerID string) (Layer, bool) {
	i := s.layerIndex(layerID)
	if i < 0 {
		return Layer{}, false
	}
	return s.Layers[i].clone(), true
}
