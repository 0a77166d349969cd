package design

import (
	"errors"
	"fmt"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
	"github.com/stitchkit/stitchkit/backend-go/internal/typeid"
)

var ErrLayerNotFound = errors.New("layer not found")

// Listener receives the committed immutable snapshot after every mutation,
// undo and redo. Listeners never see partial or in-progress states.
type Listener func(State)

// Store is the single source of truth for one session's design. It is a
// single-writer structure: all mutations run synchronously on one logical
// actor (the hub room goroutine, or the wasm main loop), so no locking is
// needed. Each mutation validates its preconditions, builds a successor
// state, records exactly one history entry, and notifies listeners.
// Operations that change nothing observable record no history entry.
type Store struct {
	catalog    *catalog.Catalog
	resolver   *placement.Resolver
	history    *History
	listeners  []Listener
	newLayerID func() string

	// version counts committed mutations. It never decreases and is the
	// hook for a compare-and-swap discipline if a second writer ever
	// appears.
	version int64
}

// NewStore creates a store over the given catalog, rooted at the empty
// design. historyDepth bounds the undo stack (<=0 uses the default).
func NewStore(c *catalog.Catalog, historyDepth int) *Store {
	return &Store{
		catalog:    c,
		resolver:   placement.NewResolver(c),
		history:    NewHistory(NewState(), historyDepth),
		newLayerID: typeid.NewLayerID,
	}
}

// NewStoreAt is NewStore rooted at a previously exported state, used when
// resuming a persisted session. The history starts empty: undo does not
// cross session boundaries.
func NewStoreAt(c *catalog.Catalog, initial State, historyDepth int) *Store {
	s := NewStore(c, historyDepth)
	s.history.Reset(initial.Clone())
	return s
}

// Subscribe registers a listener for committed snapshots.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// State returns the current design snapshot.
func (s *Store) State() State {
	return s.history.Current().Clone()
}

// Catalog returns the static garment catalog the store was built over.
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Store) commit(next State) {
	s.history.Record(next)
	s.version++
	s.notify(next)
}

func (s *Store) notify(state State) {
	for _, l := range s.listeners {
		l(state.Clone())
	}
}

// SetMode replaces the configurator mode. Setting the current mode again is
// a no-op.
func (s *Store) SetMode(mode Mode) {
	cur := s.history.Current()
	if cur.Mode == mode {
		return
	}
	next := cur.Clone()
	next.Mode = mode
	s.commit(next)
}

// SelectComponent replaces the selection; empty ID clears it. Re-selecting
// the already-selected component is a silent no-op so rapid selection churn
// does not pollute the history.
func (s *Store) SelectComponent(componentID string) error {
	if componentID != "" && !s.catalog.HasComponent(componentID) {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownComponent, componentID)
	}
	cur := s.history.Current()
	if cur.SelectedComponent == componentID {
		return nil
	}
	next := cur.Clone()
	next.SelectedComponent = componentID
	s.commit(next)
	return nil
}

// SetMaterial assigns a material to a component, overwriting any prior
// assignment.
func (s *Store) SetMaterial(componentID, materialID string) error {
	if !s.catalog.HasComponent(componentID) {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownComponent, componentID)
	}
	if _, err := s.catalog.Material(materialID); err != nil {
		return err
	}
	if !s.catalog.MaterialAllowed(componentID, materialID) {
		return fmt.Errorf("%w: %s on %s", catalog.ErrMaterialNotAllowed, materialID, componentID)
	}
	cur := s.history.Current()
	if cur.Materials[componentID] == materialID {
		return nil
	}
	next := cur.Clone()
	next.Materials[componentID] = materialID
	s.commit(next)
	return nil
}

// SetColor sets a per-component color override. An empty color clears the
// override, reverting the component to its material's base color.
func (s *Store) SetColor(componentID, color string) error {
	if !s.catalog.HasComponent(componentID) {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownComponent, componentID)
	}
	cur := s.history.Current()
	existing, has := cur.Colors[componentID]
	if color == "" {
		if !has {
			return nil
		}
		next := cur.Clone()
		delete(next.Colors, componentID)
		s.commit(next)
		return nil
	}
	if has && existing == color {
		return nil
	}
	next := cur.Clone()
	next.Colors[componentID] = color
	s.commit(next)
	return nil
}

// AddLayer resolves the requested placement against the target zone and
// appends a new layer at the top of the z-order. On any failure no layer is
// added and no history entry is recorded.
func (s *Store) AddLayer(kind LayerKind, print *PrintContent, text *TextContent, req placement.Request, zoneID string) (Layer, error) {
	switch kind {
	case KindPrint:
		if print == nil {
			return Layer{}, errors.New("print layer requires print content")
		}
	case KindText:
		if text == nil {
			return Layer{}, errors.New("text layer requires text content")
		}
	default:
		return Layer{}, fmt.Errorf("unknown layer kind: %s", kind)
	}

	resolved, err := s.resolver.Resolve(req, zoneID)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{
		ID:        s.newLayerID(),
		Kind:      kind,
		Print:     print,
		Text:      text,
		Placement: resolved,
		Visible:   true,
	}

	next := s.history.Current().Clone()
	next.Layers = append(next.Layers, layer)
	s.commit(next)
	return layer.clone(), nil
}

// UpdateLayerPlacement re-resolves a new gesture against the layer's current
// zone.
func (s *Store) UpdateLayerPlacement(layerID string, req placement.Request) error {
	cur := s.history.Current()
	i := cur.layerIndex(layerID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	resolved, err := s.resolver.Resolve(req, cur.Layers[i].Placement.ZoneID)
	if err != nil {
		return err
	}
	if cur.Layers[i].Placement == resolved {
		return nil
	}
	next := cur.Clone()
	next.Layers[i].Placement = resolved
	s.commit(next)
	return nil
}

// MoveLayerToZone re-resolves the layer's placement against a different
// zone, preserving the gesture. Used for drags across component boundaries.
func (s *Store) MoveLayerToZone(layerID, newZoneID string) error {
	cur := s.history.Current()
	i := cur.layerIndex(layerID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	resolved, err := s.resolver.ReassignZone(cur.Layers[i].Placement, newZoneID)
	if err != nil {
		return err
	}
	if cur.Layers[i].Placement == resolved {
		return nil
	}
	next := cur.Clone()
	next.Layers[i].Placement = resolved
	s.commit(next)
	return nil
}

// ReorderLayer moves a layer to newIndex in the z-order, clamping the index
// into the valid range.
func (s *Store) ReorderLayer(layerID string, newIndex int) error {
	cur := s.history.Current()
	i := cur.layerIndex(layerID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(cur.Layers)-1 {
		newIndex = len(cur.Layers) - 1
	}
	if newIndex == i {
		return nil
	}
	next := cur.Clone()
	moved := next.Layers[i]
	next.Layers = append(next.Layers[:i], next.Layers[i+1:]...)
	rest := append([]Layer{}, next.Layers[newIndex:]...)
	next.Layers = append(next.Layers[:newIndex], moved)
	next.Layers = append(next.Layers, rest...)
	s.commit(next)
	return nil
}

// SetLayerVisibility toggles a layer without removing it from the z-order.
func (s *Store) SetLayerVisibility(layerID string, visible bool) error {
	cur := s.history.Current()
	i := cur.layerIndex(layerID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	if cur.Layers[i].Visible == visible {
		return nil
	}
	next := cur.Clone()
	next.Layers[i].Visible = visible
	s.commit(next)
	return nil
}

// RemoveLayer removes a layer by ID. Removing an absent layer is treated as
// already satisfied: no error, no history entry.
func (s *Store) RemoveLayer(layerID string) {
	cur := s.history.Current()
	i := cur.layerIndex(layerID)
	if i < 0 {
		return
	}
	next := cur.Clone()
	next.Layers = append(next.Layers[:i], next.Layers[i+1:]...)
	s.commit(next)
}

// Undo steps the design back one committed mutation. Undo on an empty stack
// is a no-op (ok=false) so the UI can simply disable the control.
func (s *Store) Undo() (State, bool) {
	state, ok := s.history.Undo()
	if ok {
		s.notify(state)
	}
	return state.Clone(), ok
}

// Redo steps forward again after an undo.
func (s *Store) Redo() (State, bool) {
	state, ok := s.history.Redo()
	if ok {
		s.notify(state)
	}
	return state.Clone(), ok
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// HistoryDepth returns the number of undoable entries, for tests and
// diagnostics.
func (s *Store) HistoryDepth() int { return s.history.Depth() }

// Version returns the number of committed mutations since the store was
// created. Undo and redo do not advance it.
func (s *Store) Version() int64 { return s.version }
