package engine

import (
	"encoding/json"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

// Engine owns the design store for one configurator session and exposes the
// command/query surface consumed by the wasm binding and the live hub. It is
// single-writer: all commands run synchronously on the owning goroutine.
type Engine struct {
	catalog  *catalog.Catalog
	store    *design.Store
	resolver *placement.Resolver
	depth    int
}

// NewEngine creates an engine over the catalog with an empty design.
func NewEngine(c *catalog.Catalog, historyDepth int) *Engine {
	return &Engine{
		catalog:  c,
		store:    design.NewStore(c, historyDepth),
		resolver: placement.NewResolver(c),
		depth:    historyDepth,
	}
}

// NewEngineAt creates an engine resuming from a persisted design state. The
// undo history starts empty.
func NewEngineAt(c *catalog.Catalog, state design.State, historyDepth int) *Engine {
	return &Engine{
		catalog:  c,
		store:    design.NewStoreAt(c, state, historyDepth),
		resolver: placement.NewResolver(c),
		depth:    historyDepth,
	}
}

// --- Commands ---

// LoadDesign replaces the design from an exported document, resetting the
// undo history. Used when resuming a persisted session.
func (e *Engine) LoadDesign(jsonData string) error {
	state, err := design.ImportState([]byte(jsonData))
	if err != nil {
		return err
	}
	e.store = design.NewStoreAt(e.catalog, state, e.depth)
	return nil
}

func (e *Engine) SetMode(mode string) {
	e.store.SetMode(design.Mode(mode))
}

func (e *Engine) SelectComponent(componentID string) error {
	return e.store.SelectComponent(componentID)
}

func (e *Engine) SetMaterial(componentID, materialID string) error {
	return e.store.SetMaterial(componentID, materialID)
}

func (e *Engine) SetColor(componentID, color string) error {
	return e.store.SetColor(componentID, color)
}

// AddPrintLayer places an uploaded print image into a zone.
func (e *Engine) AddPrintLayer(url, assetID string, req placement.Request, zoneID string) (design.Layer, error) {
	return e.store.AddLayer(design.KindPrint, &design.PrintContent{URL: url, AssetID: assetID}, nil, req, zoneID)
}

// AddTextLayer places a styled text overlay into a zone.
func (e *Engine) AddTextLayer(text design.TextContent, req placement.Request, zoneID string) (design.Layer, error) {
	return e.store.AddLayer(design.KindText, nil, &text, req, zoneID)
}

func (e *Engine) UpdateLayerPlacement(layerID string, req placement.Request) error {
	return e.store.UpdateLayerPlacement(layerID, req)
}

func (e *Engine) MoveLayerToZone(layerID, zoneID string) error {
	return e.store.MoveLayerToZone(layerID, zoneID)
}

func (e *Engine) ReorderLayer(layerID string, newIndex int) error {
	return e.store.ReorderLayer(layerID, newIndex)
}

func (e *Engine) SetLayerVisibility(layerID string, visible bool) error {
	return e.store.SetLayerVisibility(layerID, visible)
}

func (e *Engine) RemoveLayer(layerID string) {
	e.store.RemoveLayer(layerID)
}

func (e *Engine) Undo() bool {
	_, ok := e.store.Undo()
	return ok
}

func (e *Engine) Redo() bool {
	_, ok := e.store.Redo()
	return ok
}

// CanUndo reports whether an undo step is available.
func (e *Engine) CanUndo() bool { return e.store.CanUndo() }

// CanRedo reports whether a redo step is available.
func (e *Engine) CanRedo() bool { return e.store.CanRedo() }

// HistoryDepth returns the number of undoable entries.
func (e *Engine) HistoryDepth() int { return e.store.HistoryDepth() }

// Version returns the store's committed-mutation counter.
func (e *Engine) Version() int64 { return e.store.Version() }

// Subscribe registers a listener for committed design snapshots.
func (e *Engine) Subscribe(l design.Listener) {
	e.store.Subscribe(l)
}

// --- Queries ---

// State returns the current design snapshot.
func (e *Engine) State() design.State {
	return e.store.State()
}

// Export returns the export document for the current design.
func (e *Engine) Export() design.ExportDocument {
	return e.store.Export()
}

// GetState returns the current design as JSON.
func (e *Engine) GetState() string {
	data, _ := json.Marshal(e.store.State())
	return string(data)
}

// GetExport returns the export document as JSON.
func (e *Engine) GetExport() string {
	data, _ := json.Marshal(e.store.Export())
	return string(data)
}

// GetHistoryState returns the undo/redo availability as JSON, for UI
// enablement.
func (e *Engine) GetHistoryState() string {
	data, _ := json.Marshal(map[string]interface{}{
		"canUndo": e.store.CanUndo(),
		"canRedo": e.store.CanRedo(),
	})
	return string(data)
}

// GetZones returns the placement zones for a component as JSON.
func (e *Engine) GetZones(componentID string) string {
	data, _ := json.Marshal(e.catalog.ZonesFor(componentID))
	return string(data)
}

// ResolvePreview resolves a gesture against a zone without committing
// anything — the drag ghost re-resolves on every pointer move and only the
// final drop becomes a store mutation.
func (e *Engine) ResolvePreview(req placement.Request, zoneID string) (placement.Placement, error) {
	return e.resolver.Resolve(req, zoneID)
}

// HitZone maps a viewer hit onto a zone ID, or "" when the hit lands outside
// every zone on the component.
func (e *Engine) HitZone(componentID string, u, v float64) string {
	zone, ok := ZoneForHit(e.catalog, componentID, u, v)
	if !ok {
		return ""
	}
	return zone.ID
}

// Render compiles the overlay draw commands for one component's preview
// viewport and returns them as JSON.
func (e *Engine) Render(componentID string, viewportW, viewportH float64) string {
	commands := CompileOverlayCommands(e.catalog, e.store.State(), componentID, viewportW, viewportH)
	result, _ := DrawCommandsToJSON(commands)
	return result
}
