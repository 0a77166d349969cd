//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/engine"
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(catalog.Default(), design.DefaultHistoryDepth)

	// Create the engine API object
	stitchkitEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	stitchkitEngine.Set("loadDesign", js.FuncOf(loadDesign))
	stitchkitEngine.Set("setMode", js.FuncOf(setMode))
	stitchkitEngine.Set("selectComponent", js.FuncOf(selectComponent))
	stitchkitEngine.Set("setMaterial", js.FuncOf(setMaterial))
	stitchkitEngine.Set("setColor", js.FuncOf(setColor))
	stitchkitEngine.Set("addPrintLayer", js.FuncOf(addPrintLayer))
	stitchkitEngine.Set("addTextLayer", js.FuncOf(addTextLayer))
	stitchkitEngine.Set("updateLayerPlacement", js.FuncOf(updateLayerPlacement))
	stitchkitEngine.Set("moveLayerToZone", js.FuncOf(moveLayerToZone))
	stitchkitEngine.Set("reorderLayer", js.FuncOf(reorderLayer))
	stitchkitEngine.Set("setLayerVisibility", js.FuncOf(setLayerVisibility))
	stitchkitEngine.Set("removeLayer", js.FuncOf(removeLayer))
	stitchkitEngine.Set("undo", js.FuncOf(undo))
	stitchkitEngine.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← backend) ---
	stitchkitEngine.Set("render", js.FuncOf(render))
	stitchkitEngine.Set("hitZone", js.FuncOf(hitZone))
	stitchkitEngine.Set("resolvePreview", js.FuncOf(resolvePreview))
	stitchkitEngine.Set("getState", js.FuncOf(getState))
	stitchkitEngine.Set("getExport", js.FuncOf(getExport))
	stitchkitEngine.Set("getHistoryState", js.FuncOf(getHistoryState))
	stitchkitEngine.Set("getZones", js.FuncOf(getZones))

	// Register on global scope
	js.Global().Set("stitchkitEngine", stitchkitEngine)

	// Signal that WASM is ready
	js.Global().Set("stitchkitWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadDesign(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing design JSON"})
	}

	jsonData := args[0].String()
	if err := eng.LoadDesign(jsonData); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetMode(args[0].String())
	return nil
}

func selectComponent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errResult("missing component id")
	}
	if err := eng.SelectComponent(args[0].String()); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func setMaterial(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected componentId, materialId")
	}
	if err := eng.SetMaterial(args[0].String(), args[1].String()); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func setColor(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected componentId, color")
	}
	if err := eng.SetColor(args[0].String(), args[1].String()); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

// addPrintLayer(url, assetId, requestJSON, zoneId) -> {ok, layerId} | {error}
func addPrintLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errResult("expected url, assetId, request, zoneId")
	}
	req, err := parseRequest(args[2].String())
	if err != nil {
		return errResult(err.Error())
	}
	layer, err := eng.AddPrintLayer(args[0].String(), args[1].String(), req, args[3].String())
	if err != nil {
		return errResult(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "layerId": layer.ID})
}

// addTextLayer(textJSON, requestJSON, zoneId) -> {ok, layerId} | {error}
func addTextLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errResult("expected text, request, zoneId")
	}
	var text design.TextContent
	if err := json.Unmarshal([]byte(args[0].String()), &text); err != nil {
		return errResult(err.Error())
	}
	req, err := parseRequest(args[1].String())
	if err != nil {
		return errResult(err.Error())
	}
	layer, err := eng.AddTextLayer(text, req, args[2].String())
	if err != nil {
		return errResult(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "layerId": layer.ID})
}

func updateLayerPlacement(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected layerId, request")
	}
	req, err := parseRequest(args[1].String())
	if err != nil {
		return errResult(err.Error())
	}
	if err := eng.UpdateLayerPlacement(args[0].String(), req); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func moveLayerToZone(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected layerId, zoneId")
	}
	if err := eng.MoveLayerToZone(args[0].String(), args[1].String()); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func reorderLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected layerId, index")
	}
	if err := eng.ReorderLayer(args[0].String(), args[1].Int()); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func setLayerVisibility(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected layerId, visible")
	}
	if err := eng.SetLayerVisibility(args[0].String(), args[1].Bool()); err != nil {
		return errResult(err.Error())
	}
	return okResult()
}

func removeLayer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.RemoveLayer(args[0].String())
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

// --- Query Handlers ---

// render(componentId, viewportW, viewportH) -> draw commands JSON
func render(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("[]")
	}
	return js.ValueOf(eng.Render(args[0].String(), args[1].Float(), args[2].Float()))
}

// hitZone(componentId, u, v) -> zone id or ""
func hitZone(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitZone(args[0].String(), args[1].Float(), args[2].Float()))
}

// resolvePreview(requestJSON, zoneId) -> resolved placement JSON. Used by the
// drag ghost: the pointer stream resolves without committing anything.
func resolvePreview(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errResult("expected request, zoneId")
	}
	req, err := parseRequest(args[0].String())
	if err != nil {
		return errResult(err.Error())
	}
	placed, err := eng.ResolvePreview(req, args[1].String())
	if err != nil {
		return errResult(err.Error())
	}
	data, _ := json.Marshal(placed)
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetState())
}

func getExport(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetExport())
}

func getHistoryState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetHistoryState())
}

func getZones(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("[]")
	}
	return js.ValueOf(eng.GetZones(args[0].String()))
}

// --- Helpers ---

func parseRequest(data string) (placement.Request, error) {
	var req placement.Request
	err := json.Unmarshal([]byte(data), &req)
	return req, err
}

func okResult() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func errResult(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
