package engine

import (
	"encoding/json"
	"testing"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

func TestEngineLoadDesignResumes(t *testing.T) {
	c := catalog.Default()
	eng := NewEngine(c, 10)

	if err := eng.SetMaterial("body", "jersey-01"); err != nil {
		t.Fatalf("material: %v", err)
	}
	if _, err := eng.AddPrintLayer("/assets/a.png", "asset_x", placement.Request{U: 0.5, V: 0.5, Scale: 1}, "chest"); err != nil {
		t.Fatalf("add print: %v", err)
	}
	doc := eng.GetExport()

	resumed := NewEngine(c, 10)
	if err := resumed.LoadDesign(doc); err != nil {
		t.Fatalf("load design: %v", err)
	}
	state := resumed.State()
	if state.Materials["body"] != "jersey-01" || len(state.Layers) != 1 {
		t.Fatalf("resumed state=%+v", state)
	}
	// loading resets the history: undo does not cross sessions
	if resumed.CanUndo() {
		t.Fatal("undo available after load")
	}

	if err := resumed.LoadDesign("{not json"); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestEngineHistoryStateJSON(t *testing.T) {
	eng := NewEngine(catalog.Default(), 10)

	var hs struct {
		CanUndo bool `json:"canUndo"`
		CanRedo bool `json:"canRedo"`
	}
	if err := json.Unmarshal([]byte(eng.GetHistoryState()), &hs); err != nil {
		t.Fatalf("parse history state: %v", err)
	}
	if hs.CanUndo || hs.CanRedo {
		t.Fatalf("fresh engine history=%+v; want both false", hs)
	}

	if err := eng.SetMaterial("body", "fleece-01"); err != nil {
		t.Fatalf("material: %v", err)
	}
	if !eng.Undo() {
		t.Fatal("undo failed")
	}
	if err := json.Unmarshal([]byte(eng.GetHistoryState()), &hs); err != nil {
		t.Fatalf("parse history state: %v", err)
	}
	if hs.CanUndo || !hs.CanRedo {
		t.Fatalf("after undo history=%+v; want redo only", hs)
	}
}

func TestEngineGetZones(t *testing.T) {
	eng := NewEngine(catalog.Default(), 10)

	var parsed []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(eng.GetZones("body")), &parsed); err != nil {
		t.Fatalf("parse zones: %v", err)
	}
	if len(parsed) != 2 || parsed[0].ID != "chest" {
		t.Fatalf("zones=%+v; want chest first", parsed)
	}
}
