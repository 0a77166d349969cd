package live

import (
	"testing"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/engine"
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

func newEngine() *engine.Engine {
	return engine.NewEngine(catalog.Default(), 10)
}

func TestApplyOperationMaterial(t *testing.T) {
	eng := newEngine()

	op := Operation{Type: OpSetMaterial, ComponentID: "body", MaterialID: "fleece-01"}
	res, err := applyOperation(eng, op)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.changed {
		t.Fatal("material change reported unchanged")
	}

	// identical op is accepted but reports no change, so the hub does not
	// advance the server sequence or broadcast
	res, err = applyOperation(eng, op)
	if err != nil {
		t.Fatalf("repeat apply: %v", err)
	}
	if res.changed {
		t.Fatal("no-op repeat reported changed")
	}
}

func TestApplyOperationValidationError(t *testing.T) {
	eng := newEngine()

	if _, err := applyOperation(eng, Operation{Type: OpSetMaterial, ComponentID: "body", MaterialID: "nope"}); err == nil {
		t.Fatal("expected error for unknown material")
	}
	if _, err := applyOperation(eng, Operation{Type: "design.teleport"}); err == nil {
		t.Fatal("expected error for unknown op type")
	}
	if _, err := applyOperation(eng, Operation{Type: OpAddLayer}); err == nil {
		t.Fatal("expected error for add without request")
	}
	if eng.Version() != 0 || eng.CanUndo() {
		t.Fatal("failed ops touched the design")
	}
}

func TestApplyOperationAddLayerReturnsID(t *testing.T) {
	eng := newEngine()

	req := placement.Request{U: 0.5, V: 0.5, Scale: 1}
	res, err := applyOperation(eng, Operation{
		Type:    OpAddLayer,
		Kind:    string(design.KindPrint),
		Print:   &design.PrintContent{URL: "/assets/a.png"},
		ZoneID:  "chest",
		Request: &req,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.changed || res.layerID == "" {
		t.Fatalf("result=%+v; want changed with a layer ID", res)
	}

	// the returned ID addresses the created layer in follow-up ops
	visible := false
	res, err = applyOperation(eng, Operation{Type: OpLayerVisibility, LayerID: res.layerID, Visible: &visible})
	if err != nil {
		t.Fatalf("visibility: %v", err)
	}
	if !res.changed {
		t.Fatal("visibility change reported unchanged")
	}
}

func TestApplyOperationTextLayerRequiresContent(t *testing.T) {
	eng := newEngine()
	req := placement.Request{U: 0.5, V: 0.5, Scale: 1}

	if _, err := applyOperation(eng, Operation{Type: OpAddLayer, Kind: string(design.KindText), ZoneID: "chest", Request: &req}); err == nil {
		t.Fatal("expected error for text layer without content")
	}
	if _, err := applyOperation(eng, Operation{Type: OpAddLayer, Kind: "sticker", ZoneID: "chest", Request: &req}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestApplyOperationUndoRedo(t *testing.T) {
	eng := newEngine()

	// undo on an empty history acks as a successful no-op
	res, err := applyOperation(eng, Operation{Type: OpUndo})
	if err != nil {
		t.Fatalf("empty undo: %v", err)
	}
	if res.changed {
		t.Fatal("empty undo reported changed")
	}

	if _, err := applyOperation(eng, Operation{Type: OpSetMaterial, ComponentID: "hood", MaterialID: "cotton-01"}); err != nil {
		t.Fatalf("material: %v", err)
	}

	res, err = applyOperation(eng, Operation{Type: OpUndo})
	if err != nil || !res.changed {
		t.Fatalf("undo=(%+v,%v); want changed", res, err)
	}
	res, err = applyOperation(eng, Operation{Type: OpRedo})
	if err != nil || !res.changed {
		t.Fatalf("redo=(%+v,%v); want changed", res, err)
	}
	if got := eng.State().Materials["hood"]; got != "cotton-01" {
		t.Fatalf("material after redo=%q; want cotton-01", got)
	}
}

func TestApplyOperationRemoveAbsentLayer(t *testing.T) {
	eng := newEngine()

	res, err := applyOperation(eng, Operation{Type: OpLayerRemove, LayerID: "layer_missing"})
	if err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if res.changed {
		t.Fatal("removing an absent layer reported changed")
	}
}
