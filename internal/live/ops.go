package live

import (
	"errors"
	"fmt"

	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/engine"
)

type opResult struct {
	changed bool
	layerID string // set for layer.add
}

// applyOperation routes a wire operation onto the engine. Errors are
// validation failures and leave the design untouched; a nil error with
// changed=false is a successful no-op (same selection re-selected, undo on
// an empty stack) that must not advance the server sequence.
func applyOperation(eng *engine.Engine, op Operation) (opResult, error) {
	versionBefore := eng.Version()

	switch op.Type {
	case OpSetMode:
		if op.Mode == "" {
			return opResult{}, errors.New("mode is required")
		}
		eng.SetMode(op.Mode)

	case OpSelectComponent:
		if err := eng.SelectComponent(op.ComponentID); err != nil {
			return opResult{}, err
		}

	case OpSetMaterial:
		if err := eng.SetMaterial(op.ComponentID, op.MaterialID); err != nil {
			return opResult{}, err
		}

	case OpSetColor:
		if err := eng.SetColor(op.ComponentID, op.Color); err != nil {
			return opResult{}, err
		}

	case OpAddLayer:
		if op.Request == nil {
			return opResult{}, errors.New("placement request is required")
		}
		layer, err := addLayer(eng, op)
		if err != nil {
			return opResult{}, err
		}
		return opResult{changed: true, layerID: layer.ID}, nil

	case OpLayerPlacement:
		if op.Request == nil {
			return opResult{}, errors.New("placement request is required")
		}
		if err := eng.UpdateLayerPlacement(op.LayerID, *op.Request); err != nil {
			return opResult{}, err
		}

	case OpLayerZone:
		if err := eng.MoveLayerToZone(op.LayerID, op.ZoneID); err != nil {
			return opResult{}, err
		}

	case OpLayerReorder:
		if op.Index == nil {
			return opResult{}, errors.New("index is required")
		}
		if err := eng.ReorderLayer(op.LayerID, *op.Index); err != nil {
			return opResult{}, err
		}

	case OpLayerVisibility:
		if op.Visible == nil {
			return opResult{}, errors.New("visible is required")
		}
		if err := eng.SetLayerVisibility(op.LayerID, *op.Visible); err != nil {
			return opResult{}, err
		}

	case OpLayerRemove:
		eng.RemoveLayer(op.LayerID)

	case OpUndo:
		return opResult{changed: eng.Undo()}, nil

	case OpRedo:
		return opResult{changed: eng.Redo()}, nil

	default:
		return opResult{}, fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return opResult{changed: eng.Version() != versionBefore}, nil
}

func addLayer(eng *engine.Engine, op Operation) (design.Layer, error) {
	req := *op.Request
	switch design.LayerKind(op.Kind) {
	case design.KindPrint:
		if op.Print == nil {
			return design.Layer{}, errors.New("print content is required")
		}
		return eng.AddPrintLayer(op.Print.URL, op.Print.AssetID, req, op.ZoneID)
	case design.KindText:
		if op.Text == nil {
			return design.Layer{}, errors.New("text content is required")
		}
		return eng.AddTextLayer(*op.Text, req, op.ZoneID)
	default:
		return design.Layer{}, fmt.Errorf("unknown layer kind: %s", op.Kind)
	}
}
