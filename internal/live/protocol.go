package live

import (
	"encoding/json"

	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/placement"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Design sync: full committed snapshot pushed after every applied op.
	TypeDesignSync = "design.sync"

	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"

	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

// Operation type identifiers map 1:1 onto store operations.
const (
	OpSetMode         = "design.mode"
	OpSelectComponent = "design.select"
	OpSetMaterial     = "design.material"
	OpSetColor        = "design.color"
	OpAddLayer        = "layer.add"
	OpLayerPlacement  = "layer.placement"
	OpLayerZone       = "layer.zone"
	OpLayerReorder    = "layer.reorder"
	OpLayerVisibility = "layer.visibility"
	OpLayerRemove     = "layer.remove"
	OpUndo            = "history.undo"
	OpRedo            = "history.redo"
)

// Operation is one design mutation submitted over the wire. Only the fields
// relevant to Type are set.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// design.mode / design.select / design.material / design.color
	Mode        string `json:"mode,omitempty"`
	ComponentID string `json:"componentId,omitempty"`
	MaterialID  string `json:"materialId,omitempty"`
	Color       string `json:"color,omitempty"`

	// layer.*
	LayerID string               `json:"layerId,omitempty"`
	ZoneID  string               `json:"zoneId,omitempty"`
	Kind    string               `json:"kind,omitempty"`
	Print   *design.PrintContent `json:"print,omitempty"`
	Text    *design.TextContent  `json:"text,omitempty"`
	Request *placement.Request   `json:"request,omitempty"`
	Index   *int                 `json:"index,omitempty"`
	Visible *bool                `json:"visible,omitempty"`
}

type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
	// For layer.add: the ID assigned to the created layer.
	LayerID string `json:"layerId,omitempty"`
	// For history.undo / history.redo: false when the stack was empty and
	// the op was a no-op.
	Applied bool `json:"applied"`
}

type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

// DesignSyncPayload carries the committed snapshot plus undo/redo
// availability so clients can enable their history controls.
type DesignSyncPayload struct {
	State     design.State `json:"state"`
	ServerSeq int64        `json:"serverSeq"`
	CanUndo   bool         `json:"canUndo"`
	CanRedo   bool         `json:"canRedo"`
}

// SurfaceHit is a viewer hit-test result: a component and a point on its
// normalized surface, as produced by the 3D raycaster.
type SurfaceHit struct {
	ComponentID string  `json:"componentId"`
	U           float64 `json:"u"`
	V           float64 `json:"v"`
}

type PresencePayload struct {
	Cursor      *SurfaceHit `json:"cursor,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}
