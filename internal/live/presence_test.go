package live

import (
	"encoding/json"
	"testing"
)

func TestPresenceTrackAndSnapshot(t *testing.T) {
	pm := NewPresenceManager()

	// no participants yet: joining clients get no presence.state frame
	if msg := pm.StateMessage(); msg != nil {
		t.Fatalf("empty manager produced a state frame: %+v", msg)
	}

	hit := SurfaceHit{ComponentID: "body", U: 0.5, V: 0.6}
	pm.Track("user_a", "Alice", &hit)
	pm.Track("user_b", "Bob", nil) // present, pointer off the garment

	snap := pm.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot=%d entries; want 2", len(snap))
	}
	if snap["user_a"].Cursor == nil || snap["user_a"].Cursor.ComponentID != "body" {
		t.Fatalf("alice presence=%+v; want a body cursor", snap["user_a"])
	}
	if snap["user_b"].Cursor != nil || snap["user_b"].DisplayName != "Bob" {
		t.Fatalf("bob presence=%+v; want named, no cursor", snap["user_b"])
	}

	// snapshots are isolated from the tracked state
	snap["user_a"].Cursor.U = 99
	if again := pm.Snapshot(); again["user_a"].Cursor.U != 0.5 {
		t.Fatal("snapshot aliased the tracked cursor")
	}

	// a later hit replaces the earlier one
	pm.Track("user_a", "Alice", &SurfaceHit{ComponentID: "hood", U: 0.1, V: 0.2})
	if got := pm.Snapshot()["user_a"].Cursor.ComponentID; got != "hood" {
		t.Fatalf("cursor component=%q; want hood", got)
	}

	pm.Remove("user_a")
	msg := pm.StateMessage()
	if msg == nil || msg.Type != TypePresenceState {
		t.Fatalf("state message=%+v; want presence.state", msg)
	}
	var payload PresenceStatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if len(payload.Presences) != 1 || payload.Presences["user_b"] == nil {
		t.Fatalf("presences=%+v; want bob only", payload.Presences)
	}
}
