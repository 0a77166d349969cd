package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// PresenceManager tracks where each participant's cursor last landed on the
// garment surface. Hits are raycaster output (component + normalized u,v), so
// a follower can project every cursor onto its own viewport regardless of
// camera angle.
type PresenceManager struct {
	mu      sync.RWMutex
	cursors map[string]*SurfaceHit // userID -> last surface hit, nil = off-garment
	names   map[string]string      // userID -> display name
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		cursors: make(map[string]*SurfaceHit),
		names:   make(map[string]string),
	}
}

// Track records a participant's latest cursor hit. A nil hit means the
// pointer left the garment surface but the participant is still present.
func (pm *PresenceManager) Track(userID, displayName string, hit *SurfaceHit) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.names[userID] = displayName
	if hit != nil {
		h := *hit
		pm.cursors[userID] = &h
	} else {
		pm.cursors[userID] = nil
	}
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.cursors, userID)
	delete(pm.names, userID)
}

// Snapshot returns the tracked participants as wire payloads.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.names))
	for userID, name := range pm.names {
		p := &PresencePayload{DisplayName: name}
		if hit := pm.cursors[userID]; hit != nil {
			h := *hit
			p.Cursor = &h
		}
		result[userID] = p
	}
	return result
}

// StateMessage builds the presence.state frame sent to a joining client, or
// nil when nobody is tracked yet.
func (pm *PresenceManager) StateMessage() *Message {
	all := pm.Snapshot()
	if len(all) == 0 {
		return nil
	}
	payload, err := json.Marshal(PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
