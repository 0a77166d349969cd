package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/engine"
)

// EngineLoader builds the engine for a session from its persisted snapshot.
type EngineLoader func(sessionID string) (*engine.Engine, error)

// DesignSaver persists a session's current design document.
type DesignSaver func(sessionID string, doc design.ExportDocument) error

// Room holds the live state for one session: its clients and the
// single-writer engine. The room mutex serializes op application — the
// engine itself carries no locks, so every mutation must come through here.
type Room struct {
	sessionID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager

	mu        sync.Mutex
	engine    *engine.Engine
	serverSeq int64
	dirty     bool
}

func newRoom(sessionID string, eng *engine.Engine) *Room {
	return &Room{
		sessionID: sessionID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		engine:    eng,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	loader EngineLoader
	saver  DesignSaver
}

func NewHub(loader EngineLoader, saver DesignSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		loader:     loader,
		saver:      saver,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop shuts the hub down and saves every dirty room.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	for _, room := range rooms {
		h.saveRoom(room)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		eng, err := h.loader(client.SessionID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load session design", "error", err, "session", client.SessionID)
			client.SendError("failed to load design")
			close(client.send)
			return
		}
		room = newRoom(client.SessionID, eng)
		h.rooms[client.SessionID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Welcome with the current design so the client can render immediately
	client.Send(&Message{Type: TypeWelcome, ClientID: client.ClientID})
	client.Send(room.syncMessage())

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.SessionID, &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "session", client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.SessionID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	leavePayload, _ := json.Marshal(PresenceLeavePayload{UserID: client.UserID})
	h.broadcastToRoom(client.SessionID, &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}, "")

	slog.Info("client left", "user", client.UserID, "session", client.SessionID)
}

func (h *Hub) saveRoom(room *Room) {
	room.mu.Lock()
	dirty := room.dirty
	doc := room.engine.Export()
	room.dirty = false
	room.mu.Unlock()

	if !dirty {
		return
	}
	if err := h.saver(room.sessionID, doc); err != nil {
		slog.Error("save session design", "error", err, "session", room.sessionID)
		return
	}
	slog.Info("design saved", "session", room.sessionID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var payload OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sender.SendError("invalid op payload")
		return
	}
	op := payload.Operation

	h.mu.RLock()
	room, ok := h.rooms[sender.SessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	// Apply, ack and broadcast under the room lock: two racing submits must
	// deliver their design.sync frames in commit order, or clients briefly
	// render a stale snapshot.
	room.mu.Lock()
	defer room.mu.Unlock()

	result, err := applyOperation(room.engine, op)
	if err != nil {
		nackPayload, _ := json.Marshal(OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		})
		sender.Send(&Message{Type: TypeOpNack, Payload: nackPayload})
		return
	}
	if result.changed {
		room.serverSeq++
		room.dirty = true
	}

	ackPayload, _ := json.Marshal(OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       room.serverSeq,
		ServerTimestamp: time.Now().UnixMilli(),
		LayerID:         result.layerID,
		Applied:         result.changed,
	})
	sender.Send(&Message{Type: TypeOpAck, Payload: ackPayload})

	if !result.changed {
		return
	}

	broadcastPayload, _ := json.Marshal(OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: room.serverSeq,
	})
	h.broadcastToRoom(sender.SessionID, &Message{
		Type:    TypeOpBroadcast,
		UserID:  sender.UserID,
		Payload: broadcastPayload,
	}, sender.ClientID)

	// Everyone, submitter included, re-renders from the committed snapshot
	h.broadcastToRoom(sender.SessionID, room.syncMessageLocked(), "")
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.SessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Track(sender.UserID, sender.DisplayName, presence.Cursor)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.SessionID, &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}, sender.ClientID)
}

func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func (r *Room) syncMessage() *Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.syncMessageLocked()
}

func (r *Room) syncMessageLocked() *Message {
	payload, _ := json.Marshal(DesignSyncPayload{
		State:     r.engine.State(),
		ServerSeq: r.serverSeq,
		CanUndo:   r.engine.CanUndo(),
		CanRedo:   r.engine.CanRedo(),
	})
	return &Message{Type: TypeDesignSync, Payload: payload}
}
