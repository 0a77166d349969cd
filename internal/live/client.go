package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// Incoming frames are design ops and cursor updates; prints travel by
	// URL, never inline, so anything larger than this is malformed.
	maxFrameSize = 32 * 1024

	sendBuffer = 256
)

// Client is one websocket participant in a configurator session.
type Client struct {
	SessionID   string
	ClientID    string
	UserID      string
	DisplayName string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, sessionID, clientID string) *Client {
	return &Client{
		SessionID:   sessionID,
		ClientID:    clientID,
		UserID:      userID,
		DisplayName: displayName,
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "user", c.UserID, "session", c.SessionID)
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame parses one inbound frame and hands it to the hub with the
// sender's identity stamped on — clients never get to speak for each other.
func (c *Client) handleFrame(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid frame", "error", err, "user", c.UserID)
		c.SendError("invalid frame")
		return
	}
	if msg.Type == "" {
		c.SendError("missing frame type")
		return
	}

	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.SessionID = c.SessionID

	c.hub.handleMessage(c, &msg)
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID, "session", c.SessionID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues a frame for the write pump. When the buffer is full, presence
// frames are dropped silently — a missed cursor position is superseded by the
// next one — while dropped design frames are logged, since the client will
// render stale state until the next design.sync.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal frame", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		switch msg.Type {
		case TypePresenceUpdate, TypePresenceState, TypePresenceJoin, TypePresenceLeave:
		default:
			slog.Warn("send buffer full, dropping frame",
				"type", msg.Type, "user", c.UserID, "session", c.SessionID)
		}
	}
}

// SendError pushes an error frame to the client.
func (c *Client) SendError(reason string) {
	payload, _ := json.Marshal(map[string]string{"reason": reason})
	c.Send(&Message{Type: TypeError, Payload: payload})
}
