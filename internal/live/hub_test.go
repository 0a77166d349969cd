package live

import (
	"encoding/json"
	"testing"

	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/engine"
)

func newTestHub(saved *[]design.ExportDocument) *Hub {
	loader := func(sessionID string) (*engine.Engine, error) {
		return engine.NewEngine(catalog.Default(), 10), nil
	}
	saver := func(sessionID string, doc design.ExportDocument) error {
		if saved != nil {
			*saved = append(*saved, doc)
		}
		return nil
	}
	return NewHub(loader, saver)
}

// drain empties a client's queued frames without blocking.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case data := <-c.send:
			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("unmarshal frame: %v", err)
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func submit(t *testing.T, h *Hub, sender *Client, op Operation) {
	t.Helper()
	payload, err := json.Marshal(OperationSubmitPayload{Operation: op})
	if err != nil {
		t.Fatalf("marshal op: %v", err)
	}
	h.handleMessage(sender, &Message{
		Type:      TypeOpSubmit,
		SessionID: sender.SessionID,
		Payload:   payload,
	})
}

func TestHubOpSubmitAckBroadcastSyncOrder(t *testing.T) {
	h := newTestHub(nil)
	alice := NewClient(h, nil, "user_a", "Alice", "sess_x", "c1")
	bob := NewClient(h, nil, "user_b", "Bob", "sess_x", "c2")
	h.addClient(alice)
	h.addClient(bob)
	drain(t, alice)
	drain(t, bob)

	submit(t, h, alice, Operation{ID: "op1", Type: OpSetMaterial, ComponentID: "body", MaterialID: "fleece-01"})

	// submitter sees ack then the committed snapshot, in that order
	got := drain(t, alice)
	if len(got) != 2 || got[0].Type != TypeOpAck || got[1].Type != TypeDesignSync {
		t.Fatalf("alice frames=%v; want [op.ack design.sync]", frameTypes(got))
	}
	var ack OperationAckPayload
	if err := json.Unmarshal(got[0].Payload, &ack); err != nil {
		t.Fatalf("parse ack: %v", err)
	}
	if !ack.Applied || ack.ServerSeq != 1 || ack.OperationID != "op1" {
		t.Fatalf("ack=%+v; want applied seq 1", ack)
	}

	// peers see the op broadcast followed by the same snapshot
	got = drain(t, bob)
	if len(got) != 2 || got[0].Type != TypeOpBroadcast || got[1].Type != TypeDesignSync {
		t.Fatalf("bob frames=%v; want [op.broadcast design.sync]", frameTypes(got))
	}
	var syncPayload DesignSyncPayload
	if err := json.Unmarshal(got[1].Payload, &syncPayload); err != nil {
		t.Fatalf("parse sync: %v", err)
	}
	if syncPayload.ServerSeq != 1 || syncPayload.State.Materials["body"] != "fleece-01" {
		t.Fatalf("sync=%+v; want seq 1 with the committed material", syncPayload)
	}

	// a second commit's sync must arrive after the first, carrying seq 2
	submit(t, h, alice, Operation{ID: "op2", Type: OpSetColor, ComponentID: "hood", Color: "#123456"})
	got = drain(t, bob)
	if len(got) != 2 || got[1].Type != TypeDesignSync {
		t.Fatalf("bob frames=%v; want broadcast+sync", frameTypes(got))
	}
	if err := json.Unmarshal(got[1].Payload, &syncPayload); err != nil {
		t.Fatalf("parse sync: %v", err)
	}
	if syncPayload.ServerSeq != 2 {
		t.Fatalf("second sync seq=%d; want 2", syncPayload.ServerSeq)
	}
}

func TestHubOpSubmitNack(t *testing.T) {
	h := newTestHub(nil)
	alice := NewClient(h, nil, "user_a", "Alice", "sess_x", "c1")
	bob := NewClient(h, nil, "user_b", "Bob", "sess_x", "c2")
	h.addClient(alice)
	h.addClient(bob)
	drain(t, alice)
	drain(t, bob)

	submit(t, h, alice, Operation{ID: "op1", Type: OpSetMaterial, ComponentID: "body", MaterialID: "no-such"})

	got := drain(t, alice)
	if len(got) != 1 || got[0].Type != TypeOpNack {
		t.Fatalf("alice frames=%v; want [op.nack]", frameTypes(got))
	}
	var nack OperationNackPayload
	if err := json.Unmarshal(got[0].Payload, &nack); err != nil {
		t.Fatalf("parse nack: %v", err)
	}
	if nack.OperationID != "op1" || nack.Reason == "" {
		t.Fatalf("nack=%+v; want op1 with a reason", nack)
	}

	// rejected ops reach nobody else and advance nothing
	if got := drain(t, bob); len(got) != 0 {
		t.Fatalf("bob frames=%v; want none", frameTypes(got))
	}
}

func TestHubNoOpAcksWithoutBroadcast(t *testing.T) {
	h := newTestHub(nil)
	alice := NewClient(h, nil, "user_a", "Alice", "sess_x", "c1")
	bob := NewClient(h, nil, "user_b", "Bob", "sess_x", "c2")
	h.addClient(alice)
	h.addClient(bob)

	op := Operation{ID: "op1", Type: OpSetMaterial, ComponentID: "body", MaterialID: "fleece-01"}
	submit(t, h, alice, op)
	drain(t, alice)
	drain(t, bob)

	// the identical op again: acked as not-applied, peers hear nothing
	op.ID = "op2"
	submit(t, h, alice, op)

	got := drain(t, alice)
	if len(got) != 1 || got[0].Type != TypeOpAck {
		t.Fatalf("alice frames=%v; want [op.ack]", frameTypes(got))
	}
	var ack OperationAckPayload
	if err := json.Unmarshal(got[0].Payload, &ack); err != nil {
		t.Fatalf("parse ack: %v", err)
	}
	if ack.Applied || ack.ServerSeq != 1 {
		t.Fatalf("ack=%+v; want not-applied at seq 1", ack)
	}
	if got := drain(t, bob); len(got) != 0 {
		t.Fatalf("bob frames=%v; want none", frameTypes(got))
	}
}

func TestHubSavesDirtyRoomWhenEmpty(t *testing.T) {
	var saved []design.ExportDocument
	h := newTestHub(&saved)
	alice := NewClient(h, nil, "user_a", "Alice", "sess_x", "c1")
	h.addClient(alice)
	drain(t, alice)

	submit(t, h, alice, Operation{ID: "op1", Type: OpSetMaterial, ComponentID: "body", MaterialID: "fleece-01"})
	h.removeClient(alice)

	if len(saved) != 1 {
		t.Fatalf("saves=%d; want 1", len(saved))
	}
	if saved[0].Materials["body"] != "fleece-01" {
		t.Fatalf("saved doc=%+v; want the committed material", saved[0])
	}
}

func frameTypes(msgs []Message) []string {
	types := make([]string, len(msgs))
	for i, m := range msgs {
		types[i] = m.Type
	}
	return types
}
