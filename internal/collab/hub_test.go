package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/geom"
	"github.com/inamate/vecpad/internal/shape"
)

type saved struct {
	id  string
	doc *document.Document
}

func newTestHub(t *testing.T) (*Hub, chan saved) {
	t.Helper()
	saves := make(chan saved, 8)
	load := func(_ context.Context, id string) (*document.Document, error) {
		if id == "drw_missing" {
			return nil, errors.New("no such drawing")
		}
		return document.NewSampleDocument(), nil
	}
	save := func(_ context.Context, id string, doc *document.Document) error {
		saves <- saved{id: id, doc: doc}
		return nil
	}
	h := NewHub(load, save)
	go h.Run()
	return h, saves
}

func recv(t *testing.T, c *Client, wantType string) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatalf("%s: send channel closed, want %s", c.ClientID, wantType)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != wantType {
			t.Fatalf("%s: got %s, want %s (%s)", c.ClientID, msg.Type, wantType, msg.Payload)
		}
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: timed out waiting for %s", c.ClientID, wantType)
	}
	return nil
}

func submit(t *testing.T, h *Hub, c *Client, op Operation) {
	t.Helper()
	payload, err := json.Marshal(OperationSubmitPayload{Operation: op})
	if err != nil {
		t.Fatal(err)
	}
	h.Submit(c, &Message{Type: TypeOpSubmit, Payload: payload})
}

func encodedLine(t *testing.T) []byte {
	t.Helper()
	l := shape.NewLine(geom.Pt(0, 20))
	l.Update(geom.Pt(10, 20))
	data, err := codec.EncodeShape(l)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHubSessionFlow(t *testing.T) {
	h, saves := newTestHub(t)
	defer h.Stop()

	a := NewClient(h, nil, "user_a", "Ada", "drw_a", "ca")
	h.Register(a)
	recv(t, a, TypeWelcome)
	msg := recv(t, a, TypeDocSync)
	var sync DocSyncPayload
	if err := json.Unmarshal(msg.Payload, &sync); err != nil {
		t.Fatal(err)
	}
	doc, err := codec.Load(bytes.NewReader(sync.Document))
	if err != nil || doc.Len() != 3 {
		t.Fatalf("synced doc = %v, %v", doc, err)
	}

	b := NewClient(h, nil, "user_b", "Bob", "drw_a", "cb")
	h.Register(b)
	recv(t, b, TypeWelcome)
	recv(t, b, TypeDocSync)
	recv(t, a, TypePresenceJoin)

	steps := []struct {
		op      Operation
		wantSeq int64
		nack    string
	}{
		{Operation{ID: "op1", Type: OpShapeCommit, Shape: encodedLine(t)}, 1, ""},
		{Operation{ID: "op2", Type: OpHistoryUndo}, 2, ""},
		{Operation{ID: "op3", Type: OpHistoryRedo}, 3, ""},
		{Operation{ID: "op4", Type: OpHistoryRedo}, 0, ErrNothingToRedo.Error()},
		{Operation{ID: "op5", Type: OpShapeCommit, Shape: []byte{42, 0, 0, 0}}, 0, "invalid shape"},
		{Operation{ID: "op6", Type: "shape.rotate"}, 0, "unknown operation type"},
	}
	for _, st := range steps {
		submit(t, h, a, st.op)
		if st.nack != "" {
			msg := recv(t, a, TypeOpNack)
			var nack OperationNackPayload
			json.Unmarshal(msg.Payload, &nack)
			if nack.OperationID != st.op.ID || !bytes.Contains([]byte(nack.Reason), []byte(st.nack)) {
				t.Errorf("%s: nack = %+v, want reason %q", st.op.ID, nack, st.nack)
			}
			continue
		}
		msg := recv(t, a, TypeOpAck)
		var ack OperationAckPayload
		json.Unmarshal(msg.Payload, &ack)
		if ack.OperationID != st.op.ID || ack.ServerSeq != st.wantSeq {
			t.Errorf("%s: ack = %+v, want seq %d", st.op.ID, ack, st.wantSeq)
		}
		msg = recv(t, b, TypeOpBroadcast)
		var bc OperationBroadcastPayload
		json.Unmarshal(msg.Payload, &bc)
		if bc.Operation.Type != st.op.Type || bc.UserID != "user_a" || bc.ServerSeq != st.wantSeq {
			t.Errorf("%s: broadcast = %+v", st.op.ID, bc)
		}
	}

	cursor := geom.Pt(3, 4)
	payload, _ := json.Marshal(PresencePayload{Cursor: &cursor})
	h.Submit(b, &Message{Type: TypePresenceUpdate, Payload: payload})
	msg = recv(t, a, TypePresenceUpdate)
	var pres PresencePayload
	json.Unmarshal(msg.Payload, &pres)
	if pres.DisplayName != "Bob" || pres.Cursor == nil || *pres.Cursor != cursor {
		t.Errorf("presence = %+v", pres)
	}

	h.Unregister(b)
	recv(t, a, TypePresenceLeave)
	h.Unregister(a)

	select {
	case s := <-saves:
		if s.id != "drw_a" || s.doc.Len() != 4 {
			t.Errorf("saved %s with %d shapes, want drw_a with 4", s.id, s.doc.Len())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("room was not saved when the last client left")
	}
}

func TestHubStopSavesDirtyRooms(t *testing.T) {
	h, saves := newTestHub(t)

	a := NewClient(h, nil, "user_a", "Ada", "drw_a", "ca")
	h.Register(a)
	recv(t, a, TypeWelcome)
	recv(t, a, TypeDocSync)

	submit(t, h, a, Operation{ID: "op1", Type: OpDocumentClear})
	recv(t, a, TypeOpAck)

	h.Stop()
	select {
	case s := <-saves:
		if s.doc.Len() != 0 {
			t.Errorf("saved %d shapes, want 0 after clear", s.doc.Len())
		}
	default:
		t.Fatal("Stop did not save the dirty room")
	}
	if _, ok := <-a.send; ok {
		t.Error("client send channel still open after Stop")
	}
}

func TestHubCleanRoomIsNotSaved(t *testing.T) {
	h, saves := newTestHub(t)

	a := NewClient(h, nil, "user_a", "Ada", "drw_a", "ca")
	h.Register(a)
	recv(t, a, TypeWelcome)
	recv(t, a, TypeDocSync)
	h.Unregister(a)
	h.Stop()

	select {
	case s := <-saves:
		t.Errorf("unexpected save of %s", s.id)
	default:
	}
}

func TestHubLoadFailure(t *testing.T) {
	h, _ := newTestHub(t)
	defer h.Stop()

	c := NewClient(h, nil, "user_a", "Ada", "drw_missing", "ca")
	h.Register(c)
	recv(t, c, TypeError)
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after a failed load")
	}
}

func TestDocumentStateRejectsEmptyShape(t *testing.T) {
	ds := NewDocumentState(document.New())
	data, err := codec.EncodeShape(shape.NewLine(geom.Pt(1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ds.ApplyOperation(Operation{Type: OpShapeCommit, Shape: data}); !errors.Is(err, ErrEmptyShape) {
		t.Errorf("err = %v, want ErrEmptyShape", err)
	}
	if ds.Dirty() || ds.ServerSeq() != 0 {
		t.Error("rejected operation changed the state")
	}
	if _, err := ds.ApplyOperation(Operation{Type: OpHistoryUndo}); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("undo on empty err = %v", err)
	}
}

func TestDocumentStateDeleteShape(t *testing.T) {
	doc := document.NewSampleDocument()
	ds := NewDocumentState(doc)
	n := doc.Len()

	idx := 0
	if _, err := ds.ApplyOperation(Operation{Type: OpShapeDelete, Index: &idx}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ds.Document().Len() != n-1 {
		t.Errorf("len = %d, want %d", ds.Document().Len(), n-1)
	}
	if _, err := ds.ApplyOperation(Operation{Type: OpHistoryUndo}); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if ds.Document().Len() != n || ds.Document().At(0).Kind() != shape.KindRectangle {
		t.Error("undo should restore the deleted shape at index 0")
	}

	bad := 99
	for _, op := range []Operation{{Type: OpShapeDelete}, {Type: OpShapeDelete, Index: &bad}} {
		if _, err := ds.ApplyOperation(op); !errors.Is(err, ErrNoSuchShape) {
			t.Errorf("err = %v, want ErrNoSuchShape", err)
		}
	}
	if ds.ServerSeq() != 2 {
		t.Errorf("ServerSeq = %d, want 2", ds.ServerSeq())
	}
}

func TestExclusiveWaitsForRoomToClose(t *testing.T) {
	h, saves := newTestHub(t)
	defer h.Stop()
	ctx := context.Background()

	a := NewClient(h, nil, "user_a", "Ada", "drw_a", "ca")
	h.Register(a)
	recv(t, a, TypeWelcome)
	recv(t, a, TypeDocSync)
	submit(t, h, a, Operation{ID: "op1", Type: OpShapeCommit, Shape: encodedLine(t)})
	recv(t, a, TypeOpAck)

	ran := 0
	write := func() error { ran++; return nil }
	if err := h.Exclusive(ctx, "drw_a", write); !errors.Is(err, ErrRoomOpen) {
		t.Fatalf("err = %v, want ErrRoomOpen", err)
	}
	if ran != 0 {
		t.Fatal("write ran while the room was open")
	}
	if err := h.Exclusive(ctx, "drw_other", write); err != nil || ran != 1 {
		t.Fatalf("write on a closed drawing: err=%v ran=%d", err, ran)
	}

	// The room saves its edits on close; only then may the write land.
	h.Unregister(a)
	select {
	case s := <-saves:
		if s.id != "drw_a" || s.doc.Len() != 4 {
			t.Errorf("saved %s with %d shapes, want drw_a with 4", s.id, s.doc.Len())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("room was not saved on close")
	}
	if err := h.Exclusive(ctx, "drw_a", write); err != nil || ran != 2 {
		t.Fatalf("write after close: err=%v ran=%d", err, ran)
	}

	h.Stop()
	if err := h.Exclusive(ctx, "drw_a", write); err != nil || ran != 3 {
		t.Errorf("write after stop: err=%v ran=%d", err, ran)
	}
}

func TestHubEchoesReadErrors(t *testing.T) {
	h, _ := newTestHub(t)
	defer h.Stop()

	a := NewClient(h, nil, "user_a", "Ada", "drw_a", "ca")
	h.Register(a)
	recv(t, a, TypeWelcome)
	recv(t, a, TypeDocSync)

	h.Submit(a, errorMessage("invalid message"))
	msg := recv(t, a, TypeError)
	var e ErrorPayload
	if err := json.Unmarshal(msg.Payload, &e); err != nil || e.Message != "invalid message" {
		t.Errorf("error payload = %+v, %v", e, err)
	}
}
