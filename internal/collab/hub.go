package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/typeid"
)

// DocLoader fetches the stored drawing when a room opens.
type DocLoader func(ctx context.Context, drawingID string) (*document.Document, error)

// DocSaver persists a room's drawing.
type DocSaver func(ctx context.Context, drawingID string, doc *document.Document) error

const saveTimeout = 10 * time.Second

// ErrRoomOpen is returned by Exclusive while a live session holds the
// drawing.
var ErrRoomOpen = errors.New("drawing is open in a live session")

type Room struct {
	drawingID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState
}

func NewRoom(drawingID string, doc *document.Document) *Room {
	return &Room{
		drawingID: drawingID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     NewDocumentState(doc),
	}
}

type inbound struct {
	sender *Client
	msg    *Message
}

type exclusiveCall struct {
	drawingID string
	fn        func() error
	result    chan error
}

// Hub owns every room. All room state is touched only by the Run
// goroutine, which applies operations in arrival order.
type Hub struct {
	rooms      map[string]*Room // drawingID -> room
	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
	calls      chan exclusiveCall
	stop       chan struct{}
	done       chan struct{}
	load       DocLoader
	save       DocSaver
}

func NewHub(load DocLoader, save DocSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound, 256),
		calls:      make(chan exclusiveCall),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		load:       load,
		save:       save,
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.incoming:
			h.handleMessage(in.sender, in.msg)
		case call := <-h.calls:
			if _, open := h.rooms[call.drawingID]; open {
				call.result <- ErrRoomOpen
			} else {
				call.result <- call.fn()
			}
		case <-h.stop:
			h.shutdown()
			return
		}
	}
}

// Stop saves every dirty room, disconnects all clients and waits for Run
// to return.
func (h *Hub) Stop() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Submit queues a message from client for the hub goroutine.
func (h *Hub) Submit(client *Client, msg *Message) {
	select {
	case h.incoming <- inbound{sender: client, msg: msg}:
	case <-h.done:
	}
}

// Exclusive runs fn on the hub goroutine if no room is open for drawingID,
// so an outside write to the stored drawing can never interleave with a
// room loading or saving it. Once the hub has stopped fn runs directly.
func (h *Hub) Exclusive(ctx context.Context, drawingID string, fn func() error) error {
	call := exclusiveCall{drawingID: drawingID, fn: fn, result: make(chan error, 1)}
	select {
	case h.calls <- call:
	case <-h.done:
		return fn()
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-call.result
}

func (h *Hub) addClient(client *Client) {
	room, ok := h.rooms[client.DrawingID]
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		doc, err := h.load(ctx, client.DrawingID)
		cancel()
		if err != nil {
			slog.Error("load drawing for room", "drawing", client.DrawingID, "error", err)
			client.Send(errorMessage("failed to load drawing"))
			client.closeSend()
			return
		}
		room = NewRoom(client.DrawingID, doc)
		h.rooms[client.DrawingID] = room
	}
	room.clients[client.ClientID] = client

	welcome, _ := json.Marshal(WelcomePayload{ClientID: client.ClientID, ServerSeq: room.state.ServerSeq()})
	client.Send(&Message{Type: TypeWelcome, DrawingID: client.DrawingID, Payload: welcome})

	if data, seq, err := room.state.Snapshot(); err != nil {
		slog.Error("encode drawing for sync", "drawing", client.DrawingID, "error", err)
	} else {
		sync, _ := json.Marshal(DocSyncPayload{Document: data, ServerSeq: seq})
		client.Send(&Message{Type: TypeDocSync, DrawingID: client.DrawingID, Seq: seq, Payload: sync})
	}

	// Send current presence state to new client
	stateMsg := room.presence.StateMessage()
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(room, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "drawing", client.DrawingID, "clients", len(room.clients))
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.DrawingID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)

	if len(room.clients) == 0 {
		h.saveRoom(room)
		delete(h.rooms, client.DrawingID)
	}

	// Broadcast leave to remaining clients
	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.broadcastToRoom(room, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) saveRoom(room *Room) {
	if !room.state.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.save(ctx, room.drawingID, room.state.Document()); err != nil {
		slog.Error("save drawing", "drawing", room.drawingID, "error", err)
		return
	}
	room.state.MarkClean()
	slog.Info("saved drawing", "drawing", room.drawingID, "seq", room.state.ServerSeq())
}

func (h *Hub) shutdown() {
	for id, room := range h.rooms {
		h.saveRoom(room)
		for _, c := range room.clients {
			c.closeSend()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeError:
		// Raised by the read pump about the sender's own input.
		if room, ok := h.rooms[sender.DrawingID]; ok && room.clients[sender.ClientID] == sender {
			sender.Send(msg)
		}
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	room, ok := h.rooms[sender.DrawingID]
	if !ok {
		return
	}

	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		sender.Send(nackMessage("", "invalid operation payload"))
		return
	}
	op := submit.Operation
	if op.ID == "" {
		op.ID = typeid.NewOpID()
	}

	seq, err := room.state.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "user", sender.UserID, "error", err)
		sender.Send(nackMessage(op.ID, err.Error()))
		return
	}

	ack, _ := json.Marshal(OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: time.Now().UnixMilli(),
	})
	sender.Send(&Message{Type: TypeOpAck, Seq: seq, Payload: ack})

	out, _ := json.Marshal(OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	h.broadcastToRoom(room, &Message{Type: TypeOpBroadcast, UserID: sender.UserID, Seq: seq, Payload: out}, sender.ClientID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.rooms[sender.DrawingID]
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.broadcastToRoom(room, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func nackMessage(opID, reason string) *Message {
	payload, _ := json.Marshal(OperationNackPayload{OperationID: opID, Reason: reason})
	return &Message{Type: TypeOpNack, Payload: payload}
}

func errorMessage(text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Message: text})
	return &Message{Type: TypeError, Payload: payload}
}
