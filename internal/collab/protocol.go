package collab

import (
	"encoding/json"

	"github.com/inamate/vecpad/internal/geom"
)

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// PresencePayload carries a collaborator's cursor in model coordinates, so
// peers can project it through their own view.
type PresencePayload struct {
	Cursor      *geom.Point `json:"cursor,omitempty"`
	Tool        string      `json:"tool,omitempty"`
	Selected    *int        `json:"selected,omitempty"`
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

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	ServerSeq int64  `json:"serverSeq"`
}

// DocSyncPayload carries the whole drawing in its binary file format.
type DocSyncPayload struct {
	Document  []byte `json:"document"`
	ServerSeq int64  `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// --- Operation Types ---

const (
	OpShapeCommit   = "shape.commit"
	OpShapeDelete   = "shape.delete"
	OpHistoryUndo   = "history.undo"
	OpHistoryRedo   = "history.redo"
	OpDocumentClear = "document.clear"
)

// Operation is a document mutation. Shape holds one framed shape (tag and
// payload) for shape.commit and travels as base64 in JSON. Index names the
// shape removed by shape.delete.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	Shape     []byte `json:"shape,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}
