package domain

import (
	"encoding/json"
	"time"
)

// OperationType identifies what a queued mutation does when replayed.
type OperationType string

const (
	OperationWorkspaceSave OperationType = "workspace-save"
)

// PendingOperation is a mutation queued while disconnected, replayed in
// FIFO order on reconnect.
type PendingOperation struct {
	ID       string          `json:"id"`
	Type     OperationType   `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queued_at"`
}
