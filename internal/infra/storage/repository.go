package storage

import (
	"context"
	"errors"

	"github.com/vietddude/toolguard/internal/core/domain"
)

var (
	// ErrCheckpointNotFound is returned when a checkpoint doesn't exist
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrWorkspaceNotFound is returned when a workspace doesn't exist
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// CheckpointRepository handles checkpoint storage operations
type CheckpointRepository interface {
	// Save stores a checkpoint
	Save(ctx context.Context, cp *domain.Checkpoint) error

	// Get retrieves a checkpoint by id
	Get(ctx context.Context, id string) (*domain.Checkpoint, error)

	// ListByWorkspace retrieves all checkpoints for a workspace, oldest first
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Checkpoint, error)

	// Delete removes a checkpoint
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes checkpoints created before the cutoff (retention)
	DeleteOlderThan(ctx context.Context, workspaceID string, cutoffUnix int64) (int, error)

	// Count returns the number of checkpoints for a workspace
	Count(ctx context.Context, workspaceID string) (int, error)

	// Workspaces lists every workspace id with at least one checkpoint
	Workspaces(ctx context.Context) ([]string, error)
}

// OperationRepository handles the offline pending-operation queue.
// Replay is peek-then-complete: an operation leaves the store only
// after it has been applied, so a crashed or failed replay leaves it
// at the front for the next attempt.
type OperationRepository interface {
	// Enqueue appends an operation to the back of the queue
	Enqueue(ctx context.Context, op *domain.PendingOperation) error

	// Peek returns the front operation without removing it, nil when empty
	Peek(ctx context.Context) (*domain.PendingOperation, error)

	// Complete removes a successfully replayed operation
	Complete(ctx context.Context, id string) error

	// List returns all queued operations in FIFO order
	List(ctx context.Context) ([]*domain.PendingOperation, error)

	// Count returns the queue depth
	Count(ctx context.Context) (int, error)
}

// WorkspaceStore is the external workspace store the engine snapshots
// from and restores into.
type WorkspaceStore interface {
	// GetWorkspace retrieves the current workspace state
	GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error)

	// SaveWorkspace writes workspace state back (checkpoint restore, replay)
	SaveWorkspace(ctx context.Context, ws *domain.Workspace) error
}
