// Package offline queues mutating operations while disconnected and
// replays them in FIFO order when connectivity returns.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/toolguard/internal/connectivity"
	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
	"github.com/vietddude/toolguard/internal/metrics"
)

// ApplyFunc replays one queued operation against the real backend.
type ApplyFunc func(ctx context.Context, op *domain.PendingOperation) error

// SyncStatus reports connectivity and queue depth.
type SyncStatus struct {
	IsOnline          bool `json:"is_online"`
	PendingOperations int  `json:"pending_operations"`
}

// Queue holds pending operations behind a persistent repository and
// drains them front-to-back on reconnect. An operation is removed from
// the repository only after its replay succeeds; a failed replay stays
// at the front and the drain stops until the next online transition.
type Queue struct {
	repo  storage.OperationRepository
	conn  *connectivity.Monitor
	apply ApplyFunc
	log   *slog.Logger

	mu       sync.Mutex
	draining bool

	unsubscribe func()
}

// NewQueue creates the offline queue and subscribes to connectivity
// transitions.
func NewQueue(repo storage.OperationRepository, conn *connectivity.Monitor, apply ApplyFunc) *Queue {
	q := &Queue{
		repo:  repo,
		conn:  conn,
		apply: apply,
		log:   slog.Default(),
	}
	if conn != nil {
		q.unsubscribe = conn.Subscribe(func(online bool) {
			if online {
				go q.drainAsync()
			}
		})
	}
	return q
}

// Close detaches the queue from connectivity events.
func (q *Queue) Close() {
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
}

// SaveWorkspaceOffline queues a workspace-save mutation. When online
// the queue is flushed immediately, so the save applies right away.
func (q *Queue) SaveWorkspaceOffline(ctx context.Context, ws *domain.Workspace) (*domain.PendingOperation, error) {
	payload, err := json.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workspace: %w", err)
	}

	op := &domain.PendingOperation{
		ID:       uuid.New().String(),
		Type:     domain.OperationWorkspaceSave,
		Payload:  payload,
		QueuedAt: time.Now(),
	}

	if err := q.repo.Enqueue(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to enqueue operation: %w", err)
	}
	q.updateDepthGauge(ctx)

	if q.IsOnline() {
		if err := q.Drain(ctx); err != nil {
			q.log.Warn("Immediate flush failed, operation stays queued", "error", err)
		}
	} else {
		q.log.Info("Operation queued for replay", "operation", op.ID, "type", op.Type)
	}

	return op, nil
}

// IsOnline reports host connectivity.
func (q *Queue) IsOnline() bool {
	if q.conn == nil {
		return true
	}
	return q.conn.IsOnline()
}

// PendingOperations returns the queued operations in FIFO order.
func (q *Queue) PendingOperations(ctx context.Context) ([]*domain.PendingOperation, error) {
	return q.repo.List(ctx)
}

// SyncStatus reports connectivity and pending-operation count.
func (q *Queue) SyncStatus(ctx context.Context) (SyncStatus, error) {
	count, err := q.repo.Count(ctx)
	if err != nil {
		return SyncStatus{}, fmt.Errorf("failed to count operations: %w", err)
	}
	return SyncStatus{IsOnline: q.IsOnline(), PendingOperations: count}, nil
}

// Drain replays queued operations front-to-back. Each operation is
// peeked, applied, and only then removed, so a failed replay is never
// lost: it stays at the front for the next attempt.
func (q *Queue) Drain(ctx context.Context) error {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return nil
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
		q.updateDepthGauge(ctx)
	}()

	for {
		op, err := q.repo.Peek(ctx)
		if err != nil {
			return fmt.Errorf("failed to peek operation: %w", err)
		}
		if op == nil {
			return nil
		}

		if err := q.replay(ctx, op); err != nil {
			metrics.OperationsReplayed.WithLabelValues("failure").Inc()
			return fmt.Errorf("replay of operation %s failed: %w", op.ID, err)
		}
		if err := q.repo.Complete(ctx, op.ID); err != nil {
			return fmt.Errorf("failed to complete operation %s: %w", op.ID, err)
		}
		metrics.OperationsReplayed.WithLabelValues("success").Inc()
		q.log.Info("Operation replayed", "operation", op.ID, "type", op.Type)
	}
}

func (q *Queue) replay(ctx context.Context, op *domain.PendingOperation) error {
	if q.apply == nil {
		return fmt.Errorf("no apply function wired for operation type %s", op.Type)
	}
	return q.apply(ctx, op)
}

func (q *Queue) drainAsync() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := q.Drain(ctx); err != nil {
		q.log.Warn("Offline queue drain failed", "error", err)
	}
}

func (q *Queue) updateDepthGauge(ctx context.Context) {
	if count, err := q.repo.Count(ctx); err == nil {
		metrics.OfflineQueueDepth.Set(float64(count))
	}
}
