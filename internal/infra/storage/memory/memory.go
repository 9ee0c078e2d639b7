package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
)

// MemoryStorage backs all repositories with in-process maps. Used when
// no database or redis is configured, and in tests.
type MemoryStorage struct {
	checkpoints map[string]*domain.Checkpoint
	queue       []*domain.PendingOperation
	workspaces  map[string]*domain.Workspace
	mu          sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		checkpoints: make(map[string]*domain.Checkpoint),
		workspaces:  make(map[string]*domain.Workspace),
	}
}

// -----------------------------------------------------------------------------
// Checkpoint Repository
// -----------------------------------------------------------------------------

type CheckpointRepo struct {
	store *MemoryStorage
}

func NewCheckpointRepo(store *MemoryStorage) *CheckpointRepo {
	return &CheckpointRepo{store: store}
}

func (r *CheckpointRepo) Save(ctx context.Context, cp *domain.Checkpoint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.checkpoints[cp.ID] = cp
	return nil
}

func (r *CheckpointRepo) Get(ctx context.Context, id string) (*domain.Checkpoint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	cp, ok := r.store.checkpoints[id]
	if !ok {
		return nil, storage.ErrCheckpointNotFound
	}
	return cp, nil
}

func (r *CheckpointRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Checkpoint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var cps []*domain.Checkpoint
	for _, cp := range r.store.checkpoints {
		if cp.WorkspaceID == workspaceID {
			cps = append(cps, cp)
		}
	}
	sort.Slice(cps, func(i, j int) bool {
		return cps[i].CreatedAt.Before(cps[j].CreatedAt)
	})
	return cps, nil
}

func (r *CheckpointRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.checkpoints, id)
	return nil
}

func (r *CheckpointRepo) DeleteOlderThan(ctx context.Context, workspaceID string, cutoffUnix int64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	deleted := 0
	for id, cp := range r.store.checkpoints {
		if cp.WorkspaceID == workspaceID && cp.CreatedAt.Unix() < cutoffUnix {
			delete(r.store.checkpoints, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *CheckpointRepo) Count(ctx context.Context, workspaceID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, cp := range r.store.checkpoints {
		if cp.WorkspaceID == workspaceID {
			count++
		}
	}
	return count, nil
}

func (r *CheckpointRepo) Workspaces(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	seen := make(map[string]bool)
	var ids []string
	for _, cp := range r.store.checkpoints {
		if !seen[cp.WorkspaceID] {
			seen[cp.WorkspaceID] = true
			ids = append(ids, cp.WorkspaceID)
		}
	}
	return ids, nil
}

// -----------------------------------------------------------------------------
// Operation Repository
// -----------------------------------------------------------------------------

type OperationRepo struct {
	store *MemoryStorage
}

func NewOperationRepo(store *MemoryStorage) *OperationRepo {
	return &OperationRepo{store: store}
}

func (r *OperationRepo) Enqueue(ctx context.Context, op *domain.PendingOperation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.queue = append(r.store.queue, op)
	return nil
}

func (r *OperationRepo) Peek(ctx context.Context) (*domain.PendingOperation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if len(r.store.queue) == 0 {
		return nil, nil
	}
	return r.store.queue[0], nil
}

func (r *OperationRepo) Complete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, op := range r.store.queue {
		if op.ID == id {
			r.store.queue = append(r.store.queue[:i], r.store.queue[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("operation %s not found", id)
}

func (r *OperationRepo) List(ctx context.Context) ([]*domain.PendingOperation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	ops := make([]*domain.PendingOperation, len(r.store.queue))
	copy(ops, r.store.queue)
	return ops, nil
}

func (r *OperationRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.queue), nil
}

// -----------------------------------------------------------------------------
// Workspace Store
// -----------------------------------------------------------------------------

type WorkspaceRepo struct {
	store *MemoryStorage
}

func NewWorkspaceRepo(store *MemoryStorage) *WorkspaceRepo {
	return &WorkspaceRepo{store: store}
}

func (r *WorkspaceRepo) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	ws, ok := r.store.workspaces[id]
	if !ok {
		return nil, storage.ErrWorkspaceNotFound
	}
	return ws, nil
}

func (r *WorkspaceRepo) SaveWorkspace(ctx context.Context, ws *domain.Workspace) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.workspaces[ws.ID] = ws
	return nil
}
