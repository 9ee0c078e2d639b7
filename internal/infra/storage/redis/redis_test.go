package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := NewClient(Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testCheckpoint(id, workspaceID string, createdAt time.Time) *domain.Checkpoint {
	return &domain.Checkpoint{
		ID:          id,
		WorkspaceID: workspaceID,
		CreatedAt:   createdAt,
		Data:        []byte(`{"id":"` + workspaceID + `"}`),
		Metadata:    domain.CheckpointMetadata{Version: "1", Checksum: "abc"},
	}
}

// =============================================================================
// Checkpoint Repository
// =============================================================================

func TestCheckpointRepo_SaveAndGet(t *testing.T) {
	repo := NewCheckpointRepo(newTestClient(t))
	ctx := context.Background()

	cp := testCheckpoint("cp-1", "ws-1", time.Now())
	if err := repo.Save(ctx, cp); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, "cp-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.WorkspaceID != "ws-1" || got.Metadata.Checksum != "abc" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, storage.ErrCheckpointNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCheckpointRepo_ListOldestFirst(t *testing.T) {
	repo := NewCheckpointRepo(newTestClient(t))
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Insert newest first to prove ordering comes from the index
	for i := 2; i >= 0; i-- {
		cp := testCheckpoint(fmt.Sprintf("cp-%d", i), "ws-1", base.Add(time.Duration(i)*time.Second))
		if err := repo.Save(ctx, cp); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	cps, err := repo.ListByWorkspace(ctx, "ws-1")
	if err != nil {
		t.Fatalf("ListByWorkspace failed: %v", err)
	}
	if len(cps) != 3 {
		t.Fatalf("expected 3 checkpoints, got %d", len(cps))
	}
	for i, cp := range cps {
		if cp.ID != fmt.Sprintf("cp-%d", i) {
			t.Errorf("position %d: expected cp-%d, got %s", i, i, cp.ID)
		}
	}
}

func TestCheckpointRepo_DeleteOlderThan(t *testing.T) {
	repo := NewCheckpointRepo(newTestClient(t))
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		cp := testCheckpoint(fmt.Sprintf("cp-%d", i), "ws-1", base.Add(time.Duration(i)*time.Hour))
		if err := repo.Save(ctx, cp); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	deleted, err := repo.DeleteOlderThan(ctx, "ws-1", base.Add(90*time.Minute).Unix())
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	count, err := repo.Count(ctx, "ws-1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining, got %d", count)
	}
}

func TestCheckpointRepo_Workspaces(t *testing.T) {
	repo := NewCheckpointRepo(newTestClient(t))
	ctx := context.Background()

	if err := repo.Save(ctx, testCheckpoint("cp-1", "ws-1", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, testCheckpoint("cp-2", "ws-2", time.Now())); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ids, err := repo.Workspaces(ctx)
	if err != nil {
		t.Fatalf("Workspaces failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 workspaces, got %v", ids)
	}
}

// =============================================================================
// Operation Repository
// =============================================================================

func TestOperationRepo_FIFO(t *testing.T) {
	repo := NewOperationRepo(newTestClient(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		op := &domain.PendingOperation{
			ID:       fmt.Sprintf("op-%d", i),
			Type:     domain.OperationWorkspaceSave,
			Payload:  []byte(`{}`),
			QueuedAt: time.Now(),
		}
		if err := repo.Enqueue(ctx, op); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		op, err := repo.Peek(ctx)
		if err != nil {
			t.Fatalf("Peek failed: %v", err)
		}
		if op.ID != fmt.Sprintf("op-%d", i) {
			t.Errorf("expected op-%d, got %s", i, op.ID)
		}
		if err := repo.Complete(ctx, op.ID); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}

	op, err := repo.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek on empty failed: %v", err)
	}
	if op != nil {
		t.Errorf("expected nil on empty queue, got %+v", op)
	}
}

func TestOperationRepo_PeekDoesNotRemove(t *testing.T) {
	repo := NewOperationRepo(newTestClient(t))
	ctx := context.Background()

	if err := repo.Enqueue(ctx, &domain.PendingOperation{ID: "op-0", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		op, err := repo.Peek(ctx)
		if err != nil {
			t.Fatalf("Peek failed: %v", err)
		}
		if op == nil || op.ID != "op-0" {
			t.Fatalf("expected op-0 at front, got %+v", op)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1 after peeking, got %d", count)
	}
}

func TestOperationRepo_CompleteRejectsNonFront(t *testing.T) {
	repo := NewOperationRepo(newTestClient(t))
	ctx := context.Background()

	if err := repo.Enqueue(ctx, &domain.PendingOperation{ID: "op-0", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := repo.Enqueue(ctx, &domain.PendingOperation{ID: "op-1", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := repo.Complete(ctx, "op-1"); err == nil {
		t.Fatal("expected error completing an operation that is not at the front")
	}

	ops, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ops) != 2 || ops[0].ID != "op-0" || ops[1].ID != "op-1" {
		t.Errorf("queue should be untouched, got %+v", ops)
	}
}
