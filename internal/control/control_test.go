package control

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/toolguard/internal/core/config"
	"github.com/vietddude/toolguard/internal/core/domain"
)

func newMemoryService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Port: 0,
		Recovery: config.RecoveryConfig{
			Preferences:  domain.DefaultPreferences(),
			InitialDelay: config.Duration(time.Millisecond),
			MaxDelay:     config.Duration(10 * time.Millisecond),
			MaxAttempts:  5,
		},
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(func() {
		_ = svc.Stop(context.Background())
	})
	return svc
}

func TestService_CheckpointRoundTrip(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	ws := &domain.Workspace{
		ID:   "ws-1",
		Name: "My Project",
		Files: []domain.FileReference{
			{ID: "f-1", Name: "logo.png", URL: "https://cdn.example.com/logo.png", Size: 1024},
		},
	}

	// Online save applies straight through to the workspace store
	if _, err := svc.Offline().SaveWorkspaceOffline(ctx, ws); err != nil {
		t.Fatalf("SaveWorkspaceOffline failed: %v", err)
	}

	cp, err := svc.Integrity().CreateCheckpoint(ctx, "ws-1", "before edit")
	if err != nil {
		t.Fatalf("CreateCheckpoint failed: %v", err)
	}

	restored, err := svc.Integrity().RestoreCheckpoint(ctx, cp.ID)
	if err != nil {
		t.Fatalf("RestoreCheckpoint failed: %v", err)
	}
	if restored.Name != "My Project" {
		t.Errorf("unexpected restored workspace: %+v", restored)
	}
}

func TestService_OfflineFlow(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	svc.Connectivity().SetOnline(false)

	// Saves queue while offline
	if _, err := svc.Offline().SaveWorkspaceOffline(ctx, &domain.Workspace{ID: "ws-1", Name: "draft"}); err != nil {
		t.Fatalf("SaveWorkspaceOffline failed: %v", err)
	}
	status, err := svc.Offline().SyncStatus(ctx)
	if err != nil {
		t.Fatalf("SyncStatus failed: %v", err)
	}
	if status.IsOnline || status.PendingOperations != 1 {
		t.Fatalf("expected 1 queued op while offline, got %+v", status)
	}

	// Network errors fall back to offline mode
	res := svc.Engine().HandleError(ctx,
		domain.NewServiceError(domain.ErrorTypeNetwork, "photopea", "fetch failed", true))
	if !res.Success || res.Message != "Switched to offline mode" {
		t.Fatalf("expected offline fallback, got %+v", res)
	}

	// Reconnect drains the queue
	svc.Connectivity().SetOnline(true)

	deadline := time.After(2 * time.Second)
	for {
		status, err := svc.Offline().SyncStatus(ctx)
		if err != nil {
			t.Fatalf("SyncStatus failed: %v", err)
		}
		if status.PendingOperations == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("queue never drained after reconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestService_StartAndStop(t *testing.T) {
	svc, err := NewService(Config{Port: 0})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
