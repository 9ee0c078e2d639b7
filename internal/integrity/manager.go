package integrity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
	"github.com/vietddude/toolguard/internal/metrics"
)

// checkpointVersion tags the snapshot format.
const checkpointVersion = "1"

// DefaultMaxCheckpoints caps retained checkpoints per workspace.
const DefaultMaxCheckpoints = 10

// ErrChecksumMismatch means the stored checkpoint payload no longer
// matches its checksum. The checkpoint is never applied in that case.
var ErrChecksumMismatch = errors.New("checkpoint checksum mismatch")

// Manager owns the checkpoint lifecycle: create from a validated
// workspace snapshot, verify on restore, evict oldest beyond the cap.
type Manager struct {
	repo       storage.CheckpointRepository
	workspaces storage.WorkspaceStore
	maxPerWS   int
	now        func() time.Time
	log        *slog.Logger
}

// NewManager creates a data-integrity manager. maxPerWorkspace <= 0
// uses the default cap.
func NewManager(repo storage.CheckpointRepository, workspaces storage.WorkspaceStore, maxPerWorkspace int) *Manager {
	if maxPerWorkspace <= 0 {
		maxPerWorkspace = DefaultMaxCheckpoints
	}
	return &Manager{
		repo:       repo,
		workspaces: workspaces,
		maxPerWS:   maxPerWorkspace,
		now:        time.Now,
		log:        slog.Default(),
	}
}

// CreateCheckpoint snapshots the current workspace state. The snapshot
// must pass structural validation before it is stored.
func (m *Manager) CreateCheckpoint(ctx context.Context, workspaceID, description string) (*domain.Checkpoint, error) {
	ws, err := m.workspaces.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workspace %s: %w", workspaceID, err)
	}

	if res := ValidateWorkspace(ws); !res.IsValid {
		return nil, fmt.Errorf("workspace %s failed validation: %s", workspaceID, res.Errors[0].Code)
	}

	data, err := json.Marshal(ws)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workspace: %w", err)
	}

	cp := &domain.Checkpoint{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		CreatedAt:   m.now(),
		Data:        data,
		Metadata: domain.CheckpointMetadata{
			Version:     checkpointVersion,
			Description: description,
			FileCount:   len(ws.Files),
			DataSize:    len(data),
			Checksum:    checksum(data),
		},
	}

	if err := m.repo.Save(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to store checkpoint: %w", err)
	}

	metrics.CheckpointsCreated.WithLabelValues(workspaceID).Inc()
	m.log.Debug("Checkpoint created", "workspace", workspaceID, "checkpoint", cp.ID, "size", len(data))

	if err := m.evict(ctx, workspaceID); err != nil {
		m.log.Warn("Checkpoint eviction failed", "workspace", workspaceID, "error", err)
	}

	return cp, nil
}

// RestoreCheckpoint verifies the stored payload against its checksum
// and, on match, applies the deserialized workspace back to the store.
// A mismatch fails the restore and leaves the checkpoint store
// unmodified.
func (m *Manager) RestoreCheckpoint(ctx context.Context, id string) (*domain.Workspace, error) {
	cp, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", id, err)
	}

	if checksum(cp.Data) != cp.Metadata.Checksum {
		metrics.CheckpointRestores.WithLabelValues("corrupt").Inc()
		return nil, fmt.Errorf("checkpoint %s: %w", id, ErrChecksumMismatch)
	}

	var ws domain.Workspace
	if err := json.Unmarshal(cp.Data, &ws); err != nil {
		metrics.CheckpointRestores.WithLabelValues("corrupt").Inc()
		return nil, fmt.Errorf("failed to deserialize checkpoint %s: %w", id, err)
	}

	if err := m.workspaces.SaveWorkspace(ctx, &ws); err != nil {
		metrics.CheckpointRestores.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("failed to apply checkpoint %s: %w", id, err)
	}

	metrics.CheckpointRestores.WithLabelValues("success").Inc()
	m.log.Info("Checkpoint restored", "workspace", cp.WorkspaceID, "checkpoint", id)
	return &ws, nil
}

// LatestCheckpoint returns the most recent checkpoint for a workspace.
func (m *Manager) LatestCheckpoint(ctx context.Context, workspaceID string) (*domain.Checkpoint, error) {
	cps, err := m.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, storage.ErrCheckpointNotFound
	}
	return cps[len(cps)-1], nil
}

// ListCheckpoints returns all checkpoints for a workspace, oldest
// first.
func (m *Manager) ListCheckpoints(ctx context.Context, workspaceID string) ([]*domain.Checkpoint, error) {
	return m.repo.ListByWorkspace(ctx, workspaceID)
}

// DeleteCheckpoint removes a checkpoint explicitly.
func (m *Manager) DeleteCheckpoint(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// evict removes the oldest checkpoints beyond the per-workspace cap.
func (m *Manager) evict(ctx context.Context, workspaceID string) error {
	cps, err := m.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	for len(cps) > m.maxPerWS {
		oldest := cps[0]
		if err := m.repo.Delete(ctx, oldest.ID); err != nil {
			return err
		}
		m.log.Debug("Checkpoint evicted", "workspace", workspaceID, "checkpoint", oldest.ID)
		cps = cps[1:]
	}
	return nil
}

// checksum computes the hex SHA-256 digest of a serialized snapshot.
func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
