package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
)

// CheckpointRepo implements storage.CheckpointRepository using PostgreSQL.
type CheckpointRepo struct {
	db *DB
}

// NewCheckpointRepo creates a new PostgreSQL checkpoint repository.
func NewCheckpointRepo(db *DB) *CheckpointRepo {
	return &CheckpointRepo{db: db}
}

type checkpointRow struct {
	ID          string    `db:"id"`
	WorkspaceID string    `db:"workspace_id"`
	CreatedAt   time.Time `db:"created_at"`
	Data        []byte    `db:"data"`
	Version     string    `db:"version"`
	Description string    `db:"description"`
	FileCount   int       `db:"file_count"`
	DataSize    int       `db:"data_size"`
	Checksum    string    `db:"checksum"`
}

func (row checkpointRow) toDomain() *domain.Checkpoint {
	return &domain.Checkpoint{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		CreatedAt:   row.CreatedAt,
		Data:        row.Data,
		Metadata: domain.CheckpointMetadata{
			Version:     row.Version,
			Description: row.Description,
			FileCount:   row.FileCount,
			DataSize:    row.DataSize,
			Checksum:    row.Checksum,
		},
	}
}

// Save stores a checkpoint.
func (r *CheckpointRepo) Save(ctx context.Context, cp *domain.Checkpoint) error {
	query := `
		INSERT INTO checkpoints (id, workspace_id, created_at, data, version, description, file_count, data_size, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		cp.ID,
		cp.WorkspaceID,
		cp.CreatedAt,
		cp.Data,
		cp.Metadata.Version,
		cp.Metadata.Description,
		cp.Metadata.FileCount,
		cp.Metadata.DataSize,
		cp.Metadata.Checksum,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Get retrieves a checkpoint by id.
func (r *CheckpointRepo) Get(ctx context.Context, id string) (*domain.Checkpoint, error) {
	query := `
		SELECT id, workspace_id, created_at, data, version, description, file_count, data_size, checksum
		FROM checkpoints
		WHERE id = $1
	`
	var row checkpointRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, storage.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return row.toDomain(), nil
}

// ListByWorkspace returns all checkpoints for a workspace, oldest first.
func (r *CheckpointRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Checkpoint, error) {
	query := `
		SELECT id, workspace_id, created_at, data, version, description, file_count, data_size, checksum
		FROM checkpoints
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`
	var rows []checkpointRow
	if err := r.db.SelectContext(ctx, &rows, query, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	cps := make([]*domain.Checkpoint, 0, len(rows))
	for _, row := range rows {
		cps = append(cps, row.toDomain())
	}
	return cps, nil
}

// Delete removes a checkpoint.
func (r *CheckpointRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// DeleteOlderThan removes checkpoints created before the cutoff.
func (r *CheckpointRepo) DeleteOlderThan(ctx context.Context, workspaceID string, cutoffUnix int64) (int, error) {
	query := `
		DELETE FROM checkpoints
		WHERE workspace_id = $1 AND created_at < $2
	`
	res, err := r.db.ExecContext(ctx, query, workspaceID, time.Unix(cutoffUnix, 0))
	if err != nil {
		return 0, fmt.Errorf("failed to prune checkpoints: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

// Count returns the number of checkpoints for a workspace.
func (r *CheckpointRepo) Count(ctx context.Context, workspaceID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM checkpoints WHERE workspace_id = $1`, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("failed to count checkpoints: %w", err)
	}
	return count, nil
}

// Workspaces lists every workspace id with at least one checkpoint.
func (r *CheckpointRepo) Workspaces(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT DISTINCT workspace_id FROM checkpoints`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return ids, nil
}
