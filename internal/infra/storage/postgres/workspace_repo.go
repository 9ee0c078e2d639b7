package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
)

// WorkspaceRepo implements storage.WorkspaceStore using PostgreSQL.
// The workspace document is stored as a JSONB blob; the engine only
// needs get/save, not querying inside it.
type WorkspaceRepo struct {
	db *DB
}

// NewWorkspaceRepo creates a new PostgreSQL workspace store.
func NewWorkspaceRepo(db *DB) *WorkspaceRepo {
	return &WorkspaceRepo{db: db}
}

// GetWorkspace retrieves the current workspace state.
func (r *WorkspaceRepo) GetWorkspace(ctx context.Context, id string) (*domain.Workspace, error) {
	var data []byte
	err := r.db.GetContext(ctx, &data, `SELECT document FROM workspaces WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, storage.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	var ws domain.Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace: %w", err)
	}
	return &ws, nil
}

// SaveWorkspace writes workspace state back.
func (r *WorkspaceRepo) SaveWorkspace(ctx context.Context, ws *domain.Workspace) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to marshal workspace: %w", err)
	}

	query := `
		INSERT INTO workspaces (id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET document = $2, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, ws.ID, string(data)); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}
