package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
)

// OperationRepo implements storage.OperationRepository using PostgreSQL.
// A bigint queue_position column keeps FIFO order; rows are deleted only
// after the caller has applied them, so a failed replay stays at the front.
type OperationRepo struct {
	db *DB
}

// NewOperationRepo creates a new PostgreSQL operation queue.
func NewOperationRepo(db *DB) *OperationRepo {
	return &OperationRepo{db: db}
}

type operationRow struct {
	ID       string    `db:"id"`
	OpType   string    `db:"op_type"`
	Payload  []byte    `db:"payload"`
	QueuedAt time.Time `db:"queued_at"`
	Position int64     `db:"queue_position"`
}

func (row operationRow) toDomain() *domain.PendingOperation {
	return &domain.PendingOperation{
		ID:       row.ID,
		Type:     domain.OperationType(row.OpType),
		Payload:  json.RawMessage(row.Payload),
		QueuedAt: row.QueuedAt,
	}
}

// Enqueue appends an operation to the back of the queue.
func (r *OperationRepo) Enqueue(ctx context.Context, op *domain.PendingOperation) error {
	query := `
		INSERT INTO pending_operations (id, op_type, payload, queued_at, queue_position)
		VALUES ($1, $2, $3, $4, COALESCE((SELECT MAX(queue_position) FROM pending_operations), 0) + 1)
	`
	_, err := r.db.ExecContext(ctx, query, op.ID, string(op.Type), string(op.Payload), op.QueuedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue operation: %w", err)
	}
	return nil
}

// Peek returns the front operation without removing it, nil when empty.
func (r *OperationRepo) Peek(ctx context.Context) (*domain.PendingOperation, error) {
	query := `
		SELECT id, op_type, payload, queued_at, queue_position
		FROM pending_operations
		ORDER BY queue_position ASC
		LIMIT 1
	`
	var row operationRow
	err := r.db.GetContext(ctx, &row, query)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to peek operation: %w", err)
	}
	return row.toDomain(), nil
}

// Complete removes a replayed operation.
func (r *OperationRepo) Complete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_operations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to complete operation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to complete operation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("operation %s not found", id)
	}
	return nil
}

// List returns all queued operations in FIFO order.
func (r *OperationRepo) List(ctx context.Context) ([]*domain.PendingOperation, error) {
	query := `
		SELECT id, op_type, payload, queued_at, queue_position
		FROM pending_operations
		ORDER BY queue_position ASC
	`
	var rows []operationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}

	ops := make([]*domain.PendingOperation, 0, len(rows))
	for _, row := range rows {
		ops = append(ops, row.toDomain())
	}
	return ops, nil
}

// Count returns the queue depth.
func (r *OperationRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM pending_operations`); err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return count, nil
}
