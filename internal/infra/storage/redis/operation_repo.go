package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/toolguard/internal/core/domain"
)

const operationQueueKey = "pending_operations"

// OperationRepo implements storage.OperationRepository using a Redis
// list. RPUSH keeps FIFO order; LINDEX peeks the front and LPOP runs
// only after the caller has applied the operation, so a failed replay
// stays at the front.
type OperationRepo struct {
	rdb *redis.Client
}

// NewOperationRepo creates a new Redis-backed operation queue.
func NewOperationRepo(client *Client) *OperationRepo {
	return &OperationRepo{rdb: client.rdb}
}

// Enqueue appends an operation to the back of the queue.
func (r *OperationRepo) Enqueue(ctx context.Context, op *domain.PendingOperation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal operation: %w", err)
	}
	if err := r.rdb.RPush(ctx, operationQueueKey, data).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// Peek returns the front operation without removing it, nil when empty.
func (r *OperationRepo) Peek(ctx context.Context) (*domain.PendingOperation, error) {
	data, err := r.rdb.LIndex(ctx, operationQueueKey, 0).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lindex failed: %w", err)
	}

	var op domain.PendingOperation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}
	return &op, nil
}

// Complete removes a replayed operation from the front of the queue.
// The id must match the current front; a mismatch leaves the queue
// untouched.
func (r *OperationRepo) Complete(ctx context.Context, id string) error {
	data, err := r.rdb.LIndex(ctx, operationQueueKey, 0).Bytes()
	if err == redis.Nil {
		return fmt.Errorf("operation %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("lindex failed: %w", err)
	}

	var op domain.PendingOperation
	if err := json.Unmarshal(data, &op); err != nil {
		return fmt.Errorf("failed to unmarshal operation: %w", err)
	}
	if op.ID != id {
		return fmt.Errorf("operation %s is not at the front of the queue", id)
	}
	if err := r.rdb.LPop(ctx, operationQueueKey).Err(); err != nil {
		return fmt.Errorf("lpop failed: %w", err)
	}
	return nil
}

// List returns all queued operations in FIFO order.
func (r *OperationRepo) List(ctx context.Context) ([]*domain.PendingOperation, error) {
	items, err := r.rdb.LRange(ctx, operationQueueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	ops := make([]*domain.PendingOperation, 0, len(items))
	for _, item := range items {
		var op domain.PendingOperation
		if err := json.Unmarshal([]byte(item), &op); err != nil {
			continue
		}
		ops = append(ops, &op)
	}
	return ops, nil
}

// Count returns the queue depth.
func (r *OperationRepo) Count(ctx context.Context) (int, error) {
	count, err := r.rdb.LLen(ctx, operationQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return int(count), nil
}
