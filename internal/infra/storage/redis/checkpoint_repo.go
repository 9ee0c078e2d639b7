package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage"
)

// CheckpointRepo implements storage.CheckpointRepository using Redis.
// Checkpoint payloads live under string keys; a per-workspace sorted
// set ordered by creation time gives oldest-first listing and eviction.
type CheckpointRepo struct {
	rdb *redis.Client
}

// NewCheckpointRepo creates a new Redis-backed checkpoint repository.
func NewCheckpointRepo(client *Client) *CheckpointRepo {
	return &CheckpointRepo{rdb: client.rdb}
}

// Key helpers
func (r *CheckpointRepo) indexKey(workspaceID string) string {
	return fmt.Sprintf("checkpoints:%s", workspaceID)
}

func (r *CheckpointRepo) checkpointKey(id string) string {
	return fmt.Sprintf("checkpoint:%s", id)
}

// Save stores a checkpoint and indexes it by creation time.
func (r *CheckpointRepo) Save(ctx context.Context, cp *domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := r.rdb.Set(ctx, r.checkpointKey(cp.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set checkpoint: %w", err)
	}

	if err := r.rdb.ZAdd(ctx, r.indexKey(cp.WorkspaceID), redis.Z{
		Score:  float64(cp.CreatedAt.UnixNano()),
		Member: cp.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index checkpoint: %w", err)
	}

	return nil
}

// Get retrieves a checkpoint by id.
func (r *CheckpointRepo) Get(ctx context.Context, id string) (*domain.Checkpoint, error) {
	data, err := r.rdb.Get(ctx, r.checkpointKey(id)).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}

	return &cp, nil
}

// ListByWorkspace returns all checkpoints for a workspace, oldest first.
func (r *CheckpointRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Checkpoint, error) {
	ids, err := r.rdb.ZRange(ctx, r.indexKey(workspaceID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	cps := make([]*domain.Checkpoint, 0, len(ids))
	for _, id := range ids {
		data, err := r.rdb.Get(ctx, r.checkpointKey(id)).Bytes()
		if err == redis.Nil {
			// Payload gone but still indexed, drop the stale entry
			r.rdb.ZRem(ctx, r.indexKey(workspaceID), id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get checkpoint: %w", err)
		}

		var cp domain.Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			continue
		}
		cps = append(cps, &cp)
	}

	return cps, nil
}

// Delete removes a checkpoint and its index entry.
func (r *CheckpointRepo) Delete(ctx context.Context, id string) error {
	cp, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := r.rdb.ZRem(ctx, r.indexKey(cp.WorkspaceID), id).Err(); err != nil {
		return fmt.Errorf("failed to remove from index: %w", err)
	}

	if err := r.rdb.Del(ctx, r.checkpointKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	return nil
}

// DeleteOlderThan removes checkpoints created before the cutoff.
func (r *CheckpointRepo) DeleteOlderThan(ctx context.Context, workspaceID string, cutoffUnix int64) (int, error) {
	maxScore := strconv.FormatInt(cutoffUnix*int64(1e9), 10)

	ids, err := r.rdb.ZRangeByScore(ctx, r.indexKey(workspaceID), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + maxScore,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("zrangebyscore failed: %w", err)
	}

	for _, id := range ids {
		if err := r.rdb.Del(ctx, r.checkpointKey(id)).Err(); err != nil {
			return 0, fmt.Errorf("failed to delete checkpoint: %w", err)
		}
		if err := r.rdb.ZRem(ctx, r.indexKey(workspaceID), id).Err(); err != nil {
			return 0, fmt.Errorf("failed to remove from index: %w", err)
		}
	}

	return len(ids), nil
}

// Count returns the number of checkpoints for a workspace.
func (r *CheckpointRepo) Count(ctx context.Context, workspaceID string) (int, error) {
	count, err := r.rdb.ZCard(ctx, r.indexKey(workspaceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(count), nil
}

// Workspaces lists every workspace id with at least one checkpoint.
func (r *CheckpointRepo) Workspaces(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.rdb.Scan(ctx, 0, "checkpoints:*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), "checkpoints:"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return ids, nil
}
