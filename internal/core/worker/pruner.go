package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/toolguard/internal/infra/storage"
)

// Pruner deletes old checkpoints based on retention policy. The
// per-workspace cap handles steady-state growth; retention cleans up
// workspaces that stopped being used.
type Pruner struct {
	repo       storage.CheckpointRepository
	workspaces func(ctx context.Context) []string
	retention  time.Duration
}

// NewPruner creates a new Pruner worker. workspaces lists the ids to
// prune on each pass.
func NewPruner(
	repo storage.CheckpointRepository,
	workspaces func(ctx context.Context) []string,
	retention time.Duration,
) *Pruner {
	return &Pruner{
		repo:       repo,
		workspaces: workspaces,
		retention:  retention,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().Add(-p.retention).Unix()

	for _, wsID := range p.workspaces(ctx) {
		deleted, err := p.repo.DeleteOlderThan(ctx, wsID, cutoff)
		if err != nil {
			slog.Error("Failed to prune checkpoints", "workspace", wsID, "error", err)
			continue
		}
		if deleted > 0 {
			slog.Debug("Pruned checkpoints", "workspace", wsID, "count", deleted)
		}
	}
}
