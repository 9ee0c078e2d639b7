package recovery

import (
	"context"

	"github.com/vietddude/toolguard/internal/core/domain"
)

// Strategy is a pluggable unit of recovery logic. Strategies are tried
// in descending priority order; the first one whose CanRecover returns
// true handles the error.
type Strategy interface {
	// ID identifies the strategy for add/remove.
	ID() string

	// Name is the human-readable strategy name.
	Name() string

	// Priority orders strategies; higher runs first.
	Priority() int

	// CanRecover checks applicability without side effects.
	CanRecover(svcErr *domain.ServiceError) bool

	// Recover attempts recovery. A non-success result or error lets
	// the engine fall through to the next applicable strategy.
	Recover(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error)
}

// Built-in strategy priorities, highest first.
const (
	PriorityNetworkRestore      = 100
	PriorityOfflineFallback     = 90
	PriorityCheckpointRestore   = 80
	PriorityCachedData          = 70
	PriorityAlternativeService  = 60
	PriorityRetryWithBackoff    = 50
	PriorityGracefulDegradation = 0
)

// funcStrategy adapts a pair of functions to the Strategy interface.
type funcStrategy struct {
	id       string
	name     string
	priority int
	can      func(svcErr *domain.ServiceError) bool
	recover  func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error)
}

// NewStrategy builds a Strategy from functions. Used for the built-in
// set and for custom strategies registered at runtime.
func NewStrategy(
	id, name string,
	priority int,
	can func(svcErr *domain.ServiceError) bool,
	recover func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error),
) Strategy {
	return &funcStrategy{
		id:       id,
		name:     name,
		priority: priority,
		can:      can,
		recover:  recover,
	}
}

func (s *funcStrategy) ID() string    { return s.id }
func (s *funcStrategy) Name() string  { return s.name }
func (s *funcStrategy) Priority() int { return s.priority }

func (s *funcStrategy) CanRecover(svcErr *domain.ServiceError) bool {
	if s.can == nil {
		return false
	}
	return s.can(svcErr)
}

func (s *funcStrategy) Recover(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
	if s.recover == nil {
		return &domain.RecoveryResult{Success: false, Message: "strategy has no recover function"}, nil
	}
	return s.recover(ctx, svcErr)
}
