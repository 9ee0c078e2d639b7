package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/metrics"
	"github.com/vietddude/toolguard/internal/notify"
)

// CheckpointRestorer is the slice of the data-integrity manager the
// engine needs for the checkpoint-restore strategy.
type CheckpointRestorer interface {
	// LatestCheckpoint returns the most recent checkpoint for a
	// workspace, or storage.ErrCheckpointNotFound.
	LatestCheckpoint(ctx context.Context, workspaceID string) (*domain.Checkpoint, error)

	// RestoreCheckpoint verifies and applies a checkpoint.
	RestoreCheckpoint(ctx context.Context, id string) (*domain.Workspace, error)
}

// RetryFunc re-executes the operation that produced the error. Wired
// by the caller; the engine schedules it after a backoff delay.
type RetryFunc func(ctx context.Context, svcErr *domain.ServiceError) error

// Deps holds the engine's collaborators, injected at construction.
type Deps struct {
	Handler     *Handler
	Integrity   CheckpointRestorer // nil disables checkpoint-restore
	Notifier    notify.Notifier
	Online      func() bool
	Backoff     *ExponentialBackoff
	Retry       RetryFunc           // nil: scheduled retries only clear state
	Preferences *domain.Preferences // nil: defaults
	OfflineMode bool                // offline capability is wired in
}

// Engine orchestrates recovery: it runs registered strategies against
// each reported fault in descending priority order, tracks per-service
// health and history, and notifies the user on terminal failure.
type Engine struct {
	mu         sync.Mutex
	strategies []Strategy // sorted by descending priority
	prefs      domain.Preferences
	attempts   map[string]int
	inFlight   map[string]int
	failed     map[string]bool
	history    map[string][]*domain.ServiceError

	handler     *Handler
	integrity   CheckpointRestorer
	notifier    notify.Notifier
	online      func() bool
	backoff     *ExponentialBackoff
	retry       RetryFunc
	offlineMode bool

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	log       *slog.Logger
}

// NewEngine creates an engine with the built-in strategy set installed.
func NewEngine(deps Deps) *Engine {
	prefs := domain.DefaultPreferences()
	if deps.Preferences != nil {
		prefs = *deps.Preferences
	}
	if deps.Online == nil {
		deps.Online = func() bool { return true }
	}
	if deps.Backoff == nil {
		deps.Backoff = DefaultBackoff()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLogNotifier(nil)
	}

	e := &Engine{
		prefs:       prefs,
		attempts:    make(map[string]int),
		inFlight:    make(map[string]int),
		failed:      make(map[string]bool),
		history:     make(map[string][]*domain.ServiceError),
		handler:     deps.Handler,
		integrity:   deps.Integrity,
		notifier:    deps.Notifier,
		online:      deps.Online,
		backoff:     deps.Backoff,
		retry:       deps.Retry,
		offlineMode: deps.OfflineMode,
		closed:      make(chan struct{}),
		log:         slog.Default(),
	}

	for _, s := range e.builtinStrategies() {
		e.strategies = append(e.strategies, s)
	}
	e.sortStrategies()

	return e
}

// HandleError runs the recovery pipeline for one fault and returns the
// outcome. Safe for concurrent use across services.
func (e *Engine) HandleError(ctx context.Context, svcErr *domain.ServiceError) *domain.RecoveryResult {
	if e.isClosed() {
		return &domain.RecoveryResult{Success: false, Message: "recovery engine destroyed"}
	}

	sid := svcErr.ServiceID

	e.mu.Lock()
	e.history[sid] = append(e.history[sid], svcErr)
	prefs := e.prefs

	if e.attempts[sid] >= prefs.MaxRetries {
		attempts := e.attempts[sid]
		e.failed[sid] = true
		e.mu.Unlock()

		e.log.Warn("Retry ceiling reached", "service", sid, "attempts", attempts)
		metrics.RecoveryExhaustedTotal.WithLabelValues(sid).Inc()
		e.notifier.Error(
			"Recovery Failed",
			fmt.Sprintf("Unable to recover %s after %d attempts", sid, attempts),
			notify.Action{ID: "retry", Label: "Retry"},
		)
		return &domain.RecoveryResult{
			Success: false,
			Message: fmt.Sprintf("Unable to recover: retry limit reached after %d attempts", attempts),
		}
	}

	e.attempts[sid]++
	snapshot := make([]Strategy, len(e.strategies))
	copy(snapshot, e.strategies)
	e.mu.Unlock()

	// Record the classification; strategies consult it without the
	// history side effect.
	if e.handler != nil {
		e.handler.Resolve(svcErr)
	}

	for _, s := range snapshot {
		if !s.CanRecover(svcErr) {
			continue
		}

		res, err := s.Recover(ctx, svcErr)
		if err != nil || res == nil || !res.Success {
			metrics.RecoveriesTotal.WithLabelValues(s.ID(), "failure").Inc()
			e.log.Debug("Strategy failed, falling through",
				"strategy", s.ID(), "service", sid, "error", err)
			continue
		}

		metrics.RecoveriesTotal.WithLabelValues(s.ID(), "success").Inc()
		e.log.Info("Recovered", "strategy", s.ID(), "service", sid, "fallback", res.FallbackUsed)

		if prefs.ShowRecoveryNotifications && res.FallbackUsed {
			e.notifier.Info("Recovered", res.Message)
		}
		return res
	}

	metrics.RecoveryExhaustedTotal.WithLabelValues(sid).Inc()
	e.notifier.Error(
		"Service Error",
		fmt.Sprintf("%s failed and could not be recovered", sid),
		notify.Action{ID: "retry", Label: "Retry"},
	)
	return &domain.RecoveryResult{Success: false, Message: "Unable to recover from this error"}
}

// -----------------------------------------------------------------------------
// Built-in strategies
// -----------------------------------------------------------------------------

func (e *Engine) builtinStrategies() []Strategy {
	return []Strategy{
		NewStrategy("network-restore", "Network Restore", PriorityNetworkRestore,
			func(svcErr *domain.ServiceError) bool {
				return svcErr.Type == domain.ErrorTypeNetwork && e.online()
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				return &domain.RecoveryResult{Success: true, Message: "Network connection restored"}, nil
			},
		),

		NewStrategy("offline-fallback", "Offline Fallback", PriorityOfflineFallback,
			func(svcErr *domain.ServiceError) bool {
				return svcErr.Type == domain.ErrorTypeNetwork && !e.online() &&
					e.offlineMode && e.preferences().EnableOfflineMode
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				return &domain.RecoveryResult{
					Success:      true,
					FallbackUsed: true,
					Message:      "Switched to offline mode",
				}, nil
			},
		),

		NewStrategy("checkpoint-restore", "Checkpoint Restore", PriorityCheckpointRestore,
			func(svcErr *domain.ServiceError) bool {
				return svcErr.HasDataLoss() && svcErr.WorkspaceID() != "" && e.integrity != nil
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				cp, err := e.integrity.LatestCheckpoint(ctx, svcErr.WorkspaceID())
				if err != nil {
					return &domain.RecoveryResult{Success: false, Message: "No checkpoint available"}, nil
				}
				if _, err := e.integrity.RestoreCheckpoint(ctx, cp.ID); err != nil {
					// Corrupt or unreadable checkpoint: report failure
					// so the engine falls through to the next strategy.
					return &domain.RecoveryResult{Success: false, Message: "Checkpoint restore failed"}, nil
				}
				return &domain.RecoveryResult{Success: true, Message: "Data restored from checkpoint"}, nil
			},
		),

		NewStrategy("cached-data", "Cached Data", PriorityCachedData,
			func(svcErr *domain.ServiceError) bool {
				return svcErr.HasCachedData()
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				return &domain.RecoveryResult{
					Success:      true,
					FallbackUsed: true,
					Message:      "Using cached data",
					Data:         svcErr.CachedData(),
				}, nil
			},
		),

		NewStrategy("alternative-service", "Alternative Service", PriorityAlternativeService,
			func(svcErr *domain.ServiceError) bool {
				if !e.preferences().UseAlternativeServices || e.handler == nil {
					return false
				}
				res := e.handler.Classify(svcErr)
				return res.Action == domain.ActionRetryWithAlternative && len(res.Alternatives) > 0
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				res := e.handler.Classify(svcErr)
				return &domain.RecoveryResult{
					Success:      true,
					FallbackUsed: true,
					Message:      "Switched to alternative service",
					Data:         res.Alternatives,
				}, nil
			},
		),

		NewStrategy("retry-with-backoff", "Retry With Backoff", PriorityRetryWithBackoff,
			func(svcErr *domain.ServiceError) bool {
				return e.preferences().AutoRetry && svcErr.Retryable
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				e.scheduleRetry(svcErr)
				return &domain.RecoveryResult{Success: true, Message: "Retrying operation"}, nil
			},
		),

		NewStrategy("graceful-degradation", "Graceful Degradation", PriorityGracefulDegradation,
			func(svcErr *domain.ServiceError) bool {
				return true
			},
			func(ctx context.Context, svcErr *domain.ServiceError) (*domain.RecoveryResult, error) {
				return &domain.RecoveryResult{
					Success:      true,
					FallbackUsed: true,
					Message:      "Switched to basic functionality mode",
				}, nil
			},
		),
	}
}

// scheduleRetry runs the retry callback after the backoff delay for the
// service's current attempt. The wait is abandoned when the engine is
// destroyed.
func (e *Engine) scheduleRetry(svcErr *domain.ServiceError) {
	sid := svcErr.ServiceID

	e.mu.Lock()
	attempt := e.attempts[sid] - 1
	if attempt < 0 {
		attempt = 0
	}
	delay := e.backoff.GetDelay(attempt)
	e.inFlight[sid]++
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			e.mu.Lock()
			e.inFlight[sid]--
			e.mu.Unlock()
		}()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-e.closed:
			return
		case <-timer.C:
		}

		if e.retry == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.retry(ctx, svcErr); err != nil {
			e.log.Warn("Scheduled retry failed", "service", sid, "error", err)
			return
		}
		e.MarkRecovered(sid)
	}()
}

// -----------------------------------------------------------------------------
// Strategy registry
// -----------------------------------------------------------------------------

// AddStrategy registers a strategy. A strategy with a higher priority
// than the built-ins preempts them.
func (e *Engine) AddStrategy(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies = append(e.strategies, s)
	e.sortStrategies()
}

// RemoveStrategy unregisters a strategy by id.
func (e *Engine) RemoveStrategy(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.strategies {
		if s.ID() == id {
			e.strategies = append(e.strategies[:i], e.strategies[i+1:]...)
			return true
		}
	}
	return false
}

// Strategies returns the registered strategies in execution order.
func (e *Engine) Strategies() []Strategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Strategy, len(e.strategies))
	copy(out, e.strategies)
	return out
}

// sortStrategies keeps descending priority order; registration order
// breaks ties. Callers hold e.mu.
func (e *Engine) sortStrategies() {
	sort.SliceStable(e.strategies, func(i, j int) bool {
		return e.strategies[i].Priority() > e.strategies[j].Priority()
	})
}

// -----------------------------------------------------------------------------
// State accessors
// -----------------------------------------------------------------------------

// ServiceHealth returns the derived health state for every service the
// engine has seen.
func (e *Engine) ServiceHealth() map[string]domain.HealthState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]domain.HealthState)
	for sid := range e.history {
		out[sid] = e.healthLocked(sid)
	}
	for sid := range e.attempts {
		if _, ok := out[sid]; !ok {
			out[sid] = e.healthLocked(sid)
		}
	}
	return out
}

func (e *Engine) healthLocked(sid string) domain.HealthState {
	switch {
	case e.failed[sid]:
		return domain.HealthFailed
	case e.inFlight[sid] > 0:
		return domain.HealthRecovering
	case e.attempts[sid] > 0:
		return domain.HealthDegraded
	default:
		return domain.HealthHealthy
	}
}

// RecoveryHistory returns the errors handled for a service in order.
// An empty serviceID returns history for every service.
func (e *Engine) RecoveryHistory(serviceID string) []*domain.ServiceError {
	e.mu.Lock()
	defer e.mu.Unlock()

	if serviceID != "" {
		out := make([]*domain.ServiceError, len(e.history[serviceID]))
		copy(out, e.history[serviceID])
		return out
	}

	var out []*domain.ServiceError
	for _, errs := range e.history {
		out = append(out, errs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// ClearRecoveryHistory empties the history for one service, or for all
// services when serviceID is empty.
func (e *Engine) ClearRecoveryHistory(serviceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if serviceID == "" {
		e.history = make(map[string][]*domain.ServiceError)
		return
	}
	delete(e.history, serviceID)
}

// MarkRecovered clears a service's failure state after a confirmed
// successful operation.
func (e *Engine) MarkRecovered(serviceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.attempts, serviceID)
	delete(e.failed, serviceID)
}

// Preferences returns the current recovery preferences.
func (e *Engine) Preferences() domain.Preferences {
	return e.preferences()
}

func (e *Engine) preferences() domain.Preferences {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs
}

// SetPreferences merges a partial update; unset fields keep their
// previous value.
func (e *Engine) SetPreferences(patch domain.PreferencesPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prefs = e.prefs.Apply(patch)
}

// Close destroys the engine. Outstanding scheduled retries are
// abandoned; subsequent HandleError calls fail immediately.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.closed)
	})
	e.wg.Wait()
}

func (e *Engine) isClosed() bool {
	select {
	case <-e.closed:
		return true
	default:
		return false
	}
}
