package recovery

import (
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/metrics"
)

const (
	// errorHistoryCap bounds the handler's error history (FIFO eviction).
	errorHistoryCap = 100

	// healthWindow is the observation window for per-service health.
	healthWindow = 5 * time.Minute

	// networkRetryDelay is the queue-for-retry hint when offline mode
	// is unavailable.
	networkRetryDelay = 5 * time.Second
)

// ServiceStatus is the handler's view of a single service's recent
// reliability, derived from the error count inside the health window.
type ServiceStatus string

const (
	ServiceHealthy     ServiceStatus = "healthy"
	ServiceDegraded    ServiceStatus = "degraded"
	ServiceUnavailable ServiceStatus = "unavailable"
)

// DefaultAlternatives maps each embedded tool to its ordered fallback
// tools. Product data, overridable via configuration.
func DefaultAlternatives() map[string][]string {
	return map[string][]string{
		"photopea":     {"pixlr"},
		"pixlr":        {"photopea"},
		"tinypng":      {"squoosh"},
		"dillinger":    {"stackedit"},
		"cloudconvert": {"convertio"},
	}
}

// Handler classifies service errors into immediate resolutions and
// keeps a capped error history for health derivation.
type Handler struct {
	mu           sync.Mutex
	history      []*domain.ServiceError
	alternatives map[string][]string
	online       func() bool
	offlineReady bool
	now          func() time.Time
}

// NewHandler creates a handler. online reports host connectivity;
// offlineReady indicates the offline capability is wired in.
func NewHandler(alternatives map[string][]string, online func() bool, offlineReady bool) *Handler {
	if alternatives == nil {
		alternatives = DefaultAlternatives()
	}
	if online == nil {
		online = func() bool { return true }
	}
	return &Handler{
		alternatives: alternatives,
		online:       online,
		offlineReady: offlineReady,
		now:          time.Now,
	}
}

// Resolve classifies the error and records it in the history.
func (h *Handler) Resolve(svcErr *domain.ServiceError) domain.Resolution {
	h.mu.Lock()
	h.history = append(h.history, svcErr)
	if len(h.history) > errorHistoryCap {
		h.history = h.history[len(h.history)-errorHistoryCap:]
	}
	h.mu.Unlock()

	metrics.ServiceErrorsTotal.WithLabelValues(svcErr.ServiceID, string(svcErr.Type)).Inc()

	return h.Classify(svcErr)
}

// Classify computes the resolution without touching the history.
func (h *Handler) Classify(svcErr *domain.ServiceError) domain.Resolution {
	switch svcErr.Type {
	case domain.ErrorTypeNetwork:
		if !h.online() {
			if h.offlineReady {
				return domain.Resolution{
					Action:  domain.ActionSwitchToOffline,
					Message: "Working offline. Changes will sync when connection returns.",
				}
			}
			return domain.Resolution{
				Action:     domain.ActionQueueForRetry,
				Message:    "Connection lost. The operation will be retried automatically.",
				RetryAfter: networkRetryDelay,
			}
		}
		return domain.Resolution{
			Action:       domain.ActionRetryWithAlternative,
			Message:      fmt.Sprintf("Connection issue with %s. Trying an alternative service.", svcErr.ServiceID),
			Alternatives: h.alternativesFor(svcErr.ServiceID),
		}

	case domain.ErrorTypeRateLimited:
		wait := svcErr.RetryAfter()
		if wait <= 0 {
			wait = 60 * time.Second
		}
		return domain.Resolution{
			Action:       domain.ActionRetryWithAlternative,
			Message:      fmt.Sprintf("%s is rate limited. Please wait %d seconds.", svcErr.ServiceID, int(wait.Seconds())),
			Alternatives: h.alternativesFor(svcErr.ServiceID),
		}

	case domain.ErrorTypeUnavailable, domain.ErrorTypeTimeout:
		return domain.Resolution{
			Action:       domain.ActionRetryWithAlternative,
			Message:      fmt.Sprintf("%s is not responding. Trying an alternative service.", svcErr.ServiceID),
			Alternatives: h.alternativesFor(svcErr.ServiceID),
		}

	case domain.ErrorTypeValidation:
		return domain.Resolution{
			Action:  domain.ActionShowError,
			Message: fmt.Sprintf("Invalid data sent to %s. The operation cannot be retried.", svcErr.ServiceID),
		}

	default:
		return domain.Resolution{
			Action:  domain.ActionShowError,
			Message: fmt.Sprintf("Something went wrong with %s.", svcErr.ServiceID),
		}
	}
}

func (h *Handler) alternativesFor(serviceID string) []string {
	alts := h.alternatives[serviceID]
	out := make([]string, len(alts))
	copy(out, alts)
	return out
}

// History returns the recorded errors, oldest first.
func (h *Handler) History() []*domain.ServiceError {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*domain.ServiceError, len(h.history))
	copy(out, h.history)
	return out
}

// ServiceHealth derives a service's status from its error count inside
// the trailing window. Entries older than the window are excluded from
// the count but stay in the history.
func (h *Handler) ServiceHealth(serviceID string) ServiceStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-healthWindow).UnixMilli()
	count := 0
	for _, e := range h.history {
		if e.ServiceID == serviceID && e.Timestamp >= cutoff {
			count++
		}
	}

	switch {
	case count == 0:
		return ServiceHealthy
	case count <= 2:
		return ServiceDegraded
	default:
		return ServiceUnavailable
	}
}
