package recovery

import (
	"fmt"
	"testing"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
)

// =============================================================================
// Classification Tests
// =============================================================================

func TestHandler_Classify_OfflineSwitchesToOfflineMode(t *testing.T) {
	handler := NewHandler(nil, func() bool { return false }, true)

	res := handler.Classify(domain.NewServiceError(domain.ErrorTypeNetwork, "photopea", "fetch failed", true))

	if res.Action != domain.ActionSwitchToOffline {
		t.Errorf("expected switch-to-offline, got %s", res.Action)
	}
	if res.Message != "Working offline. Changes will sync when connection returns." {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestHandler_Classify_OfflineWithoutOfflineModeQueues(t *testing.T) {
	handler := NewHandler(nil, func() bool { return false }, false)

	res := handler.Classify(domain.NewServiceError(domain.ErrorTypeNetwork, "photopea", "fetch failed", true))

	if res.Action != domain.ActionQueueForRetry {
		t.Errorf("expected queue-for-retry, got %s", res.Action)
	}
	if res.RetryAfter != 5*time.Second {
		t.Errorf("expected 5s retry hint, got %v", res.RetryAfter)
	}
}

func TestHandler_Classify_OnlineNetworkSuggestsAlternative(t *testing.T) {
	handler := NewHandler(nil, func() bool { return true }, true)

	res := handler.Classify(domain.NewServiceError(domain.ErrorTypeNetwork, "photopea", "fetch failed", true))

	if res.Action != domain.ActionRetryWithAlternative {
		t.Errorf("expected retry-with-alternative, got %s", res.Action)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0] != "pixlr" {
		t.Errorf("expected [pixlr], got %v", res.Alternatives)
	}
}

func TestHandler_Classify_RateLimited(t *testing.T) {
	handler := NewHandler(nil, nil, true)

	svcErr := domain.NewServiceError(domain.ErrorTypeRateLimited, "tinypng", "429", true)
	svcErr.Context = map[string]any{"retryAfter": 30000}

	res := handler.Classify(svcErr)
	if res.Action != domain.ActionRetryWithAlternative {
		t.Errorf("expected retry-with-alternative, got %s", res.Action)
	}
	if res.Message != "tinypng is rate limited. Please wait 30 seconds." {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestHandler_Classify_RateLimitedDefaultWait(t *testing.T) {
	handler := NewHandler(nil, nil, true)

	res := handler.Classify(domain.NewServiceError(domain.ErrorTypeRateLimited, "tinypng", "429", true))
	if res.Message != "tinypng is rate limited. Please wait 60 seconds." {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestHandler_Classify_ValidationIsTerminal(t *testing.T) {
	handler := NewHandler(nil, nil, true)

	res := handler.Classify(domain.NewServiceError(domain.ErrorTypeValidation, "cloudconvert", "bad payload", false))
	if res.Action != domain.ActionShowError {
		t.Errorf("expected show-error, got %s", res.Action)
	}
	if res.Message != "Invalid data sent to cloudconvert. The operation cannot be retried." {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestHandler_Classify_UnknownShowsError(t *testing.T) {
	handler := NewHandler(nil, nil, true)

	res := handler.Classify(domain.NewServiceError(domain.ErrorTypeUnknown, "dillinger", "boom", false))
	if res.Action != domain.ActionShowError {
		t.Errorf("expected show-error, got %s", res.Action)
	}
}

// =============================================================================
// History Tests
// =============================================================================

func TestHandler_HistoryEvictsOldestAtCap(t *testing.T) {
	handler := NewHandler(nil, nil, true)

	for i := 0; i < errorHistoryCap+1; i++ {
		handler.Resolve(domain.NewServiceError(domain.ErrorTypeTimeout, "photopea", fmt.Sprintf("Error %d", i), true))
	}

	history := handler.History()
	if len(history) != errorHistoryCap {
		t.Fatalf("expected %d entries, got %d", errorHistoryCap, len(history))
	}
	if history[0].Message != "Error 1" {
		t.Errorf("expected oldest entry evicted, front is %q", history[0].Message)
	}
	if history[len(history)-1].Message != fmt.Sprintf("Error %d", errorHistoryCap) {
		t.Errorf("unexpected newest entry %q", history[len(history)-1].Message)
	}
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHandler_ServiceHealth(t *testing.T) {
	handler := NewHandler(nil, nil, true)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return now }

	stamp := func(svcErr *domain.ServiceError, age time.Duration) *domain.ServiceError {
		svcErr.Timestamp = now.Add(-age).UnixMilli()
		return svcErr
	}

	if got := handler.ServiceHealth("photopea"); got != ServiceHealthy {
		t.Errorf("no errors: expected healthy, got %s", got)
	}

	handler.Resolve(stamp(domain.NewServiceError(domain.ErrorTypeTimeout, "photopea", "slow", true), time.Minute))
	handler.Resolve(stamp(domain.NewServiceError(domain.ErrorTypeTimeout, "photopea", "slow", true), 2*time.Minute))

	if got := handler.ServiceHealth("photopea"); got != ServiceDegraded {
		t.Errorf("2 recent errors: expected degraded, got %s", got)
	}

	handler.Resolve(stamp(domain.NewServiceError(domain.ErrorTypeTimeout, "photopea", "slow", true), 3*time.Minute))

	if got := handler.ServiceHealth("photopea"); got != ServiceUnavailable {
		t.Errorf("3 recent errors: expected unavailable, got %s", got)
	}

	// Errors outside the 5 minute window do not count
	handler.Resolve(stamp(domain.NewServiceError(domain.ErrorTypeTimeout, "pixlr", "slow", true), 10*time.Minute))

	if got := handler.ServiceHealth("pixlr"); got != ServiceHealthy {
		t.Errorf("only stale errors: expected healthy, got %s", got)
	}
}
