package domain

import "time"

// ResolutionAction is the immediate action recommended by classification.
type ResolutionAction string

const (
	ActionQueueForRetry        ResolutionAction = "queue_for_retry"
	ActionRetryWithAlternative ResolutionAction = "retry_with_alternative"
	ActionSwitchToOffline      ResolutionAction = "switch_to_offline"
	ActionShowError            ResolutionAction = "show_error"
)

// Resolution is the output of error classification, computed before any
// recovery strategy runs.
type Resolution struct {
	Action       ResolutionAction
	Message      string
	RetryAfter   time.Duration // only for ActionQueueForRetry
	Alternatives []string      // ordered service ids, only for ActionRetryWithAlternative
}
