package domain

import "time"

// ErrorType classifies a fault reported by a collaborator.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network_error"
	ErrorTypeUnavailable ErrorType = "service_unavailable"
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeValidation  ErrorType = "validation_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// ServiceError is the normalized form of any fault in the system.
// Produced by collaborators (bridge, tool wrappers), consumed by the
// recovery engine. Immutable once created.
type ServiceError struct {
	Type      ErrorType      `json:"type"`
	ServiceID string         `json:"service_id"`
	Message   string         `json:"message"`
	Timestamp int64          `json:"timestamp"` // unix milliseconds
	Retryable bool           `json:"retryable"`
	Context   map[string]any `json:"context,omitempty"`
}

// NewServiceError creates a ServiceError stamped with the current time.
func NewServiceError(errType ErrorType, serviceID, message string, retryable bool) *ServiceError {
	return &ServiceError{
		Type:      errType,
		ServiceID: serviceID,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Retryable: retryable,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return string(e.Type) + ": " + e.ServiceID + ": " + e.Message
}

// Context accessors. The context map is opaque to producers; these keys
// are the ones the engine understands.

func (e *ServiceError) contextBool(key string) bool {
	if e.Context == nil {
		return false
	}
	v, _ := e.Context[key].(bool)
	return v
}

func (e *ServiceError) contextString(key string) string {
	if e.Context == nil {
		return ""
	}
	v, _ := e.Context[key].(string)
	return v
}

// HasDataLoss reports whether the fault involved workspace data loss.
func (e *ServiceError) HasDataLoss() bool {
	return e.contextBool("hasDataLoss")
}

// WorkspaceID returns the workspace affected by the fault, if any.
func (e *ServiceError) WorkspaceID() string {
	return e.contextString("workspaceId")
}

// HasCachedData reports whether a cached copy of the result exists.
func (e *ServiceError) HasCachedData() bool {
	return e.contextBool("hasCachedData")
}

// CachedData returns the cached payload attached to the fault.
func (e *ServiceError) CachedData() any {
	if e.Context == nil {
		return nil
	}
	return e.Context["cachedData"]
}

// RetryAfter returns the wait hint attached by a rate-limiting service.
func (e *ServiceError) RetryAfter() time.Duration {
	if e.Context == nil {
		return 0
	}
	switch v := e.Context["retryAfter"].(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	}
	return 0
}
