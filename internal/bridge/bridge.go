// Package bridge defines the contract between the iframe messaging
// transport and the recovery engine. The transport itself lives
// outside this module; on failure or timeout it normalizes the fault
// into a ServiceError and hands it to a Reporter.
package bridge

import (
	"context"
	"strings"

	"github.com/vietddude/toolguard/internal/core/domain"
)

// Reporter receives normalized faults. The recovery engine satisfies
// this interface.
type Reporter interface {
	HandleError(ctx context.Context, svcErr *domain.ServiceError) *domain.RecoveryResult
}

// Timeout builds the ServiceError for a message that never got a
// response from the embedded tool.
func Timeout(serviceID string) *domain.ServiceError {
	return domain.NewServiceError(
		domain.ErrorTypeTimeout,
		serviceID,
		"Message timeout: no response from service",
		true,
	)
}

// Failure classifies a transport-level error by its message. Producers
// that know better should build the ServiceError themselves.
func Failure(serviceID string, err error) *domain.ServiceError {
	msg := err.Error()
	lower := strings.ToLower(msg)

	errType := domain.ErrorTypeUnknown
	retryable := false

	switch {
	case strings.Contains(lower, "network") || strings.Contains(lower, "connection"):
		errType = domain.ErrorTypeNetwork
		retryable = true
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		errType = domain.ErrorTypeTimeout
		retryable = true
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests"):
		errType = domain.ErrorTypeRateLimited
		retryable = true
	case strings.Contains(lower, "unavailable") || strings.Contains(lower, "503"):
		errType = domain.ErrorTypeUnavailable
		retryable = true
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "validation"):
		errType = domain.ErrorTypeValidation
	}

	return domain.NewServiceError(errType, serviceID, msg, retryable)
}
