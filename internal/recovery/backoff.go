package recovery

import (
	"math"
	"time"
)

// ExponentialBackoff computes retry delays. It holds configuration
// only, so it is safe to call concurrently without coordination.
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

// DefaultBackoff returns sensible defaults for embedded tool retries.
// 1s, 2s, 4s, 8s (Max 30s)
func DefaultBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		MaxAttempts:  5,
	}
}

// GetDelay calculates delay: InitialDelay * 2^attempt
func (b *ExponentialBackoff) GetDelay(attempt int) time.Duration {
	delay := float64(b.InitialDelay) * math.Pow(2, float64(attempt))
	if delay > float64(b.MaxDelay) {
		return b.MaxDelay
	}
	return time.Duration(delay)
}

// ShouldRetry checks if max attempts have not been exceeded.
func (b *ExponentialBackoff) ShouldRetry(attempt int) bool {
	return attempt < b.MaxAttempts
}
