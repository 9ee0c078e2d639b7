package recovery

import (
	"testing"
	"time"
)

func TestBackoff_Delay(t *testing.T) {
	strategy := DefaultBackoff()
	strategy.InitialDelay = 1 * time.Second
	strategy.MaxDelay = 10 * time.Second

	// Attempt 0: 1*2^0 = 1s
	if d := strategy.GetDelay(0); d != 1*time.Second {
		t.Errorf("expected 1s, got %v", d)
	}

	// Attempt 1: 1*2^1 = 2s
	if d := strategy.GetDelay(1); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}

	// Attempt 2: 1*2^2 = 4s
	if d := strategy.GetDelay(2); d != 4*time.Second {
		t.Errorf("expected 4s, got %v", d)
	}

	// Attempt 10: Cap at MaxDelay (10s)
	if d := strategy.GetDelay(10); d != 10*time.Second {
		t.Errorf("expected 10s, got %v", d)
	}
}

func TestBackoff_ShouldRetry(t *testing.T) {
	strategy := DefaultBackoff()
	strategy.MaxAttempts = 3

	if !strategy.ShouldRetry(0) {
		t.Error("should retry attempt 0")
	}
	if !strategy.ShouldRetry(2) {
		t.Error("should retry attempt 2")
	}
	if strategy.ShouldRetry(3) {
		t.Error("should NOT retry attempt 3 (max reached)")
	}
}
