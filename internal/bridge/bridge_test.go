package bridge

import (
	"errors"
	"testing"

	"github.com/vietddude/toolguard/internal/core/domain"
)

func TestTimeout(t *testing.T) {
	svcErr := Timeout("photopea")

	if svcErr.Type != domain.ErrorTypeTimeout {
		t.Errorf("expected timeout type, got %s", svcErr.Type)
	}
	if !svcErr.Retryable {
		t.Error("timeouts are retryable")
	}
	if svcErr.ServiceID != "photopea" {
		t.Errorf("unexpected service id %s", svcErr.ServiceID)
	}
}

func TestFailure_Classification(t *testing.T) {
	cases := []struct {
		msg       string
		wantType  domain.ErrorType
		retryable bool
	}{
		{"connection refused", domain.ErrorTypeNetwork, true},
		{"network is unreachable", domain.ErrorTypeNetwork, true},
		{"request timed out", domain.ErrorTypeTimeout, true},
		{"rate limit exceeded", domain.ErrorTypeRateLimited, true},
		{"429 Too Many Requests", domain.ErrorTypeRateLimited, true},
		{"503 Service Unavailable", domain.ErrorTypeUnavailable, true},
		{"invalid payload shape", domain.ErrorTypeValidation, false},
		{"something exploded", domain.ErrorTypeUnknown, false},
	}

	for _, tc := range cases {
		svcErr := Failure("pixlr", errors.New(tc.msg))
		if svcErr.Type != tc.wantType {
			t.Errorf("%q: expected %s, got %s", tc.msg, tc.wantType, svcErr.Type)
		}
		if svcErr.Retryable != tc.retryable {
			t.Errorf("%q: expected retryable=%v", tc.msg, tc.retryable)
		}
	}
}
