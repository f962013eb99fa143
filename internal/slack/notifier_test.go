package slack

import (
	"errors"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	n := &Notifier{}

	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "message_limit_exceeded error",
			err:      errors.New("message_limit_exceeded"),
			expected: true,
		},
		{
			name:     "rate_limited error",
			err:      errors.New("rate_limited"),
			expected: true,
		},
		{
			name:     "too_many_requests error",
			err:      errors.New("too_many_requests"),
			expected: true,
		},
		{
			name:     "other error",
			err:      errors.New("some other error"),
			expected: false,
		},
		{
			name:     "case insensitive",
			err:      errors.New("MESSAGE_LIMIT_EXCEEDED"),
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := n.isRateLimitError(tc.err)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for error: %v", tc.expected, result, tc.err)
			}
		})
	}
}

func TestHandleRateLimit(t *testing.T) {
	n := &Notifier{}

	n.handleRateLimit(errors.New("message_limit_exceeded"))
	n.mu.Lock()
	backoff := n.rateLimitBackoff
	n.mu.Unlock()
	if backoff != 5*time.Minute {
		t.Errorf("Expected 5 minute backoff for message_limit_exceeded, got %v", backoff)
	}
	if !n.IsRateLimited() {
		t.Error("Expected notifier to report rate limited during backoff")
	}

	n.handleRateLimit(errors.New("rate_limited"))
	n.mu.Lock()
	backoff = n.rateLimitBackoff
	n.mu.Unlock()
	if backoff != 1*time.Minute {
		t.Errorf("Expected 1 minute backoff for rate_limited, got %v", backoff)
	}
}

func TestDisabledNotifier(t *testing.T) {
	n := NewNotifier("", "")
	if n != nil {
		t.Fatal("Expected nil notifier when token is missing")
	}
	// Calls on the nil notifier must be safe no-ops.
	n.Notify("hello")
	if n.IsRateLimited() {
		t.Error("Nil notifier should never report rate limited")
	}
}
