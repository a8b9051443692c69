package httpretry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestPolicyDelay(t *testing.T) {
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
		retry   bool
	}{
		{"429 backoff", &StatusError{StatusCode: http.StatusTooManyRequests}, 1, time.Second, true},
		{"503 second attempt", &StatusError{StatusCode: http.StatusServiceUnavailable}, 2, 2 * time.Second, true},
		{"retry-after honoured", &StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: 3 * time.Second}, 1, 3 * time.Second, true},
		{"retry-after capped", &StatusError{StatusCode: http.StatusBadGateway, RetryAfter: time.Minute}, 1, 5 * time.Second, true},
		{"backoff capped", &StatusError{StatusCode: http.StatusInternalServerError}, 4, 5 * time.Second, true},
		{"401 not retried", &StatusError{StatusCode: http.StatusUnauthorized}, 1, 0, false},
		{"retryable marker", &RetryableError{Err: errors.New("empty")}, 1, time.Second, true},
		{"plain error", errors.New("boom"), 1, 0, false},
		{"canceled", context.Canceled, 1, 0, false},
		{"last attempt", &StatusError{StatusCode: http.StatusTooManyRequests}, 5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := policy.Delay(ctx, tt.err, tt.attempt)
			if retry != tt.retry || delay != tt.want {
				t.Fatalf("Delay = (%v, %v), want (%v, %v)", delay, retry, tt.want, tt.retry)
			}
		})
	}
}

func TestPolicyDo(t *testing.T) {
	var slept []time.Duration
	policy := Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, Sleeper: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := policy.Do(context.Background(), "op", func(int) error {
		calls++
		if calls < 3 {
			return &StatusError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 || len(slept) != 2 {
		t.Fatalf("expected 3 calls and 2 sleeps, got %d/%d", calls, len(slept))
	}

	calls = 0
	err = policy.Do(context.Background(), "op", func(int) error {
		calls++
		return &StatusError{StatusCode: http.StatusServiceUnavailable}
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || calls != 3 {
		t.Fatalf("expected exhausted status error after 3 calls, got %v (%d calls)", err, calls)
	}
}

func TestPolicyDoStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, Sleeper: func(time.Duration) { cancel() }}
	calls := 0
	err := policy.Do(ctx, "op", func(int) error {
		calls++
		return &StatusError{StatusCode: http.StatusTooManyRequests}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := ParseRetryAfter("7"); !ok || d != 7*time.Second {
		t.Fatalf("unexpected seconds parse %v %v", d, ok)
	}
	if _, ok := ParseRetryAfter("-1"); ok {
		t.Fatal("expected negative rejected")
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if d, ok := ParseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("unexpected date parse %v %v", d, ok)
	}
	if _, ok := ParseRetryAfter("soon"); ok {
		t.Fatal("expected garbage rejected")
	}
}
