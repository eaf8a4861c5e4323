package uploader

import (
	"errors"
	"testing"
	"time"
)

func TestRetryStateTransitions(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	s := newRetryState(3)

	s, retryable := s.next(errA)
	if !retryable {
		t.Fatal("first failure of 3 should be retryable")
	}
	if s.attempt != 1 || s.lastErr != errA {
		t.Errorf("state = %+v, want attempt=1 lastErr=a", s)
	}

	s, retryable = s.next(errB)
	if !retryable {
		t.Fatal("second failure of 3 should be retryable")
	}

	s, retryable = s.next(errA)
	if retryable {
		t.Fatal("third failure of 3 should be terminal")
	}
	if s.lastErr != errA {
		t.Errorf("lastErr = %v, want the final error", s.lastErr)
	}
}

func TestRetryStateDisabledRetries(t *testing.T) {
	s := newRetryState(1)
	if _, retryable := s.next(errors.New("x")); retryable {
		t.Error("maxAttempts=1 must never retry")
	}
}

func TestRetryStateClampsMaxAttempts(t *testing.T) {
	s := newRetryState(0)
	if s.maxAttempts != 1 {
		t.Errorf("maxAttempts = %d, want clamped to 1", s.maxAttempts)
	}
}

func TestBackoffDoubles(t *testing.T) {
	// Wait before attempt k is 2^(k-1) * 5s.
	wants := []time.Duration{10 * time.Second, 20 * time.Second, 40 * time.Second}

	s := newRetryState(4)
	for i, want := range wants {
		s, _ = s.next(errors.New("boom"))
		if got := s.backoff(); got != want {
			t.Errorf("backoff after failure %d = %s, want %s", i+1, got, want)
		}
	}
}

func TestBackoffCapped(t *testing.T) {
	// Large attempt counts must not shift the duration negative.
	ceiling := baseBackoff << maxBackoffShift

	s := retryState{attempt: 40, maxAttempts: 100}
	if got := s.backoff(); got != ceiling {
		t.Errorf("backoff at attempt 40 = %s, want cap %s", got, ceiling)
	}

	s.attempt = maxBackoffShift
	if got := s.backoff(); got != ceiling {
		t.Errorf("backoff at the cap boundary = %s, want %s", got, ceiling)
	}
	if s.backoff() <= 0 {
		t.Error("backoff must stay positive")
	}
}
