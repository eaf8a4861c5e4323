package uploader

import "time"

const (
	baseBackoff = 5 * time.Second

	// maxBackoffShift bounds the doubling so extreme attempt counts
	// cannot shift the duration negative. 5s << 7 is a bit over ten
	// minutes per wait.
	maxBackoffShift = 7
)

// retryState tracks one upload's progress through its bounded attempts.
// A fresh state is created per request and discarded once the request
// resolves. Attempt is 1-based once the first attempt has started.
type retryState struct {
	attempt     int
	maxAttempts int
	lastErr     error
}

func newRetryState(maxAttempts int) retryState {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return retryState{maxAttempts: maxAttempts}
}

// next records a failed attempt and returns the successor state plus
// whether another attempt may be made. Pure transition: the receiver is
// not mutated.
func (s retryState) next(err error) (retryState, bool) {
	s.attempt++
	s.lastErr = err
	return s, s.attempt < s.maxAttempts
}

// backoff returns the wait before the upcoming attempt: 2^k * 5s where
// k is the number of attempts already failed, capped once the doubling
// stops being useful.
func (s retryState) backoff() time.Duration {
	shift := s.attempt
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	return baseBackoff << shift
}
