package syncer

import (
	"time"

	"github.com/localfirst/offsync/internal/config"
)

// maxBackoffShift caps exponential growth so the delay never overflows.
const maxBackoffShift = 16

// backoffDelay computes the retry delay after the given number of attempts:
// base * 2^attempts for exponential growth, base * attempts for linear.
func backoffDelay(base time.Duration, strategy config.BackoffStrategy, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	switch strategy {
	case config.BackoffLinear:
		return base * time.Duration(attempts)
	default:
		shift := attempts
		if shift > maxBackoffShift {
			shift = maxBackoffShift
		}
		return base * time.Duration(1<<shift)
	}
}
