package utils

import (
	"math/rand"
	"time"
)

// Backoff retries a function with exponential delays plus jitter.
type Backoff struct {
	base       time.Duration
	jitter     time.Duration
	maxRetries int
}

func NewBackoff(base, jitter time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, jitter: jitter, maxRetries: maxRetries}
}

// Do runs fn until it succeeds or the retry budget is spent, sleeping
// base*2^i plus up to jitter between attempts.
func (b Backoff) Do(fn func(attempt int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		if i == b.maxRetries {
			break
		}
		sleep := time.Duration(1<<i) * b.base
		if b.jitter > 0 {
			sleep += time.Duration(rand.Int63n(int64(b.jitter)))
		}
		time.Sleep(sleep)
	}
	return err
}
