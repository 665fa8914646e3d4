package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Jitter sleeps for a random duration between a minimum and a maximum. The
// pipeline uses it for the pre-scan humanization pause and for the delay
// between retry attempts.
type Jitter struct {
	minDelay time.Duration
	maxDelay time.Duration
	mu       sync.Mutex
}

func NewJitter(minDelay, maxDelay time.Duration) *Jitter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Jitter{
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Wait blocks for a jittered delay or until the context is cancelled.
func (j *Jitter) Wait(ctx context.Context) error {
	delay := j.delay()
	if delay <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (j *Jitter) SetDelay(minDelay, maxDelay time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.minDelay = minDelay
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	j.maxDelay = maxDelay
}

func (j *Jitter) delay() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.maxDelay == j.minDelay {
		return j.minDelay
	}

	delta := j.maxDelay - j.minDelay
	return j.minDelay + time.Duration(rand.Int63n(int64(delta)))
}
