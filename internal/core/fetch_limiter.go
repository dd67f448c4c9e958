package core

// fetch_limiter.go bounds concurrent row source reads.
//
// Every session load (full table or one page) holds a slot while it runs.
// When all slots are occupied, new loads wait up to maxWait before failing
// with ErrTooManyFetches. WaitForDrain supports graceful shutdown.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyFetches is returned when all fetch slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyFetches = errors.New("too many concurrent table loads, please try again later")

// DefaultMaxConcurrentFetches is the default limit for parallel loads.
const DefaultMaxConcurrentFetches = 8

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// FetchLimiter limits concurrent row source reads.
type FetchLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewFetchLimiter creates a limiter that allows at most maxConcurrent
// simultaneous loads. Loads that cannot acquire a slot within maxWait
// receive ErrTooManyFetches.
func NewFetchLimiter(maxConcurrent int, maxWait time.Duration) *FetchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &FetchLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire waits for a slot.
// The caller MUST call Release() when the load completes (use defer).
func (l *FetchLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyFetches
	}
	l.active.Add(1)
	return nil
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *FetchLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *FetchLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of loads in progress.
func (l *FetchLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the maximum allowed concurrent loads.
func (l *FetchLimiter) MaxConcurrent() int {
	return l.max
}

// Available returns the number of free slots.
func (l *FetchLimiter) Available() int {
	return l.max - l.ActiveCount()
}

// WaitForDrain blocks until all active loads complete or ctx is cancelled.
func (l *FetchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// FetchLimiterStatus is a snapshot of the limiter's current state.
type FetchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring/debugging.
func (l *FetchLimiter) Status() FetchLimiterStatus {
	active := l.ActiveCount()
	return FetchLimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
