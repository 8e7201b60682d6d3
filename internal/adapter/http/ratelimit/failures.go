// Package ratelimit blocks clients that keep presenting bad credentials.
package ratelimit

import (
	"sync"
	"time"
)

type failureRecord struct {
	count        int
	lastFailure  time.Time
	blockedUntil time.Time
}

// FailureLimiter blocks a client for blockDuration once it fails more than
// maxFailures times with no gap longer than window between failures.
type FailureLimiter struct {
	mu            sync.Mutex
	failures      map[string]*failureRecord
	maxFailures   int
	window        time.Duration
	blockDuration time.Duration
	now           func() time.Time
}

func NewFailureLimiter(maxFailures int, window, blockDuration time.Duration) *FailureLimiter {
	return &FailureLimiter{
		failures:      make(map[string]*failureRecord),
		maxFailures:   maxFailures,
		window:        window,
		blockDuration: blockDuration,
		now:           time.Now,
	}
}

// Blocked reports whether clientID is currently locked out and for how long.
func (l *FailureLimiter) Blocked(clientID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.failures[clientID]
	if !ok {
		return false, 0
	}
	now := l.now()
	if now.Before(record.blockedUntil) {
		return true, record.blockedUntil.Sub(now)
	}
	return false, 0
}

// Fail records a failed attempt by clientID.
func (l *FailureLimiter) Fail(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	record, ok := l.failures[clientID]
	if !ok {
		record = &failureRecord{}
		l.failures[clientID] = record
	}
	if now.Sub(record.lastFailure) > l.window {
		record.count = 0
	}
	record.count++
	record.lastFailure = now

	if record.count > l.maxFailures {
		record.blockedUntil = now.Add(l.blockDuration)
		record.count = 0
	}
}

// Reset forgets clientID after a successful attempt.
func (l *FailureLimiter) Reset(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, clientID)
}

// prune drops records that can no longer block anyone. Callers hold l.mu.
func (l *FailureLimiter) prune(now time.Time) {
	for clientID, record := range l.failures {
		if now.Sub(record.lastFailure) > l.window && !now.Before(record.blockedUntil) {
			delete(l.failures, clientID)
		}
	}
}
