// Package backoff computes retry delays for the job worker.
package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

type Backoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
	Jitter bool
}

func New(min, max time.Duration, factor float64) *Backoff {
	return &Backoff{
		Min:    min,
		Max:    max,
		Factor: factor,
		Jitter: true,
	}
}

// Duration returns the delay before retry number attempt (1 based). With
// Jitter the delay is scaled by a random factor in [0.5, 1].
func (b *Backoff) Duration(attempt int) time.Duration {
	if attempt <= 0 {
		return b.Min
	}

	duration := float64(b.Min) * math.Pow(b.Factor, float64(attempt-1))
	if duration > float64(b.Max) || math.IsInf(duration, 0) {
		duration = float64(b.Max)
	}

	if b.Jitter {
		duration = duration * (0.5 + rand.Float64()*0.5)
	}

	return time.Duration(duration)
}

// Wait sleeps for Duration(attempt) or until ctx is done.
func (b *Backoff) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Duration(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
