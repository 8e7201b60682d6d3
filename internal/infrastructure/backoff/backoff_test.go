package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_Attempt0(t *testing.T) {
	b := New(100*time.Millisecond, 5*time.Second, 2.0)
	assert.Equal(t, 100*time.Millisecond, b.Duration(0))
}

func TestDuration_Exponential(t *testing.T) {
	b := New(100*time.Millisecond, 5*time.Second, 2.0)
	b.Jitter = false

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, b.Duration(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestDuration_CapsAtMax(t *testing.T) {
	b := New(100*time.Millisecond, 500*time.Millisecond, 2.0)
	b.Jitter = false
	assert.Equal(t, 500*time.Millisecond, b.Duration(10))
	assert.Equal(t, 500*time.Millisecond, b.Duration(5000))
}

func TestDuration_WithJitter(t *testing.T) {
	b := New(100*time.Millisecond, 5*time.Second, 2.0)

	expected := 400 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := b.Duration(3)
		assert.GreaterOrEqual(t, d, expected/2)
		assert.LessOrEqual(t, d, expected)
	}
}

func TestDuration_NegativeAttempt(t *testing.T) {
	b := New(100*time.Millisecond, 5*time.Second, 2.0)
	assert.Equal(t, 100*time.Millisecond, b.Duration(-5))
}

func TestNew_Defaults(t *testing.T) {
	b := New(100*time.Millisecond, 5*time.Second, 2.0)

	assert.Equal(t, 100*time.Millisecond, b.Min)
	assert.Equal(t, 5*time.Second, b.Max)
	assert.Equal(t, 2.0, b.Factor)
	assert.True(t, b.Jitter)
}

func TestWait(t *testing.T) {
	b := New(time.Millisecond, time.Millisecond, 2.0)
	assert.NoError(t, b.Wait(context.Background(), 1))

	slow := New(time.Hour, time.Hour, 2.0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, slow.Wait(ctx, 1), context.Canceled)
}
