package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		seen, total, want int
	}{
		{0, 121, 0},
		{1, 121, 1},
		{60, 121, 50},
		{120, 121, 100},
		{121, 121, 100},
		{130, 121, 100},
		{1, 3, 34},
		{-4, 10, 0},
		{5, 0, -1},
		{5, -1, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.seen, tt.total), "Percent(%d, %d)", tt.seen, tt.total)
	}
}

func TestNormalizer_NeverRegresses(t *testing.T) {
	start := time.Unix(1700000000, 0)
	now := start
	n := newNormalizer(10, "/frames", start, func() time.Time { return now })

	now = start.Add(time.Second)
	p := n.Tick(5)
	assert.Equal(t, 50, p.Percent)
	assert.Equal(t, time.Second, p.Elapsed)
	assert.Equal(t, "/frames", p.Artifact)
	assert.False(t, p.Indeterminate)
	assert.Empty(t, p.Message)

	assert.Equal(t, 50, n.Tick(3).Percent, "lower frame numbers keep the last value")
	assert.Equal(t, 100, n.Tick(25).Percent, "clamped at 100")

	now = start.Add(3 * time.Second)
	final := n.Final("Finished [x]")
	assert.Equal(t, 100, final.Percent)
	assert.Equal(t, "Finished [x]", final.Message)
	assert.Equal(t, 3*time.Second, final.Elapsed)
	assert.True(t, final.Final())
}

func TestNormalizer_UnknownTotal(t *testing.T) {
	start := time.Now()
	n := newNormalizer(0, "", start, time.Now)

	for _, frame := range []int{1, 50, 500} {
		p := n.Tick(frame)
		assert.Zero(t, p.Percent)
		assert.True(t, p.Indeterminate)
	}
	assert.Zero(t, n.Final("done").Percent)
}
