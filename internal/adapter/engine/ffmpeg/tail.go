package ffmpeg

import (
	"strings"
	"sync"
)

// outputTail keeps the last max lines written by the engine.
type outputTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newOutputTail(max int) *outputTail {
	return &outputTail{max: max, lines: make([]string, 0, max)}
}

func (t *outputTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == t.max {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.max-1]
	}
	t.lines = append(t.lines, line)
}

func (t *outputTail) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = t.lines[:0]
}

func (t *outputTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
