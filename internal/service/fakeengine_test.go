package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bnema/vidpipe/internal/command"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/port"
	"github.com/bnema/vidpipe/internal/workspace"
)

// fakeEngine runs a script instead of a process. Scripts drive the
// registered callbacks and choose the return code.
type fakeEngine struct {
	script func(f *fakeEngine, args []string) int

	mu          sync.Mutex
	statsCb     port.StatisticsCallback
	logCb       port.LogCallback
	output      string
	executed    [][]string
	cancelCalls int
	clearCalls  int
	cancelled   chan struct{}
}

func newFakeEngine(script func(f *fakeEngine, args []string) int) *fakeEngine {
	return &fakeEngine{
		script:    script,
		cancelled: make(chan struct{}),
	}
}

func (f *fakeEngine) Execute(args []string) int {
	f.mu.Lock()
	f.executed = append(f.executed, args)
	f.mu.Unlock()
	return f.script(f, args)
}

func (f *fakeEngine) SetStatisticsCallback(cb port.StatisticsCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCb = cb
}

func (f *fakeEngine) SetLogCallback(cb port.LogCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCb = cb
}

func (f *fakeEngine) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	if f.cancelCalls == 1 {
		close(f.cancelled)
	}
}

func (f *fakeEngine) ClearCancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
}

func (f *fakeEngine) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearCalls
}

func (f *fakeEngine) LastOutput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.output
}

func (f *fakeEngine) tick(frame int) {
	f.mu.Lock()
	cb := f.statsCb
	f.mu.Unlock()
	if cb != nil {
		cb(port.Statistics{VideoFrameNumber: frame})
	}
}

func (f *fakeEngine) log(text string) {
	f.mu.Lock()
	cb := f.logCb
	f.output = text
	f.mu.Unlock()
	if cb != nil {
		cb(text)
	}
}

// waitCancel blocks like a running process until Cancel is called.
func (f *fakeEngine) waitCancel() int {
	select {
	case <-f.cancelled:
		return domain.ReturnCodeCancel
	case <-time.After(5 * time.Second):
		return 1
	}
}

func (f *fakeEngine) calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.executed...)
}

func (f *fakeEngine) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelCalls
}

func succeedAfter(frames int) func(*fakeEngine, []string) int {
	return func(f *fakeEngine, _ []string) int {
		for i := 1; i <= frames; i++ {
			f.tick(i)
		}
		return domain.ReturnCodeSuccess
	}
}

func runUntilCancelled(f *fakeEngine, _ []string) int {
	f.tick(1)
	return f.waitCancel()
}

func failWith(rc int) func(*fakeEngine, []string) int {
	return func(f *fakeEngine, _ []string) int {
		f.log("Conversion failed!")
		return rc
	}
}

type testEnv struct {
	engine     *fakeEngine
	handle     *EngineHandle
	workspace  *workspace.Manager
	transcoder *Transcoder
	root       string
}

func newTestEnv(t *testing.T, engine *fakeEngine) *testEnv {
	t.Helper()
	root := t.TempDir()
	ws := workspace.NewManager(root, filepath.Join(root, "cache"))
	handle := NewEngineHandle(engine)
	return &testEnv{
		engine:     engine,
		handle:     handle,
		workspace:  ws,
		transcoder: NewTranscoder(handle, ws, command.NewBuilder(2)),
		root:       root,
	}
}

func drain(sub *Subscription) ([]domain.Progress, error) {
	var events []domain.Progress
	for p := range sub.Events() {
		events = append(events, p)
	}
	return events, sub.Err()
}

func nextEvent(t *testing.T, sub *Subscription) domain.Progress {
	t.Helper()
	select {
	case p, ok := <-sub.Events():
		require.True(t, ok, "stream ended before an event")
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no event within timeout")
		return domain.Progress{}
	}
}

func waitDone(t *testing.T, sub *Subscription) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- sub.Wait() }()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not terminate")
		return nil
	}
}

func hasArg(args []string, substr string) bool {
	for _, a := range args {
		if strings.Contains(a, substr) {
			return true
		}
	}
	return false
}

func frameTimes(n int) []string {
	times := make([]string, n)
	for i := range times {
		times[i] = fmt.Sprintf("%.3f", float64(i)/30)
	}
	return times
}
