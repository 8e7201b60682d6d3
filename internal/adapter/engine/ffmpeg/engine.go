package ffmpeg

import (
	"bufio"
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/port"
)

const (
	defaultGracePeriod = 10 * time.Second
	tailLines          = 50
	returnCodeFailure  = 1
)

// progressArgs make ffmpeg report machine readable progress on stdout and
// keep stderr for diagnostics only.
var progressArgs = []string{"-hide_banner", "-nostdin", "-progress", "pipe:1", "-nostats"}

// Engine runs the ffmpeg binary. One invocation runs at a time.
type Engine struct {
	path        string
	gracePeriod time.Duration
	tail        *outputTail

	cbMu    sync.Mutex
	statsCb port.StatisticsCallback
	logCb   port.LogCallback

	mu        sync.Mutex
	running   *exec.Cmd
	cancelled bool
	// pending is a cancel that arrived while no process was running.
	pending bool
}

func NewEngine(path string) *Engine {
	if path == "" {
		path = "ffmpeg"
	}
	return &Engine{
		path:        path,
		gracePeriod: defaultGracePeriod,
		tail:        newOutputTail(tailLines),
	}
}

// WithGracePeriod sets how long Cancel waits after the interrupt before
// killing the process.
func (e *Engine) WithGracePeriod(d time.Duration) *Engine {
	e.gracePeriod = d
	return e
}

func (e *Engine) SetStatisticsCallback(cb port.StatisticsCallback) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.statsCb = cb
}

func (e *Engine) SetLogCallback(cb port.LogCallback) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.logCb = cb
}

// Execute runs ffmpeg with args and blocks until it exits. It returns the
// process exit code, domain.ReturnCodeCancel when the run was cancelled, or
// 1 when the process could not be started. A cancel requested while idle
// makes it return domain.ReturnCodeCancel without starting ffmpeg.
func (e *Engine) Execute(args []string) int {
	full := make([]string, 0, len(progressArgs)+len(args))
	full = append(full, progressArgs...)
	full = append(full, args...)
	cmd := exec.Command(e.path, full...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.emitLog("create stdout pipe: " + err.Error())
		return returnCodeFailure
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.emitLog("create stderr pipe: " + err.Error())
		return returnCodeFailure
	}

	e.tail.reset()

	e.mu.Lock()
	if e.pending {
		e.pending = false
		e.mu.Unlock()
		_ = stdout.Close()
		_ = stderr.Close()
		e.emitLog("cancelled before start")
		return domain.ReturnCodeCancel
	}
	e.cancelled = false
	if err := cmd.Start(); err != nil {
		e.mu.Unlock()
		e.emitLog("start ffmpeg: " + err.Error())
		return returnCodeFailure
	}
	e.running = cmd
	e.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := parseProgress(stdout, e.emitStats); err != nil {
			logger.Warn.Printf("read ffmpeg progress: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)
		for scanner.Scan() {
			e.emitLog(scanner.Text())
		}
	}()
	wg.Wait()
	waitErr := cmd.Wait()

	e.mu.Lock()
	e.running = nil
	cancelled := e.cancelled
	e.mu.Unlock()

	if cancelled {
		return domain.ReturnCodeCancel
	}
	return exitCode(waitErr)
}

// Cancel interrupts the running invocation. When idle, the next Execute is
// cancelled instead.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running == nil || e.running.Process == nil {
		e.pending = true
		return
	}
	e.cancelled = true

	cmd := e.running
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		logger.Warn.Printf("interrupt ffmpeg: %v", err)
	}
	time.AfterFunc(e.gracePeriod, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.running == cmd {
			logger.Warn.Printf("ffmpeg did not stop within %s, killing", e.gracePeriod)
			_ = cmd.Process.Kill()
		}
	})
}

// ClearCancel drops a cancel requested while idle.
func (e *Engine) ClearCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = false
}

// LastOutput returns the tail of the diagnostic output of the latest run.
func (e *Engine) LastOutput() string {
	return e.tail.String()
}

func (e *Engine) emitStats(s port.Statistics) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	if e.statsCb != nil {
		e.statsCb(s)
	}
}

func (e *Engine) emitLog(text string) {
	e.tail.add(text)
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	if e.logCb != nil {
		e.logCb(text)
	}
}

func exitCode(err error) int {
	if err == nil {
		return domain.ReturnCodeSuccess
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return returnCodeFailure
}

var _ port.Engine = (*Engine)(nil)
