package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bnema/vidpipe/internal/command"
	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/port"
	"github.com/bnema/vidpipe/internal/workspace"
)

// jobPlan is everything the runner needs to execute one job kind. It is
// built after the engine is leased, right before the invocation.
type jobPlan struct {
	kind       domain.JobKind
	args       []string
	artifact   string
	totalUnits int
	// outputs are files written by the engine. They are removed, never
	// recursively, after a cancel or a failed invocation.
	outputs []string
	// createdDirs were made by the job itself and are removed with their
	// contents after a cancel or a failed invocation.
	createdDirs []string
	// cleanupOnSuccess is removed after the final event was emitted.
	cleanupOnSuccess []string
	cancelDetail     string
}

type planFunc func(start time.Time) (*jobPlan, error)

// Runner executes jobs on the leased engine and maps engine return codes to
// stream outcomes.
type Runner struct {
	handle    *EngineHandle
	workspace *workspace.Manager
	builder   *command.Builder
	now       func() time.Time
	cleanup   func(path string) bool
	remove    func(path string) bool
}

func NewRunner(handle *EngineHandle, ws *workspace.Manager, builder *command.Builder) *Runner {
	return &Runner{
		handle:    handle,
		workspace: ws,
		builder:   builder,
		now:       time.Now,
		cleanup:   ws.Cleanup,
		remove:    ws.RemoveFile,
	}
}

func (r *Runner) stream(plan planFunc) *Stream {
	return newStream(func(ctx context.Context, sub *Subscription) error {
		return r.run(ctx, sub, plan)
	})
}

func (r *Runner) run(ctx context.Context, sub *Subscription, plan planFunc) error {
	lease, err := r.handle.Acquire(ctx)
	if err != nil {
		if sub.isDisposed() {
			return domain.ErrDisposed
		}
		return err
	}
	defer lease.Release()
	engine := lease.Engine()

	if !sub.arm(engine.Cancel) {
		return domain.ErrDisposed
	}
	defer sub.disarm()

	start := r.now()
	p, err := plan(start)
	if err != nil {
		return err
	}

	norm := newNormalizer(p.totalUnits, p.artifact, start, r.now)
	engine.SetStatisticsCallback(func(s port.Statistics) {
		sub.emit(norm.Tick(s.VideoFrameNumber))
	})
	engine.SetLogCallback(func(text string) {
		logger.EngineLine(string(p.kind), text)
	})
	defer engine.SetStatisticsCallback(nil)
	defer engine.SetLogCallback(nil)

	// A dispose from here on reaches the engine through the armed cancel,
	// and the engine refuses to start once it has seen one.
	if sub.isDisposed() {
		r.discard(p)
		return domain.ErrDisposed
	}
	logger.Debug.Printf("%s: executing %s", p.kind, logger.SanitizeForLog(strings.Join(p.args, " ")))
	rc := engine.Execute(p.args)
	// The process can exit cleanly while a dispose is on its way. The run
	// still counts as cancelled.
	if rc == domain.ReturnCodeSuccess && sub.isDisposed() {
		rc = domain.ReturnCodeCancel
	}

	switch rc {
	case domain.ReturnCodeSuccess:
		if !sub.emit(norm.Final(completionMessage(p.args))) {
			logger.Info.Printf("%s: disposed before the final event", p.kind)
			r.discard(p)
			return domain.ErrDisposed
		}
		r.removeAll(p.cleanupOnSuccess)
		logger.Info.Printf("%s: finished in %s", p.kind, r.now().Sub(start).Round(time.Millisecond))
		return nil
	case domain.ReturnCodeCancel:
		logger.Info.Printf("%s: cancelled", p.kind)
		r.discard(p)
		return &domain.EngineError{Kind: p.kind, Code: rc, Detail: p.cancelDetail}
	default:
		logger.Error.Printf("%s: engine returned rc=%d", p.kind, rc)
		if out := engine.LastOutput(); out != "" {
			for _, line := range strings.Split(out, "\n") {
				logger.EngineLine(string(p.kind), line)
			}
		}
		r.discard(p)
		return &domain.EngineError{Kind: p.kind, Code: rc}
	}
}

// discard removes what an unsuccessful run left behind.
func (r *Runner) discard(p *jobPlan) {
	for _, path := range p.outputs {
		if !r.remove(path) {
			logger.Warn.Printf("could not remove %s", logger.SanitizeForLog(path))
		}
	}
	r.removeAll(p.createdDirs)
}

func (r *Runner) removeAll(paths []string) {
	for _, path := range paths {
		if !r.cleanup(path) {
			logger.Warn.Printf("could not remove %s", logger.SanitizeForLog(path))
		}
	}
}

// completionMessage describes the finished invocation.
func completionMessage(args []string) string {
	return "Finished [" + strings.Join(args, ", ") + "]"
}

// IsCancellation reports whether err ended a job because it was cancelled
// or disposed rather than because the engine failed.
func IsCancellation(err error) bool {
	return errors.Is(err, domain.ErrCancelled) || errors.Is(err, domain.ErrDisposed) ||
		errors.Is(err, context.Canceled)
}
