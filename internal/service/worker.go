package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/infrastructure/backoff"
	"github.com/bnema/vidpipe/internal/infrastructure/logger"
	"github.com/bnema/vidpipe/internal/port"
)

const defaultPollInterval = 500 * time.Millisecond

// JobStreamer turns a queued job into a runnable stream.
type JobStreamer interface {
	StreamFor(job *domain.Job) (*Stream, error)
}

// Worker claims queued jobs one at a time and runs them to a terminal
// status. The engine runs a single invocation at a time, so there is only
// ever one worker.
type Worker struct {
	jobQueue     port.JobQueue
	store        port.JobStore
	streamer     JobStreamer
	eventBus     EventPublisher
	pollInterval time.Duration
	backoff      *backoff.Backoff

	mu      sync.Mutex
	current *runningJob
}

type runningJob struct {
	id        string
	sub       *Subscription
	cancelled bool
}

func NewWorker(
	jobQueue port.JobQueue,
	store port.JobStore,
	streamer JobStreamer,
	eventBus EventPublisher,
) *Worker {
	return &Worker{
		jobQueue:     jobQueue,
		store:        store,
		streamer:     streamer,
		eventBus:     eventBus,
		pollInterval: defaultPollInterval,
		backoff:      backoff.New(time.Second, time.Minute, 2.0),
	}
}

// Start resets jobs left running by a previous process and starts the
// claim loop in the background. The returned channel is closed once the
// loop has stopped.
func (w *Worker) Start(ctx context.Context) <-chan struct{} {
	if err := w.jobQueue.ResetStalled(); err != nil {
		logger.Error.Printf("failed to reset stalled jobs: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	logger.Info.Printf("worker started")
	return done
}

// Run claims and processes jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	failures := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("worker shutting down")
			return
		default:
		}

		job, err := w.claim()
		if err != nil {
			failures++
			logger.Error.Printf("failed to claim job (attempt %d): %v", failures, err)
			if w.backoff.Wait(ctx, failures) != nil {
				return
			}
			continue
		}
		failures = 0

		if job == nil {
			select {
			case <-ctx.Done():
			case <-time.After(w.pollInterval):
			}
			continue
		}

		logger.Info.Printf("processing job %s (kind=%s)", job.ID, job.Kind)
		w.process(ctx, job)
	}
}

// Cancel stops jobID. A running job is disposed, a queued job is marked
// cancelled. Claiming and cancelling are serialized, so a job is never
// cancelled in the queue while the worker picks it up.
func (w *Worker) Cancel(jobID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current != nil && w.current.id == jobID {
		w.current.cancelled = true
		if w.current.sub != nil {
			w.current.sub.Dispose()
		}
		return nil
	}

	if err := w.jobQueue.Cancel(jobID, "cancelled before start"); err != nil {
		return err
	}
	w.publish(jobID, Event{Type: EventFailed, Status: domain.JobStatusCancelled, Error: "cancelled before start"})
	return nil
}

// Current returns the id of the job being processed, if any.
func (w *Worker) Current() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return "", false
	}
	return w.current.id, true
}

func (w *Worker) claim() (*domain.Job, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	job, err := w.jobQueue.Claim()
	if err != nil || job == nil {
		return nil, err
	}
	w.current = &runningJob{id: job.ID}
	return job, nil
}

func (w *Worker) process(ctx context.Context, job *domain.Job) {
	defer func() {
		w.mu.Lock()
		w.current = nil
		w.mu.Unlock()
	}()

	w.publish(job.ID, Event{Type: EventProgress, Status: domain.JobStatusRunning})

	stream, err := w.streamer.StreamFor(job)
	if err != nil {
		w.finish(job.ID, domain.Progress{}, err)
		return
	}

	sub := stream.Subscribe(ctx)
	w.mu.Lock()
	w.current.sub = sub
	if w.current.cancelled {
		sub.Dispose()
	}
	w.mu.Unlock()

	var last domain.Progress
	for p := range sub.Events() {
		last = p
		if err := w.store.UpdateProgress(job.ID, p); err != nil {
			logger.Warn.Printf("job %s: failed to save progress: %v", job.ID, err)
		}
		w.publish(job.ID, Event{Type: EventProgress, Status: domain.JobStatusRunning, Progress: p})
	}

	w.mu.Lock()
	requested := w.current.cancelled
	w.mu.Unlock()

	err = sub.Err()
	// Left running so ResetStalled requeues it on the next start.
	if err != nil && ctx.Err() != nil && !requested {
		logger.Info.Printf("job %s interrupted by shutdown", job.ID)
		return
	}

	w.finish(job.ID, last, err)
}

func (w *Worker) finish(jobID string, last domain.Progress, err error) {
	switch {
	case err == nil:
		if qErr := w.jobQueue.Complete(jobID, last); qErr != nil {
			logger.Error.Printf("job %s: failed to mark complete: %v", jobID, qErr)
		}
		logger.Info.Printf("job %s completed", jobID)
		w.publish(jobID, Event{Type: EventDone, Status: domain.JobStatusSucceeded, Progress: last})

	case IsCancellation(err):
		if qErr := w.jobQueue.Cancel(jobID, err.Error()); qErr != nil && !errors.Is(qErr, domain.ErrNotFound) {
			logger.Error.Printf("job %s: failed to mark cancelled: %v", jobID, qErr)
		}
		logger.Info.Printf("job %s cancelled: %v", jobID, err)
		w.publish(jobID, Event{Type: EventFailed, Status: domain.JobStatusCancelled, Progress: last, Error: err.Error()})

	default:
		if qErr := w.jobQueue.Fail(jobID, err.Error()); qErr != nil {
			logger.Error.Printf("job %s: failed to mark failed: %v", jobID, qErr)
		}
		logger.Error.Printf("job %s failed: %v", jobID, err)
		w.publish(jobID, Event{Type: EventFailed, Status: domain.JobStatusFailed, Progress: last, Error: err.Error()})
	}
}

func (w *Worker) publish(jobID string, event Event) {
	if w.eventBus != nil {
		w.eventBus.Publish(jobID, event)
	}
}
