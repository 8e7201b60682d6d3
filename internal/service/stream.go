package service

import (
	"context"
	"sync"

	"github.com/bnema/vidpipe/internal/domain"
)

const eventBuffer = 16

// runFunc produces the events of one subscription and returns its terminal
// outcome. A nil error means completion.
type runFunc func(ctx context.Context, sub *Subscription) error

// Stream is a cold sequence of progress events. Nothing runs until
// Subscribe is called, and each subscription runs the job again.
type Stream struct {
	run runFunc
}

func newStream(run runFunc) *Stream {
	return &Stream{run: run}
}

// failedStream terminates every subscription with err without doing any work.
func failedStream(err error) *Stream {
	return newStream(func(context.Context, *Subscription) error {
		return err
	})
}

// Subscribe starts the job. Cancelling ctx disposes the subscription.
func (s *Stream) Subscribe(ctx context.Context) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan domain.Progress, eventBuffer),
		done:     make(chan struct{}),
		disposed: make(chan struct{}),
	}

	go func() {
		select {
		case <-ctx.Done():
			sub.Dispose()
		case <-sub.done:
		}
	}()

	go func() {
		sub.finish(s.run(ctx, sub))
	}()

	return sub
}

// Subscription is one run of a Stream. Events is closed after the terminal
// outcome is recorded, so Err is valid once the channel is drained.
type Subscription struct {
	ctx    context.Context
	cancel context.CancelFunc

	events   chan domain.Progress
	done     chan struct{}
	disposed chan struct{}

	disposeOnce sync.Once

	mu         sync.Mutex
	err        error
	terminated bool
	canceler   func()
}

func (s *Subscription) Events() <-chan domain.Progress {
	return s.events
}

// Done is closed once the terminal outcome is known.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal error. It is nil for completion and for a
// subscription that has not terminated yet.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until the subscription terminates and returns its error.
// Events not read by the caller are dropped.
func (s *Subscription) Wait() error {
	for range s.events {
	}
	return s.Err()
}

// Dispose stops the subscription. While the engine is working for it, the
// engine is asked to cancel; this happens at most once no matter how often
// Dispose is called. Disposing after the terminal outcome does nothing.
func (s *Subscription) Dispose() {
	s.disposeOnce.Do(func() {
		close(s.disposed)
		s.cancel()

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.terminated && s.canceler != nil {
			s.canceler()
		}
	})
}

func (s *Subscription) isDisposed() bool {
	select {
	case <-s.disposed:
		return true
	default:
		return false
	}
}

// arm registers cancel as the engine stop hook. It returns false when the
// subscription was disposed already, in which case the engine must not be
// started.
func (s *Subscription) arm(cancel func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isDisposed() {
		return false
	}
	s.canceler = cancel
	return true
}

// disarm drops the stop hook once the engine is no longer working for this
// subscription.
func (s *Subscription) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canceler = nil
}

// emit delivers p unless the subscription is disposed or terminated.
func (s *Subscription) emit(p domain.Progress) bool {
	s.mu.Lock()
	terminated := s.terminated
	s.mu.Unlock()
	if terminated {
		return false
	}

	select {
	case <-s.disposed:
		return false
	default:
	}
	select {
	case s.events <- p:
		return true
	case <-s.disposed:
		return false
	}
}

func (s *Subscription) finish(err error) {
	s.mu.Lock()
	s.terminated = true
	s.canceler = nil
	s.err = err
	s.mu.Unlock()

	close(s.events)
	close(s.done)
	s.cancel()
}
