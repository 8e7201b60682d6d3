package service

import (
	"context"
	"sync"

	"github.com/bnema/vidpipe/internal/domain"
	"github.com/bnema/vidpipe/internal/port"
)

// EngineHandle owns the process wide engine. The engine cannot run two
// invocations at once, so access goes through a single Lease.
type EngineHandle struct {
	engine port.Engine
	slot   chan struct{}
}

func NewEngineHandle(engine port.Engine) *EngineHandle {
	return &EngineHandle{
		engine: engine,
		slot:   make(chan struct{}, 1),
	}
}

// Acquire blocks until the engine is free or ctx is done.
func (h *EngineHandle) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case h.slot <- struct{}{}:
		return h.newLease(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire returns domain.ErrEngineBusy instead of waiting.
func (h *EngineHandle) TryAcquire() (*Lease, error) {
	select {
	case h.slot <- struct{}{}:
		return h.newLease(), nil
	default:
		return nil, domain.ErrEngineBusy
	}
}

// newLease hands out the engine. A cancel left over from the previous
// holder must not stop the new one.
func (h *EngineHandle) newLease() *Lease {
	h.engine.ClearCancel()
	return &Lease{handle: h}
}

// Busy reports whether a lease is currently held.
func (h *EngineHandle) Busy() bool {
	return len(h.slot) == 1
}

// Lease is exclusive access to the engine until Release.
type Lease struct {
	handle *EngineHandle
	once   sync.Once
}

func (l *Lease) Engine() port.Engine {
	return l.handle.engine
}

// Release gives the engine back. Calling it more than once is a no-op.
func (l *Lease) Release() {
	l.once.Do(func() {
		<-l.handle.slot
	})
}
