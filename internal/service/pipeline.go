package service

import (
	"context"

	"github.com/bnema/vidpipe/internal/domain"
)

// Chain runs stages one after another as a single stream. A stage starts
// only after the previous one completed, so their events never interleave.
// The first stage error ends the chain and is returned unchanged. Disposing
// the chained subscription disposes the running stage and keeps later
// stages from starting.
func Chain(stages ...*Stream) *Stream {
	return newStream(func(ctx context.Context, sub *Subscription) error {
		for _, stage := range stages {
			if sub.isDisposed() {
				return domain.ErrDisposed
			}

			inner := stage.Subscribe(ctx)
			for p := range inner.Events() {
				if !sub.emit(p) {
					inner.Dispose()
				}
			}
			if err := inner.Err(); err != nil {
				return err
			}
		}
		return nil
	})
}
