package httptracker

import (
	"context"
	"sync"
)

// Pending is the single caller-visible result of a whole request
// sequence, shared by every retry of that sequence. It completes
// exactly once; later resolve or fail calls are no-ops.
type Pending[T any] struct {
	once  sync.Once
	doneC chan struct{}
	value T
	err   error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{doneC: make(chan struct{})}
}

func (p *Pending[T]) resolve(v T) {
	p.once.Do(func() {
		p.value = v
		close(p.doneC)
	})
}

func (p *Pending[T]) fail(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.doneC)
	})
}

func (p *Pending[T]) resolved() bool {
	select {
	case <-p.doneC:
		return true
	default:
		return false
	}
}

// Done is closed once the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.doneC
}

// Wait blocks until the result is available or ctx ends.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.doneC:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
