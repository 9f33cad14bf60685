package interpreter

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of interpreter processes running at once.
// A size of 1 serializes all invocations.
type Pool struct {
	next Interpreter
	sem  *semaphore.Weighted
	size int
}

func NewPool(next Interpreter, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{next: next, sem: semaphore.NewWeighted(int64(size)), size: size}
}

func (p *Pool) Name() string {
	return p.next.Name()
}

func (p *Pool) Size() int {
	return p.size
}

// Interpret waits for a free slot while honouring ctx. Once the process is
// launched, cancelling ctx no longer aborts it.
func (p *Pool) Interpret(ctx context.Context, query string) (*Output, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer p.sem.Release(1)

	return p.next.Interpret(context.WithoutCancel(ctx), query)
}
