package resources

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool is a bounded group of workers scoped to one pipeline stage.
// Tasks submitted after the pool is aborted become no-ops.
type WorkerPool struct {
	id     string
	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func newWorkerPool(parent context.Context, id string, workers int) *WorkerPool {
	ctx, cancel := context.WithCancel(parent)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return &WorkerPool{id: id, g: g, ctx: ctx, cancel: cancel}
}

// ID returns the identifier the pool is tracked under.
func (p *WorkerPool) ID() string { return p.id }

// Go submits a task. The task's first error cancels the pool's context,
// which stops further tasks from doing work.
func (p *WorkerPool) Go(task func(ctx context.Context) error) {
	p.g.Go(func() error {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		return task(p.ctx)
	})
}

// Wait blocks until all submitted tasks finish and returns the first error.
func (p *WorkerPool) Wait() error {
	return p.g.Wait()
}

// abort cancels outstanding work without waiting for it.
func (p *WorkerPool) abort() {
	p.cancel()
}
