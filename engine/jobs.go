package engine

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxJobs     = 2048
	DefaultMaxBarriers = 8
)

var ErrJobSystemClosed = errors.New("engine: job system closed")

// JobSystem runs the parallel phases of a step on a bounded set of workers.
// A barrier is one fan-out/wait cycle; at most maxBarriers may be in flight
// across all worlds sharing the system.
type JobSystem struct {
	workers  int
	maxJobs  int
	barriers chan struct{}
	closed   chan struct{}
}

// DefaultWorkers keeps one core for the caller's frame loop
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

func NewJobSystem(workers, maxJobs, maxBarriers int) *JobSystem {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	if maxBarriers <= 0 {
		maxBarriers = DefaultMaxBarriers
	}

	return &JobSystem{
		workers:  workers,
		maxJobs:  maxJobs,
		barriers: make(chan struct{}, maxBarriers),
		closed:   make(chan struct{}),
	}
}

func (js *JobSystem) Workers() int {
	return js.workers
}

func (js *JobSystem) MaxJobs() int {
	return js.maxJobs
}

// Close rejects further work; running barriers complete normally
func (js *JobSystem) Close() {
	select {
	case <-js.closed:
	default:
		close(js.closed)
	}
}

// Run splits [0, n) into contiguous chunks and calls fn for each chunk on the
// workers, blocking until every chunk returned. The first error cancels the
// remaining chunks. A nil job system runs fn inline.
func (js *JobSystem) Run(ctx context.Context, n int, fn func(start, end int) error) error {
	if n == 0 {
		return nil
	}
	if js == nil {
		return fn(0, n)
	}

	// closed wins over a free barrier slot
	select {
	case <-js.closed:
		return ErrJobSystemClosed
	default:
	}

	select {
	case <-js.closed:
		return ErrJobSystemClosed
	case js.barriers <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-js.barriers }()

	jobs := min(n, js.workers*4, js.maxJobs)
	chunk := (n + jobs - 1) / jobs

	// small batches are cheaper on the calling goroutine
	if js.workers == 1 || jobs == 1 {
		return fn(0, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(js.workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(start, end)
		})
	}

	return g.Wait()
}

// ForEach is Run for callbacks that cannot fail
func ForEach[T any](ctx context.Context, js *JobSystem, data []T, fn func(T)) error {
	return js.Run(ctx, len(data), func(start, end int) error {
		for i := start; i < end; i++ {
			fn(data[i])
		}
		return nil
	})
}
