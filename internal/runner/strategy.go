package runner

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/selimozcann/URLTester/internal/model"
)

type stepFunc func(ctx context.Context, rec *model.Record)

// Strategy decides how records are dispatched to the shared probe step.
// Every record is handed to step exactly once.
type Strategy interface {
	Name() string
	dispatch(ctx context.Context, records []*model.Record, step stepFunc)
}

// Sequential probes records one at a time, in file order, on the calling
// goroutine.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) dispatch(ctx context.Context, records []*model.Record, step stepFunc) {
	for _, rec := range records {
		step(ctx, rec)
	}
}

// Parallel probes records on a bounded pool of goroutines. Workers <= 0
// uses runtime.GOMAXPROCS.
type Parallel struct {
	Workers int
}

func (Parallel) Name() string { return "parallel" }

func (p Parallel) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (p Parallel) dispatch(ctx context.Context, records []*model.Record, step stepFunc) {
	// A plain group: one failed probe never cancels its siblings.
	var g errgroup.Group
	g.SetLimit(p.workers())
	for _, rec := range records {
		rec := rec // per-iteration copy; go directive is 1.21
		g.Go(func() error {
			step(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
}

// Select returns Parallel when threaded is set, Sequential otherwise.
func Select(threaded bool, workers int) Strategy {
	if threaded {
		return Parallel{Workers: workers}
	}
	return Sequential{}
}
