// Package workers drains a queue of work items with a fixed number of concurrent lanes.
package workers

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/ortelius/forkpoint-cves/model"
	"golang.org/x/sync/errgroup"
)

// ItemFunc processes one work item to completion. Failures are the
// function's own concern; they never stop the pool.
type ItemFunc func(ctx context.Context, item model.WorkItem)

// Pool runs ItemFuncs on a fixed number of lanes
type Pool struct {
	lanes    int
	progress bool
}

// New creates a pool with the given number of lanes
func New(lanes int, progress bool) (*Pool, error) {
	if lanes <= 0 {
		return nil, fmt.Errorf("lanes must be >= 1, got %d", lanes)
	}
	return &Pool{lanes: lanes, progress: progress}, nil
}

// Lanes returns the configured lane count
func (p *Pool) Lanes() int {
	return p.lanes
}

// Run hands every item to exactly one lane and returns once all lanes have exited.
// Items are dequeued in FIFO order; completion order is unspecified.
// The only error is cancellation of ctx, after which queued items are left unprocessed.
func (p *Pool) Run(ctx context.Context, items []model.WorkItem, perItem ItemFunc) error {
	queue := make(chan model.WorkItem, len(items))
	for _, item := range items {
		queue <- item
	}
	close(queue)

	var bar *pb.ProgressBar
	if p.progress && len(items) > 0 {
		bar = pb.StartNew(len(items))
		defer bar.Finish()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.lanes; i++ {
		g.Go(func() error {
			for item := range queue {
				if err := gctx.Err(); err != nil {
					return err
				}
				perItem(gctx, item)
				if bar != nil {
					bar.Increment()
				}
			}
			return nil
		})
	}
	return g.Wait()
}
