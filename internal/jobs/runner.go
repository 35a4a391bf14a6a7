// Package jobs sequences compression requests against one worker channel so
// that only one job is conceptually active at a time.
package jobs

import (
	"context"
	"sync"

	"svgod/internal/artifact"
	"svgod/internal/worker"
	"svgod/pkg/types"
)

// Runner owns the logical job chain on one Channel. Submit aborts whatever
// the previous job still has in flight and chains the new job after the
// previous job's settlement, so jobs complete in submission order and never
// overwrite shared downstream state out of order.
type Runner struct {
	ch       *worker.Channel
	previews artifact.Registry

	mu      sync.Mutex
	current chan struct{} // closed when the latest job settles
}

func NewRunner(ch *worker.Channel, previews artifact.Registry) *Runner {
	return &Runner{ch: ch, previews: previews}
}

// Submit cancels any outstanding request on the channel, then runs a process
// request for the payload. A rejection with worker.ErrAborted means the job
// was superseded by a later Submit, not that anything failed; callers must
// suppress it. Any other error is a genuine failure.
func (r *Runner) Submit(ctx context.Context, settings types.Settings, data string) (*artifact.Artifact, error) {
	r.ch.AbortAll()
	return r.chain(ctx, settings, data)
}

// Continue runs a follow-up pass for the same logical job without aborting:
// the second cleanup pass belongs to the job that issued the first and must
// not cancel a newer job that may have started meanwhile.
func (r *Runner) Continue(ctx context.Context, settings types.Settings, data string) (*artifact.Artifact, error) {
	return r.chain(ctx, settings, data)
}

func (r *Runner) chain(ctx context.Context, settings types.Settings, data string) (*artifact.Artifact, error) {
	r.mu.Lock()
	prev := r.current
	done := make(chan struct{})
	r.current = done
	r.mu.Unlock()
	defer close(done)

	// Continue from the prior job's settlement, ignoring how it settled.
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	res, err := r.ch.Send(ctx, types.ActionProcess, &settings, data)
	if err != nil {
		return nil, err
	}
	return artifact.New(res.Data, res.Width, res.Height, r.previews), nil
}
