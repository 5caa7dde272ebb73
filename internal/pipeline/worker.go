package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// callResult is the outcome of one pooled call, stored at its input's index.
type callResult[Out any] struct {
	Out Out
	Err error
}

// pool bounds the parallelism of source calls within a phase. The limiter is
// shared by every phase of a run so consecutive calls keep a minimum spacing.
type pool struct {
	workers     int
	limiter     *rate.Limiter
	callTimeout time.Duration
}

func newPool(workers int, interval, callTimeout time.Duration) *pool {
	if workers <= 0 {
		workers = 1
	}
	var limiter *rate.Limiter
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &pool{workers: workers, limiter: limiter, callTimeout: callTimeout}
}

// indexed carries one finished call back to the collector.
type indexed[Out any] struct {
	i   int
	res callResult[Out]
}

// runAll calls fn for every item. A failing call never cancels its siblings;
// its error is recorded in its slot. Only the collector writes the result
// slice. When ctx ends, calls still in flight are abandoned and their slots
// hold ctx.Err(), even if fn ignores ctx.
func runAll[In, Out any](ctx context.Context, p *pool, items []In, fn func(context.Context, In) (Out, error)) []callResult[Out] {
	out := make([]callResult[Out], len(items))
	if len(items) == 0 {
		return out
	}

	ch := make(chan indexed[Out], len(items))
	go func() {
		var g errgroup.Group
		g.SetLimit(p.workers)
		for i, item := range items {
			g.Go(func() error {
				var r callResult[Out]
				r.Out, r.Err = pooledCall(ctx, p, item, fn)
				ch <- indexed[Out]{i: i, res: r}
				return nil
			})
		}
		_ = g.Wait()
	}()

	finished := make([]bool, len(items))
	take := func(d indexed[Out]) {
		out[d.i] = d.res
		finished[d.i] = true
	}
	for n := 0; n < len(items); n++ {
		select {
		case d := <-ch:
			take(d)
		case <-ctx.Done():
			for drained := false; !drained; {
				select {
				case d := <-ch:
					take(d)
				default:
					drained = true
				}
			}
			for i := range out {
				if !finished[i] {
					out[i].Err = ctx.Err()
				}
			}
			return out
		}
	}
	return out
}

func pooledCall[In, Out any](ctx context.Context, p *pool, item In, fn func(context.Context, In) (Out, error)) (Out, error) {
	var zero Out
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return zero, err
		}
	}
	callCtx := ctx
	if p.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
	}
	return fn(callCtx, item)
}
