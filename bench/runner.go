package bench

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitsdb/hitsdb/core"
)

// Opts control a suite run.
type Opts struct {
	// Iterations per query. Defaults to 3.
	Iterations int

	// Workers run query iterations concurrently. Defaults to 1.
	Workers int

	// TimeLimit bounds each single query execution. Zero means no
	// limit.
	TimeLimit time.Duration
}

// Event reports per-query progress to an optional observer.
type Event struct {
	Num       int           `json:"num"`
	Name      string        `json:"name"`
	Iteration int           `json:"iteration"`
	Elapsed   time.Duration `json:"elapsed"`
	Rows      int           `json:"rows"`
	Err       string        `json:"error,omitempty"`
}

func (o *Opts) setDefaults() {
	if o.Iterations <= 0 {
		o.Iterations = 3
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
}

// Run executes the suite against the embedded engine, collecting
// per-query latencies over the configured iterations.
func Run(ctx context.Context, hdb *core.HitsDB, queries []Query, opt Opts,
	progress func(Event)) (*Report, error) {

	opt.setDefaults()
	rep := newReport("embedded")

	for _, q := range queries {
		qr, err := runOne(ctx, q, opt, progress, func(c context.Context) (int, error) {
			res, err := hdb.Query(c, q.SQL)
			if err != nil {
				return 0, err
			}
			return res.RowCount, nil
		})
		if err != nil {
			return nil, err
		}
		rep.Results = append(rep.Results, qr)
	}

	rep.Elapsed = time.Since(rep.Started)
	return rep, nil
}

// runOne times a single query over the configured iterations using a
// bounded worker group.
func runOne(ctx context.Context, q Query, opt Opts, progress func(Event),
	exec func(context.Context) (int, error)) (QueryResult, error) {

	var (
		mu   sync.Mutex
		lats []time.Duration
		rows int
		errs int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.Workers)

	for it := 0; it < opt.Iterations; it++ {
		it := it
		g.Go(func() error {
			c := gctx
			if opt.TimeLimit > 0 {
				var cancel context.CancelFunc
				c, cancel = context.WithTimeout(gctx, opt.TimeLimit)
				defer cancel()
			}

			start := time.Now()
			n, err := exec(c)
			elapsed := time.Since(start)

			ev := Event{Num: q.Num, Name: q.Name, Iteration: it, Elapsed: elapsed, Rows: n}

			mu.Lock()
			if err != nil {
				errs++
				ev.Err = err.Error()
			} else {
				lats = append(lats, elapsed)
				rows = n
			}
			mu.Unlock()

			if progress != nil {
				progress(ev)
			}

			// Iteration errors are reported, not fatal; only a dead
			// parent context stops the run.
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return QueryResult{}, err
	}
	return summarize(q, lats, rows, errs), nil
}
