// Package bench drives a concurrent, Zipf-skewed read-through workload
// against an LFU cache.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orbital-agent/lfu"
)

var ErrInvalidWorkload = errors.New("bench: invalid workload")

type Workload struct {
	Keys    int
	Workers int
	Ops     int
	Skew    float64
	Seed    int64
}

type Result struct {
	Ops       int64
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Elapsed   time.Duration
}

func (r Result) HitRatio() float64 {
	if r.Hits+r.Misses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Hits+r.Misses)
}

// Run splits w.Ops across w.Workers goroutines. Each op is a Get, and every
// miss is followed by a Put of the same key. Run stops early when ctx ends.
func Run(ctx context.Context, log *slog.Logger, c *lfu.Cache[uint64, uint64], w Workload) (Result, error) {
	if err := w.validate(); err != nil {
		return Result{}, err
	}

	before := c.Stats()
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	perWorker := w.Ops / w.Workers
	for i := 0; i < w.Workers; i++ {
		n := perWorker
		if i == 0 {
			n += w.Ops % w.Workers
		}
		seed := w.Seed + int64(i)
		g.Go(func() error {
			return worker(ctx, c, w, seed, n)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	after := c.Stats()
	res := Result{
		Hits:      after.Hits - before.Hits,
		Misses:    after.Misses - before.Misses,
		Evictions: after.Evictions - before.Evictions,
		Entries:   c.Len(),
		Elapsed:   time.Since(start),
	}
	res.Ops = res.Hits + res.Misses

	log.Info("workload finished",
		slog.Int64("ops", res.Ops),
		slog.Float64("hit_ratio", res.HitRatio()),
		slog.Int64("evictions", res.Evictions),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// validate rejects workloads Run cannot execute: rand.NewZipf returns nil
// for a skew of 1 or less.
func (w Workload) validate() error {
	switch {
	case w.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkload, w.Workers)
	case w.Keys <= 0:
		return fmt.Errorf("%w: keys must be positive, got %d", ErrInvalidWorkload, w.Keys)
	case w.Skew <= 1:
		return fmt.Errorf("%w: skew must be greater than 1, got %g", ErrInvalidWorkload, w.Skew)
	}
	return nil
}

func worker(ctx context.Context, c *lfu.Cache[uint64, uint64], w Workload, seed int64, n int) error {
	rng := rand.New(rand.NewSource(seed))
	zipf := rand.NewZipf(rng, w.Skew, 1, uint64(w.Keys-1))

	for i := 0; i < n; i++ {
		if i&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		key := zipf.Uint64()
		if _, ok := c.Get(key); !ok {
			c.Put(key, key*2)
		}
	}
	return nil
}
