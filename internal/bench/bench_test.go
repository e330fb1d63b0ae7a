package bench

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-agent/lfu"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRun(t *testing.T) {
	c := lfu.MustNew[uint64, uint64](50, nil)
	w := Workload{Keys: 500, Workers: 4, Ops: 10_001, Skew: 1.2, Seed: 3}

	res, err := Run(context.Background(), discard, c, w)
	require.NoError(t, err)

	assert.EqualValues(t, w.Ops, res.Ops)
	assert.EqualValues(t, w.Ops, res.Hits+res.Misses)
	assert.LessOrEqual(t, res.Entries, 50)
	assert.Greater(t, res.Evictions, int64(0))
	// skewed keys fit a small cache well
	assert.Greater(t, res.HitRatio(), 0.3)
}

func TestRun_Canceled(t *testing.T) {
	c := lfu.MustNew[uint64, uint64](10, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, discard, c, Workload{Keys: 100, Workers: 2, Ops: 1000, Skew: 1.1, Seed: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_HitRatio(t *testing.T) {
	assert.Equal(t, 0.0, Result{}.HitRatio())
	assert.Equal(t, 0.75, Result{Hits: 3, Misses: 1}.HitRatio())
}

func TestRun_InvalidWorkload(t *testing.T) {
	valid := Workload{Keys: 100, Workers: 2, Ops: 100, Skew: 1.1, Seed: 1}

	tests := []struct {
		name   string
		mutate func(*Workload)
	}{
		{"zero workers", func(w *Workload) { w.Workers = 0 }},
		{"negative workers", func(w *Workload) { w.Workers = -1 }},
		{"zero keys", func(w *Workload) { w.Keys = 0 }},
		{"skew of one", func(w *Workload) { w.Skew = 1 }},
		{"skew below one", func(w *Workload) { w.Skew = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := lfu.MustNew[uint64, uint64](10, nil)
			w := valid
			tt.mutate(&w)

			_, err := Run(context.Background(), discard, c, w)
			require.ErrorIs(t, err, ErrInvalidWorkload)
			assert.Equal(t, lfu.CacheStats{}, c.Stats())
		})
	}
}
