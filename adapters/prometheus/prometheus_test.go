package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-agent/lfu"
)

func TestNewRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, "test")
	require.NotNil(t, r)

	r.Hit()
	r.Hit()
	r.Miss()
	r.Eviction()
	r.Size(7)

	rec := r.(*recorder)
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.evictions))
	assert.Equal(t, 7.0, testutil.ToFloat64(rec.entries))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestNewRecorder_DuplicateNamePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg, "dup")

	assert.Panics(t, func() { NewRecorder(reg, "dup") })
	assert.NotPanics(t, func() { NewRecorder(reg, "other") })
}

func TestRecorderWiredIntoCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, "users")
	c, err := lfu.New[string, int](2, nil, lfu.WithMetrics(r))
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Get("missing")
	c.Put("c", 3) // evicts b

	rec := r.(*recorder)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.evictions))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.entries))

	c.Clear()
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.entries))
}
