// Package prometheus provides a Prometheus implementation of
// [metrics.Recorder] for LFU caches.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbital-agent/lfu/metrics"
)

// recorder implements metrics.Recorder using Prometheus.
type recorder struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	entries   prometheus.Gauge
}

// NewRecorder registers the cache metrics on reg. name is attached as the
// constant "cache" label so several caches can share one registry.
func NewRecorder(reg prometheus.Registerer, name string) metrics.Recorder {
	labels := prometheus.Labels{"cache": name}

	r := &recorder{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lfu_cache_hits_total",
			Help:        "Total number of lookups that found their key",
			ConstLabels: labels,
		}),

		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lfu_cache_misses_total",
			Help:        "Total number of lookups on absent keys",
			ConstLabels: labels,
		}),

		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "lfu_cache_evictions_total",
			Help:        "Total number of entries evicted",
			ConstLabels: labels,
		}),

		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "lfu_cache_entries",
			Help:        "Current number of cached entries",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(
		r.hits,
		r.misses,
		r.evictions,
		r.entries,
	)

	return r
}

func (r *recorder) Hit()       { r.hits.Inc() }
func (r *recorder) Miss()      { r.misses.Inc() }
func (r *recorder) Eviction()  { r.evictions.Inc() }
func (r *recorder) Size(n int) { r.entries.Set(float64(n)) }

var _ metrics.Recorder = (*recorder)(nil)
