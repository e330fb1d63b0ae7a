package lfu

import (
	"io"
	"log/slog"

	"github.com/orbital-agent/lfu/metrics"
)

// Option configures optional collaborators of a Cache.
type Option func(*options)

type options struct {
	recorder metrics.Recorder
	logger   *slog.Logger
}

func defaultOptions() *options {
	return &options{
		recorder: metrics.Nop(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithMetrics reports hits, misses, evictions and size changes to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger sets the logger used for eviction debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
