// Package metrics defines the instrumentation hooks a cache reports to.
// Backends such as Prometheus implement [Recorder] so the cache itself
// stays independent of any metrics library.
package metrics

// Recorder receives cache events. Implementations must be safe for
// concurrent use. Size is called while the cache lock is held, so it must
// not block or call back into the cache; the other methods run after the
// lock is released.
type Recorder interface {
	// Hit records a Get that found its key.
	Hit()
	// Miss records a Get on an absent key.
	Miss()
	// Eviction records one entry removed to make room or by explicit Evict.
	Eviction()
	// Size reports the number of entries after a mutating operation.
	Size(n int)
}
