// Package lfu implements a fixed-capacity least-frequently-used cache.
//
// When the cache is full, inserting a new key evicts the entry with the
// smallest access count; among entries sharing that count, the least
// recently touched one goes first. Get and Put run in O(1) time.
//
// Every public method holds a single mutex for its entire body, so each
// call is atomic with respect to every other call.
package lfu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/orbital-agent/lfu/metrics"
)

var ErrInvalidCapacity = errors.New("lfu: invalid capacity")

// EvictionCallback is called with every entry removed by capacity
// pressure or Evict. It runs after the cache lock is released, so it may
// call back into the cache.
type EvictionCallback[K comparable, V any] func(key K, value V)

type Cache[K comparable, V any] struct {
	capacity int
	size     int

	keyMap  map[K]*entry[K, V]
	freqMap map[int]*freqList[K, V]
	minFreq int

	mu       sync.Mutex
	onEvict  EvictionCallback[K, V]
	recorder metrics.Recorder
	log      *slog.Logger

	hits      int64
	misses    int64
	evictions int64
}

type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// New creates an LFU cache holding at most capacity entries. A capacity
// of zero yields a cache that never stores anything. onEvict may be nil.
func New[K comparable, V any](
	capacity int,
	onEvict EvictionCallback[K, V],
	opts ...Option,
) (*Cache[K, V], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Cache[K, V]{
		capacity: capacity,
		keyMap:   make(map[K]*entry[K, V], capacity),
		freqMap:  make(map[int]*freqList[K, V]),
		onEvict:  onEvict,
		recorder: o.recorder,
		log:      o.logger,
	}, nil
}

// MustNew is like New but panics on an invalid capacity.
func MustNew[K comparable, V any](capacity int, onEvict EvictionCallback[K, V], opts ...Option) *Cache[K, V] {
	c, err := New(capacity, onEvict, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cache[K, V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Get returns the value stored for key and counts the lookup as an access.
// The boolean is false on a miss; the returned value is then the zero
// value and must not be used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	value, ok := c.get(key)
	if ok {
		c.recorder.Hit()
	} else {
		c.recorder.Miss()
	}
	return value, ok
}

func (c *Cache[K, V]) get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.keyMap[key]
	if !ok {
		c.misses++
		return value, false
	}
	c.increment(ent)
	c.hits++
	return ent.value, true
}

// Put inserts or overwrites key. Overwriting counts as an access. Inserting
// into a full cache evicts exactly one entry first.
func (c *Cache[K, V]) Put(key K, value V) {
	if evicted := c.put(key, value); evicted != nil {
		c.notifyEvicted(evicted)
	}
}

func (c *Cache[K, V]) put(key K, value V) (evicted *entry[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return nil
	}

	if ent, ok := c.keyMap[key]; ok {
		ent.value = value
		c.increment(ent)
		return nil
	}

	if c.size >= c.capacity {
		// minFreq may go stale here; the insert below resets it to 1.
		evicted = c.freqMap[c.minFreq].oldest()
		c.unlink(evicted)
		c.evictions++
	}

	ent := &entry[K, V]{
		key:       key,
		value:     value,
		frequency: 1,
	}
	c.keyMap[key] = ent
	c.bucket(1).pushFront(ent)
	c.minFreq = 1
	c.size++
	c.recorder.Size(c.size)
	return evicted
}

// Evict removes the entry capacity pressure would remove next. It reports
// false when the cache is empty.
func (c *Cache[K, V]) Evict() (key K, value V, ok bool) {
	evicted := c.evictVictim()
	if evicted == nil {
		return key, value, false
	}
	c.notifyEvicted(evicted)
	return evicted.key, evicted.value, true
}

func (c *Cache[K, V]) evictVictim() *entry[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.size == 0 {
		return nil
	}
	ent := c.freqMap[c.minFreq].oldest()
	c.remove(ent)
	c.evictions++
	c.recorder.Size(c.size)
	return ent
}

// Delete removes key without counting it as an eviction. The eviction
// callback is not called.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.keyMap[key]
	if !ok {
		return false
	}
	c.remove(ent)
	c.recorder.Size(c.size)
	return true
}

// Clear drops every entry. Cleared entries are not reported as evictions.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keyMap = make(map[K]*entry[K, V], c.capacity)
	c.freqMap = make(map[int]*freqList[K, V])
	c.minFreq = 0
	c.size = 0
	c.recorder.Size(0)
}

// Peek returns the value for key without touching its frequency or recency.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.keyMap[key]
	if !ok {
		return value, false
	}
	return ent.value, true
}

// Contains reports whether key is cached without counting an access.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.keyMap[key]
	return ok
}

// Frequency returns the access count of key.
func (c *Cache[K, V]) Frequency(key K) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.keyMap[key]
	if !ok {
		return 0, false
	}
	return ent.frequency, true
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// increment moves ent from its bucket to the front of the next one.
// Frequencies grow by exactly one, so if ent was the last entry at
// minFreq the new minimum is minFreq+1.
func (c *Cache[K, V]) increment(ent *entry[K, V]) {
	oldFreq := ent.frequency
	ent.frequency++

	// Remove from old freq list
	c.freqMap[oldFreq].remove(ent)
	if c.freqMap[oldFreq].isEmpty() {
		delete(c.freqMap, oldFreq)
		if c.minFreq == oldFreq {
			c.minFreq++
		}
	}

	// Add to new freq list
	c.bucket(ent.frequency).pushFront(ent)
}

func (c *Cache[K, V]) bucket(freq int) *freqList[K, V] {
	list := c.freqMap[freq]
	if list == nil {
		list = newFreqList[K, V]()
		c.freqMap[freq] = list
	}
	return list
}

// unlink detaches ent from both indexes. It does not maintain minFreq.
func (c *Cache[K, V]) unlink(ent *entry[K, V]) (emptied bool) {
	list := c.freqMap[ent.frequency]
	list.remove(ent)
	if list.isEmpty() {
		delete(c.freqMap, ent.frequency)
		emptied = true
	}
	delete(c.keyMap, ent.key)
	c.size--
	return emptied
}

// remove unlinks ent and restores minFreq when ent was the last entry at
// the minimum frequency.
func (c *Cache[K, V]) remove(ent *entry[K, V]) {
	if c.unlink(ent) && ent.frequency == c.minFreq {
		c.resetMinFreq()
	}
}

// resetMinFreq scans the remaining buckets. Only explicit removals need
// it, never Get or Put.
func (c *Cache[K, V]) resetMinFreq() {
	c.minFreq = 0
	for freq := range c.freqMap {
		if c.minFreq == 0 || freq < c.minFreq {
			c.minFreq = freq
		}
	}
}

func (c *Cache[K, V]) notifyEvicted(ent *entry[K, V]) {
	c.recorder.Eviction()
	c.log.Debug("lfu: evicted entry", slog.Any("key", ent.key), slog.Int("frequency", ent.frequency))
	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
