package lfu

import (
	"container/list"
)

// entry represents a cache item. node is its handle inside the bucket
// for its current frequency.
type entry[K comparable, V any] struct {
	key       K
	value     V
	frequency int
	node      *list.Element
}

// freqList holds the entries sharing one frequency, most recently touched
// at the front.
type freqList[K comparable, V any] struct {
	items *list.List // list of *entry[K, V]
}

func newFreqList[K comparable, V any]() *freqList[K, V] {
	return &freqList[K, V]{items: list.New()}
}

func (f *freqList[K, V]) pushFront(e *entry[K, V]) {
	e.node = f.items.PushFront(e)
}

func (f *freqList[K, V]) remove(e *entry[K, V]) {
	f.items.Remove(e.node)
	e.node = nil
}

// oldest returns the least recently touched entry without removing it.
func (f *freqList[K, V]) oldest() *entry[K, V] {
	elem := f.items.Back()
	if elem == nil {
		return nil
	}
	return elem.Value.(*entry[K, V])
}

func (f *freqList[K, V]) isEmpty() bool {
	return f.items.Len() == 0
}
