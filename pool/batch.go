// Package pool: zero-alloc batching without locks.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Batch of objects checked out of one TaggedPool.
// This implementation is NOT thread-safe and avoids mutex in hot-path.

package pool

// Batch holds objects acquired from a single pool so they can be returned
// together. The backing slice is reused across Release calls.
type Batch[T any] struct {
	pool  *TaggedPool[T]
	items []*T
}

// NewBatch creates an empty batch bound to p with room for capacity objects.
func NewBatch[T any](p *TaggedPool[T], capacity int) *Batch[T] {
	return &Batch[T]{
		pool:  p,
		items: make([]*T, 0, capacity),
	}
}

// Fill acquires objects until the batch holds n of them. It stops at the
// first error and reports how many objects were added.
func (b *Batch[T]) Fill(n int) (int, error) {
	added := 0
	for len(b.items) < n {
		obj, err := b.pool.Acquire()
		if err != nil {
			return added, err
		}
		b.items = append(b.items, obj)
		added++
	}
	return added, nil
}

// Append adds an object that was acquired from the same pool.
func (b *Batch[T]) Append(obj *T) {
	b.items = append(b.items, obj)
}

// Len returns number of items in the batch.
func (b *Batch[T]) Len() int {
	return len(b.items)
}

// Get retrieves item at index.
func (b *Batch[T]) Get(idx int) *T {
	return b.items[idx]
}

// Items returns the underlying slice. It is only valid until the next
// Release.
func (b *Batch[T]) Items() []*T {
	return b.items
}

// Release returns every object to the pool and empties the batch.
func (b *Batch[T]) Release() {
	for i, obj := range b.items {
		b.pool.Release(obj)
		b.items[i] = nil
	}
	b.items = b.items[:0]
}
