// File: pool/chunk.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "unsafe"

// chunk ("puddle") is one contiguous array of slots. Its storage never moves,
// which keeps a tag's chunk/slot pair a stable locator for the slot.
type chunk[T any] struct {
	index int
	slots []slot[T]
	begin uintptr
	end   uintptr
}

// newChunk allocates a zeroed chunk whose slots carry version-less tags.
func newChunk[T any](index, size int) *chunk[T] {
	c := &chunk[T]{
		index: index,
		slots: make([]slot[T], size),
	}
	c.begin = uintptr(unsafe.Pointer(&c.slots[0]))
	c.end = c.begin + uintptr(size)*unsafe.Sizeof(c.slots[0])
	for i := range c.slots {
		c.slots[i].storeNext(NoSlot)
		c.slots[i].setTag(encodeTag(uint8(index), uint8(i), 0))
	}
	return c
}

// contains reports whether ptr falls inside this chunk's storage.
func (c *chunk[T]) contains(ptr unsafe.Pointer) bool {
	p := uintptr(ptr)
	return p >= c.begin && p < c.end
}

// at returns slot i.
func (c *chunk[T]) at(i int) *slot[T] { return &c.slots[i] }

// inUse counts live slots. Only meaningful when no Acquire/Release runs.
func (c *chunk[T]) inUse() int {
	n := 0
	for i := range c.slots {
		if c.slots[i].loadState() == stateInUse {
			n++
		}
	}
	return n
}
