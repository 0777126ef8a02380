// File: pool/freelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Treiber stack over versioned tags. See
// http://www.boost.org/doc/libs/1_53_0/boost/lockfree/stack.hpp for the shape
// of the algorithm; tags replace pointers so a popped-and-pushed slot shows
// up under a new head value.

package pool

func (p *TaggedPool[T]) loadHead() Tag { return Tag(p.head.Load()) }

// locate decodes tag into its slot. Only tags taken from this pool's free
// list or from its live objects may be decoded.
func (p *TaggedPool[T]) locate(tag Tag) *slot[T] {
	return p.chunks[tag.Chunk()].Load().at(tag.Slot())
}

// nextTag stamps t with a fresh version from the pool-wide counter. A version
// that would collide with NoSlot is skipped.
func (p *TaggedPool[T]) nextTag(t Tag) Tag {
	for {
		nt := t.withVersion(uint16(p.version.Add(1)))
		if nt != NoSlot {
			return nt
		}
	}
}

// push links s in as the new head. The caller has already scrubbed the
// payload.
func (p *TaggedPool[T]) push(s *slot[T]) {
	s.setState(stateFree)
	tag := p.nextTag(s.tag())
	s.setTag(tag)

	var retries uint64
	for {
		old := p.loadHead()
		s.storeNext(old)
		if p.head.CompareAndSwap(uint32(old), uint32(tag)) {
			break
		}
		retries++
	}
	p.noteRetries(retries)
}

// pop unlinks the head slot and marks it in use. Returns nil when the free
// list is exhausted.
func (p *TaggedPool[T]) pop() *slot[T] {
	var retries uint64
	for {
		old := p.loadHead()
		if old == NoSlot {
			p.noteRetries(retries)
			return nil
		}
		s := p.locate(old)
		next := s.loadNext()
		if !p.head.CompareAndSwap(uint32(old), uint32(next)) {
			retries++
			continue
		}
		if !s.transition(stateFree, stateInUse) {
			panic(violation("free list corrupted: popped slot is not free").
				WithContext("tag", old.String()).
				WithContext("state", s.loadState().String()))
		}
		s.storeNext(NoSlot)
		p.noteRetries(retries)
		return s
	}
}

func (p *TaggedPool[T]) noteRetries(n uint64) {
	if n > 0 {
		p.stats.casRetries.Add(n)
	}
}
