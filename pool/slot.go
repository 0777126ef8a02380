// File: pool/slot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"
	"unsafe"
)

// slotState is the lifecycle of a slot.
type slotState uint32

const (
	stateUninitialized slotState = iota
	stateFree
	stateInUse
	stateQuarantined // released but held back from the free list (debug)
)

func (s slotState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateFree:
		return "free"
	case stateInUse:
		return "in-use"
	case stateQuarantined:
		return "quarantined"
	}
	return "unknown"
}

// slot is one storage cell: free-list bookkeeping followed by the payload.
//
// state == stateFree implies the slot is reachable from the head;
// state == stateInUse implies exactly one live object sits in value and the
// slot is not on the free list.
type slot[T any] struct {
	next  atomic.Uint32 // Tag of the next free slot or NoSlot
	self  atomic.Uint32 // own Tag, only the version changes over time
	state atomic.Uint32
	value T
}

func (s *slot[T]) loadNext() Tag         { return Tag(s.next.Load()) }
func (s *slot[T]) storeNext(t Tag)       { s.next.Store(uint32(t)) }
func (s *slot[T]) tag() Tag              { return Tag(s.self.Load()) }
func (s *slot[T]) setTag(t Tag)          { s.self.Store(uint32(t)) }
func (s *slot[T]) loadState() slotState  { return slotState(s.state.Load()) }
func (s *slot[T]) setState(st slotState) { s.state.Store(uint32(st)) }

// transition moves the slot from one state to another, reporting whether the
// slot was in the expected state.
func (s *slot[T]) transition(from, to slotState) bool {
	return s.state.CompareAndSwap(uint32(from), uint32(to))
}

// payloadOffset is the distance between a slot and its value field.
func payloadOffset[T any]() uintptr {
	var s slot[T]
	return unsafe.Offsetof(s.value)
}

// slotOf recovers the slot owning obj. obj must point at a slot payload.
func slotOf[T any](obj *T) *slot[T] {
	return (*slot[T])(unsafe.Add(unsafe.Pointer(obj), -int(payloadOffset[T]())))
}

// payloadBytes views the payload as raw memory.
func (s *slot[T]) payloadBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&s.value)), unsafe.Sizeof(s.value))
}
