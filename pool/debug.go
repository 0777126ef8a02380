// File: pool/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Debug instrumentation: payload poisoning and delayed reuse.

package pool

import (
	"reflect"
	"sync"

	"github.com/eapache/queue"
)

// FreeFill is written over the payload of every free slot in debug mode.
const FreeFill byte = 0xAA

type debugState[T any] struct {
	// poisonable is false when T holds Go pointers: a byte pattern written
	// over them would be followed by the garbage collector.
	poisonable bool

	limit int
	mu    sync.Mutex
	held  *queue.Queue // *slot[T], oldest first
}

func newDebugState[T any](quarantine int) *debugState[T] {
	d := &debugState[T]{
		poisonable: pointerFree(reflect.TypeOf((*T)(nil)).Elem()),
		limit:      quarantine,
	}
	if quarantine > 0 {
		d.held = queue.New()
	}
	return d
}

// scrub fills a released payload with FreeFill, or zeroes it when T cannot
// be poisoned.
func (d *debugState[T]) scrub(s *slot[T]) {
	if !d.poisonable {
		var zero T
		s.value = zero
		return
	}
	b := s.payloadBytes()
	for i := range b {
		b[i] = FreeFill
	}
}

// verify panics if a free payload was written to after its release.
func (d *debugState[T]) verify(s *slot[T], where string) {
	if !d.poisonable {
		return
	}
	for i, c := range s.payloadBytes() {
		if c != FreeFill {
			panic(violation("free slot written after release").
				WithContext("at", where).
				WithContext("tag", s.tag().String()).
				WithContext("offset", i))
		}
	}
}

// hold parks s in quarantine. When the quarantine overflows, the oldest slot
// is verified and pushed to the free list. Returns false when quarantine is
// disabled and the caller must push s itself.
func (d *debugState[T]) hold(p *TaggedPool[T], s *slot[T]) bool {
	if d.held == nil {
		return false
	}
	s.setState(stateQuarantined)

	var out *slot[T]
	d.mu.Lock()
	d.held.Add(s)
	if d.held.Length() > d.limit {
		out = d.held.Remove().(*slot[T])
	}
	d.mu.Unlock()

	if out != nil {
		d.verify(out, "quarantine")
		p.push(out)
	}
	return true
}

// flush releases every quarantined slot to the free list.
func (d *debugState[T]) flush(p *TaggedPool[T]) int {
	if d.held == nil {
		return 0
	}
	d.mu.Lock()
	out := make([]*slot[T], 0, d.held.Length())
	for d.held.Length() > 0 {
		out = append(out, d.held.Remove().(*slot[T]))
	}
	d.mu.Unlock()

	for _, s := range out {
		d.verify(s, "quarantine")
		p.push(s)
	}
	if len(out) > 0 {
		p.log.Debug("quarantine flushed")
	}
	return len(out)
}

// drop forgets quarantined slots on Close.
func (d *debugState[T]) drop() {
	if d.held == nil {
		return
	}
	d.mu.Lock()
	d.held = queue.New()
	d.mu.Unlock()
}

// quarantined returns the number of held slots.
func (d *debugState[T]) quarantined() int {
	if d.held == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.held.Length()
}

// pointerFree reports whether values of t contain no Go pointers.
func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return false
}
