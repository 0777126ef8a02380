// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity, lock-free object pooling for hioload-pool.
//
// A TaggedPool[T] stores objects in lazily allocated chunks of up to 256
// slots, at most 256 chunks per pool. Free slots form a Treiber stack linked
// by 32-bit tags (version, chunk, slot) rather than pointers, so a stale head
// observed by one goroutine can never be swapped in after the slot was popped
// and pushed again by another.
//
// Debug mode adds ownership checks on Release, poisons free payloads with
// FreeFill and optionally delays slot reuse through a quarantine.
//
// See pool.go, freelist.go, tag.go for implementation details.
package pool
