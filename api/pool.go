// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: fixed-capacity object pools with explicit,
// caller-driven reclamation.

package api

// ObjectPool hands out uniformly-sized objects and takes them back.
type ObjectPool[T any] interface {
	// Acquire returns a freshly constructed object.
	Acquire() (*T, error)

	// AcquireWith returns an object initialized in place by ctor.
	AcquireWith(ctor func(*T)) (*T, error)

	// Release destroys obj and returns its storage to the pool.
	Release(obj *T)

	// Close tears the pool down. All objects must be released first.
	Close() error
}

// StatsSource is anything able to report pool counters.
type StatsSource interface {
	Stats() PoolStats
}

// PoolStats is a point-in-time view of pool counters.
type PoolStats struct {
	Acquires   uint64 // successful Acquire calls
	Releases   uint64 // Release calls
	Grows      uint64 // chunks allocated by this pool
	CASRetries uint64 // failed compare-and-swap attempts on the free list
	Live       int64  // objects currently in use
	HighWater  int64  // largest Live ever observed
	Chunks     int    // chunks currently allocated
	Capacity   int    // MaxChunks * SlotsPerChunk
}
