// File: pool/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TaggedPool: fixed-capacity, lock-free object pool growing in chunks.

package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-pool/api"
	"go.uber.org/zap"
	"golang.org/x/sys/cpu"
)

// TaggedPool hands out *T living inside pool-owned chunks. Acquire and
// Release never take a lock; contention is resolved by CAS retry loops on the
// free-list head. Multiple pools are fully independent.
type TaggedPool[T any] struct {
	_       cpu.CacheLinePad
	head    atomic.Uint32 // Tag of the first free slot
	_       cpu.CacheLinePad
	version atomic.Uint32 // pool-wide, bumped on every push
	_       cpu.CacheLinePad
	claimed atomic.Int32 // chunk indices handed out by grow
	_       cpu.CacheLinePad

	chunks    [MaxChunksLimit]atomic.Pointer[chunk[T]]
	published atomic.Int32 // chunks stored in the table

	cfg    Config
	name   string
	ctor   func(*T)
	dtor   func(*T)
	log    *zap.Logger
	dbg    *debugState[T]
	closed atomic.Bool

	slotSize uintptr
	stats    counters
}

type counters struct {
	acquires   atomic.Uint64
	releases   atomic.Uint64
	grows      atomic.Uint64
	casRetries atomic.Uint64
	live       atomic.Int64
	highWater  atomic.Int64
}

var _ api.ObjectPool[struct{}] = (*TaggedPool[struct{}])(nil)
var _ api.StatsSource = (*TaggedPool[struct{}])(nil)

// New creates an empty pool. No chunk is allocated until the first Acquire.
func New[T any](opts ...Option[T]) (*TaggedPool[T], error) {
	o := options[T]{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.name == "" {
		o.name = "pool"
	}

	p := &TaggedPool[T]{
		cfg:      o.cfg,
		name:     o.name,
		ctor:     o.ctor,
		dtor:     o.dtor,
		log:      o.logger.With(zap.String("pool", o.name)),
		slotSize: unsafe.Sizeof(slot[T]{}),
	}
	p.head.Store(uint32(NoSlot))
	if o.cfg.Debug {
		p.dbg = newDebugState[T](o.cfg.Quarantine)
	}
	return p, nil
}

// MustNew is New that panics on invalid configuration.
func MustNew[T any](opts ...Option[T]) *TaggedPool[T] {
	p, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the label used in logs and metrics.
func (p *TaggedPool[T]) Name() string { return p.name }

// Config returns the construction-time configuration.
func (p *TaggedPool[T]) Config() Config { return p.cfg }

// Capacity returns MaxChunks * SlotsPerChunk.
func (p *TaggedPool[T]) Capacity() int { return p.cfg.Capacity() }

// Acquire returns a zeroed object initialized by the configured constructor.
func (p *TaggedPool[T]) Acquire() (*T, error) {
	return p.AcquireWith(p.ctor)
}

// AcquireWith returns a zeroed object initialized in place by ctor, which may
// be nil. The only failures are ErrCapacityExhausted and ErrPoolClosed.
func (p *TaggedPool[T]) AcquireWith(ctor func(*T)) (*T, error) {
	if p.closed.Load() {
		return nil, api.NewError(api.ErrCodeClosed, "acquire on closed pool").
			WithContext("pool", p.name)
	}
	s, err := p.take()
	if err != nil {
		return nil, err
	}
	if p.dbg != nil {
		p.dbg.verify(s, "acquire")
	}
	var zero T
	s.value = zero
	if ctor != nil {
		ctor(&s.value)
	}
	p.noteAcquire()
	return &s.value, nil
}

// take pops a slot, growing the pool whenever the free list runs dry.
func (p *TaggedPool[T]) take() (*slot[T], error) {
	for {
		if s := p.pop(); s != nil {
			return s, nil
		}
		err := p.grow()
		if err == nil {
			continue
		}
		if p.dbg != nil && p.dbg.flush(p) > 0 {
			continue
		}
		p.log.Warn("pool capacity exhausted",
			zap.Int("max_chunks", p.cfg.MaxChunks),
			zap.Int("capacity", p.cfg.Capacity()))
		return nil, err
	}
}

// grow claims a chunk index, publishes a fresh chunk and pushes its slots in
// descending order so that slot 0 comes off the free list first.
//
// Two goroutines may grow at the same time and both succeed with different
// indices; the pool then holds one chunk more than strictly needed. Claimed
// indices are never returned.
func (p *TaggedPool[T]) grow() error {
	idx, ok := p.claimChunk()
	if !ok {
		return api.NewError(api.ErrCodeCapacityExhausted, "pool capacity exhausted").
			WithContext("pool", p.name).
			WithContext("max_chunks", p.cfg.MaxChunks).
			WithContext("capacity", p.cfg.Capacity())
	}

	c := newChunk[T](idx, p.cfg.SlotsPerChunk)
	p.chunks[idx].Store(c)
	p.published.Add(1)

	for i := len(c.slots) - 1; i >= 0; i-- {
		s := c.at(i)
		if p.dbg != nil {
			p.dbg.scrub(s)
		}
		p.push(s)
	}
	p.stats.grows.Add(1)
	p.log.Debug("chunk allocated",
		zap.Int("chunk", idx),
		zap.Int("slots", p.cfg.SlotsPerChunk))
	return nil
}

// claimChunk reserves the next chunk index without ever passing MaxChunks.
func (p *TaggedPool[T]) claimChunk() (int, bool) {
	for {
		n := p.claimed.Load()
		if int(n) >= p.cfg.MaxChunks {
			return 0, false
		}
		if p.claimed.CompareAndSwap(n, n+1) {
			return int(n), true
		}
	}
}

// Release runs the destructor on obj and returns its slot to the free list
// with a new version. Releasing nil, a foreign object (detected in debug
// mode), the same object twice, or anything after Close panics with an
// *api.Error carrying ErrCodeContractViolation.
func (p *TaggedPool[T]) Release(obj *T) {
	if obj == nil {
		panic(violation("release of nil object").WithContext("pool", p.name))
	}
	if p.closed.Load() {
		panic(violation("release on closed pool").WithContext("pool", p.name))
	}
	if p.dbg != nil && !p.Owns(obj) {
		panic(violation("release of object not owned by pool").WithContext("pool", p.name))
	}

	s := slotOf(obj)
	if !s.transition(stateInUse, stateUninitialized) {
		panic(violation("release of object that is not in use").
			WithContext("pool", p.name).
			WithContext("tag", s.tag().String()).
			WithContext("state", s.loadState().String()))
	}
	if p.dtor != nil {
		p.dtor(obj)
	}
	p.noteRelease()

	if p.dbg == nil {
		var zero T
		s.value = zero
		p.push(s)
		return
	}
	p.dbg.scrub(s)
	if !p.dbg.hold(p, s) {
		p.push(s)
	}
}

// Owns reports whether obj is the payload of one of this pool's slots. It
// scans every chunk and is meant for debugging.
func (p *TaggedPool[T]) Owns(obj *T) bool {
	if obj == nil {
		return false
	}
	ptr := unsafe.Pointer(obj)
	n := int(p.claimed.Load())
	for i := 0; i < n; i++ {
		c := p.chunks[i].Load()
		if c == nil || !c.contains(ptr) {
			continue
		}
		return (uintptr(ptr)-c.begin)%p.slotSize == payloadOffset[T]()
	}
	return false
}

// TagOf returns the current tag of a live object's slot.
func (p *TaggedPool[T]) TagOf(obj *T) Tag {
	return slotOf(obj).tag()
}

// Stats returns a snapshot of the pool counters. Chunks drops to 0 once the
// pool is closed; Grows keeps the lifetime count.
func (p *TaggedPool[T]) Stats() api.PoolStats {
	chunks := int(p.published.Load())
	if p.closed.Load() {
		chunks = 0
	}
	return api.PoolStats{
		Acquires:   p.stats.acquires.Load(),
		Releases:   p.stats.releases.Load(),
		Grows:      p.stats.grows.Load(),
		CASRetries: p.stats.casRetries.Load(),
		Live:       p.stats.live.Load(),
		HighWater:  p.stats.highWater.Load(),
		Chunks:     chunks,
		Capacity:   p.cfg.Capacity(),
	}
}

// Close drops all chunk storage. Objects still in use are a caller error:
// their destructors are not run and Close reports them as leaked.
// Closing twice is a no-op.
func (p *TaggedPool[T]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	leaked := 0
	n := int(p.claimed.Load())
	for i := 0; i < n; i++ {
		if c := p.chunks[i].Swap(nil); c != nil {
			leaked += c.inUse()
		}
	}
	p.head.Store(uint32(NoSlot))
	if p.dbg != nil {
		p.dbg.drop()
	}

	if leaked > 0 {
		p.log.Error("pool closed with live objects", zap.Int("leaked", leaked))
		return violation("pool closed with live objects").
			WithContext("pool", p.name).
			WithContext("leaked", leaked)
	}
	p.log.Debug("pool closed", zap.Int("chunks", n))
	return nil
}

func (p *TaggedPool[T]) noteAcquire() {
	p.stats.acquires.Add(1)
	live := p.stats.live.Add(1)
	for {
		hw := p.stats.highWater.Load()
		if live <= hw || p.stats.highWater.CompareAndSwap(hw, live) {
			return
		}
	}
}

func (p *TaggedPool[T]) noteRelease() {
	p.stats.releases.Add(1)
	p.stats.live.Add(-1)
}

func violation(msg string) *api.Error {
	return api.NewError(api.ErrCodeContractViolation, msg)
}

// Quarantined returns how many released slots are held back from reuse.
func (p *TaggedPool[T]) Quarantined() int {
	if p.dbg == nil {
		return 0
	}
	return p.dbg.quarantined()
}
