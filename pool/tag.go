// File: pool/tag.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Compact slot locators used on the free list instead of addresses.

package pool

import "fmt"

// Tag identifies a slot by chunk index, slot index and a version drawn from
// the pool-wide version counter:
//
//	[16 bit version][8 bit chunk][8 bit slot]
//
// Two tags naming the same slot but produced by different pushes differ in
// version, so a compare-and-swap against a stale head tag fails.
type Tag uint32

// NoSlot marks an empty free list and the end of a chain.
const NoSlot Tag = 0xFFFFFFFF

const (
	tagSlotBits    = 8
	tagChunkBits   = 8
	tagVersionBits = 16

	tagSlotMask     = 1<<tagSlotBits - 1
	tagChunkMask    = 1<<tagChunkBits - 1
	tagLocationMask = 1<<(tagSlotBits+tagChunkBits) - 1
	tagVersionShift = tagSlotBits + tagChunkBits

	// MaxChunksLimit and MaxSlotsLimit are the ceilings imposed by the layout.
	MaxChunksLimit = 1 << tagChunkBits
	MaxSlotsLimit  = 1 << tagSlotBits
)

func encodeTag(chunk, slot uint8, version uint16) Tag {
	return Tag(uint32(version)<<tagVersionShift | uint32(chunk)<<tagSlotBits | uint32(slot))
}

// Chunk returns the chunk index.
func (t Tag) Chunk() int { return int(uint32(t) >> tagSlotBits & tagChunkMask) }

// Slot returns the index within the chunk.
func (t Tag) Slot() int { return int(uint32(t) & tagSlotMask) }

// Version returns the uniqueness counter.
func (t Tag) Version() uint16 { return uint16(uint32(t) >> tagVersionShift) }

// location strips the version, leaving the stable chunk/slot pair.
func (t Tag) location() Tag { return t & tagLocationMask }

// withVersion keeps the location and replaces the version.
func (t Tag) withVersion(v uint16) Tag {
	return t.location() | Tag(uint32(v)<<tagVersionShift)
}

func (t Tag) String() string {
	if t == NoSlot {
		return "tag(none)"
	}
	return fmt.Sprintf("tag(c=%d s=%d v=%d)", t.Chunk(), t.Slot(), t.Version())
}
