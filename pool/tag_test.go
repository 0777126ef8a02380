package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCodec(t *testing.T) {
	cases := []struct {
		chunk, slot uint8
		version     uint16
		want        Tag
	}{
		{0, 0, 0, 0x00000000},
		{0, 1, 0, 0x00000001},
		{1, 0, 0, 0x00000100},
		{3, 7, 9, 0x00090307},
		{255, 255, 0xFFFE, 0xFFFEFFFF},
	}
	for _, tc := range cases {
		got := encodeTag(tc.chunk, tc.slot, tc.version)
		assert.Equal(t, tc.want, got, "%v", got)
		assert.Equal(t, int(tc.chunk), got.Chunk())
		assert.Equal(t, int(tc.slot), got.Slot())
		assert.Equal(t, tc.version, got.Version())
	}
}

func TestTagWithVersionKeepsLocation(t *testing.T) {
	base := encodeTag(12, 34, 5)
	bumped := base.withVersion(6)

	assert.NotEqual(t, base, bumped)
	assert.Equal(t, base.location(), bumped.location())
	assert.Equal(t, uint16(6), bumped.Version())
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "tag(none)", NoSlot.String())
	assert.Equal(t, "tag(c=1 s=2 v=3)", encodeTag(1, 2, 3).String())
}

func TestNextTagSkipsSentinel(t *testing.T) {
	p := MustNew[int]()
	p.version.Store(0xFFFE) // next draw is 0xFFFF

	got := p.nextTag(encodeTag(255, 255, 0))
	require.NotEqual(t, NoSlot, got)
	assert.Equal(t, uint16(0), got.Version())
	assert.Equal(t, 255, got.Chunk())
	assert.Equal(t, 255, got.Slot())
}

func TestNextTagIsMonotonicPerPool(t *testing.T) {
	p := MustNew[int]()
	loc := encodeTag(0, 0, 0)
	prev := p.nextTag(loc)
	for i := 0; i < 100; i++ {
		next := p.nextTag(loc)
		require.Equal(t, prev.Version()+1, next.Version())
		prev = next
	}

	// Pools do not share counters.
	other := MustNew[int]()
	assert.Equal(t, uint16(1), other.nextTag(loc).Version())
}
