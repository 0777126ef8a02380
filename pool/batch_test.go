package pool

import (
	"testing"

	"github.com/momentics/hioload-pool/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchFillStopsAtCapacity(t *testing.T) {
	p := newRecordPool(t, 2, 4)
	b := NewBatch(p, 16)

	n, err := b.Fill(6)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 6, b.Len())

	n, err = b.Fill(10)
	assert.ErrorIs(t, err, api.ErrCapacityExhausted)
	assert.Equal(t, 2, n)
	assert.Equal(t, 8, b.Len())
	assert.EqualValues(t, 8, p.Stats().Live)

	b.Release()
	assert.Equal(t, 0, b.Len())
	assert.EqualValues(t, 0, p.Stats().Live)
	require.NoError(t, p.Close())
}

func TestBatchAppendAndReuse(t *testing.T) {
	p := newRecordPool(t, 1, 8)
	b := NewBatch(p, 2)

	for round := 0; round < 3; round++ {
		obj, err := p.Acquire()
		require.NoError(t, err)
		obj.ID = uint64(round)
		b.Append(obj)
		assert.Same(t, obj, b.Get(b.Len()-1))
	}
	assert.Len(t, b.Items(), 3)

	b.Release()
	_, err := b.Fill(8)
	require.NoError(t, err)
	b.Release()
	assert.Equal(t, uint64(11), p.Stats().Releases)
	require.NoError(t, p.Close())
}
