package ring

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func Test_WriteAdvancesGeneration(t *testing.T) {
	r := New(3, 4)
	require.Equal(t, uint64(0), r.Generation())

	for i := uint32(1); i <= 5; i++ {
		assert.Equal(t, uint64(i), r.Write(word(i)))
	}
	assert.Equal(t, uint64(5), r.Generation())
}

func Test_NextSequential(t *testing.T) {
	r := New(2, 4)
	out := make([]byte, 4)

	var last uint64
	for i := uint32(1); i <= 10; i++ {
		r.Write(word(i))
		gen, lost, ok := r.Next(last, out)
		require.True(t, ok)
		assert.Zero(t, lost)
		assert.Equal(t, uint64(i), gen)
		assert.Equal(t, i, binary.LittleEndian.Uint32(out))
		last = gen
	}

	_, _, ok := r.Next(last, out)
	assert.False(t, ok, "nothing newer than the last read generation")
}

func Test_NextOverrun(t *testing.T) {
	r := New(3, 4)
	out := make([]byte, 4)
	for i := uint32(1); i <= 5; i++ {
		r.Write(word(i))
	}

	gen, lost, ok := r.Next(0, out)
	require.True(t, ok)
	assert.Equal(t, uint64(2), lost)
	assert.Equal(t, uint64(3), gen)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(out))

	gen, lost, ok = r.Next(gen, out)
	require.True(t, ok)
	assert.Zero(t, lost)
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(out))

	gen, _, ok = r.Next(gen, out)
	require.True(t, ok)
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(out))

	_, _, ok = r.Next(gen, out)
	assert.False(t, ok)
}

func Test_NextExactlyCapacityBehindLosesNothing(t *testing.T) {
	r := New(3, 4)
	out := make([]byte, 4)
	for i := uint32(1); i <= 3; i++ {
		r.Write(word(i))
	}
	gen, lost, ok := r.Next(0, out)
	require.True(t, ok)
	assert.Zero(t, lost)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(out))
}

func Test_NextFutureCursor(t *testing.T) {
	r := New(1, 4)
	r.Write(word(1))
	_, _, ok := r.Next(7, make([]byte, 4))
	assert.False(t, ok)
}

func Test_ResizeOnlyBeforeFirstWrite(t *testing.T) {
	r := New(1, 4)
	require.True(t, r.Resize(4))
	assert.Equal(t, 4, r.Capacity())

	r.Write(word(1))
	assert.False(t, r.Resize(8))
	assert.Equal(t, 4, r.Capacity())
	assert.False(t, New(1, 4).Resize(0))
}

func Test_Latest(t *testing.T) {
	r := New(2, 4)
	out := make([]byte, 4)
	_, ok := r.Latest(out)
	require.False(t, ok)

	r.Write(word(10))
	r.Write(word(20))
	r.Write(word(30))
	gen, ok := r.Latest(out)
	require.True(t, ok)
	assert.Equal(t, uint64(3), gen)
	assert.Equal(t, uint32(30), binary.LittleEndian.Uint32(out))
}

func Test_ZeroSizeSlots(t *testing.T) {
	r := New(2, 0)
	r.Write(nil)
	r.Write([]byte{})
	gen, lost, ok := r.Next(0, nil)
	require.True(t, ok)
	assert.Zero(t, lost)
	assert.Equal(t, uint64(1), gen)
}

func Test_WriteSizeMismatchPanics(t *testing.T) {
	r := New(1, 4)
	assert.Panics(t, func() { r.Write([]byte{1}) })
}
