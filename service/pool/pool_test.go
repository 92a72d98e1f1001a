package pool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   int
	Name string
}

func TestPool_RoundTrip(t *testing.T) {
	const capacity = 4
	p := New[sample](capacity)
	assert.Equal(t, capacity, p.Cap())
	assert.Equal(t, capacity, p.Available())

	var handles []Handle
	for i := 0; i < capacity; i++ {
		h, v, ok := p.Alloc()
		require.True(t, ok, "alloc %d", i)
		v.ID = i
		handles = append(handles, h)
	}
	_, _, ok := p.Alloc()
	assert.False(t, ok, "alloc beyond capacity must fail")
	assert.Equal(t, capacity, p.Len())
	assert.Equal(t, 0, p.Available())

	assert.True(t, p.Free(handles[1]))
	assert.Equal(t, 1, p.Available())

	h, v, ok := p.Alloc()
	require.True(t, ok)
	assert.Equal(t, 0, v.ID, "reallocated payload is reset")
	assert.Equal(t, handles[1].Index(), h.Index())
	assert.NotEqual(t, handles[1].Generation(), h.Generation())
}

func TestPool_FreeRejected(t *testing.T) {
	p := New[sample](2)
	other := New[sample](2)

	h, _, ok := p.Alloc()
	require.True(t, ok)
	foreign, _, ok := other.Alloc()
	require.True(t, ok)

	testCases := []struct {
		description string
		handle      Handle
	}{
		{description: "zero handle", handle: Handle{}},
		{description: "foreign handle", handle: foreign},
		{description: "out of range", handle: Handle{owner: p.owner, index: 7, generation: 1}},
	}
	for _, testCase := range testCases {
		before := p.Available()
		assert.False(t, p.Free(testCase.handle), testCase.description)
		assert.Equal(t, before, p.Available(), testCase.description)
	}

	assert.True(t, p.Free(h))
	before := p.Available()
	assert.False(t, p.Free(h), "double free")
	assert.Equal(t, before, p.Available())
	assert.True(t, other.Owns(foreign))
}

func TestPool_StaleHandle(t *testing.T) {
	p := New[sample](1)
	stale, v, ok := p.Alloc()
	require.True(t, ok)
	v.Name = "first"
	require.True(t, p.Free(stale))

	fresh, v, ok := p.Alloc()
	require.True(t, ok)
	v.Name = "second"

	_, ok = p.Get(stale)
	assert.False(t, ok)
	assert.False(t, p.Free(stale))
	got, ok := p.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)
}

func TestPool_ZeroCapacity(t *testing.T) {
	p := New[sample](0)
	_, _, ok := p.Alloc()
	assert.False(t, ok)
	assert.Equal(t, 0, p.Len())
}

func TestPool_GenerationWrap(t *testing.T) {
	p := New[sample](1)
	h, _, ok := p.Alloc()
	require.True(t, ok)
	require.True(t, p.Free(h))
	p.slots[0].generation = math.MaxUint32

	last, _, ok := p.Alloc()
	require.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), last.Generation())
	require.True(t, p.Free(last))

	wrapped, _, ok := p.Alloc()
	require.True(t, ok)
	assert.Equal(t, uint32(1), wrapped.Generation(), "generation 0 is skipped on wrap")
	_, ok = p.Get(last)
	assert.False(t, ok)
	_, ok = p.Get(Handle{})
	assert.False(t, ok)
}
