package obj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortedMapSetGet(t *testing.T) {
	m := &SortedMap[uint32, string]{}
	m.Set(0x200, "b")
	m.Set(0x100, "a")
	m.Set(0x300, "c")
	require.Equal(t, 3, m.Len())

	v, ok := m.Get(0x200)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = m.Get(0x250)
	require.False(t, ok)

	m.Set(0x200, "b2")
	require.Equal(t, 3, m.Len())
	v, _ = m.Get(0x200)
	require.Equal(t, "b2", v)
}

func TestSortedMapAscend(t *testing.T) {
	m := &SortedMap[uint32, string]{}
	m.Set(0x300, "c")
	m.Set(0x100, "a")
	m.Set(0x200, "b")

	var keys []uint32
	m.Ascend(func(k uint32, _ string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []uint32{0x100, 0x200, 0x300}, keys)
}

func TestSortedMapAscendRange(t *testing.T) {
	m := &SortedMap[uint32, string]{}
	for _, k := range []uint32{0x100, 0x200, 0x300, 0x400} {
		m.Set(k, "")
	}
	var keys []uint32
	// Half-open: 0x400 excluded, 0x200 included.
	m.AscendRange(0x200, 0x400, func(k uint32, _ string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []uint32{0x200, 0x300}, keys)
}

func TestSortedMapDescendLessOrEqual(t *testing.T) {
	m := &SortedMap[uint32, string]{}
	for _, k := range []uint32{0x100, 0x200, 0x300} {
		m.Set(k, "")
	}
	var keys []uint32
	m.DescendLessOrEqual(0x250, func(k uint32, _ string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []uint32{0x200, 0x100}, keys)

	keys = nil
	m.DescendLessOrEqual(0x300, func(k uint32, _ string) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []uint32{0x300, 0x200, 0x100}, keys)

	keys = nil
	m.DescendLessOrEqual(0xff, func(k uint32, _ string) bool {
		keys = append(keys, k)
		return true
	})
	require.Empty(t, keys)
}

func TestSortedMapFloor(t *testing.T) {
	m := &SortedMap[uint32, string]{}
	m.Set(0x100, "a")
	m.Set(0x200, "b")

	k, v, ok := m.Floor(0x1ff)
	require.True(t, ok)
	require.Equal(t, uint32(0x100), k)
	require.Equal(t, "a", v)

	k, _, ok = m.Floor(0x200)
	require.True(t, ok)
	require.Equal(t, uint32(0x200), k)

	_, _, ok = m.Floor(0xff)
	require.False(t, ok)
}
