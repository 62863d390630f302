package obj

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// SortedMap is an ordered map backed by a sorted key slice, so range
// queries come out in key order. It backs every address-keyed index in
// the model. The zero value is an empty map.
type SortedMap[K constraints.Ordered, V any] struct {
	keys []K
	vals []V
}

func (m *SortedMap[K, V]) Len() int { return len(m.keys) }

func (m *SortedMap[K, V]) Get(k K) (V, bool) {
	if i, ok := slices.BinarySearch(m.keys, k); ok {
		return m.vals[i], true
	}
	var zero V
	return zero, false
}

func (m *SortedMap[K, V]) Set(k K, v V) {
	i, ok := slices.BinarySearch(m.keys, k)
	if ok {
		m.vals[i] = v
		return
	}
	m.keys = slices.Insert(m.keys, i, k)
	m.vals = slices.Insert(m.vals, i, v)
}

// Ascend visits all entries in ascending key order until fn returns
// false.
func (m *SortedMap[K, V]) Ascend(fn func(k K, v V) bool) {
	for i := range m.keys {
		if !fn(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// AscendRange visits entries with start <= key < end in ascending key
// order until fn returns false.
func (m *SortedMap[K, V]) AscendRange(start, end K, fn func(k K, v V) bool) {
	i, _ := slices.BinarySearch(m.keys, start)
	for ; i < len(m.keys) && m.keys[i] < end; i++ {
		if !fn(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// DescendLessOrEqual visits entries with key <= pivot in descending key
// order until fn returns false.
func (m *SortedMap[K, V]) DescendLessOrEqual(pivot K, fn func(k K, v V) bool) {
	i, ok := slices.BinarySearch(m.keys, pivot)
	if !ok {
		i--
	}
	for ; i >= 0; i-- {
		if !fn(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// Floor returns the entry with the greatest key <= pivot.
func (m *SortedMap[K, V]) Floor(pivot K) (K, V, bool) {
	i, ok := slices.BinarySearch(m.keys, pivot)
	if !ok {
		i--
	}
	if i < 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	return m.keys[i], m.vals[i], true
}
