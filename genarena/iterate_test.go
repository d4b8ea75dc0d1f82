package genarena_test

import (
	"testing"

	"github.com/DoeringChristian/Arena-Allocator/genarena"
	"github.com/stretchr/testify/require"
)

func TestArenaIter(t *testing.T) {
	arena := genarena.NewArena[string]()

	h0 := arena.Insert("a")
	h1 := arena.Insert("b")
	h2 := arena.Insert("c")
	h3 := arena.Insert("d")
	_, ok := arena.Remove(h1)
	require.True(t, ok)

	var indices []genarena.Index[string]
	var values []string
	for index, value := range arena.Iter() {
		indices = append(indices, index)
		values = append(values, value)
	}

	require.Equal(t, []genarena.Index[string]{h0, h2, h3}, indices)
	require.Equal(t, []string{"a", "c", "d"}, values)

	// Every yielded index resolves back to the yielded value.
	for i, index := range indices {
		value, ok := arena.Get(index)
		require.True(t, ok)
		require.Equal(t, values[i], value)
	}
}

func TestArenaIterEarlyBreak(t *testing.T) {
	arena := genarena.NewArena[int]()
	for i := 0; i < 5; i++ {
		arena.Insert(i)
	}

	count := 0
	for range arena.Iter() {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)

	// A fresh range restarts from the beginning.
	count = 0
	for range arena.Iter() {
		count++
	}
	require.Equal(t, 5, count)
}

func TestArenaIterMut(t *testing.T) {
	arena := genarena.NewArena[int]()

	handles := make([]genarena.Index[int], 4)
	for i := range handles {
		handles[i] = arena.Insert(i)
	}
	_, ok := arena.Remove(handles[2])
	require.True(t, ok)

	for _, value := range arena.IterMut() {
		*value *= 10
	}

	for i, handle := range handles {
		if i == 2 {
			continue
		}
		value, ok := arena.Get(handle)
		require.True(t, ok)
		require.Equal(t, i*10, value)
	}
}

func TestArenaValuesAndKeys(t *testing.T) {
	arena := genarena.NewArena[int]()

	h0 := arena.Insert(1)
	h1 := arena.Insert(2)
	h2 := arena.Insert(3)
	_, ok := arena.Remove(h0)
	require.True(t, ok)

	var values []int
	for value := range arena.Values() {
		values = append(values, value)
	}
	require.Equal(t, []int{2, 3}, values)

	var keys []genarena.Index[int]
	for index := range arena.Keys() {
		keys = append(keys, index)
	}
	require.Equal(t, []genarena.Index[int]{h1, h2}, keys)

	for value := range arena.ValuesMut() {
		*value += 100
	}
	value, _ := arena.Get(h1)
	require.Equal(t, 102, value)
	value, _ = arena.Get(h2)
	require.Equal(t, 103, value)
}

func TestFixedArenaIterSkipsFreeSlots(t *testing.T) {
	arena := genarena.NewFixedArena[int](4)

	h0 := arena.Insert(1)
	h1 := arena.Insert(2)
	h2 := arena.Insert(3)
	_, ok := arena.Remove(h1)
	require.True(t, ok)

	var indices []genarena.Index[int]
	var values []int
	for index, value := range arena.Iter() {
		indices = append(indices, index)
		values = append(values, value)
	}
	require.Equal(t, []genarena.Index[int]{h0, h2}, indices)
	require.Equal(t, []int{1, 3}, values)

	var keys []genarena.Index[int]
	for index := range arena.Keys() {
		keys = append(keys, index)
	}
	require.Equal(t, indices, keys)
}
