package genarena_test

import (
	"testing"

	"github.com/DoeringChristian/Arena-Allocator/genarena"
	"github.com/stretchr/testify/require"
)

func BenchmarkArenaInsertRemove(b *testing.B) {
	arena := genarena.NewArena[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		index := arena.Insert(i)
		_, ok := arena.Remove(index)
		require.True(b, ok)
	}
}

func BenchmarkArenaGet(b *testing.B) {
	arena := genarena.NewArena[int]()
	indices := make([]genarena.Index[int], 1024)
	for i := range indices {
		indices[i] = arena.Insert(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, ok := arena.Get(indices[i%len(indices)])
		require.True(b, ok)
	}
}

func BenchmarkArenaIter(b *testing.B) {
	arena := genarena.NewArena[int]()
	for i := 0; i < 1024; i++ {
		arena.Insert(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		total := 0
		for _, value := range arena.Iter() {
			total += value
		}
		require.NotZero(b, total)
	}
}

func BenchmarkFixedArenaInsertRemove(b *testing.B) {
	arena := genarena.NewFixedArena[int](1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		index := arena.Insert(i)
		_, ok := arena.Remove(index)
		require.True(b, ok)
	}
}
