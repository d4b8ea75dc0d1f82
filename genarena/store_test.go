package genarena_test

import (
	"testing"

	"github.com/DoeringChristian/Arena-Allocator/arenautils"
	"github.com/DoeringChristian/Arena-Allocator/genarena"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// runStoreScenario drives one insert/remove/reuse cycle through the Store
// interface, so that both arenas are checked against the same contract.
// The store must have room for exactly three values.
func runStoreScenario(t *testing.T, store genarena.Store[int]) {
	require.True(t, store.IsEmpty())

	h0 := store.Insert(10)
	h1 := store.Insert(11)
	h2 := store.Insert(12)
	require.Equal(t, 3, store.Num())
	require.False(t, store.IsEmpty())

	removed, ok := store.Remove(h1)
	require.True(t, ok)
	require.Equal(t, 11, removed)

	_, ok = store.Get(h1)
	require.False(t, ok)

	h3 := store.Insert(13)
	require.Equal(t, h1.Slot(), h3.Slot())
	require.Greater(t, h3.Generation(), h1.Generation())

	ref := store.GetMut(h0)
	require.NotNil(t, ref)
	*ref = 100

	require.Equal(t, h3.Generation(), store.Gen(h3.Slot()))
	value, ok := store.GetAny(h3.Slot())
	require.True(t, ok)
	require.Equal(t, 13, value)

	// All three slots are occupied again, so claiming a free slot fails
	// for the growable and fixed arenas alike.
	_, err := store.TryInsert(99)
	require.True(t, errors.Is(err, genarena.ArenaFullError))

	_, ok = store.Remove(h2)
	require.True(t, ok)
	h4, err := store.TryInsert(55)
	require.NoError(t, err)
	require.Equal(t, h2.Slot(), h4.Slot())

	var values []int
	for value := range store.Values() {
		values = append(values, value)
	}
	require.ElementsMatch(t, []int{100, 13, 55}, values)

	count := 0
	for index := range store.Keys() {
		_, ok := store.Get(index)
		require.True(t, ok)
		count++
	}
	require.Equal(t, 3, count)

	r0, r1 := store.Get2Mut(h0, h3)
	require.NotNil(t, r0)
	require.NotNil(t, r1)

	refs := store.GetN([]genarena.Index[int]{h0, h1, h3})
	require.NotNil(t, refs[0])
	require.Nil(t, refs[1])
	require.NotNil(t, refs[2])

	_, err = store.GetNMut([]genarena.Index[int]{h0, h0})
	require.True(t, errors.Is(err, genarena.AliasedIndicesError))

	require.NoError(t, store.Validate())

	var stats arenautils.Statistics
	stats.Clear()
	store.AddStatistics(&stats)
	require.Equal(t, arenautils.Statistics{
		ArenaCount: 1,
		SlotCount:  3,
		LiveCount:  3,
	}, stats)

	store.Clear()
	require.True(t, store.IsEmpty())
	_, ok = store.Get(h0)
	require.False(t, ok)
	_, ok = store.Get(h4)
	require.False(t, ok)
	require.NoError(t, store.Validate())
}

func TestStoreImplementations(t *testing.T) {
	t.Run("Arena", func(t *testing.T) {
		arena := genarena.NewArena[int]()
		runStoreScenario(t, arena)
	})

	t.Run("FixedArena", func(t *testing.T) {
		arena := genarena.NewFixedArena[int](3)
		runStoreScenario(t, arena)
	})
}
