package genarena

import (
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"

	"github.com/DoeringChristian/Arena-Allocator/arenautils"
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
)

// fixedSlot is one storage cell of the fixed-capacity arena. Occupancy is
// published through an atomic state word so that concurrent inserters and
// readers of other slots never observe a half-written cell.
type fixedSlot[T any] struct {
	state atomic.Uint32
	gen   uint64
	next  int
	value T
}

// FixedArena is a generational arena whose backing storage is allocated
// once, at construction, and never moves. It follows the same index and
// validity model as Arena with one deliberate relaxation: Insert and
// TryInsert may be called from multiple goroutines concurrently with each
// other and with reads of already-occupied slots, without an external
// lock. The free list head is popped by compare-and-swap and a slot's
// occupancy is published atomically after its value is written, so a
// claimed slot is visible to readers only once it is fully initialized.
//
// This is an aliasing discipline, not general thread safety: Remove,
// GetMut, Get2Mut, GetNMut, Clear and the mutating iterators still require
// externally guaranteed exclusive access, with no insertion in flight.
//
// Because the storage never moves, pointers returned by lookups stay
// attached to the arena until the addressed slot is removed or the arena
// is cleared, unlike Arena where growth can detach them.
type FixedArena[T any] struct {
	slots []fixedSlot[T]
	head  atomic.Int64
	num   atomic.Int64
}

var _ arenautils.Validatable = (*FixedArena[int])(nil)

// NewFixedArena creates a FixedArena with exactly capacity slots, all
// free, pre-chained into one free list covering the whole storage.
func NewFixedArena[T any](capacity int) *FixedArena[T] {
	a := &FixedArena[T]{
		slots: make([]fixedSlot[T], capacity),
	}

	for i := 0; i < capacity; i++ {
		if i < capacity-1 {
			a.slots[i].next = i + 1
		} else {
			a.slots[i].next = noIndex
		}
	}

	if capacity == 0 {
		a.head.Store(noIndex)
	} else {
		a.head.Store(0)
	}

	return a
}

// Insert places value into a free slot and returns the Index addressing
// it. Unlike Arena.Insert the storage cannot grow, so inserting into a
// full FixedArena is a fatal misuse and panics; use TryInsert when
// exhaustion is an expected outcome. Safe to call concurrently with other
// insertions.
func (a *FixedArena[T]) Insert(value T) Index[T] {
	index, err := a.TryInsert(value)
	if err != nil {
		panic(fmt.Sprintf("insertion failed: %v", err))
	}

	return index
}

// TryInsert places value into a free slot without requiring exclusive
// access to the arena: concurrent calls claim distinct slots through a
// compare-and-swap on the free list head. It fails with ArenaFullError
// when every slot is occupied and with CorruptFreeListError when the
// claimed slot is not actually free.
//
// The head can only move forward through the chain while insertions are
// running, because pushing freed slots back happens in Remove and Clear,
// which require exclusive access. That rules out the classic compare-and-
// swap reuse hazard where the head returns to a previously observed slot.
func (a *FixedArena[T]) TryInsert(value T) (Index[T], error) {
	for {
		head := a.head.Load()
		if head == noIndex {
			return Index[T]{}, cerrors.Wrapf(ArenaFullError, "all %d slots occupied", len(a.slots))
		}

		claimed := int(head)
		next := int64(a.slots[claimed].next)
		if !a.head.CompareAndSwap(head, next) {
			continue
		}

		s := &a.slots[claimed]
		// Checked after the pop: while a slot still sits at the head,
		// another inserter may be mid-claim on it, and its state word
		// proves nothing.
		if s.state.Load() != slotFree {
			return Index[T]{}, cerrors.Wrapf(CorruptFreeListError, "free list head %d", claimed)
		}

		gen := s.gen
		s.value = value
		s.state.Store(slotOccupied)
		a.num.Add(1)

		return Index[T]{slot: claimed, gen: gen}, nil
	}
}

// Remove frees the slot addressed by index and returns the value it held.
// Stale, free and out-of-range indices are a no-op returning the zero
// value and false. Requires exclusive access.
func (a *FixedArena[T]) Remove(index Index[T]) (T, bool) {
	arenautils.DebugValidate(a)

	var zero T
	if index.slot < 0 || index.slot >= len(a.slots) {
		return zero, false
	}

	s := &a.slots[index.slot]
	if s.state.Load() != slotOccupied || s.gen != index.gen {
		return zero, false
	}

	value := s.value
	s.gen++
	s.next = int(a.head.Load())
	s.value = zero
	s.state.Store(slotFree)
	a.head.Store(int64(index.slot))
	a.num.Add(-1)

	return value, true
}

// Get returns a copy of the value addressed by index, or the zero value
// and false when index is not currently valid. Safe to call concurrently
// with insertions into other slots.
func (a *FixedArena[T]) Get(index Index[T]) (T, bool) {
	var zero T
	if index.slot < 0 || index.slot >= len(a.slots) {
		return zero, false
	}

	s := &a.slots[index.slot]
	if s.state.Load() != slotOccupied || s.gen != index.gen {
		return zero, false
	}

	return s.value, true
}

// GetMut returns a pointer to the value addressed by index, or nil when
// index is not currently valid. Requires exclusive access.
func (a *FixedArena[T]) GetMut(index Index[T]) *T {
	if index.slot < 0 || index.slot >= len(a.slots) {
		return nil
	}

	s := &a.slots[index.slot]
	if s.state.Load() != slotOccupied || s.gen != index.gen {
		return nil
	}

	return &s.value
}

// GetAny returns a copy of whatever value currently occupies slotIndex,
// bypassing generation checking. A free slot yields the zero value and
// false; an out-of-range slotIndex panics.
func (a *FixedArena[T]) GetAny(slotIndex int) (T, bool) {
	s := &a.slots[slotIndex]
	if s.state.Load() != slotOccupied {
		var zero T
		return zero, false
	}

	return s.value, true
}

// GetAnyMut is the pointer form of GetAny: nil for a free slot, panic for
// an out-of-range slotIndex. Requires exclusive access.
func (a *FixedArena[T]) GetAnyMut(slotIndex int) *T {
	s := &a.slots[slotIndex]
	if s.state.Load() != slotOccupied {
		return nil
	}

	return &s.value
}

// Get2Mut returns pointers to two independently mutable values, following
// the same resolution rules as Arena.Get2Mut: distinct slots are looked up
// independently, the strictly greater generation wins a same-slot pair,
// and a same-slot pair with equal generations panics. Requires exclusive
// access.
func (a *FixedArena[T]) Get2Mut(i0, i1 Index[T]) (*T, *T) {
	if i0.slot == i1.slot {
		if i0.gen == i1.gen {
			panic(fmt.Sprintf("two mutable references requested for slot %d at generation %d", i0.slot, i0.gen))
		}

		if i0.gen > i1.gen {
			return a.GetMut(i0), nil
		}
		return nil, a.GetMut(i1)
	}

	return a.GetMut(i0), a.GetMut(i1)
}

// GetN performs one independent lookup per index, preserving order, with
// nil marking invalid entries. Indices may repeat; treat the result as
// read access.
func (a *FixedArena[T]) GetN(indices []Index[T]) []*T {
	refs := make([]*T, len(indices))
	for i, index := range indices {
		refs[i] = a.GetMut(index)
	}

	return refs
}

// GetNMut returns pointers for mutating N distinct slots at once,
// rejecting the whole call with AliasedIndicesError when any two indices
// address the same slot. Requires exclusive access.
func (a *FixedArena[T]) GetNMut(indices []Index[T]) ([]*T, error) {
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			if indices[i].slot == indices[j].slot {
				return nil, cerrors.Wrapf(AliasedIndicesError, "indices %d and %d both address slot %d", i, j, indices[i].slot)
			}
		}
	}

	refs := make([]*T, len(indices))
	for i, index := range indices {
		refs[i] = a.GetMut(index)
	}

	return refs, nil
}

// Gen returns the current generation of the slot at slotIndex regardless
// of whether it is occupied. Panics when slotIndex is out of range.
func (a *FixedArena[T]) Gen(slotIndex int) uint64 {
	return a.slots[slotIndex].gen
}

// Clear removes every value from the arena, bumping the generation of
// each occupied slot, and rebuilds the free list as a forward chain over
// the whole storage. Requires exclusive access.
func (a *FixedArena[T]) Clear() {
	arenautils.DebugValidate(a)

	var zero T
	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state.Load() == slotOccupied {
			s.gen++
			s.value = zero
			s.state.Store(slotFree)
		}
		s.next = i + 1
	}

	if len(a.slots) == 0 {
		a.head.Store(noIndex)
	} else {
		a.slots[len(a.slots)-1].next = noIndex
		a.head.Store(0)
	}
	a.num.Store(0)
}

// Capacity returns the fixed number of slots chosen at construction.
func (a *FixedArena[T]) Capacity() int {
	return len(a.slots)
}

// Num returns the number of live values in the arena.
func (a *FixedArena[T]) Num() int {
	return int(a.num.Load())
}

// IsEmpty returns true when the arena holds no live values.
func (a *FixedArena[T]) IsEmpty() bool {
	return a.Num() == 0
}

// Iter returns an iterator over the live entries in ascending slot order,
// yielding each value together with the Index addressing it.
func (a *FixedArena[T]) Iter() iter.Seq2[Index[T], T] {
	return func(yield func(Index[T], T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(Index[T]{slot: i, gen: s.gen}, s.value) {
				return
			}
		}
	}
}

// IterMut is the mutating form of Iter, yielding pointers into the arena.
// Requires exclusive access.
func (a *FixedArena[T]) IterMut() iter.Seq2[Index[T], *T] {
	return func(yield func(Index[T], *T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(Index[T]{slot: i, gen: s.gen}, &s.value) {
				return
			}
		}
	}
}

// Values returns an iterator over the live values in ascending slot order.
func (a *FixedArena[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(s.value) {
				return
			}
		}
	}
}

// ValuesMut is the mutating form of Values. Requires exclusive access.
func (a *FixedArena[T]) ValuesMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(&s.value) {
				return
			}
		}
	}
}

// Keys returns an iterator over the indices of the live entries in
// ascending slot order.
func (a *FixedArena[T]) Keys() iter.Seq[Index[T]] {
	return func(yield func(Index[T]) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(Index[T]{slot: i, gen: s.gen}) {
				return
			}
		}
	}
}

// Enumerate returns an iterator over the live entries yielding raw slot
// indices instead of generational indices, pairing with the GetAny and
// Gen escape hatches.
func (a *FixedArena[T]) Enumerate() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(i, s.value) {
				return
			}
		}
	}
}

// EnumerateMut is the mutating form of Enumerate. Requires exclusive
// access.
func (a *FixedArena[T]) EnumerateMut() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state.Load() != slotOccupied {
				continue
			}
			if !yield(i, &s.value) {
				return
			}
		}
	}
}

// Validate performs internal consistency checks on the arena. It requires
// exclusive access, since a legal concurrent insertion would transiently
// fail the counts it verifies.
func (a *FixedArena[T]) Validate() error {
	live := 0
	for i := 0; i < len(a.slots); i++ {
		switch a.slots[i].state.Load() {
		case slotOccupied:
			live++
		case slotFree:
		default:
			return errors.Errorf("slot %d has invalid state %d", i, a.slots[i].state.Load())
		}
	}

	if live != int(a.num.Load()) {
		return errors.Errorf("live count %d does not match %d occupied slots", a.num.Load(), live)
	}

	freeCount := 0
	for i := int(a.head.Load()); i != noIndex; i = a.slots[i].next {
		if i < 0 || i >= len(a.slots) {
			return errors.Errorf("free list references out-of-range slot %d", i)
		}
		if a.slots[i].state.Load() != slotFree {
			return errors.Errorf("free list contains slot %d, which is not free", i)
		}
		freeCount++
		if freeCount > len(a.slots) {
			return errors.New("free list contains a cycle")
		}
	}

	if freeCount != len(a.slots)-live {
		return errors.Errorf("free list contains %d slots, expected %d", freeCount, len(a.slots)-live)
	}

	return nil
}

// AddStatistics sums this arena's slot population into the provided
// statistics.
func (a *FixedArena[T]) AddStatistics(stats *arenautils.Statistics) {
	stats.ArenaCount++
	stats.SlotCount += len(a.slots)
	stats.LiveCount += a.Num()
}

// AddDetailedStatistics sums this arena's slot population, including
// per-slot generation figures, into the provided statistics.
func (a *FixedArena[T]) AddDetailedStatistics(stats *arenautils.DetailedStatistics) {
	stats.ArenaCount++
	stats.SlotCount += len(a.slots)

	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state.Load() == slotOccupied {
			stats.AddLiveSlot(s.gen)
		} else {
			stats.AddFreeSlot(s.gen)
		}
	}
}

// JsonData populates a json object with information about this arena
func (a *FixedArena[T]) JsonData(json jwriter.ObjectState) {
	json.Name("TotalSlots").Int(len(a.slots))
	json.Name("Capacity").Int(len(a.slots))
	json.Name("LiveSlots").Int(a.Num())
	json.Name("FreeSlots").Int(len(a.slots) - a.Num())
}

// VisitAllSlots calls the provided callback once for every slot, occupied
// or free, in ascending slot order. Free slots are reported with the zero
// value. The walk stops at the first error and hands it back.
func (a *FixedArena[T]) VisitAllSlots(handleSlot func(slotIndex int, gen uint64, value T, free bool) error) error {
	var zero T
	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]

		var err error
		if s.state.Load() == slotOccupied {
			err = handleSlot(i, s.gen, s.value, false)
		} else {
			err = handleSlot(i, s.gen, zero, true)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// DebugLogAllEntries logs every live entry through the provided callback.
// Depending on the element type this can be extremely noisy and should
// only be used for diagnostic purposes.
func (a *FixedArena[T]) DebugLogAllEntries(logger *slog.Logger, logFunc func(log *slog.Logger, slotIndex int, gen uint64, value T)) {
	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state.Load() == slotOccupied {
			logFunc(logger, i, s.gen, s.value)
		}
	}
}
