package genarena

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/DoeringChristian/Arena-Allocator/arenautils"
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
)

// Arena is a growable generational arena. Values are stored in slots that
// are reused after removal, with a per-slot generation counter telling
// apart the successive occupants of one slot. Freed slots form an
// intrusive singly linked list through the storage, so insertion and
// removal are O(1) with no side allocations.
//
// An Arena is not synchronized: mutating operations require exclusive
// access and read operations may share access, in the usual way. Pointers
// returned by GetMut and friends stay attached to the arena only until the
// next operation that grows, clears, or removes from it.
type Arena[T any] struct {
	slots []slot[T]
	head  int
	num   int
}

var _ arenautils.Validatable = (*Arena[int])(nil)

// NewArena creates an empty Arena with no backing storage allocated.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		head: noIndex,
	}
}

// NewArenaWithCapacity creates an empty Arena with backing storage
// pre-allocated for capacity slots. No slots are created: insertion fills
// the reserved storage before any further allocation happens.
func NewArenaWithCapacity[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
		head:  noIndex,
	}
}

// Insert places value into the arena and returns the Index addressing it.
// The head of the free list is claimed when one exists; otherwise the
// backing storage grows by one slot. Insert always succeeds and panics
// only when the free list is corrupt.
func (a *Arena[T]) Insert(value T) Index[T] {
	index, err := a.TryInsert(value)
	if err == nil {
		return index
	}
	if !cerrors.Is(err, ArenaFullError) {
		panic(fmt.Sprintf("insertion failed: %v", err))
	}

	a.slots = append(a.slots, slot[T]{
		state: slotOccupied,
		next:  noIndex,
		value: value,
	})
	a.num++

	return Index[T]{slot: len(a.slots) - 1}
}

// TryInsert places value into a free slot without ever growing the backing
// storage. It fails with ArenaFullError when the free list is empty and
// with CorruptFreeListError when the free list head references a slot that
// is not free. The caller keeps its value either way and can retry or fall
// back.
func (a *Arena[T]) TryInsert(value T) (Index[T], error) {
	arenautils.DebugValidate(a)

	if a.head == noIndex {
		return Index[T]{}, cerrors.Wrapf(ArenaFullError, "%d slots, none free", len(a.slots))
	}

	claimed := a.head
	s := &a.slots[claimed]
	if s.state != slotFree {
		return Index[T]{}, cerrors.Wrapf(CorruptFreeListError, "free list head %d", claimed)
	}

	a.head = s.next
	s.state = slotOccupied
	s.next = noIndex
	s.value = value
	a.num++

	return Index[T]{slot: claimed, gen: s.gen}, nil
}

// Remove frees the slot addressed by index and returns the value it held.
// The removal is honored only when index is currently valid: a stale or
// out-of-range index is a no-op returning the zero value and false, the
// same contract Get follows. On success the slot's generation is bumped,
// invalidating every outstanding Index for the old occupant, and the slot
// becomes the new free list head.
func (a *Arena[T]) Remove(index Index[T]) (T, bool) {
	arenautils.DebugValidate(a)

	var zero T
	if index.slot < 0 || index.slot >= len(a.slots) {
		return zero, false
	}

	s := &a.slots[index.slot]
	if s.state != slotOccupied || s.gen != index.gen {
		return zero, false
	}

	value := s.value
	s.state = slotFree
	s.gen++
	s.next = a.head
	// Drop the stored value so the GC can reclaim what it references.
	s.value = zero
	a.head = index.slot
	a.num--

	return value, true
}

// Get returns a copy of the value addressed by index, or the zero value
// and false when index is stale, out of range, or addresses a free slot.
func (a *Arena[T]) Get(index Index[T]) (T, bool) {
	var zero T
	if index.slot < 0 || index.slot >= len(a.slots) {
		return zero, false
	}

	s := &a.slots[index.slot]
	if s.state != slotOccupied || s.gen != index.gen {
		return zero, false
	}

	return s.value, true
}

// GetMut returns a pointer to the value addressed by index, or nil when
// index is not currently valid.
func (a *Arena[T]) GetMut(index Index[T]) *T {
	if index.slot < 0 || index.slot >= len(a.slots) {
		return nil
	}

	s := &a.slots[index.slot]
	if s.state != slotOccupied || s.gen != index.gen {
		return nil
	}

	return &s.value
}

// GetAny returns a copy of whatever value currently occupies slotIndex,
// bypassing generation checking entirely. It is an unchecked escape hatch
// for callers that already know the slot is live: a free slot yields the
// zero value and false, and an out-of-range slotIndex panics.
func (a *Arena[T]) GetAny(slotIndex int) (T, bool) {
	s := &a.slots[slotIndex]
	if s.state != slotOccupied {
		var zero T
		return zero, false
	}

	return s.value, true
}

// GetAnyMut is the pointer form of GetAny: nil for a free slot, panic for
// an out-of-range slotIndex.
func (a *Arena[T]) GetAnyMut(slotIndex int) *T {
	s := &a.slots[slotIndex]
	if s.state != slotOccupied {
		return nil
	}

	return &s.value
}

// Get2Mut returns pointers to two independently mutable values. When the
// indices address different slots both are looked up independently. When
// they address the same slot, the index with the strictly greater
// generation wins its lookup and the other side is nil; equal generations
// would alias one value through two live pointers, which is a lifetime bug
// in the caller, and panic.
func (a *Arena[T]) Get2Mut(i0, i1 Index[T]) (*T, *T) {
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

// GetN performs one independent lookup per index, preserving order. Each
// entry of the result is a pointer to the addressed value, or nil when the
// corresponding index is not valid. Indices may repeat; the same slot then
// appears through the same pointer more than once, so treat the result as
// read access.
func (a *Arena[T]) GetN(indices []Index[T]) []*T {
	refs := make([]*T, len(indices))
	for i, index := range indices {
		refs[i] = a.GetMut(index)
	}

	return refs
}

// GetNMut returns pointers for mutating N distinct slots at once. Any two
// indices addressing the same slot fail the whole call with
// AliasedIndicesError before any lookup happens; otherwise entries resolve
// like GetMut, with nil marking stale indices.
func (a *Arena[T]) GetNMut(indices []Index[T]) ([]*T, error) {
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
// of whether it is occupied. An Index is stale exactly when its generation
// differs from the slot's current one. Panics when slotIndex is out of
// range.
func (a *Arena[T]) Gen(slotIndex int) uint64 {
	return a.slots[slotIndex].gen
}

// Clear removes every value from the arena. Occupied slots have their
// generation bumped, so every previously issued Index becomes stale; slots
// that were already free keep their generation. The free list is rebuilt
// as a forward chain over all slots and the live count drops to zero. The
// backing storage is retained.
func (a *Arena[T]) Clear() {
	arenautils.DebugValidate(a)

	var zero T
	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state == slotOccupied {
			s.state = slotFree
			s.gen++
			s.value = zero
		}
		s.next = i + 1
	}

	if len(a.slots) == 0 {
		a.head = noIndex
	} else {
		a.slots[len(a.slots)-1].next = noIndex
		a.head = 0
	}
	a.num = 0
}

// Reserve grows the backing storage so that at least additional more slots
// can be created without reallocation. No new slots become visible: the
// free list and the live count are untouched.
func (a *Arena[T]) Reserve(additional int) {
	if additional <= 0 || cap(a.slots)-len(a.slots) >= additional {
		return
	}

	grown := make([]slot[T], len(a.slots), len(a.slots)+additional)
	copy(grown, a.slots)
	a.slots = grown
}

// Capacity returns the allocated size of the backing storage, counting
// slots that have not been created yet.
func (a *Arena[T]) Capacity() int {
	return cap(a.slots)
}

// Num returns the number of live values in the arena.
func (a *Arena[T]) Num() int {
	return a.num
}

// IsEmpty returns true when the arena holds no live values.
func (a *Arena[T]) IsEmpty() bool {
	return a.num == 0
}

// Iter returns an iterator over the live entries in ascending slot order,
// yielding each value together with the Index addressing it. The iterator
// skips free slots and can be restarted by calling Iter again.
func (a *Arena[T]) Iter() iter.Seq2[Index[T], T] {
	return func(yield func(Index[T], T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state != slotOccupied {
				continue
			}
			if !yield(Index[T]{slot: i, gen: s.gen}, s.value) {
				return
			}
		}
	}
}

// IterMut is the mutating form of Iter, yielding pointers into the arena
// instead of copies.
func (a *Arena[T]) IterMut() iter.Seq2[Index[T], *T] {
	return func(yield func(Index[T], *T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state != slotOccupied {
				continue
			}
			if !yield(Index[T]{slot: i, gen: s.gen}, &s.value) {
				return
			}
		}
	}
}

// Values returns an iterator over the live values in ascending slot order.
func (a *Arena[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state != slotOccupied {
				continue
			}
			if !yield(s.value) {
				return
			}
		}
	}
}

// ValuesMut is the mutating form of Values.
func (a *Arena[T]) ValuesMut() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state != slotOccupied {
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
func (a *Arena[T]) Keys() iter.Seq[Index[T]] {
	return func(yield func(Index[T]) bool) {
		for i := 0; i < len(a.slots); i++ {
			s := &a.slots[i]
			if s.state != slotOccupied {
				continue
			}
			if !yield(Index[T]{slot: i, gen: s.gen}) {
				return
			}
		}
	}
}

// Validate performs internal consistency checks on the arena. When the
// implementation is functioning correctly it cannot return an error, but
// it may assist in diagnosing issues.
func (a *Arena[T]) Validate() error {
	live := 0
	for i := 0; i < len(a.slots); i++ {
		switch a.slots[i].state {
		case slotOccupied:
			live++
		case slotFree:
		default:
			return errors.Errorf("slot %d has invalid state %d", i, a.slots[i].state)
		}
	}

	if live != a.num {
		return errors.Errorf("live count %d does not match %d occupied slots", a.num, live)
	}

	freeCount := 0
	for i := a.head; i != noIndex; i = a.slots[i].next {
		if i < 0 || i >= len(a.slots) {
			return errors.Errorf("free list references out-of-range slot %d", i)
		}
		if a.slots[i].state != slotFree {
			return errors.Errorf("free list contains slot %d, which is not free", i)
		}
		freeCount++
		if freeCount > len(a.slots) {
			return errors.New("free list contains a cycle")
		}
	}

	if freeCount != len(a.slots)-a.num {
		return errors.Errorf("free list contains %d slots, expected %d", freeCount, len(a.slots)-a.num)
	}

	return nil
}

// AddStatistics sums this arena's slot population into the provided
// statistics.
func (a *Arena[T]) AddStatistics(stats *arenautils.Statistics) {
	stats.ArenaCount++
	stats.SlotCount += len(a.slots)
	stats.LiveCount += a.num
}

// AddDetailedStatistics sums this arena's slot population, including
// per-slot generation figures, into the provided statistics.
func (a *Arena[T]) AddDetailedStatistics(stats *arenautils.DetailedStatistics) {
	stats.ArenaCount++
	stats.SlotCount += len(a.slots)

	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state == slotOccupied {
			stats.AddLiveSlot(s.gen)
		} else {
			stats.AddFreeSlot(s.gen)
		}
	}
}

// JsonData populates a json object with information about this arena
func (a *Arena[T]) JsonData(json jwriter.ObjectState) {
	json.Name("TotalSlots").Int(len(a.slots))
	json.Name("Capacity").Int(cap(a.slots))
	json.Name("LiveSlots").Int(a.num)
	json.Name("FreeSlots").Int(len(a.slots) - a.num)
}

// VisitAllSlots calls the provided callback once for every created slot,
// occupied or free, in ascending slot order. Free slots are reported with
// the zero value. The walk stops at the first error and hands it back.
func (a *Arena[T]) VisitAllSlots(handleSlot func(slotIndex int, gen uint64, value T, free bool) error) error {
	var zero T
	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]

		var err error
		if s.state == slotOccupied {
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
func (a *Arena[T]) DebugLogAllEntries(logger *slog.Logger, logFunc func(log *slog.Logger, slotIndex int, gen uint64, value T)) {
	for i := 0; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state == slotOccupied {
			logFunc(logger, i, s.gen, s.value)
		}
	}
}
