package genarena

import (
	"iter"

	"github.com/DoeringChristian/Arena-Allocator/arenautils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Store is the surface shared by Arena and FixedArena. Consumers that do
// not care whether their backing storage can grow should depend on Store
// and let their construction path pick the concrete arena.
//
// Growable-only operations (Reserve) and fixed-only operations (Enumerate,
// EnumerateMut, the relaxed insertion contract) stay off the interface;
// going through Store always implies the conventional exclusive-mutation
// discipline.
type Store[T any] interface {
	// Insert places value into a free slot and returns the Index
	// addressing it. Whether a full store grows or panics depends on the
	// implementation; use TryInsert when failure must be recoverable.
	Insert(value T) Index[T]
	// TryInsert places value into a free slot without growing the backing
	// storage. It fails with ArenaFullError when no free slot is available
	// and with CorruptFreeListError when the free list is inconsistent;
	// both are recoverable for the caller, which still holds its value.
	TryInsert(value T) (Index[T], error)
	// Remove frees the slot addressed by index and returns the value it
	// held. Removal is honored only for currently valid indices: a stale,
	// free or out-of-range index is a no-op returning the zero value and
	// false.
	Remove(index Index[T]) (T, bool)

	// Get returns a copy of the value addressed by index, or the zero
	// value and false when index is not currently valid.
	Get(index Index[T]) (T, bool)
	// GetMut returns a pointer to the value addressed by index, or nil
	// when index is not currently valid. How long the pointer stays
	// attached to the store is implementation-specific; it is always safe
	// to use until the next mutating operation.
	GetMut(index Index[T]) *T
	// GetAny returns a copy of whatever value occupies slotIndex,
	// bypassing generation checking. A free slot yields the zero value
	// and false; an out-of-range slotIndex panics.
	GetAny(slotIndex int) (T, bool)
	// GetAnyMut is the pointer form of GetAny.
	GetAnyMut(slotIndex int) *T
	// Get2Mut returns pointers to two independently mutable values. A
	// same-slot pair resolves in favor of the strictly greater
	// generation; a same-slot pair with equal generations panics.
	Get2Mut(i0, i1 Index[T]) (*T, *T)
	// GetN performs one independent lookup per index, preserving order,
	// with nil marking invalid entries.
	GetN(indices []Index[T]) []*T
	// GetNMut returns pointers for mutating N distinct slots at once. Any
	// two indices addressing the same slot fail the call with
	// AliasedIndicesError.
	GetNMut(indices []Index[T]) ([]*T, error)
	// Gen returns the current generation of the slot at slotIndex.
	// Panics when slotIndex is out of range.
	Gen(slotIndex int) uint64

	// Num returns the number of live values in the store.
	Num() int
	// Capacity returns the allocated slot capacity of the store.
	Capacity() int
	// IsEmpty returns true when the store holds no live values.
	IsEmpty() bool
	// Clear removes every value, invalidating all outstanding indices for
	// previously occupied slots.
	Clear()

	// Iter iterates the live entries in ascending slot order, yielding
	// each value together with the Index addressing it.
	Iter() iter.Seq2[Index[T], T]
	// IterMut is the mutating form of Iter.
	IterMut() iter.Seq2[Index[T], *T]
	// Values iterates the live values in ascending slot order.
	Values() iter.Seq[T]
	// ValuesMut is the mutating form of Values.
	ValuesMut() iter.Seq[*T]
	// Keys iterates the indices of the live entries in ascending slot
	// order.
	Keys() iter.Seq[Index[T]]
	// VisitAllSlots calls the provided callback once for every created
	// slot, occupied or free, stopping at the first error.
	VisitAllSlots(handleSlot func(slotIndex int, gen uint64, value T, free bool) error) error

	// Validate performs internal consistency checks. When the
	// implementation is functioning correctly it cannot return an error.
	Validate() error
	// AddStatistics sums this store's slot population into the provided
	// statistics.
	AddStatistics(stats *arenautils.Statistics)
	// AddDetailedStatistics sums this store's slot population, including
	// generation figures, into the provided statistics.
	AddDetailedStatistics(stats *arenautils.DetailedStatistics)
	// JsonData populates a json object with information about this store.
	JsonData(json jwriter.ObjectState)
}

var _ Store[int] = (*Arena[int])(nil)
var _ Store[int] = (*FixedArena[int])(nil)
