package genarena

type tag[T any] struct{}

// Index addresses a single value inside an Arena or FixedArena holding
// elements of type T. It pairs the slot index the value lives in with the
// generation the slot carried when the value was inserted, so an Index held
// across a removal can be detected as stale instead of silently resolving
// to whatever value reuses the slot.
//
// The type parameter is a compile-time tag only: it keeps indices from
// arenas of different element types apart and carries no runtime state, so
// it does not participate in comparison. Indices are freely copyable
// lookup keys and confer no ownership of the addressed value.
//
// Generations are 64 bits wide and never wrap in practice: a single slot
// would need 2^64 removals first. Wraparound is not handled.
type Index[T any] struct {
	_    tag[T]
	slot int
	gen  uint64
}

// NewIndex builds an Index from its raw parts. Arenas hand out indices on
// insertion; building one by hand is only needed when indices cross a
// serialization boundary owned by the caller.
func NewIndex[T any](slotIndex int, gen uint64) Index[T] {
	return Index[T]{
		slot: slotIndex,
		gen:  gen,
	}
}

// Slot returns the raw slot index this Index addresses.
func (i Index[T]) Slot() int {
	return i.slot
}

// Generation returns the generation this Index was issued under.
func (i Index[T]) Generation() uint64 {
	return i.gen
}
