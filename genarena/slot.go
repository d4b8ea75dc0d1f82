package genarena

// noIndex terminates the intrusive free list.
const noIndex = -1

const (
	slotFree uint32 = iota
	slotOccupied
)

// slot is one storage cell of the growable arena. A free slot keeps the
// generation it will hand out on reuse and links to the next free slot,
// forming a singly linked free list threaded through the storage itself.
type slot[T any] struct {
	state uint32
	gen   uint64
	next  int
	value T
}
