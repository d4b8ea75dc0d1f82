package genarena

import "github.com/pkg/errors"

// ArenaFullError is the error returned from TryInsert when no free slot is
// available and the arena cannot or will not grow
var ArenaFullError error = errors.New("arena has no free slots available")

// CorruptFreeListError is the error returned from TryInsert when the free
// list head references a slot that is not actually free. It indicates
// internal state corruption and should be unreachable under correct use.
var CorruptFreeListError error = errors.New("free list references a slot that is not free")

// AliasedIndicesError is the error returned from GetNMut when two of the
// requested indices address the same slot
var AliasedIndicesError error = errors.New("two indices address the same slot")
