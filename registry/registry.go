package registry

import (
	"iter"
	"log/slog"

	"github.com/DoeringChristian/Arena-Allocator/arenautils"
	"github.com/DoeringChristian/Arena-Allocator/genarena"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
)

// CreateOptions contains optional settings when creating a registry
type CreateOptions struct {
	// Flags indicates specific registry behaviors to activate or deactivate
	Flags CreateFlags

	// FixedCapacity, when positive, backs the registry with a fixed-capacity arena
	// holding exactly this many slots. Registration fails with genarena.ArenaFullError
	// once every slot is occupied, and values never move in memory once registered.
	FixedCapacity int

	// InitialCapacity, when positive, pre-allocates backing storage for this many
	// values in the growable arena behind the registry. The registry still grows
	// beyond it on demand. Mutually exclusive with FixedCapacity.
	InitialCapacity int
}

// Registry maps keys of any comparable type to values stored in a generational
// arena. Each registered value is addressed both by its key and by the arena
// Index handed out at registration, so consumers can pass around the cheap
// generational handle and fall back to the key only when they need to.
//
// All methods are synchronized with an internal mutex unless the registry was
// created with RegistryCreateExternallySynchronized, with the exception of
// Validate, which always requires the caller to quiesce the registry first.
type Registry[K comparable, V any] struct {
	logger *slog.Logger
	mutex  arenautils.OptionalRWMutex

	handles *swiss.Map[K, genarena.Index[V]]
	store   genarena.Store[V]

	createFlags CreateFlags
	fixed       bool
	mapHint     uint32
	name        string
}

var _ arenautils.Validatable = (*Registry[int, int])(nil)

// New creates a new Registry
//
// logger - Debug traces for registry operations are written here
//
// options - Optional parameters: it is valid to leave all the fields blank
func New[K comparable, V any](logger *slog.Logger, options CreateOptions) (*Registry[K, V], error) {
	if options.FixedCapacity < 0 {
		return nil, errors.Errorf("registry.CreateOptions.FixedCapacity cannot be negative: %d", options.FixedCapacity)
	}
	if options.InitialCapacity < 0 {
		return nil, errors.Errorf("registry.CreateOptions.InitialCapacity cannot be negative: %d", options.InitialCapacity)
	}
	if options.FixedCapacity > 0 && options.InitialCapacity > 0 {
		return nil, errors.New("registry.CreateOptions.FixedCapacity and registry.CreateOptions.InitialCapacity were both provided, but a fixed-capacity arena cannot grow into reserved storage")
	}

	useMutex := options.Flags&RegistryCreateExternallySynchronized == 0

	mapHint := uint32(42)
	if options.FixedCapacity > 0 {
		mapHint = uint32(options.FixedCapacity)
	} else if options.InitialCapacity > 0 {
		mapHint = uint32(options.InitialCapacity)
	}

	r := &Registry[K, V]{
		logger: logger,
		mutex:  arenautils.OptionalRWMutex{UseMutex: useMutex},

		handles: swiss.NewMap[K, genarena.Index[V]](mapHint),

		createFlags: options.Flags,
		fixed:       options.FixedCapacity > 0,
		mapHint:     mapHint,
	}

	if options.FixedCapacity > 0 {
		r.store = genarena.NewFixedArena[V](options.FixedCapacity)
	} else if options.InitialCapacity > 0 {
		r.store = genarena.NewArenaWithCapacity[V](options.InitialCapacity)
	} else {
		r.store = genarena.NewArena[V]()
	}

	return r, nil
}

func (r *Registry[K, V]) SetName(name string) {
	r.logger.Debug("Registry::SetName")

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.name = name
}

func (r *Registry[K, V]) Name() string {
	r.logger.Debug("Registry::Name")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.name
}

// Register stores value in the backing arena and maps key to the Index addressing
// it. The returned Index stays valid until the key is deregistered or the registry
// is cleared. Registration fails with DuplicateKeyError when key is already mapped
// and, on a fixed-capacity registry, with genarena.ArenaFullError when every slot
// is occupied.
func (r *Registry[K, V]) Register(key K, value V) (genarena.Index[V], error) {
	r.logger.Debug("Registry::Register", slog.Any("Key", key))

	r.mutex.Lock()
	defer r.mutex.Unlock()
	arenautils.DebugValidate(r)

	if r.handles.Has(key) {
		return genarena.Index[V]{}, errors.Wrapf(DuplicateKeyError, "key %v", key)
	}

	var index genarena.Index[V]
	if r.fixed {
		var err error
		index, err = r.store.TryInsert(value)
		if err != nil {
			return genarena.Index[V]{}, errors.Wrapf(err, "registering key %v", key)
		}
	} else {
		index = r.store.Insert(value)
	}

	r.handles.Put(key, index)

	return index, nil
}

// Deregister removes the mapping for key, frees the arena slot backing its value
// and returns that value. Every outstanding Index for the value becomes stale.
// Returns the zero value and false when key is not registered.
func (r *Registry[K, V]) Deregister(key K) (V, bool) {
	r.logger.Debug("Registry::Deregister", slog.Any("Key", key))

	r.mutex.Lock()
	defer r.mutex.Unlock()
	arenautils.DebugValidate(r)

	var zero V
	index, ok := r.handles.Get(key)
	if !ok {
		return zero, false
	}

	r.handles.Delete(key)

	return r.store.Remove(index)
}

// Lookup returns a copy of the value registered under key.
func (r *Registry[K, V]) Lookup(key K) (V, bool) {
	r.logger.Debug("Registry::Lookup")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, ok := r.handles.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	return r.store.Get(index)
}

// Handle returns the arena Index registered for key, which can then be resolved
// repeatedly without paying for the key hash.
func (r *Registry[K, V]) Handle(key K) (genarena.Index[V], bool) {
	r.logger.Debug("Registry::Handle")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.handles.Get(key)
}

// Resolve returns a copy of the value addressed by index, bypassing the key map
// entirely. A stale index yields the zero value and false.
func (r *Registry[K, V]) Resolve(index genarena.Index[V]) (V, bool) {
	r.logger.Debug("Registry::Resolve")

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.store.Get(index)
}

// Update applies the provided callback to the value registered under key, in
// place, while the registry lock is held. Returns false without calling the
// callback when key is not registered.
func (r *Registry[K, V]) Update(key K, update func(value *V)) bool {
	r.logger.Debug("Registry::Update", slog.Any("Key", key))

	r.mutex.Lock()
	defer r.mutex.Unlock()
	arenautils.DebugValidate(r)

	index, ok := r.handles.Get(key)
	if !ok {
		return false
	}

	ref := r.store.GetMut(index)
	if ref == nil {
		return false
	}

	update(ref)

	return true
}

// Clear deregisters every key and frees every arena slot. All outstanding
// indices become stale. The arena's backing storage is retained.
func (r *Registry[K, V]) Clear() {
	r.logger.Debug("Registry::Clear")

	r.mutex.Lock()
	defer r.mutex.Unlock()
	arenautils.DebugValidate(r)

	r.store.Clear()
	r.handles = swiss.NewMap[K, genarena.Index[V]](r.mapHint)
}

// Count returns the number of registered values.
func (r *Registry[K, V]) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.store.Num()
}

// IsEmpty returns true when no values are registered.
func (r *Registry[K, V]) IsEmpty() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.store.IsEmpty()
}

// Capacity returns the allocated size of the backing arena.
func (r *Registry[K, V]) Capacity() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.store.Capacity()
}

// Each returns an iterator over every registered key and a copy of its value,
// in no particular order. The registry lock is held for the duration of the
// range, so the loop body must not mutate the registry.
func (r *Registry[K, V]) Each() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		r.mutex.RLock()
		defer r.mutex.RUnlock()

		r.handles.Iter(func(key K, index genarena.Index[V]) (stop bool) {
			value, ok := r.store.Get(index)
			if !ok {
				return false
			}
			return !yield(key, value)
		})
	}
}

// Validate performs internal consistency checks on the registry and its backing
// arena. It does not take the registry lock, so the caller must guarantee that
// no mutation is in flight. When the implementation is functioning correctly it
// cannot return an error, but it may assist in diagnosing issues.
func (r *Registry[K, V]) Validate() error {
	err := r.store.Validate()
	if err != nil {
		return err
	}

	mapped := 0
	r.handles.Iter(func(key K, index genarena.Index[V]) (stop bool) {
		mapped++
		if _, ok := r.store.Get(index); !ok {
			err = errors.Errorf("key %v maps to a stale index for slot %d", key, index.Slot())
			return true
		}
		return false
	})
	if err != nil {
		return err
	}

	if mapped != r.store.Num() {
		return errors.Errorf("registry maps %d keys but the arena holds %d values", mapped, r.store.Num())
	}

	return nil
}
