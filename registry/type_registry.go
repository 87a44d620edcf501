/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/suparena/typeregistry/errors"
	"github.com/suparena/typeregistry/identifier"
)

// Registry is the type-erased view of a KeyRegistry held by a TypeRegistry.
// Only *KeyRegistry[T] implements it.
type Registry interface {
	ValueType() reflect.Type
	Len() int
	IsEmpty() bool
	IDs() []identifier.Identifier
	String() string

	pruneIfEmpty(prune func()) bool
}

// TypeRegistry maps each value type to the KeyRegistry holding its instances.
// It never keeps more than one KeyRegistry per type, and removing the last
// entry of a type through the TypeRegistry discards that type's KeyRegistry.
type TypeRegistry struct {
	mu         sync.RWMutex
	registries map[reflect.Type]Registry
	logger     zerolog.Logger
}

// Option configures a TypeRegistry.
type Option func(*TypeRegistry)

// WithLogger sets the logger used for structural events (create, prune, detach, clear).
func WithLogger(logger zerolog.Logger) Option {
	return func(tr *TypeRegistry) { tr.logger = logger }
}

// New creates an empty TypeRegistry.
func New(opts ...Option) *TypeRegistry {
	tr := &TypeRegistry{
		registries: make(map[reflect.Type]Registry),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

// lookupLocked returns the KeyRegistry for T. The assertion cannot fail: the
// entry under TypeFor[T] is only ever a *KeyRegistry[T].
func lookupLocked[T any](tr *TypeRegistry) (*KeyRegistry[T], bool) {
	r, ok := tr.registries[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*KeyRegistry[T]), true
}

func getOrCreateLocked[T any](tr *TypeRegistry, opts ...KeyOption[T]) *KeyRegistry[T] {
	if kr, ok := lookupLocked[T](tr); ok {
		return kr
	}
	kr := NewKeyRegistry[T](opts...)
	tr.registries[kr.typ] = kr
	tr.logger.Debug().Str("type", kr.typ.String()).Msg("key registry created")
	return kr
}

// pruneLocked removes typ's registry if it is empty. Caller holds tr.mu.
func (tr *TypeRegistry) pruneLocked(typ reflect.Type, r Registry) bool {
	return r.pruneIfEmpty(func() {
		delete(tr.registries, typ)
		tr.logger.Debug().Str("type", typ.String()).Msg("empty key registry pruned")
	})
}

// Register stores value at id in the KeyRegistry for T, creating that registry
// if needed and overwriting any previous value at id. It returns value.
// Registering a nil pointer, interface, map, slice, func or channel is a
// programming error and panics with a *errors.ValidationError.
func Register[T any](tr *TypeRegistry, id identifier.Identifier, value T) T {
	if isNil(value) {
		panic(errors.NewValidationError("value", fmt.Sprintf("cannot register nil %s at %s", reflect.TypeFor[T](), id)))
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	getOrCreateLocked[T](tr).Put(id, value)
	return value
}

// Get returns the T registered at id.
func Get[T any](tr *TypeRegistry, id identifier.Identifier) (T, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	kr, ok := lookupLocked[T](tr)
	if !ok {
		var zero T
		return zero, false
	}
	return kr.Get(id)
}

// Require is Get returning an error that matches errors.ErrNotFound when
// nothing is registered at id. When T has no registry at all the error also
// matches errors.ErrNoRegistry.
func Require[T any](tr *TypeRegistry, id identifier.Identifier) (T, error) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	var zero T
	typ := reflect.TypeFor[T]()
	kr, ok := lookupLocked[T](tr)
	if !ok {
		return zero, errors.NewNoRegistryError(typ.String())
	}
	v, ok := kr.Get(id)
	if !ok {
		return zero, errors.NewNotFoundError(typ.String(), id.String())
	}
	return v, nil
}

// Unregister removes the T registered at id and returns it. If that leaves
// T's registry empty, the registry is discarded in the same critical section.
// A failed removal leaves an already empty registry in place.
func Unregister[T any](tr *TypeRegistry, id identifier.Identifier) (T, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	kr, ok := lookupLocked[T](tr)
	if !ok {
		var zero T
		return zero, false
	}
	v, removed := kr.Remove(id)
	if removed {
		tr.pruneLocked(kr.typ, kr)
	}
	return v, removed
}

// UnregisterValue removes the entry at id only if it equals value, pruning
// T's registry if it becomes empty. It returns false both when nothing is
// registered at id and when the stored value differs; use IsRegistered to
// tell the two apart.
func UnregisterValue[T any](tr *TypeRegistry, id identifier.Identifier, value T) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	kr, ok := lookupLocked[T](tr)
	if !ok {
		return false
	}
	removed := kr.RemoveIfEqual(id, value)
	if removed {
		tr.pruneLocked(kr.typ, kr)
	}
	return removed
}

// IsRegistered reports whether a T is registered at id.
func IsRegistered[T any](tr *TypeRegistry, id identifier.Identifier) bool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	kr, ok := lookupLocked[T](tr)
	return ok && kr.IsRegistered(id)
}

// IsValueRegistered reports whether value is registered under any identifier.
func IsValueRegistered[T any](tr *TypeRegistry, value T) bool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	kr, ok := lookupLocked[T](tr)
	return ok && kr.IsValueRegistered(value)
}

// IsEntryRegistered reports whether the T at id is present and equal to value.
func IsEntryRegistered[T any](tr *TypeRegistry, id identifier.Identifier, value T) bool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	kr, ok := lookupLocked[T](tr)
	return ok && kr.IsEntryRegistered(id, value)
}

// GetOrCreate returns the KeyRegistry for T, creating and installing an empty
// one if none exists. opts apply only when a registry is created.
//
// The returned registry may be modified directly. Removals made that way do
// not prune it; call PruneIfEmpty afterwards. Once pruned or detached, a
// registry is orphaned and changes to it are no longer visible here.
func GetOrCreate[T any](tr *TypeRegistry, opts ...KeyOption[T]) *KeyRegistry[T] {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return getOrCreateLocked[T](tr, opts...)
}

// Lookup returns the KeyRegistry for T without creating one.
func Lookup[T any](tr *TypeRegistry) (*KeyRegistry[T], bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return lookupLocked[T](tr)
}

// Detach removes T's KeyRegistry, entries included, and returns it. The
// returned registry is orphaned: it keeps its entries but no longer belongs
// to tr.
func Detach[T any](tr *TypeRegistry) (*KeyRegistry[T], bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	kr, ok := lookupLocked[T](tr)
	if !ok {
		return nil, false
	}
	delete(tr.registries, kr.typ)
	tr.logger.Debug().Str("type", kr.typ.String()).Int("entries", kr.Len()).Msg("key registry detached")
	return kr, true
}

// Has reports whether tr holds a KeyRegistry for T.
func Has[T any](tr *TypeRegistry) bool {
	return tr.Contains(reflect.TypeFor[T]())
}

// Prune is PruneIfEmpty for T.
func Prune[T any](tr *TypeRegistry) bool {
	return tr.PruneIfEmpty(reflect.TypeFor[T]())
}

// PruneIfEmpty discards typ's KeyRegistry if it holds no entries. It reports
// whether a registry was removed.
func (tr *TypeRegistry) PruneIfEmpty(typ reflect.Type) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	r, ok := tr.registries[typ]
	if !ok {
		return false
	}
	return tr.pruneLocked(typ, r)
}

// ResolveOwningType returns the value type under which r is installed in tr.
// It reports false for a registry that was pruned, detached, or never
// installed, even if tr holds a different registry for the same type.
func (tr *TypeRegistry) ResolveOwningType(r Registry) (reflect.Type, bool) {
	if isNil(r) {
		return nil, false
	}
	typ := r.ValueType()

	tr.mu.RLock()
	defer tr.mu.RUnlock()

	installed, ok := tr.registries[typ]
	if !ok || installed != r {
		return nil, false
	}
	return typ, true
}

// Contains reports whether tr holds a KeyRegistry for typ.
func (tr *TypeRegistry) Contains(typ reflect.Type) bool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	_, ok := tr.registries[typ]
	return ok
}

// Len returns the number of registered types.
func (tr *TypeRegistry) Len() int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return len(tr.registries)
}

// IsEmpty reports whether no type is registered.
func (tr *TypeRegistry) IsEmpty() bool { return tr.Len() == 0 }

// Types returns the registered value types sorted by name.
func (tr *TypeRegistry) Types() []reflect.Type {
	tr.mu.RLock()
	types := slices.Collect(maps.Keys(tr.registries))
	tr.mu.RUnlock()

	sortTypes(types)
	return types
}

// Registries returns the registered KeyRegistries ordered by value type name.
func (tr *TypeRegistry) Registries() []Registry {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	types := slices.Collect(maps.Keys(tr.registries))
	sortTypes(types)
	out := make([]Registry, 0, len(types))
	for _, typ := range types {
		out = append(out, tr.registries[typ])
	}
	return out
}

// Range calls fn for each type and its registry, ordered by type name, until
// fn returns false. It iterates over a snapshot, so fn may modify tr.
func (tr *TypeRegistry) Range(fn func(typ reflect.Type, r Registry) bool) {
	for _, r := range tr.Registries() {
		if !fn(r.ValueType(), r) {
			return
		}
	}
}

// Clear discards every KeyRegistry. Registries obtained earlier become orphaned.
func (tr *TypeRegistry) Clear() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	n := len(tr.registries)
	clear(tr.registries)
	tr.logger.Debug().Int("types", n).Msg("type registry cleared")
}

// String lists the registered type names, e.g. "[int,string]".
func (tr *TypeRegistry) String() string {
	types := tr.Types()
	names := make([]string, 0, len(types))
	for _, typ := range types {
		names = append(names, typ.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}

func sortTypes(types []reflect.Type) {
	slices.SortFunc(types, func(a, b reflect.Type) int {
		if c := strings.Compare(a.String(), b.String()); c != 0 {
			return c
		}
		// Distinct types can share a name when declared in different packages.
		return strings.Compare(a.PkgPath(), b.PkgPath())
	})
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
