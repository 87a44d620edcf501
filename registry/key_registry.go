/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/suparena/typeregistry/identifier"
)

// KeyRegistry maps identifiers to instances of a single value type T.
// It is safe for concurrent use. Callbacks passed to the Compute family and
// ReplaceAll run under the registry's write lock and must not call back into it.
type KeyRegistry[T any] struct {
	mu      sync.RWMutex
	entries map[identifier.Identifier]T
	typ     reflect.Type
	equal   func(a, b T) bool
}

// KeyOption configures a KeyRegistry.
type KeyOption[T any] func(*KeyRegistry[T])

// WithEqual sets the value equality used by IsValueRegistered, IsEntryRegistered,
// RemoveIfEqual and ReplaceIfEqual. The default is reflect.DeepEqual, which
// holds for identical pointers as well as for structurally equal values.
func WithEqual[T any](fn func(a, b T) bool) KeyOption[T] {
	return func(r *KeyRegistry[T]) {
		if fn != nil {
			r.equal = fn
		}
	}
}

// NewKeyRegistry creates an empty KeyRegistry for T.
func NewKeyRegistry[T any](opts ...KeyOption[T]) *KeyRegistry[T] {
	r := &KeyRegistry[T]{
		entries: make(map[identifier.Identifier]T),
		typ:     reflect.TypeFor[T](),
		equal:   defaultEqual[T],
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// KeyRegistryOf creates a KeyRegistry holding a copy of m.
func KeyRegistryOf[T any](m map[identifier.Identifier]T, opts ...KeyOption[T]) *KeyRegistry[T] {
	r := NewKeyRegistry[T](opts...)
	maps.Copy(r.entries, m)
	return r
}

// defaultEqual reports whether a and b are the same instance or deeply equal.
// Funcs match when they point at the same code.
func defaultEqual[T any](a, b T) bool {
	x, y := any(a), any(b)
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	vx, vy := reflect.ValueOf(x), reflect.ValueOf(y)
	if vx.Type() != vy.Type() {
		return false
	}
	if vx.Kind() == reflect.Func {
		return vx.Pointer() == vy.Pointer()
	}
	if vx.Comparable() && vy.Comparable() && x == y {
		return true
	}
	return reflect.DeepEqual(x, y)
}

// ValueType returns the type of the instances this registry holds.
func (r *KeyRegistry[T]) ValueType() reflect.Type { return r.typ }

// Len returns the number of entries.
func (r *KeyRegistry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IsEmpty reports whether the registry holds no entries.
func (r *KeyRegistry[T]) IsEmpty() bool { return r.Len() == 0 }

// IsRegistered reports whether an entry exists at id.
func (r *KeyRegistry[T]) IsRegistered(id identifier.Identifier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// IsValueRegistered reports whether value is stored under any identifier.
func (r *KeyRegistry[T]) IsValueRegistered(value T) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.entries {
		if r.equal(v, value) {
			return true
		}
	}
	return false
}

// IsEntryRegistered reports whether the entry at id is present and equal to value.
func (r *KeyRegistry[T]) IsEntryRegistered(id identifier.Identifier, value T) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[id]
	return ok && r.equal(v, value)
}

// Get returns the value at id.
func (r *KeyRegistry[T]) Get(id identifier.Identifier) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[id]
	return v, ok
}

// GetOrDefault returns the value at id, or def when absent.
func (r *KeyRegistry[T]) GetOrDefault(id identifier.Identifier, def T) T {
	if v, ok := r.Get(id); ok {
		return v
	}
	return def
}

// GetOrCreate returns the value already stored at id, or stores and returns
// value. It never overwrites an existing entry.
func (r *KeyRegistry[T]) GetOrCreate(id identifier.Identifier, value T) T {
	actual, _ := r.LoadOrStore(id, value)
	return actual
}

// LoadOrStore is GetOrCreate that also reports whether the value was already present.
func (r *KeyRegistry[T]) LoadOrStore(id identifier.Identifier, value T) (actual T, loaded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[id]; ok {
		return v, true
	}
	r.entries[id] = value
	return value, false
}

// Put stores value at id, returning the previous value if one was replaced.
func (r *KeyRegistry[T]) Put(id identifier.Identifier, value T) (prev T, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced = r.entries[id]
	r.entries[id] = value
	return prev, replaced
}

// PutAll copies every entry of m into the registry, last write wins.
func (r *KeyRegistry[T]) PutAll(m map[identifier.Identifier]T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.entries, m)
}

// Remove deletes the entry at id and returns the removed value.
func (r *KeyRegistry[T]) Remove(id identifier.Identifier) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

func (r *KeyRegistry[T]) removeLocked(id identifier.Identifier) (T, bool) {
	v, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return v, ok
}

// RemoveIfEqual deletes the entry at id only if it equals value.
func (r *KeyRegistry[T]) RemoveIfEqual(id identifier.Identifier, value T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeIfEqualLocked(id, value)
}

func (r *KeyRegistry[T]) removeIfEqualLocked(id identifier.Identifier, value T) bool {
	v, ok := r.entries[id]
	if !ok || !r.equal(v, value) {
		return false
	}
	delete(r.entries, id)
	return true
}

// Replace stores value at id only if an entry already exists there.
func (r *KeyRegistry[T]) Replace(id identifier.Identifier, value T) (prev T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok = r.entries[id]
	if ok {
		r.entries[id] = value
	}
	return prev, ok
}

// ReplaceIfEqual stores newValue at id only if the current entry equals oldValue.
func (r *KeyRegistry[T]) ReplaceIfEqual(id identifier.Identifier, oldValue, newValue T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[id]
	if !ok || !r.equal(v, oldValue) {
		return false
	}
	r.entries[id] = newValue
	return true
}

// Compute recomputes the entry at id. fn receives the current value and whether
// it exists; returning keep == false removes the entry.
func (r *KeyRegistry[T]) Compute(id identifier.Identifier, fn func(current T, exists bool) (next T, keep bool)) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, exists := r.entries[id]
	next, keep := fn(cur, exists)
	if !keep {
		delete(r.entries, id)
		var zero T
		return zero, false
	}
	r.entries[id] = next
	return next, true
}

// ComputeIfAbsent stores the result of fn at id if no entry exists. It returns
// the value now stored, if any.
func (r *KeyRegistry[T]) ComputeIfAbsent(id identifier.Identifier, fn func(id identifier.Identifier) (T, bool)) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[id]; ok {
		return v, true
	}
	v, keep := fn(id)
	if !keep {
		return v, false
	}
	r.entries[id] = v
	return v, true
}

// ComputeIfPresent recomputes an existing entry; keep == false removes it.
func (r *KeyRegistry[T]) ComputeIfPresent(id identifier.Identifier, fn func(id identifier.Identifier, current T) (T, bool)) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	next, keep := fn(id, cur)
	if !keep {
		delete(r.entries, id)
		var zero T
		return zero, false
	}
	r.entries[id] = next
	return next, true
}

// Merge stores value at id if absent, otherwise stores fn(old, value).
// keep == false from fn removes the entry.
func (r *KeyRegistry[T]) Merge(id identifier.Identifier, value T, fn func(old, value T) (T, bool)) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.entries[id]
	if !ok {
		r.entries[id] = value
		return value, true
	}
	next, keep := fn(old, value)
	if !keep {
		delete(r.entries, id)
		var zero T
		return zero, false
	}
	r.entries[id] = next
	return next, true
}

// ReplaceAll replaces every value with fn(id, value).
func (r *KeyRegistry[T]) ReplaceAll(fn func(id identifier.Identifier, value T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.entries {
		r.entries[id] = fn(id, v)
	}
}

// Clear removes all entries. A registry emptied this way stays attached to
// its TypeRegistry until TypeRegistry.PruneIfEmpty is called.
func (r *KeyRegistry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
}

// IDs returns the registered identifiers in deterministic order.
func (r *KeyRegistry[T]) IDs() []identifier.Identifier {
	r.mu.RLock()
	ids := slices.Collect(maps.Keys(r.entries))
	r.mu.RUnlock()

	slices.SortFunc(ids, identifier.Identifier.Compare)
	return ids
}

// Values returns the registered values ordered by identifier.
func (r *KeyRegistry[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Collect(maps.Keys(r.entries))
	slices.SortFunc(ids, identifier.Identifier.Compare)
	values := make([]T, 0, len(ids))
	for _, id := range ids {
		values = append(values, r.entries[id])
	}
	return values
}

// Range calls fn for each entry in identifier order until fn returns false.
// It iterates over a snapshot, so fn may modify the registry.
func (r *KeyRegistry[T]) Range(fn func(id identifier.Identifier, value T) bool) {
	snapshot := r.Snapshot()
	ids := slices.Collect(maps.Keys(snapshot))
	slices.SortFunc(ids, identifier.Identifier.Compare)
	for _, id := range ids {
		if !fn(id, snapshot[id]) {
			return
		}
	}
}

// Snapshot returns a copy of the entries.
func (r *KeyRegistry[T]) Snapshot() map[identifier.Identifier]T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.entries)
}

// String returns "KeyRegistry[<value type>]".
func (r *KeyRegistry[T]) String() string {
	return fmt.Sprintf("KeyRegistry[%s]", r.typ)
}

// pruneIfEmpty runs prune while holding the write lock if the registry is
// empty, so no writer can repopulate it between the check and the removal.
func (r *KeyRegistry[T]) pruneIfEmpty(prune func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) != 0 {
		return false
	}
	prune()
	return true
}
