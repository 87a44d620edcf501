/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package typeregistry

import (
	"reflect"
	"sync"

	"github.com/suparena/typeregistry/identifier"
	"github.com/suparena/typeregistry/registry"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *registry.TypeRegistry
)

// Default returns the process-wide TypeRegistry, creating it on first use.
// It lives for the lifetime of the process; use Default().Clear() to reset it.
func Default() *registry.TypeRegistry {
	defaultOnce.Do(func() {
		defaultRegistry = registry.New()
	})
	return defaultRegistry
}

// Register stores value at id in the default registry. See registry.Register.
func Register[T any](id identifier.Identifier, value T) T {
	return registry.Register(Default(), id, value)
}

// Get returns the T registered at id in the default registry.
func Get[T any](id identifier.Identifier) (T, bool) {
	return registry.Get[T](Default(), id)
}

// Require is Get returning a not-found error instead of a boolean.
func Require[T any](id identifier.Identifier) (T, error) {
	return registry.Require[T](Default(), id)
}

// Unregister removes the T registered at id from the default registry.
func Unregister[T any](id identifier.Identifier) (T, bool) {
	return registry.Unregister[T](Default(), id)
}

// UnregisterValue removes the entry at id only if it equals value.
func UnregisterValue[T any](id identifier.Identifier, value T) bool {
	return registry.UnregisterValue(Default(), id, value)
}

// IsRegistered reports whether a T is registered at id in the default registry.
func IsRegistered[T any](id identifier.Identifier) bool {
	return registry.IsRegistered[T](Default(), id)
}

// IsValueRegistered reports whether value is registered under any identifier.
func IsValueRegistered[T any](value T) bool {
	return registry.IsValueRegistered(Default(), value)
}

// IsEntryRegistered reports whether the T at id is present and equal to value.
func IsEntryRegistered[T any](id identifier.Identifier, value T) bool {
	return registry.IsEntryRegistered(Default(), id, value)
}

// GetOrCreate returns the default registry's KeyRegistry for T.
func GetOrCreate[T any]() *registry.KeyRegistry[T] {
	return registry.GetOrCreate[T](Default())
}

// Types returns the value types currently registered in the default registry.
func Types() []reflect.Type {
	return Default().Types()
}
