/*
Package registry provides a two-level, type-indexed registry.

A TypeRegistry maps each Go value type to a KeyRegistry, and each
KeyRegistry maps identifiers to instances of that one type. The type
parameter at the call site selects the KeyRegistry, so lookups are type-safe
without casts:

	tr := registry.New()
	registry.Register(tr, identifier.MustParse("ns:a"), "hello")
	registry.Register(tr, identifier.MustParse("ns:b"), "world")
	registry.Register(tr, identifier.MustParse("limits:max"), 42)

	s, ok := registry.Get[string](tr, identifier.MustParse("ns:a")) // "hello", true
	n, ok := registry.Get[int](tr, identifier.MustParse("limits:max")) // 42, true

Key Registry Lifecycle:
A KeyRegistry is created the first time a value of its type is registered
(or by GetOrCreate) and is discarded as soon as the last entry is removed
through Unregister or UnregisterValue:

	registry.Unregister[string](tr, identifier.MustParse("ns:a"))
	registry.Unregister[string](tr, identifier.MustParse("ns:b"))
	registry.Has[string](tr) // false

Registries removed by pruning, Detach or Clear are orphaned: they keep their
entries, but ResolveOwningType no longer finds them.

Concurrency:
Both levels are safe for concurrent use. Compound operations (get-or-create,
remove-then-prune) hold the TypeRegistry lock for their whole duration, and
the emptiness check before pruning runs under the KeyRegistry lock.
*/
package registry
