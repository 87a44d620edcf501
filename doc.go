/*
Package typeregistry provides a process-wide, type-indexed registry of named
instances.

Instances are grouped by their Go type and named by a namespaced identifier
("namespace:path"). Each type gets its own key registry, created on first use
and discarded when its last entry is unregistered.

Key Features:
  - Type-safe lookups using Go generics, no casts at the call site
  - At most one key registry per type, pruned automatically when emptied
  - Reverse lookup from a key registry to the type that owns it
  - Safe for concurrent use
  - Independent registries for tests via registry.New

Basic Usage:

	id := identifier.MustParse("app:greeting")
	typeregistry.Register(id, "hello")

	greeting, ok := typeregistry.Get[string](id)

	typeregistry.Unregister[string](id) // string registry is pruned

Code that should not share process-wide state creates its own
*registry.TypeRegistry with registry.New and uses the generic functions of
package registry directly. Package manifest loads typed entries from YAML or
TOML files, and cmd/regctl inspects such manifests from the command line.
*/
package typeregistry
