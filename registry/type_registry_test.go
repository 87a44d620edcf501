/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/typeregistry/errors"
	"github.com/suparena/typeregistry/identifier"
)

type Stringer interface{ String() string }

type named string

func (n named) String() string { return string(n) }

func TestTypeRegistry_RoundTrip(t *testing.T) {
	tr := New()

	got := Register(tr, idA, "hello")
	assert.Equal(t, "hello", got)
	Register(tr, idA, 42)
	Register(tr, idA, testItem{Name: "a"})

	s, ok := Get[string](tr, idA)
	require.True(t, ok)
	assert.Equal(t, "hello", s)

	n, ok := Get[int](tr, idA)
	require.True(t, ok)
	assert.Equal(t, 42, n)

	item, ok := Get[testItem](tr, idA)
	require.True(t, ok)
	assert.Equal(t, "a", item.Name)

	assert.True(t, IsRegistered[string](tr, idA))
	assert.False(t, IsRegistered[string](tr, idB))
	assert.False(t, IsRegistered[float64](tr, idA))
	assert.Equal(t, 3, tr.Len())
}

func TestTypeRegistry_OverwriteSemantics(t *testing.T) {
	tr := New()
	Register(tr, idA, "first")
	Register(tr, idA, "second")

	v, _ := Get[string](tr, idA)
	assert.Equal(t, "second", v)

	kr, ok := Lookup[string](tr)
	require.True(t, ok)
	assert.Equal(t, 1, kr.Len())
}

func TestTypeRegistry_GetMissing(t *testing.T) {
	tr := New()

	v, ok := Get[string](tr, idA)
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.False(t, Has[string](tr), "Get must not create a registry")

	_, err := Require[string](tr, idA)
	require.Error(t, err)
	assert.True(t, errors.IsNoRegistry(err))
	assert.True(t, errors.IsNotFound(err))

	Register(tr, idB, "b")
	_, err = Require[string](tr, idA)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, errors.IsNoRegistry(err))
	assert.Contains(t, err.Error(), "ns:a")

	v, err = Require[string](tr, idB)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

// The worked example: two strings share one registry, which disappears
// with its last entry.
func TestTypeRegistry_AutoPruneScenario(t *testing.T) {
	tr := New()
	stringType := reflect.TypeFor[string]()

	Register(tr, idA, "hello")
	Register(tr, idB, "world")
	require.Equal(t, 1, tr.Len())
	kr, _ := Lookup[string](tr)
	require.Equal(t, 2, kr.Len())

	v, ok := Unregister[string](tr, idA)
	require.True(t, ok)
	assert.Equal(t, "hello", v)
	assert.True(t, tr.Contains(stringType))
	assert.Equal(t, 1, kr.Len())

	v, ok = Unregister[string](tr, idB)
	require.True(t, ok)
	assert.Equal(t, "world", v)
	assert.False(t, tr.Contains(stringType))
	assert.True(t, tr.IsEmpty())
	assert.NotContains(t, tr.Types(), stringType)
}

func TestTypeRegistry_AutoPruneRandomSequences(t *testing.T) {
	tr := New()
	ids := []identifier.Identifier{idA, idB, idC}

	// Deterministic interleaving of registrations and removals over two types.
	for step := 0; step < 60; step++ {
		id := ids[step%len(ids)]
		switch step % 5 {
		case 0, 1:
			Register(tr, id, fmt.Sprint(step))
		case 2:
			Register(tr, id, step)
		case 3:
			Unregister[string](tr, id)
		case 4:
			Unregister[int](tr, ids[(step+1)%len(ids)])
		}

		for _, r := range tr.Registries() {
			assert.False(t, r.IsEmpty(), "step %d: empty %s survived", step, r)
		}
	}

	for _, id := range ids {
		Unregister[string](tr, id)
		Unregister[int](tr, id)
	}
	assert.True(t, tr.IsEmpty())
}

func TestTypeRegistry_UnregisterValue(t *testing.T) {
	tr := New()
	Register(tr, idA, testItem{Name: "a"})
	Register(tr, idB, testItem{Name: "b"})

	// Missing id and mismatched value are both reported as false.
	assert.False(t, UnregisterValue(tr, idC, testItem{Name: "a"}))
	assert.False(t, UnregisterValue(tr, idA, testItem{Name: "b"}))
	assert.True(t, IsRegistered[testItem](tr, idA), "mismatch must leave the entry in place")

	assert.True(t, UnregisterValue(tr, idA, testItem{Name: "a"}))
	assert.True(t, Has[testItem](tr))
	assert.True(t, UnregisterValue(tr, idB, testItem{Name: "b"}))
	assert.False(t, Has[testItem](tr))

	assert.False(t, UnregisterValue(tr, idA, testItem{Name: "a"}))
}

func TestTypeRegistry_FuncValues(t *testing.T) {
	tr := New()
	Register[factory](tr, idA, makeOne)

	assert.True(t, IsEntryRegistered[factory](tr, idA, makeOne))
	assert.True(t, IsValueRegistered[factory](tr, makeOne))
	assert.False(t, UnregisterValue[factory](tr, idA, makeTwo))
	assert.True(t, UnregisterValue[factory](tr, idA, makeOne))
	assert.False(t, Has[factory](tr), "removing the only func prunes its registry")
}

func TestTypeRegistry_IdempotentUnregister(t *testing.T) {
	tr := New()
	Register(tr, idA, "a")
	before := tr.String()

	_, ok := Unregister[string](tr, idB)
	assert.False(t, ok)
	_, ok = Unregister[int](tr, idA)
	assert.False(t, ok)
	assert.False(t, UnregisterValue(tr, idB, "a"))

	assert.Equal(t, before, tr.String())
	assert.True(t, IsRegistered[string](tr, idA))

	// An empty registry created with GetOrCreate is left alone by a failed removal.
	GetOrCreate[int](tr)
	_, ok = Unregister[int](tr, idA)
	assert.False(t, ok)
	assert.True(t, Has[int](tr))
}

func TestTypeRegistry_ValuePredicates(t *testing.T) {
	tr := New()
	item := &testItem{Name: "a"}
	Register(tr, idA, item)

	assert.True(t, IsValueRegistered(tr, item))
	assert.True(t, IsValueRegistered(tr, &testItem{Name: "a"}))
	assert.False(t, IsValueRegistered(tr, &testItem{Name: "z"}))
	assert.False(t, IsValueRegistered(tr, "a"), "no string registry")

	assert.True(t, IsEntryRegistered(tr, idA, item))
	assert.False(t, IsEntryRegistered(tr, idB, item))
	assert.False(t, IsEntryRegistered(tr, idA, 1))
}

func TestTypeRegistry_GetOrCreateReturnsSameInstance(t *testing.T) {
	tr := New()
	first := GetOrCreate[string](tr)
	second := GetOrCreate[string](tr)
	assert.Same(t, first, second)
	assert.Equal(t, 1, tr.Len())

	// Registrations land in the registry handed out earlier.
	Register(tr, idA, "x")
	assert.True(t, first.IsRegistered(idA))
}

func TestTypeRegistry_GetOrCreateOptionsApplyOnCreate(t *testing.T) {
	tr := New()
	byName := func(a, b testItem) bool { return a.Name == b.Name }
	GetOrCreate(tr, WithEqual(byName))
	Register(tr, idA, testItem{Name: "a", Level: 1})

	assert.True(t, UnregisterValue(tr, idA, testItem{Name: "a", Level: 2}))
	assert.False(t, Has[testItem](tr))
}

func TestTypeRegistry_PruneIfEmpty(t *testing.T) {
	tr := New()
	kr := GetOrCreate[string](tr)
	kr.Put(idA, "a")

	assert.False(t, Prune[string](tr), "non-empty registry must stay")
	assert.True(t, Has[string](tr))

	// Direct removal through the handle does not prune by itself.
	kr.Remove(idA)
	assert.True(t, Has[string](tr))
	assert.True(t, tr.PruneIfEmpty(reflect.TypeFor[string]()))
	assert.False(t, Has[string](tr))

	assert.False(t, tr.PruneIfEmpty(reflect.TypeFor[string]()), "no-op when absent")
}

func TestTypeRegistry_ResolveOwningType(t *testing.T) {
	tr := New()
	Register(tr, idA, "a")
	Register(tr, idA, 1)

	for _, typ := range tr.Types() {
		var r Registry
		for _, candidate := range tr.Registries() {
			if candidate.ValueType() == typ {
				r = candidate
			}
		}
		got, ok := tr.ResolveOwningType(r)
		require.True(t, ok)
		assert.Equal(t, typ, got)
	}

	kr := GetOrCreate[string](tr)
	got, ok := tr.ResolveOwningType(kr)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[string](), got)

	// Pruned registries are orphaned.
	Unregister[string](tr, idA)
	_, ok = tr.ResolveOwningType(kr)
	assert.False(t, ok)

	// A new registry for the same type does not revive the old one.
	Register(tr, idB, "b")
	_, ok = tr.ResolveOwningType(kr)
	assert.False(t, ok)

	// Freestanding and nil registries are not owned.
	_, ok = tr.ResolveOwningType(NewKeyRegistry[string]())
	assert.False(t, ok)
	_, ok = tr.ResolveOwningType(nil)
	assert.False(t, ok)
	var typedNil *KeyRegistry[string]
	assert.NotPanics(t, func() {
		_, ok = tr.ResolveOwningType(typedNil)
	})
	assert.False(t, ok)

	// Ownership is per TypeRegistry.
	other := New()
	_, ok = other.ResolveOwningType(GetOrCreate[string](tr))
	assert.False(t, ok)
}

func TestTypeRegistry_Detach(t *testing.T) {
	tr := New()
	Register(tr, idA, "a")
	Register(tr, idB, "b")

	kr, ok := Detach[string](tr)
	require.True(t, ok)
	assert.False(t, Has[string](tr))
	assert.Equal(t, 2, kr.Len(), "detached registry keeps its entries")

	_, ok = tr.ResolveOwningType(kr)
	assert.False(t, ok)

	// Changes to an orphan are invisible to the TypeRegistry.
	kr.Put(idC, "c")
	assert.False(t, IsRegistered[string](tr, idC))

	_, ok = Detach[string](tr)
	assert.False(t, ok)
}

func TestTypeRegistry_InterfaceTypes(t *testing.T) {
	tr := New()
	Register[Stringer](tr, idA, named("x"))
	Register(tr, idB, named("y"))

	s, ok := Get[Stringer](tr, idA)
	require.True(t, ok)
	assert.Equal(t, "x", s.String())

	// The type parameter, not the dynamic type, selects the registry.
	_, ok = Get[named](tr, idA)
	assert.False(t, ok)
	assert.Equal(t, 2, tr.Len())
}

func TestTypeRegistry_RegisterNilPanics(t *testing.T) {
	tr := New()

	tests := []struct {
		name string
		fn   func()
	}{
		{"nil pointer", func() { Register[*testItem](tr, idA, nil) }},
		{"nil interface", func() { Register[Stringer](tr, idA, nil) }},
		{"nil any", func() { Register[any](tr, idA, nil) }},
		{"nil map", func() { Register[map[string]int](tr, idA, nil) }},
		{"nil slice", func() { Register[[]int](tr, idA, nil) }},
		{"nil func", func() { Register[func()](tr, idA, nil) }},
		{"typed nil in interface", func() { Register[Stringer](tr, idA, (*namedPtr)(nil)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				rec := recover()
				require.NotNil(t, rec, "expected panic")
				err, ok := rec.(error)
				require.True(t, ok, "panic value should be an error, got %T", rec)
				assert.True(t, errors.IsValidationError(err))
			}()
			tt.fn()
		})
	}

	assert.True(t, tr.IsEmpty(), "failed registrations must not create registries")
}

type namedPtr struct{}

func (*namedPtr) String() string { return "" }

func TestTypeRegistry_ZeroValuesAreNotNil(t *testing.T) {
	tr := New()
	Register(tr, idA, 0)
	Register(tr, idA, "")
	Register(tr, idA, testItem{})

	assert.Equal(t, 3, tr.Len())
	assert.True(t, IsRegistered[int](tr, idA))
}

func TestTypeRegistry_EnumerationAndClear(t *testing.T) {
	tr := New()
	Register(tr, idA, "a")
	Register(tr, idA, 1)
	Register(tr, idA, true)

	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[int](),
		reflect.TypeFor[string](),
	}, tr.Types())
	assert.Equal(t, "[bool,int,string]", tr.String())

	regs := tr.Registries()
	require.Len(t, regs, 3)
	assert.Equal(t, "KeyRegistry[bool]", regs[0].String())
	assert.Equal(t, []identifier.Identifier{idA}, regs[2].IDs())

	var seen []reflect.Type
	tr.Range(func(typ reflect.Type, r Registry) bool {
		seen = append(seen, typ)
		return len(seen) < 2
	})
	assert.Len(t, seen, 2)

	kr, _ := Lookup[string](tr)
	tr.Clear()
	assert.True(t, tr.IsEmpty())
	assert.Equal(t, "[]", tr.String())
	_, ok := tr.ResolveOwningType(kr)
	assert.False(t, ok)
	assert.Equal(t, 1, kr.Len(), "cleared registries keep their entries")
}

func TestTypeRegistry_IndependentInstances(t *testing.T) {
	a, b := New(), New()
	Register(a, idA, "a")

	assert.True(t, IsRegistered[string](a, idA))
	assert.False(t, IsRegistered[string](b, idA))
	assert.NotSame(t, GetOrCreate[string](a), GetOrCreate[string](b))
}

func TestTypeRegistry_LogsStructuralEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := New(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	Register(tr, idA, "a")
	Unregister[string](tr, idA)
	Register(tr, idA, 1)
	Detach[int](tr)
	tr.Clear()

	out := buf.String()
	assert.Contains(t, out, "key registry created")
	assert.Contains(t, out, "empty key registry pruned")
	assert.Contains(t, out, "key registry detached")
	assert.Contains(t, out, "type registry cleared")
	assert.Contains(t, out, `"type":"string"`)
}

func TestTypeRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	tr := New()
	const workers = 16
	const rounds = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			id := identifier.Of("worker", fmt.Sprintf("w%d", w))
			for i := 0; i < rounds; i++ {
				Register(tr, id, i)
				if v, ok := Get[int](tr, id); !ok || v != i {
					t.Errorf("worker %d: got %d,%v want %d", w, v, ok, i)
					return
				}
				if _, ok := Unregister[int](tr, id); !ok {
					t.Errorf("worker %d: lost entry at round %d", w, i)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	assert.False(t, Has[int](tr), "all entries removed, registry must be pruned")
}

func TestTypeRegistry_ConcurrentGetOrCreateSingleInstance(t *testing.T) {
	tr := New()
	const n = 64

	results := make([]*KeyRegistry[string], n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = GetOrCreate[string](tr)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}
