/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package manifest

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/typeregistry/errors"
	"github.com/suparena/typeregistry/identifier"
	"github.com/suparena/typeregistry/registry"
)

// Kind binds a manifest kind name to one Go type and addresses that type's
// key registry with string values, so callers that only know the kind name
// (such as the CLI) can use the typed registry functions.
type Kind interface {
	// Name is the kind as written in a manifest, e.g. "datetime".
	Name() string
	// Type is the Go type values of this kind are registered under.
	Type() reflect.Type
	// Parse validates raw and returns the typed value.
	Parse(raw string) (any, error)

	Register(tr *registry.TypeRegistry, id identifier.Identifier, raw string) error
	Get(tr *registry.TypeRegistry, id identifier.Identifier) (string, bool)
	Unregister(tr *registry.TypeRegistry, id identifier.Identifier) (string, bool)
	UnregisterValue(tr *registry.TypeRegistry, id identifier.Identifier, raw string) (bool, error)
	IsRegistered(tr *registry.TypeRegistry, id identifier.Identifier) bool
	List(tr *registry.TypeRegistry) []Item
}

// Item is one registered entry rendered as strings.
type Item struct {
	ID    identifier.Identifier
	Value string
}

type kind[T any] struct {
	name   string
	parse  func(string) (T, error)
	format func(T) string
	equal  func(a, b T) bool
}

func (k kind[T]) Name() string       { return k.name }
func (k kind[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

func (k kind[T]) Parse(raw string) (any, error) { return k.parseValue(raw) }

func (k kind[T]) parseValue(raw string) (T, error) {
	v, err := k.parse(strings.TrimSpace(raw))
	if err != nil {
		var zero T
		return zero, errors.NewValidationError("value", fmt.Sprintf("invalid %s %q: %v", k.name, raw, err))
	}
	return v, nil
}

func (k kind[T]) keyRegistry(tr *registry.TypeRegistry) *registry.KeyRegistry[T] {
	var opts []registry.KeyOption[T]
	if k.equal != nil {
		opts = append(opts, registry.WithEqual(k.equal))
	}
	return registry.GetOrCreate(tr, opts...)
}

func (k kind[T]) Register(tr *registry.TypeRegistry, id identifier.Identifier, raw string) error {
	v, err := k.parseValue(raw)
	if err != nil {
		return err
	}
	k.register(tr, id, v)
	return nil
}

func (k kind[T]) register(tr *registry.TypeRegistry, id identifier.Identifier, v T) {
	// GetOrCreate installs the kind's equality only when it creates the registry.
	k.keyRegistry(tr)
	registry.Register(tr, id, v)
}

func (k kind[T]) Get(tr *registry.TypeRegistry, id identifier.Identifier) (string, bool) {
	v, ok := registry.Get[T](tr, id)
	if !ok {
		return "", false
	}
	return k.format(v), true
}

func (k kind[T]) Unregister(tr *registry.TypeRegistry, id identifier.Identifier) (string, bool) {
	v, ok := registry.Unregister[T](tr, id)
	if !ok {
		return "", false
	}
	return k.format(v), true
}

func (k kind[T]) UnregisterValue(tr *registry.TypeRegistry, id identifier.Identifier, raw string) (bool, error) {
	v, err := k.parseValue(raw)
	if err != nil {
		return false, err
	}
	return registry.UnregisterValue(tr, id, v), nil
}

func (k kind[T]) IsRegistered(tr *registry.TypeRegistry, id identifier.Identifier) bool {
	return registry.IsRegistered[T](tr, id)
}

func (k kind[T]) List(tr *registry.TypeRegistry) []Item {
	kr, ok := registry.Lookup[T](tr)
	if !ok {
		return nil
	}
	var items []Item
	kr.Range(func(id identifier.Identifier, v T) bool {
		items = append(items, Item{ID: id, Value: k.format(v)})
		return true
	})
	return items
}

func sprint[T any](v T) string { return fmt.Sprint(v) }

// strfmtKind is a string-backed strfmt type checked against the named format
// of the default strfmt registry.
func strfmtKind[T ~string](name, format string) kind[T] {
	return kind[T]{
		name: name,
		parse: func(s string) (T, error) {
			if !strfmt.Default.Validates(format, s) {
				return "", fmt.Errorf("not a valid %s", format)
			}
			return T(s), nil
		},
		format: func(v T) string { return string(v) },
	}
}

var kinds = map[string]Kind{}

func addKind(k Kind) { kinds[k.Name()] = k }

func init() {
	addKind(kind[string]{
		name:   "string",
		parse:  func(s string) (string, error) { return s, nil },
		format: func(v string) string { return v },
	})
	addKind(kind[int64]{
		name:   "int",
		parse:  func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
		format: sprint[int64],
	})
	addKind(kind[float64]{
		name:   "float",
		parse:  func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
		format: func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	})
	addKind(kind[bool]{
		name:   "bool",
		parse:  strconv.ParseBool,
		format: strconv.FormatBool,
	})
	addKind(kind[strfmt.DateTime]{
		name:   "datetime",
		parse:  strfmt.ParseDateTime,
		format: func(v strfmt.DateTime) string { return v.String() },
		equal:  func(a, b strfmt.DateTime) bool { return time.Time(a).Equal(time.Time(b)) },
	})
	addKind(kind[strfmt.Date]{
		name: "date",
		parse: func(s string) (strfmt.Date, error) {
			t, err := time.Parse(strfmt.RFC3339FullDate, s)
			return strfmt.Date(t), err
		},
		format: func(v strfmt.Date) string { return v.String() },
		equal:  func(a, b strfmt.Date) bool { return time.Time(a).Equal(time.Time(b)) },
	})
	addKind(kind[strfmt.Duration]{
		name: "duration",
		parse: func(s string) (strfmt.Duration, error) {
			d, err := strfmt.ParseDuration(s)
			return strfmt.Duration(d), err
		},
		format: func(v strfmt.Duration) string { return v.String() },
	})
	addKind(strfmtKind[strfmt.UUID]("uuid", "uuid"))
	addKind(strfmtKind[strfmt.Email]("email", "email"))
	addKind(strfmtKind[strfmt.URI]("uri", "uri"))
	addKind(strfmtKind[strfmt.Hostname]("hostname", "hostname"))
	addKind(strfmtKind[strfmt.IPv4]("ipv4", "ipv4"))
	addKind(strfmtKind[strfmt.MAC]("mac", "mac"))
}

// LookupKind returns the kind registered under name.
func LookupKind(name string) (Kind, bool) {
	k, ok := kinds[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// KindFor returns the kind whose values are registered under typ.
func KindFor(typ reflect.Type) (Kind, bool) {
	for _, k := range kinds {
		if k.Type() == typ {
			return k, true
		}
	}
	return nil, false
}

// Kinds returns every known kind sorted by name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Kind) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// KindNames returns the names of every known kind, sorted.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for _, k := range Kinds() {
		names = append(names, k.Name())
	}
	return names
}
