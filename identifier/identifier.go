/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identifier

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/suparena/typeregistry/errors"
)

// DefaultNamespace is used when a parsed identifier carries no namespace.
const DefaultNamespace = "default"

// Separator splits the namespace from the path in the string form.
const Separator = ':'

// Identifier names a registered instance as namespace:path.
// It is comparable and can be used directly as a map key.
type Identifier struct {
	Namespace string
	Path      string
}

// New validates namespace and path and returns the identifier.
func New(namespace, path string) (Identifier, error) {
	if err := validate("namespace", namespace, isNamespaceChar); err != nil {
		return Identifier{}, err
	}
	if err := validate("path", path, isPathChar); err != nil {
		return Identifier{}, err
	}
	return Identifier{Namespace: namespace, Path: path}, nil
}

// Of is New for callers that already know the parts are valid. It panics otherwise.
func Of(namespace, path string) Identifier {
	id, err := New(namespace, path)
	if err != nil {
		panic(err)
	}
	return id
}

// Parse reads "namespace:path". A string without a separator is a path in
// DefaultNamespace; a leading separator (":path") does the same.
func Parse(s string) (Identifier, error) {
	ns, path, found := strings.Cut(s, string(Separator))
	if !found {
		return New(DefaultNamespace, s)
	}
	if ns == "" {
		ns = DefaultNamespace
	}
	return New(ns, path)
}

// MustParse is like Parse but panics on error. Useful from init() blocks and tests.
func MustParse(s string) Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identifier is incomplete.
func (id Identifier) IsZero() bool { return id.Namespace == "" || id.Path == "" }

// String returns "namespace:path".
func (id Identifier) String() string {
	if id.Namespace == "" && id.Path == "" {
		return "<empty>"
	}
	return id.Namespace + string(Separator) + id.Path
}

// Compare orders identifiers by namespace, then path.
func (id Identifier) Compare(other Identifier) int {
	if c := cmp.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	return cmp.Compare(id.Path, other.Path)
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return nil, errors.NewValidationError("identifier", "cannot marshal incomplete identifier")
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func validate(field, s string, allowed func(rune) bool) error {
	if s == "" {
		return errors.NewValidationError(field, "must not be empty")
	}
	for i, r := range s {
		if !allowed(r) {
			return errors.NewValidationError(field, fmt.Sprintf("invalid character %q at offset %d in %q", r, i, s))
		}
	}
	return nil
}

func isNamespaceChar(r rune) bool {
	return r == '_' || r == '-' || r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func isPathChar(r rune) bool {
	return r == '/' || isNamespaceChar(r)
}
