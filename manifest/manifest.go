/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/suparena/typeregistry/errors"
	"github.com/suparena/typeregistry/identifier"
	"github.com/suparena/typeregistry/registry"
)

// Format is the encoding of a manifest document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Manifest is a list of typed entries to register.
type Manifest struct {
	Entries []Entry `yaml:"entries" toml:"entries"`
}

// Entry is one identifier → value pair. Value may be any scalar; it is
// rendered as a string and parsed according to Kind. YAML values keep the
// text as written in the document.
type Entry struct {
	ID    string `yaml:"id" toml:"id"`
	Kind  string `yaml:"kind" toml:"kind"`
	Value any    `yaml:"value" toml:"value"`
}

// UnmarshalYAML decodes an entry mapping, rejecting unknown fields. The value
// is taken verbatim from the scalar so that 1.50 or 2025-02-15 reach the kind
// parser unchanged; a null value is left nil.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: manifest entry must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], resolveAlias(node.Content[i+1])
		switch key.Value {
		case "id":
			if err := val.Decode(&e.ID); err != nil {
				return err
			}
		case "kind":
			if err := val.Decode(&e.Kind); err != nil {
				return err
			}
		case "value":
			switch {
			case val.Kind != yaml.ScalarNode:
				return errors.NewValidationError("value", fmt.Sprintf("line %d: value must be a scalar", val.Line))
			case val.ShortTag() == "!!null":
				e.Value = nil
			default:
				e.Value = val.Value
			}
		default:
			return fmt.Errorf("line %d: field %s not found in type manifest.Entry", key.Line, key.Value)
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.NewValidationError("path", fmt.Sprintf("unsupported manifest extension %q", filepath.Ext(path)))
	}
}

// Decode reads a manifest document in the given format.
func Decode(r io.Reader, format Format) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode yaml manifest: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode toml manifest: %w", err)
		}
	default:
		return nil, errors.NewValidationError("format", fmt.Sprintf("unsupported manifest format %q", format))
	}
	return &m, nil
}

// ReadFile decodes the manifest at path, choosing the format by extension.
func ReadFile(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	strict bool
	logger zerolog.Logger
}

// WithStrict rejects an entry whose (kind, id) is already registered or
// appears earlier in the same manifest, instead of overwriting it.
func WithStrict() LoadOption { return func(o *loadOptions) { o.strict = true } }

// WithLogger sets the logger used to report loaded entries.
func WithLogger(logger zerolog.Logger) LoadOption {
	return func(o *loadOptions) { o.logger = logger }
}

type resolved struct {
	kind Kind
	id   identifier.Identifier
	raw  string
}

// Load validates every entry of m and then registers them into tr. Nothing is
// registered if any entry is invalid. It returns the number of entries registered.
func Load(tr *registry.TypeRegistry, m *Manifest, opts ...LoadOption) (int, error) {
	o := loadOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	type key struct {
		kind string
		id   identifier.Identifier
	}
	seen := make(map[key]bool, len(m.Entries))
	entries := make([]resolved, 0, len(m.Entries))

	for i, e := range m.Entries {
		r, err := resolve(e)
		if err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		if o.strict {
			k := key{kind: r.kind.Name(), id: r.id}
			if seen[k] || r.kind.IsRegistered(tr, r.id) {
				return 0, fmt.Errorf("entry %d: %w", i, errors.NewAlreadyExistsError(r.kind.Type().String(), r.id.String()))
			}
			seen[k] = true
		}
		entries = append(entries, r)
	}

	for _, r := range entries {
		// Already validated by resolve.
		if err := r.kind.Register(tr, r.id, r.raw); err != nil {
			return 0, err
		}
		o.logger.Trace().Str("kind", r.kind.Name()).Str("id", r.id.String()).Msg("entry registered")
	}
	o.logger.Debug().Int("entries", len(entries)).Int("types", tr.Len()).Msg("manifest loaded")
	return len(entries), nil
}

// LoadFile reads the manifest at path and loads it into tr.
func LoadFile(tr *registry.TypeRegistry, path string, opts ...LoadOption) (int, error) {
	m, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := Load(tr, m, opts...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

func resolve(e Entry) (resolved, error) {
	if e.ID == "" {
		return resolved{}, errors.NewValidationError("id", "must not be empty")
	}
	id, err := identifier.Parse(e.ID)
	if err != nil {
		return resolved{}, err
	}
	k, ok := LookupKind(e.Kind)
	if !ok {
		return resolved{}, errors.NewValidationError("kind", fmt.Sprintf("unknown kind %q (known: %s)", e.Kind, strings.Join(KindNames(), ", ")))
	}
	if e.Value == nil {
		return resolved{}, errors.NewValidationError("value", fmt.Sprintf("missing value for %s", id))
	}
	raw := scalarString(e.Value)
	if _, err := k.Parse(raw); err != nil {
		return resolved{}, err
	}
	return resolved{kind: k, id: id, raw: raw}, nil
}

// scalarString renders a decoded scalar the way the kind parsers expect it.
// TOML dates and times arrive as typed values and are formatted back to text.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
