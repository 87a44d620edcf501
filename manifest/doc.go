/*
Package manifest loads typed registry entries from YAML or TOML documents.

Each entry names an identifier, a kind and a value:

	entries:
	  - id: app:greeting
	    kind: string
	    value: hello
	  - id: release:launched_at
	    kind: datetime
	    value: "2025-03-01T12:00:00Z"

Every kind is bound to one Go type (string, int64, float64, bool, or one of the
go-openapi/strfmt formats such as strfmt.DateTime and strfmt.UUID), so the
entries of a manifest end up spread over one key registry per kind. Values
are validated before anything is registered.

	tr := registry.New()
	n, err := manifest.LoadFile(tr, "settings.yaml", manifest.WithStrict())

	when, ok := registry.Get[strfmt.DateTime](tr, identifier.MustParse("release:launched_at"))
*/
package manifest
