/*
Package errors provides semantic error types for the typeregistry module.

Registry lookups report absence with a boolean; these errors are used where a
caller asks for an error instead (Require, identifier parsing, manifest loading)
and for the panic value raised when a nil value is registered.

Common Errors:

	var (
	    ErrNotFound        = errors.New("entry not found")
	    ErrAlreadyExists   = errors.New("entry already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrNoRegistry      = errors.New("no registry found for type")
	)

Usage:

	greeting, err := registry.Require[string](tr, identifier.MustParse("app:greeting"))
	if err != nil {
	    if errors.IsNotFound(err) {
	        // not registered, or no registry for string at all
	    }
	    return err
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
