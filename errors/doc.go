/*
Package errors provides semantic error types for docmapper.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound      = errors.New("document not found")
	    ErrAlreadyExists = errors.New("document already exists")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrConfiguration = errors.New("configuration error")
	    ErrNoIndexMap    = errors.New("no index map found for collection")
	)

Configuration errors are fatal and surface from constructors and type resolution:

	_, err := provider.New(repo, provider.WithKeyField("tenant", "id"))
	if errors.IsConfigurationError(err) {
	    // multi-field keys are not supported
	}

Validation failures of individual records accumulate in model.Errors; only
operations that refuse to continue with an invalid record (such as
Repository.Insert) surface a ValidationError.

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
