package binder

import "errors"

// Common binding errors
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrRequestTooLarge      = errors.New("request body too large")
	ErrFailedToParsePath    = errors.New("failed to parse path parameters")
	ErrFailedToParseQuery   = errors.New("failed to parse query parameters")

	// ErrBinderNotApplicable is returned when a binder has nothing to read
	// from the request. Callers chaining binders skip it.
	ErrBinderNotApplicable = errors.New("binder not applicable to request")
)
