package rerank

import "errors"

var (
	// ErrEndpointRequired indicates a backend was built without a URL.
	ErrEndpointRequired = errors.New("rerank endpoint is required")

	// ErrBackendUnavailable indicates the backend could not be reached
	// or failed its first-use initialization.
	ErrBackendUnavailable = errors.New("rerank backend unavailable")

	// ErrBadResponse indicates the backend answered with a non-2xx
	// status or an unparsable body.
	ErrBadResponse = errors.New("rerank backend returned a bad response")
)
