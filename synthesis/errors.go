package synthesis

import "errors"

var (
	// ErrCompleterRequired indicates a nil completer.
	ErrCompleterRequired = errors.New("completer is required")

	// ErrCompletionFailed indicates the model call itself failed.
	// Malformed model output is not an error; it is wrapped.
	ErrCompletionFailed = errors.New("answer completion failed")
)
