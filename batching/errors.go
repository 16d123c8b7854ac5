package batching

import "errors"

var (
	// ErrBatchFuncRequired indicates a nil batch processor.
	ErrBatchFuncRequired = errors.New("batch function is required")

	// ErrSchedulerClosed indicates a submission after Close.
	ErrSchedulerClosed = errors.New("scheduler is closed")

	// ErrProcessTimeout indicates no result arrived within the
	// caller's deadline.
	ErrProcessTimeout = errors.New("batch processing timed out")

	// ErrCloseTimeout indicates the worker did not drain within the
	// shutdown grace period.
	ErrCloseTimeout = errors.New("scheduler close timed out")

	// ErrResultCountMismatch indicates the batch function returned a
	// result count different from its input count.
	ErrResultCountMismatch = errors.New("batch result count mismatch")

	// ErrEmbedderRequired indicates a nil inner embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
