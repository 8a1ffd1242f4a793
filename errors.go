package anyvrp

import "errors"

var (
	// ErrInvalidInstance is wrapped by errors for malformed
	// problem instances.
	ErrInvalidInstance = errors.New("invalid problem instance")

	// ErrBatchMismatch is wrapped by errors for batched
	// inputs whose size does not match the batch.
	ErrBatchMismatch = errors.New("batch size mismatch")

	// ErrNotReset is returned when an Episode is stepped
	// before it has been reset.
	ErrNotReset = errors.New("episode has not been reset")

	// ErrEmptyBuffer is returned when samples are requested
	// from a Buffer with no recorded steps.
	ErrEmptyBuffer = errors.New("buffer is empty")
)
