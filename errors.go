package uorb

import "errors"

// Errors returned by the bus. Call sites wrap them with topic and instance
// context, so test for them with errors.Is.
var (
	ErrBusClosed         = errors.New("uorb: bus is closed")
	ErrNotFound          = errors.New("uorb: node not found")
	ErrResourceExhausted = errors.New("uorb: resource exhausted")
	ErrInvalidHandle     = errors.New("uorb: invalid handle")
	ErrSizeMismatch      = errors.New("uorb: payload size mismatch")
	ErrAlreadyAdvertised = errors.New("uorb: instance already advertised")
	ErrBusy              = errors.New("uorb: node is busy")
	ErrInvalidQueueSize  = errors.New("uorb: invalid queue size")
	ErrInvalidInstance   = errors.New("uorb: invalid instance")
	ErrInvalidMetadata   = errors.New("uorb: invalid metadata")
	ErrInvalidConfig     = errors.New("uorb: invalid config")

	// ErrNoUpdate is informational: the subscriber has already consumed the
	// newest generation.
	ErrNoUpdate = errors.New("uorb: no update")
)
