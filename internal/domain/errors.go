package domain

import "errors"

var (
	// ErrRejected marks a token that failed a screen or filter. Expected
	// during normal operation, not an operator-facing error.
	ErrRejected = errors.New("token rejected")

	// ErrTransientFetch marks an evaluation aborted because an external
	// data source was unreachable. The token is retried next cycle.
	ErrTransientFetch = errors.New("transient fetch failure")
)
