package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by a database or cache port when no backend was configured.
	// It describes a permanent steady state, not a fault.
	ErrNotConfigured = errors.New("not configured")
	ErrDrainTimeout  = errors.New("drain timeout exceeded; in-flight connections force-closed")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// AcquireError wraps a failure to obtain a pooled connection (exhaustion, dial, auth, TLS).
type AcquireError struct {
	Err error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire connection: %v", e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }
