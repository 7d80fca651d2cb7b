package repository

import "context"

// Cache is the optional key-value backend. Only liveness is needed from it.
type Cache interface {
	Configured() bool
	Ping(ctx context.Context) error
	Close() error
}
