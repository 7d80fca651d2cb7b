package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Conn is a connection checked out of a Database. Release must be called on every path.
type Conn interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Release()
}

// PoolStat is a point-in-time view of pool occupancy.
type PoolStat struct {
	Total int32
	Idle  int32
	InUse int32
	Max   int32
}

// Database is the connection pool port. Exactly one of two shapes exists per process:
// an unconfigured pool (Configured reports false and every I/O method returns
// domain.ErrNotConfigured) or a configured pool backed by a live driver.
type Database interface {
	Configured() bool
	Acquire(ctx context.Context) (Conn, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Stat() PoolStat
	Close()
}
