//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"demo-service/internal/domain"
	"demo-service/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// --- pgx.Row ---

type mockRow struct {
	at  time.Time
	err error
}

func (r mockRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 1 {
		return errors.New("unexpected scan arity")
	}
	t, ok := dest[0].(*time.Time)
	if !ok {
		return errors.New("unexpected scan target")
	}
	*t = r.at
	return nil
}

// --- repository.Conn ---

type mockConn struct {
	row      mockRow
	queries  []string
	released atomic.Int32
}

func (c *mockConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	c.queries = append(c.queries, sql)
	return c.row
}

func (c *mockConn) Release() { c.released.Add(1) }

// --- repository.Database ---

type mockDatabase struct {
	configured bool
	conn       *mockConn
	acquireErr error
	acquires   atomic.Int32
}

func (m *mockDatabase) Configured() bool { return m.configured }

func (m *mockDatabase) Acquire(ctx context.Context) (repository.Conn, error) {
	m.acquires.Add(1)
	if !m.configured {
		return nil, domain.ErrNotConfigured
	}
	if m.acquireErr != nil {
		return nil, &domain.AcquireError{Err: m.acquireErr}
	}
	return m.conn, nil
}

func (m *mockDatabase) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (m *mockDatabase) Stat() repository.PoolStat { return repository.PoolStat{} }
func (m *mockDatabase) Close()                    {}

// --- repository.Cache ---

type mockCache struct {
	configured bool
	pingErr    error
	pings      atomic.Int32
}

func (m *mockCache) Configured() bool { return m.configured }

func (m *mockCache) Ping(ctx context.Context) error {
	m.pings.Add(1)
	return m.pingErr
}

func (m *mockCache) Close() error { return nil }
