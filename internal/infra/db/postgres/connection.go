package postgres

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"demo-service/internal/config"
	"demo-service/internal/domain"
	"demo-service/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Compile-time checks
var (
	_ repository.Database = Unconfigured{}
	_ repository.Database = (*Pool)(nil)
)

// Unconfigured is the database used when no host is configured. It never performs I/O.
type Unconfigured struct{}

func (Unconfigured) Configured() bool { return false }

func (Unconfigured) Acquire(context.Context) (repository.Conn, error) {
	return nil, domain.ErrNotConfigured
}

func (Unconfigured) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, domain.ErrNotConfigured
}

func (Unconfigured) Stat() repository.PoolStat { return repository.PoolStat{} }

func (Unconfigured) Close() {}

// Pool is a configured pgx connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewDatabase returns Unconfigured when cfg has no host, otherwise a lazily
// connecting pool: no connection is dialed until the first Acquire or Query.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (repository.Database, error) {
	if !cfg.Configured() {
		return Unconfigured{}, nil
	}
	pcfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.ConnectConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool connect: %w", err)
	}
	return &Pool{pool: p}, nil
}

// PoolConfig translates the database section into a pgxpool config.
// DB_SSL=true means TLS with the server certificate accepted unverified.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()

	pcfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.SSL {
		pcfg.ConnConfig.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // DB_SSL=true accepts self-signed server certificates
			ServerName:         cfg.Host,
		}
		pcfg.ConnConfig.Fallbacks = nil
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.StatementTimeout > 0 {
		pcfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pcfg.LazyConnect = true
	return pcfg, nil
}

func (p *Pool) Configured() bool { return true }

func (p *Pool) Acquire(ctx context.Context) (repository.Conn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, &domain.AcquireError{Err: err}
	}
	return c, nil
}

// Query runs a passthrough query on a pooled connection; the connection is
// returned to the pool when the rows are closed.
func (p *Pool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

func (p *Pool) Stat() repository.PoolStat {
	s := p.pool.Stat()
	return repository.PoolStat{
		Total: s.TotalConns(),
		Idle:  s.IdleConns(),
		InUse: s.AcquiredConns(),
		Max:   s.MaxConns(),
	}
}

func (p *Pool) Close() { p.pool.Close() }
