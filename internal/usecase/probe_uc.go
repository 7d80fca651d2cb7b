package usecase

import (
	"context"
	"time"

	"demo-service/internal/domain/model"
	"demo-service/internal/domain/ports/repository"
	"demo-service/internal/infra/logging"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog"
)

// Compile-time checks
var (
	_ ProbeUseCase = (*databaseProbe)(nil)
	_ ProbeUseCase = (*cacheProbe)(nil)
)

// ProbeUseCase performs a lightweight liveness check against one dependency.
// Check never fails: every error is encoded in the returned result.
type ProbeUseCase interface {
	Configured() bool
	Check(ctx context.Context) *model.ProbeResult
}

const livenessQuery = "SELECT NOW()"

type databaseProbe struct {
	db  repository.Database
	log *zerolog.Logger
}

func NewDatabaseProbe(db repository.Database, logger *zerolog.Logger) *databaseProbe {
	return &databaseProbe{db: db, log: logger}
}

func (p *databaseProbe) Configured() bool { return p.db.Configured() }

func (p *databaseProbe) Check(ctx context.Context) *model.ProbeResult {
	if !p.db.Configured() {
		return model.NotConfigured(model.MsgDatabaseNotConfigured)
	}
	l := logging.With(ctx, p.log)
	defer logging.TraceDuration(l, "DatabaseProbe.Check")()

	conn, err := p.db.Acquire(ctx)
	if err != nil {
		l.Warn().Err(err).Bool("timeout", pgconn.Timeout(err)).Msg("database probe: acquire failed")
		return model.Failed(err)
	}
	defer conn.Release()

	var now time.Time
	if err := conn.QueryRow(ctx, livenessQuery).Scan(&now); err != nil {
		l.Warn().Err(err).Bool("timeout", pgconn.Timeout(err)).Msg("database probe: query failed")
		return model.Failed(err)
	}
	return model.Connected(model.MsgDatabaseConnected, now)
}

type cacheProbe struct {
	cache repository.Cache
	now   func() time.Time
	log   *zerolog.Logger
}

func NewCacheProbe(cache repository.Cache, logger *zerolog.Logger) *cacheProbe {
	return &cacheProbe{cache: cache, now: time.Now, log: logger}
}

func (p *cacheProbe) Configured() bool { return p.cache.Configured() }

func (p *cacheProbe) Check(ctx context.Context) *model.ProbeResult {
	if !p.cache.Configured() {
		return model.NotConfigured(model.MsgCacheNotConfigured)
	}
	if err := p.cache.Ping(ctx); err != nil {
		logging.With(ctx, p.log).Warn().Err(err).Msg("cache probe: ping failed")
		return model.Failed(err)
	}
	return model.Connected(model.MsgCacheConnected, p.now())
}
