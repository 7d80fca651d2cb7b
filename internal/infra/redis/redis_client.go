package redis

import (
	"context"

	"demo-service/internal/config"
	"demo-service/internal/domain"
	"demo-service/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var (
	_ repository.Cache = (*redClient)(nil)
	_ repository.Cache = Unconfigured{}
)

// Unconfigured is the cache used when no address is configured.
type Unconfigured struct{}

func (Unconfigured) Configured() bool           { return false }
func (Unconfigured) Ping(context.Context) error { return domain.ErrNotConfigured }
func (Unconfigured) Close() error               { return nil }

type redClient struct {
	cli *redis.Client
}

// NewClient builds a cache client without dialing; go-redis connects on first use.
func NewClient(cfg config.RedisConfig) repository.Cache {
	if !cfg.Configured() {
		return Unconfigured{}
	}
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	return &redClient{cli: redis.NewClient(opts)}
}

func (c *redClient) Configured() bool { return true }

func (c *redClient) Ping(ctx context.Context) error { return c.cli.Ping(ctx).Err() }

func (c *redClient) Close() error { return c.cli.Close() }
