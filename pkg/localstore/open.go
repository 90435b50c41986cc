package localstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/okestore/storefront-sync/pkg/config"
	"github.com/okestore/storefront-sync/pkg/redis"
)

// Open builds the Store selected by configuration. The returned close func is never nil.
func Open(ctx context.Context, cfg config.LocalStoreConfig, redisClient *redis.Client) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.LocalStoreSQLite:
		store, client, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, client.Close, nil
	case config.LocalStoreRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("redis local store requires a redis client")
		}
		return NewRedis(redisClient), noop, nil
	case config.LocalStoreMemory:
		return NewMemory(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported local store driver %q", cfg.Driver)
	}
}
