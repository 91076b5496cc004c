package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lankahomes/storefront/internal/core/ports"
	"github.com/lankahomes/storefront/internal/infrastructure/db/memory"
	mongodb "github.com/lankahomes/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/lankahomes/storefront/internal/infrastructure/db/redis"
	"github.com/lankahomes/storefront/internal/pkg/config"
)

// OpenStorage connects the configured credential storage. The returned
// close function releases its connection.
func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Storage, func(context.Context) error, error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:      cfg.Redis.Addr,
			DB:        cfg.Redis.DB,
			OpTimeout: cfg.API.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("credential storage: redis")
		return redisdb.NewStorage(client), func(context.Context) error { return client.Close() }, nil

	case config.DriverMongo:
		db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "storefront",
		})
		if err != nil {
			return nil, nil, err
		}
		st := mongodb.NewStorage(db, cfg.Mongo.Collection)
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("credential storage: mongo")
		return st, db.Client().Disconnect, nil

	default:
		log.Info().Msg("credential storage: memory")
		return memory.New(), func(context.Context) error { return nil }, nil
	}
}
