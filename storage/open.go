// Package storage provides the durable backends for ledger documents.
package storage

import (
	"context"
	"fmt"

	"github.com/cppla/momentum/config"
	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/models"
	"github.com/cppla/momentum/utils"
)

// Open builds the store selected by cfg.StoreDriver. The returned close func
// releases any client connections and is safe to call once.
func Open(ctx context.Context, cfg config.AppConfig) (ledger.Store, func(context.Context), error) {
	noop := func(context.Context) {}

	switch cfg.StoreDriver {
	case config.StoreFile, "":
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store %s: %w", cfg.DataDir, err)
		}
		return s, noop, nil

	case config.StoreMemory:
		utils.Sugar.Warn("ledger store is in-memory; documents are lost on restart")
		return NewMemoryStore(), noop, nil

	case config.StoreMySQL, config.StorePostgres:
		db := config.InitDatabase(&models.LedgerDocument{})
		closeFn := func(context.Context) {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return NewGormStore(db), closeFn, nil

	case config.StoreRedis:
		if err := utils.PingRedis(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closeFn := func(context.Context) { _ = utils.CloseRedis() }
		return NewRedisStore(utils.GetRedis(), cfg.RedisKeyPrefix), closeFn, nil

	case config.StoreMongo:
		mc, err := utils.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func(ctx context.Context) { _ = mc.Disconnect(ctx) }
		return NewMongoStore(mc.Database(cfg.MongoDatabase)), closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
