package main

import (
	"context"

	"github.com/cppla/momentum/config"
	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/routes"
	"github.com/cppla/momentum/storage"
	"github.com/cppla/momentum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		utils.Sugar.Fatalf("timezone: %v", err)
	}

	store, closeStore, err := storage.Open(context.Background(), cfg)
	if err != nil {
		utils.Sugar.Fatalf("ledger store: %v", err)
	}
	utils.Sugar.Infof("ledger store driver=%s", cfg.StoreDriver)

	registry := ledger.NewRegistry(store, cfg.RewardConfig(),
		ledger.WithLocation(loc),
		ledger.WithLogger(utils.Logger.Named("ledger")),
	)

	evictor, err := utils.StartLedgerEvictor(registry, cfg.LedgerEvictSchedule, cfg.LedgerIdle())
	if err != nil {
		utils.Sugar.Fatalf("ledger evictor: %v", err)
	}

	r := routes.SetupRouter(cfg, registry)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	err = utils.GraceServer(":"+cfg.AppPort, r,
		func(context.Context) { <-evictor.Stop().Done() },
		closeStore,
	)
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
