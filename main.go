package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"maturity_backend/internals/configs"
	database "maturity_backend/internals/databases"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/benchmarks/cache"
	"maturity_backend/internals/features/evaluations/scheduler"
	"maturity_backend/internals/features/evaluations/store"
	middlewares "maturity_backend/internals/middlewares"
	routes "maturity_backend/internals/route"
	"maturity_backend/internals/seeds"
)

func main() {
	cfg := configs.LoadEnv()

	app := middlewares.NewApp()

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	// 🔌 DB connect + pool + warm-up + schema
	database.ConnectDB(cfg)
	database.TunePool()
	database.WarmUpQueries()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}
	if cfg.SeedOnStart {
		seeds.RunAllSeeds(database.DB, cfg.SeedReferential)
	}

	access := scope.New(cfg.AccessModel, database.DB)

	// ⏱ scheduler after the DB is ready
	sweep, err := scheduler.Start(cfg.InvitationSweepCron,
		scheduler.InvitationJob(store.New(database.DB)),
		scheduler.Job{Name: "benchmark-cache-purge", Run: cache.NewPersisted(database.DB).Purge},
	)
	if err != nil {
		log.Fatalf("❌ scheduler: %v", err)
	}

	routes.SetupRoutes(app, database.DB, access, cfg)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop the cron, drain HTTP, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-sweep.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
