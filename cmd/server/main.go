package main

import (
	"context"
	"fmt"

	"github.com/mkhasanov/storefront/internal/adapter"
	"github.com/mkhasanov/storefront/internal/config"
	"github.com/mkhasanov/storefront/internal/handler"
	"github.com/mkhasanov/storefront/internal/logger"
	"github.com/mkhasanov/storefront/internal/ratelimit"
	"github.com/mkhasanov/storefront/internal/server"
	"github.com/mkhasanov/storefront/internal/service"
	"github.com/mkhasanov/storefront/internal/store"
	"github.com/mkhasanov/storefront/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("storefront-server", "info").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewLogger("storefront-server", cfg.App.LogLevel)
	log.Debug().Any("config", cfg).Msg("received configs")

	db, err := store.NewConnectPostgres(context.Background(), cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repositories := store.NewRepositories(db, log)
	mailer := adapter.NewMailGateway(cfg.Mailer, log)
	services := service.NewServices(repositories, *cfg, mailer, log)

	handlers, err := handler.NewHandlers(services, cfg.Server, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	background := workers.NewWorkers(
		ratelimit.NewSweeper(cfg.App.RateLimit.SweepInterval, log,
			services.LoginLimiter, services.RedeemLimiter),
	)
	background.Run()
	defer background.Stop()

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
