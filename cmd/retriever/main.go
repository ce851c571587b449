package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/retriever-media/retriever/internal/api"
	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/config"
	"github.com/retriever-media/retriever/internal/database"
	"github.com/retriever-media/retriever/internal/downloads"
	downloadsmock "github.com/retriever-media/retriever/internal/downloads/mock"
	"github.com/retriever-media/retriever/internal/events"
	"github.com/retriever-media/retriever/internal/hunt"
	indexermock "github.com/retriever-media/retriever/internal/indexer/mock"
	"github.com/retriever-media/retriever/internal/logger"
	"github.com/retriever-media/retriever/internal/organizer"
	"github.com/retriever-media/retriever/internal/scheduler"
	"github.com/retriever-media/retriever/internal/scheduler/tasks"
	"github.com/retriever-media/retriever/internal/store"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	log.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("database", cfg.Database.Path).
		Msg("Starting retriever")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	st := store.New(db.Conn(), log.Logger)

	hub := events.NewHub()
	go hub.Run()

	// The indexer and download backends are wired to the in-memory mock
	// implementations; real clients plug in behind the same interfaces.
	defs, err := st.ListIndexers(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list indexers")
	}
	searcher := indexermock.NewSearcher(defs)
	engine := downloadsmock.NewEngine()

	resolver := hunt.NewResolver(st, log.Logger)
	huntService := hunt.NewService(searcher, resolver, log.Logger)
	huntService.SetBroadcaster(hub)

	downloadService := downloads.NewService(engine, st, log.Logger)

	huntCfg := hunt.Config{
		SearchAllSources:    cfg.Hunt.SearchAllSources,
		MaxResultsPerSource: cfg.Hunt.MaxResultsPerSource,
	}
	runner := hunt.NewRunner(huntService, st, downloadService.Grab, huntCfg, log.Logger)

	organizerService := organizer.NewService(log.Logger)
	processor := completion.NewService(st, engine, organizerService, log.Logger)
	processor.SetBroadcaster(hub)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := tasks.RegisterAutoHuntTask(sched, runner, &cfg.Jobs); err != nil {
		log.Fatal().Err(err).Msg("Failed to register auto-hunt task")
	}
	if err := tasks.RegisterCompletionTask(sched, processor, downloadService, &cfg.Jobs); err != nil {
		log.Fatal().Err(err).Msg("Failed to register completion task")
	}
	if err := tasks.RegisterCleanupTask(sched, st, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup task")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := api.NewServer(cfg, hub, huntService, runner, processor, sched, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Address())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("Scheduler shutdown error")
	}
	if err := server.Shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
