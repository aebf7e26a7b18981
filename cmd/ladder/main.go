package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bot-ladder/internal/config"
	"bot-ladder/internal/constants"
	"bot-ladder/internal/database"
	"bot-ladder/internal/engine"
	"bot-ladder/internal/logger"
	"bot-ladder/internal/publish"
	"bot-ladder/internal/repository"
	"bot-ladder/internal/server"
	"bot-ladder/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := logger.New()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("ladder terminated")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = logger.SetLevel(level)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	botRepo := repository.NewBotRepository(db, log)
	gameRepo := repository.NewGameRepository(db, log)

	matchmaker := service.NewMatchmaker(botRepo, cfg.MapPool, log)
	executor := service.NewExecutor(engine.NewSim(), cfg.RealtimeLimit, cfg.FrameLimit, log)
	recorder := service.NewRecorder(gameRepo, log)
	pool := service.NewPool(matchmaker, executor, recorder, cfg.WorkerCount, cfg.ScheduleBackoff, log)

	sink, err := publish.NewFileSink(cfg.PublishDir)
	if err != nil {
		return err
	}
	publisher := publish.NewGameResultsPublisher(sink, log)
	aggregator := service.NewAggregator(botRepo, gameRepo, publisher, cfg.PublishWindow, cfg.EventThreshold, log)

	admin := server.New(aggregator, botRepo, cfg.PublishDir, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: admin.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pool.Run(ctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("admin server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("admin server shutdown failed")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("ladder stopped gracefully")
	return nil
}
