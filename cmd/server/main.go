package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"talkie/internal/config"
	"talkie/internal/httpserver"
	"talkie/internal/logging"
	"talkie/internal/service"
	"talkie/internal/state"
	"talkie/internal/store/jsonfile"
	"talkie/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Init(true, "info")
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.IsDevelopment(), cfg.LogLevel)

	// Recover state from disk
	repo := jsonfile.NewSnapshotRepo(cfg.DataFile)
	loaded := state.LoadWithFallback(repo)
	log.Info().
		Str("source", string(loaded.Source)).
		Str("file", repo.Path()).
		Int("users", len(loaded.Snapshot.Users)).
		Int("messages", len(loaded.Snapshot.Messages)).
		Msg("state loaded")

	clk := clock.New()
	cache := state.NewCache(loaded.Snapshot)
	sched := state.NewScheduler(cache, repo, clk, state.SchedulerConfig{
		Debounce:         cfg.FlushDebounce,
		MinWriteInterval: cfg.FlushMinInterval,
	})
	store := state.NewStore(cache, sched)
	sweeper := state.NewSweeper(clk, cfg.PresenceTTL, cfg.TypingTTL)

	// Change feed
	hub := ws.NewHub()

	deps := service.Deps{Store: store, Sweeper: sweeper, Clock: clk, Notifier: hub}
	router := httpserver.NewRouter(cfg, httpserver.Services{
		Users:         service.NewUserService(deps),
		Messages:      service.NewMessageService(deps),
		Presence:      service.NewPresenceService(deps),
		Typing:        service.NewTypingService(deps),
		Conversations: service.NewConversationService(deps),
		Snapshot:      service.NewSnapshotService(deps),
	}, hub)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx, cfg.MaintenanceInterval, sweeper)

	// Start server in background
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Msg("starting Talkie server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	cancel()

	if err := sched.Close(); err != nil {
		log.Error().Err(err).Msg("final flush failed")
		os.Exit(1)
	}
	log.Info().Msg("state flushed, bye")
}
