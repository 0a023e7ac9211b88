package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/zmagdon/watchparty/internal/adapters/http"
	"github.com/zmagdon/watchparty/internal/config"
	"github.com/zmagdon/watchparty/internal/room"
	"github.com/zmagdon/watchparty/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var store storage.SnapshotStore
	if cfg.DBPath != "" {
		store, err = storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open snapshot store")
		}
		log.Info().Str("path", cfg.DBPath).Msg("sqlite snapshot store")
	} else {
		store = storage.NewMemoryStore()
		log.Info().Msg("in-memory snapshot store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("closing snapshot store")
		}
	}()

	rooms := room.NewManager(ctx, store, room.Config{
		RoomWindow:   cfg.RoomWindow,
		RoomLimit:    cfg.RoomLimit,
		UserCooldown: cfg.UserCooldown,
		ChatMaxLen:   cfg.ChatMaxLen,
	}, room.WallClock)

	r := router.SetupRouter(ctx, cfg, rooms)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("watchparty server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
