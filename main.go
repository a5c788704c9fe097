package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/narharikale/globe/internal/config"
	"github.com/narharikale/globe/internal/game"
	"github.com/narharikale/globe/internal/httpserver"
	"github.com/narharikale/globe/internal/random"
	"github.com/narharikale/globe/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)
	if cfg.DevSecret() {
		log.Warn().Msg("SESSION_SECRET not set; using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	contentStore, closeContent, err := openContent(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.ContentBackend).Msg("failed to open content store")
	}
	defer func() { _ = closeContent() }()

	src := random.NewUnseeded()
	if cfg.RandomSeed != 0 {
		src = random.New(cfg.RandomSeed)
	}
	engine := game.New(contentStore, src, cfg.OptionCount)

	var sessions store.Store = store.NewMemoryStore(cfg.SessionTTL)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = rdb.Close() }()
		rs := store.NewRedisStore(rdb, cfg.SessionTTL, engine.Restore, log.Logger)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rs.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		sessions = rs
	}

	srv, err := httpserver.New(engine, sessions, httpserver.Options{
		ClientOrigin:  cfg.ClientOrigin,
		CookieName:    cfg.CookieName,
		CookieSecure:  cfg.CookieSecure,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("content", cfg.ContentBackend).
		Bool("redis", cfg.RedisAddr != "").
		Int("options", engine.OptionCount()).
		Msg("starting globe server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
