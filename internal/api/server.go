// Package api exposes the job pipeline over HTTP. It stands in for the
// chat-platform dispatch layer: the request body carries the command
// parameters and the response body is the reply channel.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/watermelon1024/video-downloader-bot/internal/config"
	"github.com/watermelon1024/video-downloader-bot/internal/errorlog"
	"github.com/watermelon1024/video-downloader-bot/internal/event"
	"github.com/watermelon1024/video-downloader-bot/internal/probe"
	"github.com/watermelon1024/video-downloader-bot/internal/runner"
	"github.com/watermelon1024/video-downloader-bot/internal/service"
)

func Run(ctx context.Context, cfg *config.Config) error {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := os.MkdirAll(cfg.Downloader.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	store, err := errorlog.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	// Auto-generate secrets on first boot
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = randomHex(32)
		if err != nil {
			return fmt.Errorf("jwt secret: %w", err)
		}
		log.Warn().Msg("no jwt secret configured, generated an ephemeral one")
	}
	adminPassword := cfg.Auth.AdminPassword
	if adminPassword == "" {
		adminPassword, err = randomHex(16)
		if err != nil {
			return fmt.Errorf("admin password: %w", err)
		}
		log.Info().Str("username", cfg.Auth.AdminUsername).Str("password", adminPassword).Msg("generated admin credentials")
	}

	jwtExpiry, err := time.ParseDuration(cfg.Auth.JWTExpiry)
	if err != nil {
		jwtExpiry = 24 * time.Hour
	}

	bus := event.NewBus()
	event.LogSubscriber(bus)

	jobs := runner.New(runner.Options{
		Binary:        cfg.Downloader.Binary,
		CacheDir:      cfg.Downloader.CacheDir,
		FFmpegPath:    cfg.Downloader.FFmpegPath,
		Debug:         cfg.Downloader.DebugMode,
		SizeThreshold: cfg.Limits.MaxUploadBytes,
	}, store, probe.New(cfg.Downloader.FFprobePath))

	svc := service.New(jobs, bus, cfg.Downloader.OutputDir)

	e := echo.New()
	e.HideBanner = true

	if err := SetupRouter(e, RouterConfig{
		JWTSecret:     jwtSecret,
		JWTExpiry:     jwtExpiry,
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: adminPassword,
		MessageLimit:  cfg.Limits.MessageLimit,
		Svc:           svc,
		Store:         store,
	}); err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}

func randomHex(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
