package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KopralProject/Telegram/internal/bot"
	"github.com/KopralProject/Telegram/internal/cloudflare"
	"github.com/KopralProject/Telegram/internal/config"
	"github.com/KopralProject/Telegram/internal/logging"
	"github.com/KopralProject/Telegram/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("dns-bot"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	client := cloudflare.NewClient(cfg.CloudflareAPIURL, cfg.CloudflareEmail, cfg.CloudflareAPIKey)
	engine := bot.NewEngine(client, bot.NewSessionStore(), logger)

	b, err := bot.New(cfg, engine, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bot")
	}

	metricsServer := metrics.NewServer(cfg.MetricsListenAddr)
	go func() {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("metrics server failed")
		}
	}()

	go b.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	b.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsServer.Shutdown(shutdownCtx)
}
