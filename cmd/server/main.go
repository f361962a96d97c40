package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackmichael/timepheus/internal/bot"
	"github.com/blackmichael/timepheus/internal/config"
	"github.com/blackmichael/timepheus/internal/httpserver"
	"github.com/blackmichael/timepheus/internal/slackapi"
	"github.com/blackmichael/timepheus/internal/sqlite"
	"github.com/blackmichael/timepheus/internal/temporal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}
	defer store.Close()
	if err := store.InitSchema(context.Background()); err != nil {
		return fmt.Errorf("init preference store: %w", err)
	}
	logger.Info("connected to preference store", "path", cfg.DatabasePath)

	gateway := slackapi.NewClient(cfg.BotToken)

	// The bot's identity is resolved exactly once, before any traffic is
	// accepted, and injected read-only into the router.
	botUserID, err := gateway.AuthTest(context.Background())
	if err != nil {
		return fmt.Errorf("resolve bot user ID: %w", err)
	}
	logger.Info("resolved bot identity", "bot_user_id", botUserID)

	botService, err := bot.NewService(botUserID, cfg.ReactionEmoji, gateway, store, temporal.New(), logger)
	if err != nil {
		return fmt.Errorf("create bot service: %w", err)
	}

	// Set up graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := httpserver.NewServer(cfg, botService, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
