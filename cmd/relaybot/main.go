package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/larriantoniy/tg_relay_bot/internal/adapters/session"
	"github.com/larriantoniy/tg_relay_bot/internal/adapters/storage"
	"github.com/larriantoniy/tg_relay_bot/internal/adapters/tg"
	"github.com/larriantoniy/tg_relay_bot/internal/config"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
	"github.com/larriantoniy/tg_relay_bot/internal/useCases"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := setupLogger(cfg.Env)

	texts, err := config.LoadStrings(cfg.StringsPath)
	if err != nil {
		logger.Error("load strings", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := run(ctx, cfg, texts, logger); err != nil {
		logger.Error("relay bot stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("exit")
}

func run(ctx context.Context, cfg *config.AppConfig, texts *config.Strings, logger *slog.Logger) error {
	users, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer users.Close()

	sessions, err := session.NewStore(ctx, cfg.SessionTTL)
	if err != nil {
		return err
	}
	defer sessions.Close()

	client, err := tg.NewBotClient(cfg, logger.With("component", "tdlib"))
	if err != nil {
		return fmt.Errorf("tdlib client: %w", err)
	}
	defer client.Close()

	conv := useCases.NewConversations(sessions, users)
	relay := useCases.NewRelay(logger, client, users, conv, texts, cfg.AdminID, cfg.StartMediaURL)

	if err := client.SetCommands(ctx, relay.Commands()); err != nil {
		logger.Warn("set bot commands", "error", err)
	}

	reporter := useCases.NewErrorReporter(logger, client, cfg.ReportChatID, texts.Admin.ErrorReport)
	runner := useCases.NewRunner(logger, client, relay, reporter, cfg.AdminID, cfg.WorkerIdle)

	return runner.Run(ctx)
}

func openUserStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ports.UserStore, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		logger.Info("using sqlite user store", "path", cfg.Store.SQLitePath)
		return storage.NewSQLiteUserStore(cfg.Store.SQLitePath)
	default:
		return storage.NewRedisUserStore(ctx, cfg.Store.RedisURL, cfg.Store.KeyPrefix, logger.With("component", "redis"))
	}
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return logger
}
