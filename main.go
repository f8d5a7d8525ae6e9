package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"eventease/config"
	"eventease/database"
	"eventease/errors"
	"eventease/export"
	"eventease/handlers"
	"eventease/notify"
	"eventease/payments"
	"eventease/router"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	slog.Info("store ready", "driver", cfg.StoreDriver)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		admin, err := handlers.EnsureAdmin(ctx, store, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
		if err != nil {
			slog.Error("failed to seed admin", "error", err)
			os.Exit(1)
		}
		slog.Info("admin account ready", "email", admin.Email)
	}

	pay, err := payments.NewProvider(cfg.PaymentProvider, cfg.PaymentSecret, cfg.PaymentDelay)
	if err != nil {
		slog.Error("payments", "error", err)
		os.Exit(1)
	}

	var notifier notify.Notifier = notify.Log{Logger: logger}
	if cfg.TelegramToken != "" && cfg.TelegramAdminChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramAdminChatID)
		if err != nil {
			slog.Error("telegram", "error", err)
			os.Exit(1)
		}
		notifier = tg
	}

	h := &handlers.Handler{
		Store:      store,
		Payments:   pay,
		Notifier:   notifier,
		Logger:     logger,
		SigningKey: cfg.SigningKey,
		TokenTTL:   cfg.TokenTTL,
		Timeout:    cfg.RequestTimeout,
	}
	if cfg.GoogleServiceAccountJSON != "" && cfg.SpreadsheetID != "" {
		sheets, err := export.NewSheets(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
		if err != nil {
			slog.Error("sheets", "error", err)
			os.Exit(1)
		}
		h.Exporter = sheets
	}

	app := fiber.New(fiber.Config{
		AppName:      "eventease",
		ErrorHandler: errors.Handler,
	})
	router.SetupRoutes(app, h)

	go func() {
		slog.Info("server starting", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	if err := app.Shutdown(); err != nil {
		slog.Error("shutdown", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		slog.Error("close store", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (database.Store, error) {
	openCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMongo:
		return database.DBInit(openCtx, cfg.MongoConnString, cfg.MongoDatabase)
	default:
		return database.NewSQLStore(openCtx, cfg.StoreDriver, cfg.SQLDSN)
	}
}
