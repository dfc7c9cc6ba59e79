package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medipro/console/internal/api"
	"github.com/medipro/console/internal/app"
	"github.com/medipro/console/internal/credential"
	"github.com/medipro/console/internal/gate"
	"github.com/medipro/console/internal/notification"
	"github.com/medipro/console/internal/protocols"
	"github.com/medipro/console/internal/session"
	"github.com/medipro/console/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	kv := storage.NewRedisKV(redisClient)
	creds := credential.NewStore(kv)
	client := api.NewClient(cfg.APIBaseURL, creds, logger)

	manager := session.NewManager(creds, client, logger)
	notifications := notification.NewStore(kv, logger)
	poller := notification.NewPoller(notifications, client, logger, cfg.SupportPollInterval)

	// Session changes drive the notification identity and the support
	// poller: sign-in scopes the feed to the user and starts polling,
	// sign-out reverts to the guest scope and stops it.
	unsubscribe := manager.Subscribe(func(sess *session.Session) {
		identity := ""
		if sess != nil {
			identity = sess.ID
		}
		if err := notifications.SetIdentity(context.Background(), identity); err != nil {
			logger.Error("switch notification identity", slog.Any("error", err))
		}
		poller.Start(identity)
	})
	defer unsubscribe()
	defer poller.Stop()

	// Load the guest bucket up front; the subscription above only fires
	// on session replacements.
	if err := notifications.SetIdentity(ctx, ""); err != nil {
		logger.Error("load guest notifications", slog.Any("error", err))
	}

	if err := manager.Bootstrap(ctx); err != nil {
		logger.Warn("session bootstrap", slog.Any("error", err))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionHandler:      session.NewHandler(logger, manager, client),
		NotificationHandler: notification.NewHandler(logger, notifications),
		ProtocolsHandler:    protocols.NewHandler(),
		GateHandler:         gate.NewHandler(logger, manager),
		Gates:               gate.Middleware{Manager: manager, Logger: logger},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
