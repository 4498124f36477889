package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/ordersync-backend/internal/users"
	"github.com/angelmondragon/ordersync-backend/pkg/config"
	"github.com/angelmondragon/ordersync-backend/pkg/db"
	"github.com/angelmondragon/ordersync-backend/pkg/db/models"
	"github.com/angelmondragon/ordersync-backend/pkg/events"
	"github.com/angelmondragon/ordersync-backend/pkg/logger"
	"github.com/angelmondragon/ordersync-backend/pkg/migrate"
	"github.com/angelmondragon/ordersync-backend/pkg/rabbit"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "user-service"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = config.ServiceKindUserService

	logg = logger.New(logger.Options{
		ServiceName: "user-service",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient, &models.User{}); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// The broker is a hard dependency: without a confirmed publish path
	// the contact pipeline silently loses events. Exhausting the bounded
	// connect retries is fatal.
	rabbitClient, err := rabbit.New(context.Background(), cfg.Rabbit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap broker connection", err)
		os.Exit(1)
	}
	defer func() {
		if err := rabbitClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing broker connection", err)
		}
	}()

	publisher, err := events.NewPublisher(rabbitClient, cfg.Rabbit, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event publisher", err)
		os.Exit(1)
	}

	service, err := users.NewService(users.NewRepository(dbClient.DB()), publisher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting user service")

	server := &http.Server{
		Addr:    addr,
		Handler: users.NewRouter(service, logg),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "user service stopped unexpectedly", err)
		os.Exit(1)
	}
}
