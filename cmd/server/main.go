package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wegig/backend/internal/cleanup"
	"github.com/wegig/backend/internal/logging"
	"github.com/wegig/backend/internal/router"
	"github.com/wegig/backend/pkg/config"
	"github.com/wegig/backend/pkg/firebase"
	"github.com/wegig/backend/validators"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer app.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, logger)
	components := router.SetupRoutes(e, app, cfg.TriggerSecret, logger)

	if cfg.SweepEnabled {
		go cleanup.RunDaily(ctx, components.Sweep, time.UTC, logger)
	}

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
