package main

import (
	"context"
	"log"

	"github.com/anonto42/circleup/backend/internal/router"
	"github.com/anonto42/circleup/backend/internal/validators"
	"github.com/anonto42/circleup/backend/pkg/config"
	"github.com/anonto42/circleup/backend/pkg/firebase"
	"github.com/anonto42/circleup/backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := config.Load()

	appLog := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		File:       cfg.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	})

	db, err := config.InitDB(cfg)
	if err != nil {
		appLog.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()
	appLog.Info("Database connections established")

	// Firebase login is optional; without credentials the route is disabled
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		appLog.WithError(err).Warn("Firebase not initialized, firebase-login disabled")
		firebaseApp = &firebase.App{}
	}

	e := echo.New()
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e)
	if err := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseApp.AuthClient, appLog); err != nil {
		appLog.Fatalf("Failed to set up routes: %v", err)
	}

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
