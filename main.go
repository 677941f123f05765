package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"seminar-ticketing/cmd"
	"seminar-ticketing/internal/data/repository"
	"seminar-ticketing/internal/wire"
	"seminar-ticketing/pkg/database"
	"seminar-ticketing/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if len(applied) > 0 {
		logger.Info("Migrations applied", zap.Strings("files", applied))
	}

	repos := repository.NewRepository(db, logger)

	app := wire.Wiring(db, repos, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
