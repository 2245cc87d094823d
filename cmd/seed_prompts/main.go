package main

import (
	"context"
	"os"
	"time"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Prompts need no embedder.
	svc := service.NewKnowledgeService(unitofwork.NewRepositoryFactory(db), nil, logger.NewZapLogger(cfg.App.LogFilePath, false))
	n, err := svc.SeedPrompts(ctx, constant.DefaultPrompts())
	if err != nil {
		color.Red("Seeding failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ %d prompts upserted", n)
}
