package main

import (
	"context"
	"os"
	"time"

	"portfolio-chat-be/internal/bootstrap"
	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/database"
	"portfolio-chat-be/pkg/knowledge"

	"github.com/fatih/color"
)

// Embeds the seed file and upserts every entry into the knowledge table by source id.
func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}
	path := cfg.Knowledge.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	embedder, err := bootstrap.EmbeddingProvider(cfg)
	if err != nil {
		color.Red("Embedding provider: %v", err)
		os.Exit(1)
	}

	entries, err := knowledge.NewFileSource(path, nil).ReadEntries()
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	color.Cyan("🚀 Seeding %d knowledge entries from %s", len(entries), path)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	svc := service.NewKnowledgeService(unitofwork.NewRepositoryFactory(db), embedder, logger.NewZapLogger(cfg.App.LogFilePath, false))
	n, err := svc.SeedEntries(ctx, entries)
	if err != nil {
		color.Red("Seeding failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ %d entries upserted", n)
}
