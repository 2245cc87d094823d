package main

import (
	"context"
	"os"
	"time"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/credential"
	"portfolio-chat-be/pkg/database"

	"github.com/fatih/color"
)

// Soft-deletes every active conversation dated before today (UTC). Message
// counters are kept, so the quota of the day is unaffected.
func main() {
	cfg := config.Load()
	if cfg.Database.Driver != "postgres" || cfg.Database.Connection == "" {
		color.Red("cleanup needs STORAGE_DRIVER=postgres and DB_CONNECTION_STRING")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Only the housekeeping path is used, which needs neither limiter nor credentials.
	conversations := service.NewConversationService(unitofwork.NewRepositoryFactory(db), nil, nil, logger.NewZapLogger(cfg.App.LogFilePath, false))

	before := credential.Today(time.Now())
	color.Cyan("Closing conversations dated before %s", before)
	n, err := conversations.SoftDeleteBefore(ctx, before)
	if err != nil {
		color.Red("Cleanup failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ %d conversation(s) closed", n)
}
