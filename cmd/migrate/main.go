package main

import (
	"log"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/repository/migration"
	"portfolio-chat-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running migrations...")
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Error: %v", err)
	}
	log.Println("✅ Database migration completed")
}
