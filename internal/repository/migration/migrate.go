package migration

import (
	"fmt"

	"portfolio-chat-be/internal/model"

	"gorm.io/gorm"
)

var setupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`CREATE EXTENSION IF NOT EXISTS vector;`,
}

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&model.Conversation{},
		&model.ConversationMessage{},
		&model.KnowledgeEntry{},
		&model.Prompt{},
		&model.ContactLead{},
	}
}

// Migrate installs the required extensions and brings every table up to date.
func Migrate(db *gorm.DB) error {
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("setup sql %q: %w", sql, err)
		}
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
