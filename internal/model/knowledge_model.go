package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeEntry struct {
	SourceId  string                      `gorm:"type:varchar(128);primaryKey"`
	Scope     string                      `gorm:"type:varchar(64);not null;index"`
	Sections  datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	Embedding pgvector.Vector             `gorm:"type:vector;not null"`
	CreatedAt time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime"`
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}

type Prompt struct {
	Name      string    `gorm:"type:varchar(100);primaryKey"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Prompt) TableName() string {
	return "prompts"
}
