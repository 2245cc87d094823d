package entity

import "time"

type KnowledgeEntry struct {
	SourceId  string
	Scope     string
	Sections  []string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Prompt struct {
	Name      string
	Content   string
	UpdatedAt time.Time
}
