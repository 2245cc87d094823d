package specification

import (
	"portfolio-chat-be/internal/entity"

	"gorm.io/gorm"
)

// ByConversationKey matches every conversation of one (identity, scope, date), whatever its status.
type ByConversationKey struct {
	Identity string
	Scope    string
	Date     string
}

func (s ByConversationKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("identity = ? AND scope = ? AND date = ?", s.Identity, s.Scope, s.Date)
}

type ByConversationStatus struct {
	Status entity.ConversationStatus
}

func (s ByConversationStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type DatedBefore struct {
	Date string
}

func (s DatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("date < ?", s.Date)
}
