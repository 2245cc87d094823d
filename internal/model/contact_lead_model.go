package model

import (
	"time"

	"github.com/google/uuid"
)

type ContactLead struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Identity  string    `gorm:"type:varchar(64);not null;index:idx_contact_leads_quota,priority:1"`
	Date      string    `gorm:"type:char(10);not null;index:idx_contact_leads_quota,priority:2"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(320);not null"`
	Country   string    `gorm:"type:varchar(100)"`
	Subject   string    `gorm:"type:varchar(300);not null"`
	Message   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(16);not null;default:'queued';index"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ContactLead) TableName() string {
	return "contact_leads"
}
