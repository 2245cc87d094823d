package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadQueued LeadStatus = "queued"
	LeadSent   LeadStatus = "sent"
	LeadFailed LeadStatus = "failed"
)

type ContactLead struct {
	Id        uuid.UUID
	Identity  string
	Date      string
	Name      string
	Email     string
	Country   string
	Subject   string
	Message   string
	Status    LeadStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
