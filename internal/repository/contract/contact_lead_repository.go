package contract

import (
	"context"

	"portfolio-chat-be/internal/entity"

	"github.com/google/uuid"
)

type ContactLeadRepository interface {
	Create(ctx context.Context, lead *entity.ContactLead) error
	// FindById returns nil, nil when no lead has the id.
	FindById(ctx context.Context, id uuid.UUID) (*entity.ContactLead, error)
	UpdateDelivery(ctx context.Context, id uuid.UUID, status entity.LeadStatus, attempts int, lastError string) error
	CountByIdentityAndDate(ctx context.Context, identity, date string) (int64, error)
}
