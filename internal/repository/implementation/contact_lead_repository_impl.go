package implementation

import (
	"context"
	"errors"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/mapper"
	"portfolio-chat-be/internal/model"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactLeadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContactMapper
}

func NewContactLeadRepository(db *gorm.DB) contract.ContactLeadRepository {
	return &ContactLeadRepositoryImpl{
		db:     db,
		mapper: mapper.NewContactMapper(),
	}
}

func (r *ContactLeadRepositoryImpl) Create(ctx context.Context, lead *entity.ContactLead) error {
	if lead.Id == uuid.Nil {
		lead.Id = uuid.New()
	}
	m := r.mapper.LeadToModel(lead)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*lead = *r.mapper.LeadToEntity(m)
	return nil
}

func (r *ContactLeadRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ContactLead, error) {
	var m model.ContactLead
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LeadToEntity(&m), nil
}

func (r *ContactLeadRepositoryImpl) UpdateDelivery(ctx context.Context, id uuid.UUID, status entity.LeadStatus, attempts int, lastError string) error {
	return r.db.WithContext(ctx).Model(&model.ContactLead{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"attempts":   attempts,
		"last_error": lastError,
	}).Error
}

func (r *ContactLeadRepositoryImpl) CountByIdentityAndDate(ctx context.Context, identity, date string) (int64, error) {
	var count int64
	query := specification.ByIdentityAndDate{Identity: identity, Date: date}.Apply(r.db.WithContext(ctx).Model(&model.ContactLead{}))
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
