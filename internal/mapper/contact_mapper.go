package mapper

import (
	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/model"
)

type ContactMapper struct{}

func NewContactMapper() *ContactMapper {
	return &ContactMapper{}
}

func (m *ContactMapper) LeadToEntity(l *model.ContactLead) *entity.ContactLead {
	if l == nil {
		return nil
	}
	return &entity.ContactLead{
		Id:        l.Id,
		Identity:  l.Identity,
		Date:      l.Date,
		Name:      l.Name,
		Email:     l.Email,
		Country:   l.Country,
		Subject:   l.Subject,
		Message:   l.Message,
		Status:    entity.LeadStatus(l.Status),
		Attempts:  l.Attempts,
		LastError: l.LastError,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (m *ContactMapper) LeadToModel(l *entity.ContactLead) *model.ContactLead {
	if l == nil {
		return nil
	}
	return &model.ContactLead{
		Id:        l.Id,
		Identity:  l.Identity,
		Date:      l.Date,
		Name:      l.Name,
		Email:     l.Email,
		Country:   l.Country,
		Subject:   l.Subject,
		Message:   l.Message,
		Status:    string(l.Status),
		Attempts:  l.Attempts,
		LastError: l.LastError,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
