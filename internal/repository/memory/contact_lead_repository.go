package memory

import (
	"context"
	"sync"
	"time"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ContactLeadRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ contract.ContactLeadRepository = (*ContactLeadRepository)(nil)

func NewContactLeadRepository() *ContactLeadRepository {
	return &ContactLeadRepository{cache: cache.New(48*time.Hour, 1*time.Hour)}
}

func (r *ContactLeadRepository) Create(ctx context.Context, lead *entity.ContactLead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lead.Id == uuid.Nil {
		lead.Id = uuid.New()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = entity.LeadQueued
	}
	stored := *lead
	r.cache.SetDefault(lead.Id.String(), &stored)
	return nil
}

func (r *ContactLeadRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.ContactLead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id.String())
	if !found {
		return nil, nil
	}
	lead := *x.(*entity.ContactLead)
	return &lead, nil
}

func (r *ContactLeadRepository) UpdateDelivery(ctx context.Context, id uuid.UUID, status entity.LeadStatus, attempts int, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id.String())
	if !found {
		return nil
	}
	lead := x.(*entity.ContactLead)
	lead.Status = status
	lead.Attempts = attempts
	lead.LastError = lastError
	lead.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ContactLeadRepository) CountByIdentityAndDate(ctx context.Context, identity, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, item := range r.cache.Items() {
		lead := item.Object.(*entity.ContactLead)
		if lead.Identity == identity && lead.Date == date {
			count++
		}
	}
	return count, nil
}
