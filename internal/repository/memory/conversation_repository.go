package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type conversationRecord struct {
	conversation entity.Conversation
	messages     []entity.ConversationMessage
}

// ConversationRepository keeps conversations in a go-cache for two days, long
// enough for every quota window. Writes are serialized by mu, which makes the
// usage counter a plain read-modify-write under the lock.
type ConversationRepository struct {
	mu      sync.RWMutex
	cache   *cache.Cache
	nextMsg int64
	now     func() time.Time
}

var _ contract.ConversationRepository = (*ConversationRepository)(nil)

func NewConversationRepository() *ConversationRepository {
	return &ConversationRepository{
		cache: cache.New(48*time.Hour, 1*time.Hour),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func activeIndexKey(identity, scope, date string) string {
	return "active|" + identity + "|" + scope + "|" + date
}

func recordKey(id uuid.UUID) string {
	return "conversation|" + id.String()
}

func (r *ConversationRepository) record(id uuid.UUID) (*conversationRecord, bool) {
	x, found := r.cache.Get(recordKey(id))
	if !found {
		return nil, false
	}
	return x.(*conversationRecord), true
}

func (r *ConversationRepository) activeRecord(identity, scope, date string) (*conversationRecord, bool) {
	x, found := r.cache.Get(activeIndexKey(identity, scope, date))
	if !found {
		return nil, false
	}
	return r.record(x.(uuid.UUID))
}

func (r *ConversationRepository) FindActive(ctx context.Context, identity, scope, date string) (*entity.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.activeRecord(identity, scope, date)
	if !ok {
		return nil, nil
	}
	conv := rec.conversation
	return &conv, nil
}

func (r *ConversationRepository) GetOrCreate(ctx context.Context, identity, scope, date string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.activeRecord(identity, scope, date); ok {
		conv := rec.conversation
		return &conv, nil
	}

	now := r.now()
	rec := &conversationRecord{conversation: entity.Conversation{
		Id:        uuid.New(),
		Identity:  identity,
		Scope:     scope,
		Date:      date,
		Status:    entity.ConversationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	r.cache.SetDefault(recordKey(rec.conversation.Id), rec)
	r.cache.SetDefault(activeIndexKey(identity, scope, date), rec.conversation.Id)

	conv := rec.conversation
	return &conv, nil
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, conversationId uuid.UUID, role entity.MessageRole, content string) (*entity.ConversationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.record(conversationId)
	if !ok {
		return nil, contract.ErrConversationNotFound
	}

	r.nextMsg++
	msg := entity.ConversationMessage{
		Id:             r.nextMsg,
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		CreatedAt:      r.now(),
	}
	rec.messages = append(rec.messages, msg)
	return &msg, nil
}

func (r *ConversationRepository) IncrementUsage(ctx context.Context, conversationId uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.record(conversationId)
	if !ok {
		return 0, contract.ErrConversationNotFound
	}
	rec.conversation.MessagesUsed++
	rec.conversation.UpdatedAt = r.now()
	return rec.conversation.MessagesUsed, nil
}

func (r *ConversationRepository) SoftDelete(ctx context.Context, identity, scope, date string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.activeRecord(identity, scope, date)
	if !ok {
		return false, nil
	}
	r.markDeleted(rec)
	return true, nil
}

func (r *ConversationRepository) markDeleted(rec *conversationRecord) {
	now := r.now()
	c := &rec.conversation
	c.Status = entity.ConversationDeleted
	c.DeletedAt = &now
	c.UpdatedAt = now
	r.cache.Delete(activeIndexKey(c.Identity, c.Scope, c.Date))
}

func (r *ConversationRepository) ActiveMessages(ctx context.Context, identity, scope, date string) ([]*entity.ConversationMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.activeRecord(identity, scope, date)
	if !ok {
		return []*entity.ConversationMessage{}, nil
	}
	out := make([]*entity.ConversationMessage, len(rec.messages))
	for i := range rec.messages {
		msg := rec.messages[i]
		out[i] = &msg
	}
	return out, nil
}

func (r *ConversationRepository) TotalUsage(ctx context.Context, identity, scope, date string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, rec := range r.records() {
		c := rec.conversation
		if c.Identity == identity && c.Scope == scope && c.Date == date {
			total += c.MessagesUsed
		}
	}
	return total, nil
}

func (r *ConversationRepository) SoftDeleteBefore(ctx context.Context, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, rec := range r.records() {
		if rec.conversation.IsActive() && rec.conversation.Date < date {
			r.markDeleted(rec)
			count++
		}
	}
	return count, nil
}

// All returns every stored conversation ordered by creation time. Used by tests and diagnostics.
func (r *ConversationRepository) All() []entity.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.records()
	out := make([]entity.Conversation, len(recs))
	for i, rec := range recs {
		out[i] = rec.conversation
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out
}

func (r *ConversationRepository) records() []*conversationRecord {
	var out []*conversationRecord
	for _, item := range r.cache.Items() {
		if rec, ok := item.Object.(*conversationRecord); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (r *ConversationRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
