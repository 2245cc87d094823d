package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/mapper"
	"portfolio-chat-be/internal/model"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func activeKey(identity, scope, date string) []specification.Specification {
	return []specification.Specification{
		specification.ByConversationKey{Identity: identity, Scope: scope, Date: date},
		specification.ByConversationStatus{Status: entity.ConversationActive},
	}
}

func (r *ConversationRepositoryImpl) FindActive(ctx context.Context, identity, scope, date string) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), activeKey(identity, scope, date)...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

// GetOrCreate relies on the partial unique index: a concurrent insert for the
// same key is dropped by ON CONFLICT and the winner's row is read back.
func (r *ConversationRepositoryImpl) GetOrCreate(ctx context.Context, identity, scope, date string) (*entity.Conversation, error) {
	existing, err := r.FindActive(ctx, identity, scope, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	m := &model.Conversation{
		Id:       uuid.New(),
		Identity: identity,
		Scope:    scope,
		Date:     date,
		Status:   string(entity.ConversationActive),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	created, err := r.FindActive(ctx, identity, scope, date)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, contract.ErrConversationNotFound
	}
	return created, nil
}

func (r *ConversationRepositoryImpl) AppendMessage(ctx context.Context, conversationId uuid.UUID, role entity.MessageRole, content string) (*entity.ConversationMessage, error) {
	m := &model.ConversationMessage{
		ConversationId: conversationId,
		Role:           string(role),
		Content:        content,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return r.mapper.MessageToEntity(m), nil
}

func (r *ConversationRepositoryImpl) IncrementUsage(ctx context.Context, conversationId uuid.UUID) (int, error) {
	var m model.Conversation
	res := r.db.WithContext(ctx).
		Model(&m).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "messages_used"}}}).
		Where("id = ?", conversationId).
		Updates(map[string]interface{}{
			"messages_used": gorm.Expr("messages_used + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("increment usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, contract.ErrConversationNotFound
	}
	return m.MessagesUsed, nil
}

func (r *ConversationRepositoryImpl) SoftDelete(ctx context.Context, identity, scope, date string) (bool, error) {
	now := time.Now().UTC()
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}), activeKey(identity, scope, date)...)
	res := query.Updates(map[string]interface{}{
		"status":     string(entity.ConversationDeleted),
		"deleted_at": now,
		"updated_at": now,
	})
	if res.Error != nil {
		return false, fmt.Errorf("soft delete conversation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ConversationRepositoryImpl) ActiveMessages(ctx context.Context, identity, scope, date string) ([]*entity.ConversationMessage, error) {
	var models []*model.ConversationMessage
	err := r.db.WithContext(ctx).
		Joins("JOIN conversations ON conversations.id = conversation_messages.conversation_id").
		Where("conversations.identity = ? AND conversations.scope = ? AND conversations.date = ? AND conversations.status = ?",
			identity, scope, date, string(entity.ConversationActive)).
		Order("conversation_messages.id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}

func (r *ConversationRepositoryImpl) TotalUsage(ctx context.Context, identity, scope, date string) (int, error) {
	var total int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}),
		specification.ByConversationKey{Identity: identity, Scope: scope, Date: date})
	if err := query.Select("COALESCE(SUM(messages_used), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("total usage: %w", err)
	}
	return int(total), nil
}

func (r *ConversationRepositoryImpl) SoftDeleteBefore(ctx context.Context, date string) (int64, error) {
	now := time.Now().UTC()
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}),
		specification.ByConversationStatus{Status: entity.ConversationActive},
		specification.DatedBefore{Date: date})
	res := query.Updates(map[string]interface{}{
		"status":     string(entity.ConversationDeleted),
		"deleted_at": now,
		"updated_at": now,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("soft delete before %s: %w", date, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ConversationRepositoryImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
