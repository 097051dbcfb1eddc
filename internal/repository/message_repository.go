package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return leenk_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) CreateBatch(ctx context.Context, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Create(&msgs)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return leenk_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, leenk_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) Update(ctx context.Context, m domain.Message) error {
	res := r.db.WithContext(ctx).Save(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leenk_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leenk_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) ListBefore(ctx context.Context, conversationID uuid.UUID, beforeCreatedAt time.Time, beforeID uuid.UUID, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)

	if !beforeCreatedAt.IsZero() {
		// Tuple comparison so same-timestamp rows are neither skipped nor
		// duplicated across pages.
		q = q.Where("(created_at, id) < (?, ?)", beforeCreatedAt, beforeID)
	}

	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) CountUnread(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_type = ? AND status IN ?",
			conversationID, domain.SenderCustomer, []string{domain.StatusSent, domain.StatusDelivered}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresMessageRepository) GetLatest(ctx context.Context, conversationID uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, leenk_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) MarkConversationRead(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	var updated []domain.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Message{}).
			Where("conversation_id = ? AND sender_type = ? AND status IN ?",
				conversationID, domain.SenderCustomer, []string{domain.StatusSent, domain.StatusDelivered}).
			Update("status", domain.StatusRead)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Where("conversation_id = ? AND sender_type = ? AND status = ?",
			conversationID, domain.SenderCustomer, domain.StatusRead).
			Order("created_at ASC, id ASC").
			Find(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresMessageRepository) HasBusinessMessageWithContent(ctx context.Context, conversationID, senderID uuid.UUID, content string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_type = ? AND sender_id = ? AND content = ?",
			conversationID, domain.SenderBusiness, senderID, content).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
