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

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return leenk_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, leenk_errors.ErrNotFound
		}
		return domain.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByBusinessAndEmail(ctx context.Context, businessID uuid.UUID, customerEmail string) (domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND customer_email = ?", businessID, customerEmail).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, leenk_errors.ErrNotFound
		}
		return domain.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) Update(ctx context.Context, c domain.Conversation) error {
	res := r.db.WithContext(ctx).Save(&c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leenk_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("pinned", pinned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leenk_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leenk_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	q := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("pinned DESC, updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) DeleteWithMessages(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Conversation{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return leenk_errors.ErrNotFound
		}
		return nil
	})
}
