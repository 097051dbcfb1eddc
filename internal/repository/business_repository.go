package repository

import (
	"context"
	"errors"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresBusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &PostgresBusinessRepository{db: db}
}

func (r *PostgresBusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	res := r.db.WithContext(ctx).Create(b)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return leenk_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresBusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error) {
	var b domain.Business
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Business{}, leenk_errors.ErrNotFound
		}
		return domain.Business{}, err
	}
	return b, nil
}

func (r *PostgresBusinessRepository) GetByEmail(ctx context.Context, email string) (domain.Business, error) {
	var b domain.Business
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Business{}, leenk_errors.ErrNotFound
		}
		return domain.Business{}, err
	}
	return b, nil
}

func (r *PostgresBusinessRepository) Update(ctx context.Context, b domain.Business) error {
	res := r.db.WithContext(ctx).Save(&b)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leenk_errors.ErrNotFound
	}
	return nil
}
