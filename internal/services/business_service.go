package services

import (
	"context"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/repository"

	"github.com/google/uuid"
)

type BusinessService struct {
	businesses repository.BusinessRepository
}

func NewBusinessService(businesses repository.BusinessRepository) *BusinessService {
	return &BusinessService{businesses: businesses}
}

func (s *BusinessService) Get(ctx context.Context, id uuid.UUID) (domain.Business, error) {
	return s.businesses.GetByID(ctx, id)
}

// UpdateProfile edits the public business fields.
func (s *BusinessService) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone, address, logo string) (domain.Business, error) {
	biz, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return domain.Business{}, err
	}
	biz.BusinessName = name
	biz.Phone = phone
	biz.Address = address
	biz.BusinessLogo = logo
	if err := s.businesses.Update(ctx, biz); err != nil {
		return domain.Business{}, err
	}
	return biz, nil
}

// UpdateAwaySettings configures the automated welcome message.
func (s *BusinessService) UpdateAwaySettings(ctx context.Context, id uuid.UUID, message string, enabled bool) (domain.Business, error) {
	biz, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return domain.Business{}, err
	}
	biz.AwayMessage = message
	biz.AwayMessageEnabled = enabled
	if err := s.businesses.Update(ctx, biz); err != nil {
		return domain.Business{}, err
	}
	return biz, nil
}

// SetOnline flips the business's presence flag.
func (s *BusinessService) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	biz, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	biz.Online = online
	return s.businesses.Update(ctx, biz)
}
