package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/internal/repository"
	leenk_errors "github.com/JabulaniUsen/new-leenk/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	businesses repository.BusinessRepository
	jwtSecret  []byte
}

func NewAuthService(businesses repository.BusinessRepository, jwtSecret string) *AuthService {
	return &AuthService{businesses: businesses, jwtSecret: []byte(jwtSecret)}
}

func (s *AuthService) Signup(ctx context.Context, email, password, businessName string) (domain.Business, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.Business{}, "", leenk_errors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Business{}, "", err
	}

	biz := domain.Business{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		BusinessName: businessName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.businesses.Create(ctx, &biz); err != nil {
		return domain.Business{}, "", err
	}

	token, err := s.issueToken(biz.ID)
	if err != nil {
		return domain.Business{}, "", err
	}
	return biz, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Business, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	biz, err := s.businesses.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, leenk_errors.ErrNotFound) {
			return domain.Business{}, "", leenk_errors.ErrNotAuthenticated
		}
		return domain.Business{}, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(biz.PasswordHash), []byte(password)); err != nil {
		return domain.Business{}, "", leenk_errors.ErrNotAuthenticated
	}

	token, err := s.issueToken(biz.ID)
	if err != nil {
		return domain.Business{}, "", err
	}
	return biz, token, nil
}

func (s *AuthService) issueToken(businessID uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   businessID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates an access token and returns the business id it was
// issued for.
func (s *AuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, leenk_errors.ErrNotAuthenticated
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, leenk_errors.ErrNotAuthenticated
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, leenk_errors.ErrNotAuthenticated
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, leenk_errors.ErrNotAuthenticated
	}
	return id, nil
}
