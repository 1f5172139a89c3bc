package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// UserService exposes profile operations.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email *string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the user repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and/or email. Empty values leave the field as is.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email *string) (*model.User, error) {
	fields := map[string]interface{}{}
	if name != nil && strings.TrimSpace(*name) != "" {
		fields["name"] = strings.TrimSpace(*name)
	}
	if email != nil && strings.TrimSpace(*email) != "" {
		normalized := normalizeEmail(*email)
		other, err := s.repo.FindByEmail(ctx, normalized)
		if err == nil && other.ID != id {
			return nil, apperrors.ErrEmailInUse
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		fields["email"] = normalized
	}

	if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailInUse
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return s.GetProfile(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}
