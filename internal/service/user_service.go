package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

// ProfileUpdate carries the optional profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UserService resolves authenticated identities and manages profiles.
type UserService interface {
	// Resolve returns the identity for a verified token's user id, or
	// ErrUserNotFound when the account no longer exists. It always reads the
	// store, so a removed account is refused on its next request.
	Resolve(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	Profile(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.Identity, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the user repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Resolve(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	return s.Profile(ctx, id)
}

func (s *userService) Profile(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user.Identity(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.Identity, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if update.Email != nil && *update.Email != user.Email {
		owner, err := s.repo.FindByEmail(ctx, *update.Email)
		switch {
		case err == nil && owner.ID != user.ID:
			return nil, apperrors.ErrUserExists
		case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
			return nil, fmt.Errorf("check email owner: %w", err)
		}
		user.Email = *update.Email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user.Identity(), nil
}
