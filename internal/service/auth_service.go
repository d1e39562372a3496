package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/TPerez13/MuchasVidas/internal/auth"
	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

// dummyPassword is hashed once so logins for unknown emails still pay for a
// bcrypt comparison.
const dummyPassword = "muchasvidas-login-timing"

// TokenIssuer issues bearer tokens for users.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *model.Identity `json:"user"`
	Token string          `json:"token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	userRepo  repository.UserRepository
	hasher    auth.PasswordHasher
	tokens    TokenIssuer
	dummyHash string
}

// NewAuthService creates a new authentication service. It fails when the
// hasher cannot produce the digest unknown-email logins are compared against.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer) (AuthService, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("hash login timing digest: %w", err)
	}
	return &authService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new user with a hashed password and signs them in.
func (s *authService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	// A concurrent registration can still win the unique index.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.signIn(user)
}

// Login authenticates a user. Unknown emails and wrong passwords fail with
// the same ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.signIn(user)
}

func (s *authService) signIn(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user.Identity(), Token: token}, nil
}
