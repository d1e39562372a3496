package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "github.com/TPerez13/MuchasVidas/internal/errors"
)

// DefaultTokenTTL is the lifetime of issued tokens. There is no refresh or
// revocation: a token stays valid until it expires.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = fmt.Errorf("%w: token has expired", apperrors.ErrInvalidToken)
	// ErrTokenInvalid is returned for malformed tokens and bad signatures.
	ErrTokenInvalid = fmt.Errorf("%w: token is malformed or its signature is invalid", apperrors.ErrInvalidToken)
)

// Claims represents JWT claims.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a signed token for the user, valid for the configured TTL.
func (s *JWTService) Issue(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
// Failures wrap ErrTokenExpired or ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return uuid.Nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user id claim: %v", ErrTokenInvalid, err)
	}
	return userID, nil
}
