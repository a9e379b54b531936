package usecase

import (
	"context"
	"errors"

	"pushcast-backend/internal/auth/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier turns a bearer token into a caller identity. Sessions are
// owned by the identity provider; this service only verifies.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}
