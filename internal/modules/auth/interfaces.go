package auth

import (
	"context"
	"time"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/pkg/jwt"
)

// UserRepositoryInterface — only the methods auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RefreshTokenRepositoryInterface — storage for hashed renewal credentials
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	FindActiveByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string) (int64, error)
}

type TokenService interface {
	IssueSessionToken(userID int64) (string, error)
	IssueRenewalCredential(userID int64, rememberMe bool) (string, time.Time, error)
	VerifyRenewalCredential(token string) (*jwt.Claims, error)
}
