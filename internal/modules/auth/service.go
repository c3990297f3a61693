package auth

import (
	"context"
	"errors"
	"fmt"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/metrics"
	"ticketdesk/internal/pkg/jwt"
	"ticketdesk/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Service contains all business logic for authentication
type Service struct {
	users         UserRepositoryInterface
	refreshTokens RefreshTokenRepositoryInterface
	tokens        TokenService
}

type LoginResult struct {
	User              *domain.User
	SessionToken      string
	RenewalCredential string
}

func NewService(users UserRepositoryInterface, refreshTokens RefreshTokenRepositoryInterface, tokens TokenService) *Service {
	return &Service{
		users:         users,
		refreshTokens: refreshTokens,
		tokens:        tokens,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Email: req.Email, PasswordHash: &hashedPassword}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = nil
	return user, nil
}

// Login checks the password and opens a new session: a short-lived session
// token plus a renewal credential whose hash is stored.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			recordOutcome("login", "rejected")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	// guests have no password and can never log in
	if user.IsGuest() || bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		recordOutcome("login", "rejected")
		return nil, ErrInvalidCredentials
	}

	sessionToken, err := s.tokens.IssueSessionToken(user.ID)
	if err != nil {
		return nil, err
	}
	renewal, expiresAt, err := s.tokens.IssueRenewalCredential(user.ID, req.RememberMe)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: jwt.HashToken(renewal),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	recordOutcome("login", "ok")
	user.PasswordHash = nil
	return &LoginResult{User: user, SessionToken: sessionToken, RenewalCredential: renewal}, nil
}

// Renew exchanges a renewal credential for a new session token. The
// credential is not rotated and stays usable until it expires or is revoked.
func (s *Service) Renew(ctx context.Context, renewal string) (string, error) {
	claims, err := s.tokens.VerifyRenewalCredential(renewal)
	if err != nil {
		recordOutcome("renew", "invalid")
		return "", ErrInvalidRefreshToken
	}

	if _, err := s.refreshTokens.FindActiveByHash(ctx, jwt.HashToken(renewal)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			recordOutcome("renew", "revoked")
			return "", ErrRefreshTokenRevoked
		}
		return "", fmt.Errorf("find refresh token: %w", err)
	}

	token, err := s.tokens.IssueSessionToken(claims.UserID)
	if err != nil {
		return "", err
	}
	recordOutcome("renew", "ok")
	return token, nil
}

// Logout revokes the stored rows matching the credential. Unknown, empty and
// already revoked credentials are not errors.
func (s *Service) Logout(ctx context.Context, renewal string) error {
	if renewal == "" {
		return nil
	}
	if _, err := s.refreshTokens.RevokeByHash(ctx, jwt.HashToken(renewal)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func recordOutcome(operation, outcome string) {
	metrics.AuthOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}
