package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultSessionTTL  = 15 * time.Minute
	DefaultRenewalTTL  = 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Service signs and verifies session tokens and renewal credentials.
// The two kinds use separate secrets so one can never pass for the other.
type Service struct {
	sessionSecret []byte
	renewalSecret []byte

	sessionTTL         time.Duration
	renewalTTL         time.Duration
	renewalRememberTTL time.Duration

	now func() time.Time
}

type Claims struct {
	UserID int64 `json:"user_id"`
	jwtlib.RegisteredClaims
}

type Option func(*Service)

// WithClock replaces time.Now for signing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTTLs(session, renewal, renewalRemember time.Duration) Option {
	return func(s *Service) {
		if session > 0 {
			s.sessionTTL = session
		}
		if renewal > 0 {
			s.renewalTTL = renewal
		}
		if renewalRemember > 0 {
			s.renewalRememberTTL = renewalRemember
		}
	}
}

func New(sessionSecret, renewalSecret string, opts ...Option) *Service {
	s := &Service{
		sessionSecret:      []byte(sessionSecret),
		renewalSecret:      []byte(renewalSecret),
		sessionTTL:         DefaultSessionTTL,
		renewalTTL:         DefaultRenewalTTL,
		renewalRememberTTL: DefaultRememberTTL,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) IssueSessionToken(userID int64) (string, error) {
	token, _, err := s.sign(userID, s.sessionTTL, s.sessionSecret, "")
	return token, err
}

// IssueRenewalCredential returns the signed credential and its expiry. The
// caller persists HashToken(token), never the token itself.
func (s *Service) IssueRenewalCredential(userID int64, rememberMe bool) (string, time.Time, error) {
	ttl := s.renewalTTL
	if rememberMe {
		ttl = s.renewalRememberTTL
	}
	// jti keeps two credentials issued in the same second from sharing a hash.
	return s.sign(userID, ttl, s.renewalSecret, uuid.NewString())
}

func (s *Service) VerifySessionToken(token string) (*Claims, error) {
	return s.verify(token, s.sessionSecret)
}

// VerifyRenewalCredential checks signature and expiry only. Whether the
// credential was revoked is the store's business.
func (s *Service) VerifyRenewalCredential(token string) (*Claims, error) {
	return s.verify(token, s.renewalSecret)
}

func (s *Service) sign(userID int64, ttl time.Duration, secret []byte, jti string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *Service) verify(tokenStr string, secret []byte) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwtlib.WithTimeFunc(s.now), jwtlib.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashToken is the one-way digest stored for renewal credentials and service keys.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
