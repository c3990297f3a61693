package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/pkg/jwt"
	"ticketdesk/internal/pkg/response"
	"ticketdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	principalKey = "principal"
	apiKeyHeader = "X-API-Key"
)

// Authenticator is one credential strategy. ok=false means "not mine, try
// the next one"; a non-nil error aborts the request.
type Authenticator interface {
	Authenticate(c *gin.Context) (p *domain.Principal, ok bool, err error)
}

type SessionVerifier interface {
	VerifySessionToken(token string) (*jwt.Claims, error)
}

type APIKeyFinder interface {
	FindActiveByHash(ctx context.Context, hash string) (*domain.APIKey, error)
}

// SessionAuth admits requests carrying a valid bearer session token.
type SessionAuth struct {
	Tokens SessionVerifier
}

func (a SessionAuth) Authenticate(c *gin.Context) (*domain.Principal, bool, error) {
	token, found := bearerToken(c.GetHeader("Authorization"))
	if !found {
		return nil, false, nil
	}
	claims, err := a.Tokens.VerifySessionToken(token)
	if err != nil {
		// a bad bearer is not fatal, the service key may still admit the call
		return nil, false, nil
	}
	return domain.UserPrincipal(claims.UserID), true, nil
}

// ServiceKeyAuth admits requests carrying a known, unrevoked X-API-Key.
type ServiceKeyAuth struct {
	Keys APIKeyFinder
}

func (a ServiceKeyAuth) Authenticate(c *gin.Context) (*domain.Principal, bool, error) {
	raw := strings.TrimSpace(c.GetHeader(apiKeyHeader))
	if raw == "" {
		return nil, false, nil
	}
	key, err := a.Keys.FindActiveByHash(c.Request.Context(), jwt.HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return domain.ServicePrincipal(key.PlatformName), true, nil
}

// Gate runs the strategies in order and admits the first principal found.
type Gate struct {
	strategies []Authenticator
}

func NewGate(tokens SessionVerifier, keys APIKeyFinder) *Gate {
	return &Gate{strategies: []Authenticator{
		SessionAuth{Tokens: tokens},
		ServiceKeyAuth{Keys: keys},
	}}
}

func (g *Gate) resolve(c *gin.Context) (*domain.Principal, error) {
	for _, s := range g.strategies {
		p, ok, err := s.Authenticate(c)
		if err != nil {
			return nil, err
		}
		if ok {
			return p, nil
		}
	}
	return nil, nil
}

// Require rejects requests no strategy admits.
func (g *Gate) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := g.resolve(c)
		if err != nil {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("credential lookup failed")
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			c.Abort()
			return
		}
		if p == nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Valid session token or API key required")
			c.Abort()
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// Optional attaches a principal when credentials are present and never rejects.
func (g *Gate) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := g.resolve(c)
		if err != nil {
			log.Warn().Err(err).Msg("optional auth lookup failed")
		}
		if p != nil {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// RequireUser must run after Require. Service principals get 403.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}
		if !p.IsUser() {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "A user session is required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func PrincipalFrom(c *gin.Context) (*domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.Principal)
	return p, ok && p != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
