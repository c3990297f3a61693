package server

import (
	"net/http"
	"time"

	"ticketdesk/internal/config"
	"ticketdesk/internal/metrics"
	"ticketdesk/internal/middleware"
	"ticketdesk/internal/modules/auth"
	"ticketdesk/internal/modules/ticket"
	"ticketdesk/internal/pkg/jwt"
	"ticketdesk/internal/realtime"
	"ticketdesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter wires repositories, services and handlers into one engine.
// The returned stop func releases background work owned by the router.
func SetupRouter(cfg *config.Config, db *gorm.DB, hub *realtime.Hub) (*gin.Engine, func()) {
	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	tokens := jwt.New(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		jwt.WithTTLs(cfg.SessionTTL, cfg.RenewalTTL, cfg.RenewalRememberTTL))
	gate := middleware.NewGate(tokens, apiKeyRepo)

	authHandler := auth.NewHandler(auth.NewService(userRepo, refreshRepo, tokens))
	ticketService := ticket.NewService(ticketRepo, messageRepo, ticket.NewIdentityResolver(userRepo), hub)
	ticketHandler := ticket.NewHandler(ticketService)
	wsHandler := realtime.NewHandler(hub, cfg.CORSAllowedOrigins)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 2*time.Minute)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	wsHandler.RegisterRoutes(r, gate.Optional())

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1, limiter.Middleware())

	protected := v1.Group("")
	protected.Use(gate.Require())
	{
		authHandler.RegisterProtectedRoutes(protected)
		ticketHandler.RegisterRoutes(protected)
	}

	return r, limiter.Stop
}
