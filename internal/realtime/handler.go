package realtime

import (
	"net/http"

	"ticketdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the upgrade endpoint. With no allowed origins every
// origin is accepted.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterRoutes mounts GET /ws. Authentication is optional; mw usually
// carries the gate's Optional handler so connections are tagged.
func (h *Handler) RegisterRoutes(r gin.IRoutes, mw ...gin.HandlerFunc) {
	r.GET("/ws", append(mw, h.Serve)...)
}

func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	principal, _ := middleware.PrincipalFrom(c)
	client := newClient(h.hub, conn, principal)

	ev := log.Debug().Str("conn_id", client.ID())
	if principal != nil {
		ev = ev.Str("principal", string(principal.Kind))
	}
	ev.Msg("websocket connected")

	client.run()
}
