package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const requestIDKey = "request_id"

// RequestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = c.GetHeader("X-Request-Id")
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// ErrorLogger logs every request and recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestEvent(c, log.Error(), start).
					Err(err).
					Bytes("stack", debug.Stack()).
					Msg("panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			status := c.Writer.Status()
			var ev *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError || len(c.Errors) > 0:
				ev = log.Error()
			case status >= http.StatusBadRequest:
				ev = log.Warn()
			default:
				ev = log.Info()
			}
			for _, e := range c.Errors {
				ev = ev.AnErr(fmt.Sprintf("error_%v", e.Type), e.Err)
			}
			requestEvent(c, ev, start).Msg("request")
		}()

		c.Next()
	}
}

func requestEvent(c *gin.Context, ev *zerolog.Event, start time.Time) *zerolog.Event {
	ev = ev.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Int("status", c.Writer.Status()).
		Str("client_ip", c.ClientIP()).
		Str("request_id", c.GetString(requestIDKey)).
		Dur("latency", time.Since(start))
	if p, ok := PrincipalFrom(c); ok {
		ev = ev.Str("principal", string(p.Kind))
		if p.IsUser() {
			ev = ev.Int64("user_id", p.UserID)
		} else if p.IsService() {
			ev = ev.Str("platform", p.PlatformName)
		}
	}
	return ev
}
