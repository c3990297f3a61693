package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"ticketdesk/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), ErrorLogger())
	router.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := doGet(router, map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

	w = doGet(router, nil)
	assert.Len(t, w.Body.String(), 36)
}

func TestErrorLogger_RecoversPanic(t *testing.T) {
	router := gin.New()
	router.Use(ErrorLogger())
	router.GET("/protected", func(c *gin.Context) {
		panic("boom")
	})

	w := doGet(router, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestErrorLogger_PrincipalFields(t *testing.T) {
	tests := []struct {
		name      string
		principal *domain.Principal
		want      map[string]any
		absent    string
	}{
		{"service key", domain.ServicePrincipal("shop"), map[string]any{"principal": "service", "platform": "shop"}, "user_id"},
		{"user session", domain.UserPrincipal(7), map[string]any{"principal": "user", "user_id": float64(7)}, "platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			router := gin.New()
			router.Use(ErrorLogger())
			router.GET("/protected", func(c *gin.Context) {
				c.Set(principalKey, tt.principal)
				c.Status(http.StatusOK)
			})
			doGet(router, nil)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			for k, v := range tt.want {
				assert.Equal(t, v, line[k], k)
			}
			assert.NotContains(t, line, tt.absent)
		})
	}
}
