package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/pkg/logger"
)

// setupRouterTest wires only the routes that do not reach a controller.
func setupRouterTest(t *testing.T) *gin.Engine {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode, EmailRouteRPS: 1, EmailRouteBurst: 5},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	r := NewRouter(nil, nil, nil, nil,
		middleware.NewAuthMiddleware(nil),
		middleware.NewMetrics(prometheus.NewRegistry()),
		cfg,
		logger.Nop(),
	)
	return r.Setup(ctx)
}

func TestRouter_Health(t *testing.T) {
	engine := setupRouterTest(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_CORS(t *testing.T) {
	engine := setupRouterTest(t)

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", "http://localhost:3000", "http://localhost:3000"},
		{"unknown origin", "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/diary/20240101", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			engine.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	engine := setupRouterTest(t)

	for _, path := range []string{"/diary/20240101", "/diary/image/abc", "/auth/me"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_Metrics(t *testing.T) {
	engine := setupRouterTest(t)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)
}
