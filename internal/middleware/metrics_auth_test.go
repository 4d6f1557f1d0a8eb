package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testToken = "test-secret-token-123"

func TestMetricsAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		configured  string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"no token configured", "", "", http.StatusOK, ""},
		{"valid token", testToken, "Bearer " + testToken, http.StatusOK, ""},
		{"missing header", testToken, "", http.StatusUnauthorized, "Bearer token required"},
		{"basic scheme", testToken, "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "Bearer token required"},
		{"empty bearer", testToken, "Bearer ", http.StatusUnauthorized, "Bearer token required"},
		{"wrong token", testToken, "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"lowercase scheme", testToken, "bearer " + testToken, http.StatusUnauthorized, "Bearer token required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/metrics", MetricsAuthMiddleware(tt.configured), func(c *gin.Context) {
				c.String(http.StatusOK, "metrics")
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "metrics", w.Body.String())
				return
			}
			assert.Equal(t, `Bearer realm="Metrics"`, w.Header().Get("WWW-Authenticate"))
			assert.Contains(t, w.Body.String(), tt.wantMessage)
		})
	}
}
