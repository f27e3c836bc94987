//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"account-provisioner/internal/handler/middleware"
	"account-provisioner/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		origins    []string
		wantErr    error
		origin     string
		wantHeader string
	}{
		{name: "empty origin list is a configuration error", origins: nil, wantErr: middleware.ErrNoCORSOrigins},
		{name: "listed origin is allowed", origins: []string{"http://localhost:3000"}, origin: "http://localhost:3000", wantHeader: "http://localhost:3000"},
		{name: "wildcard allows any origin", origins: []string{"*"}, origin: "https://wallet.example", wantHeader: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig().CORS
			cfg.AllowOrigins = tt.origins

			mw, err := middleware.NewCORSMiddleware(cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, mw)
				return
			}
			require.NoError(t, err)

			engine := gin.New()
			engine.Use(mw)
			engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
