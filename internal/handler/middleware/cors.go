package middleware

import (
	"errors"
	"log/slog"
	"slices"

	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/pkg/errs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var ErrNoCORSOrigins = errors.New("CORS_ALLOW_ORIGINS must list at least one origin or \"*\"")

func NewCORSMiddleware(cfg config.CORSConfig) (gin.HandlerFunc, error) {
	if len(cfg.AllowOrigins) == 0 {
		return nil, ErrNoCORSOrigins
	}
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	// gin-contrib/cors rejects "*" mixed into an explicit origin list.
	if slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	slog.Info("CORS middleware initialized", "AllowOrigins", cfg.AllowOrigins, "AllowAllOrigins", corsCfg.AllowAllOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, errs.Wrap(err, "invalid CORS configuration")
	}
	return cors.New(corsCfg), nil
}
