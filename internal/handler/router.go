package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"account-provisioner/internal/domain/principal"
	"account-provisioner/internal/handler/api"
	"account-provisioner/internal/handler/middleware"
	"account-provisioner/internal/infra/metrics"
	"account-provisioner/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Registration *api.RegistrationHandler
	Payment      *api.PaymentHandler
	Quote        *api.QuoteHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics, h Handlers, authMiddleware *middleware.AuthMiddleware, onInvariant middleware.InvariantHandler) error {
	if err := setupMiddleware(engine, cfg, logger, m, onInvariant); err != nil {
		return err
	}
	setupRoutes(engine, m, h, authMiddleware)
	return nil
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, m *metrics.Metrics, onInvariant middleware.InvariantHandler) error {
	corsMiddleware, err := middleware.NewCORSMiddleware(cfg.CORS)
	if err != nil {
		return err
	}

	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(corsMiddleware)
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.MetricsMiddleware(m))
	engine.Use(middleware.ErrorHandler(onInvariant))
	return nil
}

func setupRoutes(engine *gin.Engine, m *metrics.Metrics, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		registrations := apiGroup.Group("/registrations")
		{
			addRoutes(registrations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Registration.Register, Mw: []gin.HandlerFunc{
					authMiddleware.RequireAuth(),
					authMiddleware.RequireRole(principal.RoleRegistrar, principal.RoleLedger),
				}},
				{Method: http.MethodGet, Path: "/:fingerprint", Handler: h.Registration.Get},
				{Method: http.MethodPost, Path: "/sweep", Handler: h.Registration.Sweep},
			})
		}

		payments := apiGroup.Group("/payments")
		payments.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(principal.RoleLedger))
		{
			addRoutes(payments, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Payment.Handle},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/quote", Handler: h.Quote.Quote},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
