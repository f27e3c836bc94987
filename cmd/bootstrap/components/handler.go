package components

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"account-provisioner/internal/handler"
	"account-provisioner/internal/handler/api"
	"account-provisioner/internal/handler/middleware"
	"account-provisioner/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewRegistrationHandler,
		api.NewPaymentHandler,
		api.NewQuoteHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
		NewInvariantHandler,
		func() *gin.Engine {
			return gin.New()
		},
	),
	fx.Invoke(handler.NewRouter),
)

var ServerModule = fx.Module("server",
	fx.Invoke(StartServer),
)

func NewHandlers(r *api.RegistrationHandler, p *api.PaymentHandler, q *api.QuoteHandler) handler.Handlers {
	return handler.Handlers{Registration: r, Payment: p, Quote: q}
}

// NewInvariantHandler stops the whole process once a request trips over a
// broken store invariant.
func NewInvariantHandler(sd fx.Shutdowner, logger *slog.Logger) middleware.InvariantHandler {
	return func(err error) {
		logger.Error("invariant violated, shutting down", slog.String("error", err.Error()))
		if serr := sd.Shutdown(fx.ExitCode(1)); serr != nil {
			logger.Error("failed to request shutdown", slog.String("error", serr.Error()))
		}
	}
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			logger.Info("starting server", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return srv.Shutdown(ctx)
		},
	})
}
