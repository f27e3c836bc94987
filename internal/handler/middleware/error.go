package middleware

import (
	"log/slog"
	"net/http"

	"account-provisioner/internal/handler/httperr"
	"account-provisioner/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// InvariantHandler is told when a request hit a broken invariant. The
// service is no longer trustworthy after that.
type InvariantHandler func(err error)

func ErrorHandler(onInvariant InvariantHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			if e.IsType(gin.ErrorTypePublic) && c.Writer.Status() < http.StatusInternalServerError {
				continue
			}
			slog.ErrorContext(c.Request.Context(), "request failed",
				slog.String("request_id", GetRequestID(c)),
				slog.String("error", e.Err.Error()),
				slog.Any("stack", errs.ExtractStackLines(e.Err, 12)),
			)
		}

		if onInvariant != nil {
			for _, e := range c.Errors {
				if errs.Is(e.Err, errs.ErrInvariantViolation) {
					onInvariant(e.Err)
					break
				}
			}
		}

		if c.Writer.Written() {
			return
		}
		// Search backward through the error stack
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]

			if err.IsType(gin.ErrorTypePublic) {
				// Public: Meta ⇒ Return as is
				if resp, ok := err.Meta.(httperr.Response); ok {
					c.JSON(resp.Status, resp)
					return
				}
			}
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "path", c.Request.URL.Path)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.JSON(http.StatusInternalServerError, resp)
				c.Abort()
			}
		}()
		c.Next()
	}
}
