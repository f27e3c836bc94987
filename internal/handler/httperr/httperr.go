package httperr

import (
	"errors"
	"net/http"

	"account-provisioner/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errors.New(msg)
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(&gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort maps the error taxonomy onto HTTP statuses. Format problems are the
// caller's fault, short payments are 402, and anything else is ours.
func Abort(c *gin.Context, err error, msg string) {
	switch {
	case errs.Is(err, errs.ErrFormat):
		AbortWithError(c, http.StatusBadRequest, err, msg, err.Error())
	case errs.Is(err, errs.ErrInsufficientFunds):
		AbortWithError(c, http.StatusPaymentRequired, err, msg, err.Error())
	case errs.Is(err, errs.ErrReservationNotFound):
		AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errs.Is(err, errs.ErrCommandRejected):
		AbortWithError(c, http.StatusBadGateway, err, "Ledger host rejected the command batch", nil)
	default:
		AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
