package api

import (
	"net/http"

	reqdto "account-provisioner/internal/handler/dto/request"
	resdto "account-provisioner/internal/handler/dto/response"
	"account-provisioner/internal/handler/httperr"
	"account-provisioner/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	q queries.QuoteQueries
}

func NewQuoteHandler(q queries.QuoteQueries) *QuoteHandler {
	return &QuoteHandler{q: q}
}

// @Summary Price an account
// @Description Cost breakdown and the smallest payment that provisions an account with the given resources
// @Tags quote
// @Produce json
// @Param ram_kb query int false "RAM in KiB; defaults to the standard allocation"
// @Param stake query int false "CPU stake in whole tokens; defaults to the standard stake"
// @Success 200 {object} resdto.QuoteResponse
// @Failure 400 {object} httperr.Response
// @Router /quote [get]
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req reqdto.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	view, err := h.q.Quote(c.Request.Context(), req.ToQuery())
	if err != nil {
		httperr.Abort(c, err, "Invalid quote request")
		return
	}
	resp, err := resdto.FromQuoteView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}
