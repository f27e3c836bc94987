package api

import (
	"net/http"

	reqdto "account-provisioner/internal/handler/dto/request"
	resdto "account-provisioner/internal/handler/dto/response"
	"account-provisioner/internal/handler/httperr"
	"account-provisioner/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	cmds commands.PaymentCommands
}

func NewPaymentHandler(cmds commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{cmds: cmds}
}

// @Summary Handle an incoming payment
// @Description Provision an account from a token transfer. Transfers not meant for this service are acknowledged as ignored.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PaymentRequest true "Observed transfer"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payments [post]
func (h *PaymentHandler) Handle(c *gin.Context) {
	var req reqdto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.HandlePayment(c.Request.Context(), req.ToEvent())
	if err != nil {
		httperr.Abort(c, err, "Payment rejected")
		return
	}
	c.JSON(http.StatusOK, resdto.FromPaymentResult(result))
}
