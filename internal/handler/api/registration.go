package api

import (
	"net/http"

	"account-provisioner/internal/domain/registration"
	reqdto "account-provisioner/internal/handler/dto/request"
	resdto "account-provisioner/internal/handler/dto/response"
	"account-provisioner/internal/handler/httperr"
	"account-provisioner/internal/handler/middleware"
	"account-provisioner/internal/usecase/commands"
	"account-provisioner/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	cmds  commands.RegistrationCommands
	sweep commands.SweepCommands
	q     queries.ReservationQueries
}

func NewRegistrationHandler(cmds commands.RegistrationCommands, sweep commands.SweepCommands, q queries.ReservationQueries) *RegistrationHandler {
	return &RegistrationHandler{cmds: cmds, sweep: sweep, q: q}
}

// @Summary Reserve keys for an account
// @Description Store owner and active keys under the fingerprint of the memo a later payment will carry. Expired reservations are swept first.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RegisterRequest true "Registration request"
// @Success 201 {object} resdto.RegistrationResponse
// @Success 200 {object} resdto.RegistrationResponse "fingerprint already reserved"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	in, err := req.ToInput(subject)
	if err != nil {
		httperr.Abort(c, err, "Invalid request")
		return
	}

	out, err := h.cmds.Register(c.Request.Context(), in)
	if err != nil {
		httperr.Abort(c, err, "Registration failed")
		return
	}

	status := http.StatusCreated
	if out.Result == commands.RegisterAlreadyExists {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromRegisterOutput(out))
}

// @Summary Get a reservation
// @Description Look up the pending reservation for a memo fingerprint
// @Tags registrations
// @Produce json
// @Param fingerprint path string true "Hex SHA-256 of the trimmed memo"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /registrations/{fingerprint} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	fp, err := registration.ParseFingerprint(c.Param("fingerprint"))
	if err != nil {
		httperr.Abort(c, err, "Invalid fingerprint")
		return
	}
	view, err := h.q.GetByFingerprint(c.Request.Context(), fp)
	if err != nil {
		httperr.Abort(c, err, "Lookup failed")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Sweep expired reservations
// @Description Remove every reservation whose expiry has passed. Anyone may call it.
// @Tags registrations
// @Produce json
// @Success 200 {object} resdto.SweepResponse
// @Router /registrations/sweep [post]
func (h *RegistrationHandler) Sweep(c *gin.Context) {
	removed, err := h.sweep.Sweep(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err, "Sweep failed")
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{Removed: removed})
}
