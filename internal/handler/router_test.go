//go:build unit

package handler_test

import (
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"strings"
	"testing"

	"account-provisioner/internal/domain/principal"
	"account-provisioner/internal/handler"
	"account-provisioner/internal/handler/api"
	"account-provisioner/internal/handler/middleware"
	"account-provisioner/internal/infra/metrics"
	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/pkg/errs"
	"account-provisioner/internal/usecase/commands"
	"account-provisioner/tests/common/httptest"
	commandsmock "account-provisioner/tests/mock/commands"
	queriesmock "account-provisioner/tests/mock/queries"
	usecasemock "account-provisioner/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RouterTestSuite struct {
	suite.Suite
	router     *gin.Engine
	ctrl       *gomock.Controller
	validator  *usecasemock.MockTokenValidator
	payments   *commandsmock.MockPaymentCommands
	sweep      *commandsmock.MockSweepCommands
	metrics    *metrics.Metrics
	invariants []error
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctrl = gomock.NewController(s.T())
	s.validator = usecasemock.NewMockTokenValidator(s.ctrl)
	s.payments = commandsmock.NewMockPaymentCommands(s.ctrl)
	s.sweep = commandsmock.NewMockSweepCommands(s.ctrl)
	s.metrics = metrics.New()
	s.invariants = nil

	cfg := config.NewTestConfig()
	h := handler.Handlers{
		Registration: api.NewRegistrationHandler(
			commandsmock.NewMockRegistrationCommands(s.ctrl),
			s.sweep,
			queriesmock.NewMockReservationQueries(s.ctrl),
		),
		Payment: api.NewPaymentHandler(s.payments),
		Quote:   api.NewQuoteHandler(queriesmock.NewMockQuoteQueries(s.ctrl)),
	}

	s.router = gin.New()
	err := handler.NewRouter(s.router, cfg, middleware.NewLogger(cfg.Log), s.metrics, h,
		middleware.NewAuthMiddleware(s.validator),
		func(err error) { s.invariants = append(s.invariants, err) },
	)
	s.Require().NoError(err)
}

func (s *RouterTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestNewRouter_RejectsEmptyCORSOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()
	cfg.CORS.AllowOrigins = nil

	err := handler.NewRouter(gin.New(), cfg, middleware.NewLogger(cfg.Log), metrics.New(), handler.Handlers{}, nil, nil)
	require.ErrorIs(t, err, middleware.ErrNoCORSOrigins)
}

var transfer = map[string]any{"from": "alice", "to": "saccountcrtr", "quantity": "1.0000 EOS", "memo": "x"}

func (s *RouterTestSuite) TestHealth() {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *RouterTestSuite) TestRequestIDIsEchoed() {
	req := nethttptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := nethttptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal("req-42", rec.Header().Get("X-Request-ID"))
	s.Equal("application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func (s *RouterTestSuite) TestPaymentsRequireLedgerRole() {
	s.Run("no token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments", transfer, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Access token required")
	})

	s.Run("invalid token", func() {
		s.validator.EXPECT().ValidateToken("bad").Return("", principal.Role(""), errors.New("invalid token"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments", transfer, "bad")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("registrar role is forbidden", func() {
		s.validator.EXPECT().ValidateToken("registrar").Return("registrar1", principal.RoleRegistrar, nil)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments", transfer, "registrar")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Insufficient permissions")
	})

	s.Run("ledger role reaches the handler", func() {
		s.validator.EXPECT().ValidateToken("ledger").Return("watcher", principal.RoleLedger, nil)
		s.payments.EXPECT().HandlePayment(gomock.Any(), gomock.Any()).
			Return(&commands.PaymentResult{Outcome: commands.PaymentIgnored, IgnoreReason: commands.IgnoreOutgoing}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments", transfer, "ledger")
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})
}

func (s *RouterTestSuite) TestRegistrationRequiresToken() {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/registrations", map[string]any{}, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestRegistrationRejectsUnknownRole() {
	s.validator.EXPECT().ValidateToken("auditor").Return("auditor1", principal.Role("auditor"), nil)
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/registrations", map[string]any{}, "auditor")
	httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Insufficient permissions")
}

func (s *RouterTestSuite) TestSweepIsPublic() {
	s.sweep.EXPECT().Sweep(gomock.Any()).Return(0, nil)
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/registrations/sweep", nil, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestInvariantViolationIsReported() {
	s.validator.EXPECT().ValidateToken("ledger").Return("watcher", principal.RoleLedger, nil)
	s.payments.EXPECT().HandlePayment(gomock.Any(), gomock.Any()).
		Return(nil, errs.Mark(errors.New("reservation id space exhausted"), errs.ErrInvariantViolation))

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments", transfer, "ledger")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Require().Len(s.invariants, 1)
	s.True(errs.Is(s.invariants[0], errs.ErrInvariantViolation))
}

func (s *RouterTestSuite) TestMetricsEndpoint() {
	httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/health", nil, "")

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/metrics", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.True(strings.Contains(rec.Body.String(), `route="/health"`), rec.Body.String())
}
