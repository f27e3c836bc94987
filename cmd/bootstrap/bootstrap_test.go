//go:build unit

package bootstrap_test

import (
	"net/http"
	"testing"

	"account-provisioner/cmd/bootstrap"
	"account-provisioner/cmd/bootstrap/components"
	"account-provisioner/internal/domain/principal"
	"account-provisioner/internal/handler/middleware"
	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/usecase/commands"
	"account-provisioner/tests/common/authtest"
	"account-provisioner/tests/common/builder"
	"account-provisioner/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func testConfig() fx.Option {
	return fx.Provide(func() config.Config {
		cfg := config.NewTestConfig()
		cfg.Sweeper.Interval = 0
		return cfg
	})
}

func TestModuleGraph(t *testing.T) {
	err := fx.ValidateApp(
		testConfig(),
		bootstrap.JWTModule,
		bootstrap.CoreModule,
		components.HandlerModule,
		components.ServerModule,
		components.WorkerModule,
	)
	require.NoError(t, err)
}

func TestApp_ServesProvisioningRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var router *gin.Engine
	var cfg config.Config
	var sweep commands.SweepCommands

	app := fxtest.New(t,
		testConfig(),
		bootstrap.JWTModule,
		bootstrap.CoreModule,
		components.HandlerModule,
		components.WorkerModule,
		fx.Populate(&router, &cfg, &sweep),
	)
	app.RequireStart()
	defer app.RequireStop()

	w := httptest.PerformRequest(t, router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	jwtHelper := authtest.NewJWTHelper(cfg.JWT)
	body := map[string]any{
		"memo":      "newaccount12",
		"ownerKey":  builder.K1Key,
		"activeKey": builder.K1Key,
	}

	expired := jwtHelper.CreateExpiredToken(t, "registrar1", principal.RoleRegistrar)
	w = httptest.PerformRequest(t, router, http.MethodPost, "/api/registrations", body, expired)
	httptest.AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid or expired token")

	token := jwtHelper.GenerateToken(t, "registrar1", principal.RoleRegistrar)
	w = httptest.PerformRequest(t, router, http.MethodPost, "/api/registrations", body, token)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	removed, err := sweep.Sweep(t.Context())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewPolicy_RejectsBadConfig(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Ledger.FeeDivisor = 0

	_, err := components.NewPolicy(cfg)
	assert.Error(t, err)
}

func TestNewUnitOfWork_UnknownDriver(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Store.Driver = "sqlite"

	_, err := bootstrap.NewUnitOfWork(fxtest.NewLifecycle(t), cfg, nil)
	assert.Error(t, err)
}

func TestApp_EmptyCORSOriginsFailsConstruction(t *testing.T) {
	app := fx.New(
		fx.Provide(func() config.Config {
			cfg := config.NewTestConfig()
			cfg.CORS.AllowOrigins = nil
			return cfg
		}),
		bootstrap.JWTModule,
		bootstrap.CoreModule,
		components.HandlerModule,
		fx.NopLogger,
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), middleware.ErrNoCORSOrigins.Error())
}
