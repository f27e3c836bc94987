//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"account-provisioner/cmd/bootstrap"
	"account-provisioner/cmd/bootstrap/components"
	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/pkg/config"
	"account-provisioner/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/fx"
)

const (
	testUser     = "test"
	testPassword = "testpass"
	testDB       = "provisioner"
)

// RecordingEmitter stands in for the host ledger and keeps every batch it
// accepted.
type RecordingEmitter struct {
	mu      sync.Mutex
	batches []*provisioning.Batch
}

func (e *RecordingEmitter) Emit(_ context.Context, batch *provisioning.Batch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = append(e.batches, batch)
	return nil
}

func (e *RecordingEmitter) Batches() []*provisioning.Batch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*provisioning.Batch(nil), e.batches...)
}

func (e *RecordingEmitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = nil
}

// ------------------------------------------------------------
// Containers
// ------------------------------------------------------------
func startPostgres(t *testing.T) config.DBConfig {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(testDB),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			slog.Warn("failed to terminate postgres container", "error", err.Error())
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.DBConfig{
		Host:     host,
		Port:     port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   testDB,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 4,
	}
}

// ------------------------------------------------------------
// Application
// ------------------------------------------------------------
func buildE2EApp(t *testing.T, dbConfig config.DBConfig, emitter *RecordingEmitter) (*gin.Engine, config.Config) {
	t.Helper()
	var router *gin.Engine
	var cfg config.Config

	testConfigModule := fx.Module("testconfig",
		fx.Provide(func() config.Config {
			c := config.NewTestConfig()
			c.Store.Driver = config.StoreDriverPostgres
			c.DB = dbConfig
			return c
		}),
	)

	app := fx.New(
		testConfigModule,
		bootstrap.JWTModule,
		bootstrap.CoreModule,
		components.HandlerModule,
		fx.Decorate(func(commands.CommandEmitter) commands.CommandEmitter { return emitter }),
		fx.Populate(&router, &cfg),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})

	return router, cfg
}

// ------------------------------------------------------------
// Shared suite
// ------------------------------------------------------------
type SharedSuite struct {
	suite.Suite
	Router  *gin.Engine
	DB      *pgxpool.Pool
	Config  config.Config
	Emitter *RecordingEmitter
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	dbConfig := startPostgres(t)
	s.Emitter = &RecordingEmitter{}
	s.Router, s.Config = buildE2EApp(t, dbConfig, s.Emitter)

	pool, err := pgxpool.New(context.Background(), dbConfig.BuildDSN())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	s.DB = pool
}

func (s *SharedSuite) SetupSubTest() {
	_, err := s.DB.Exec(s.T().Context(), "TRUNCATE reservations RESTART IDENTITY")
	require.NoError(s.T(), err, "failed to reset database state")
	s.Emitter.Reset()
}
