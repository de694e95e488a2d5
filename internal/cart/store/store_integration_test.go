package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"

// CartStoreSuite exercises the durable cart store against a real PostgreSQL.
type CartStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       *PgStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the migrations.
func (s *CartStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "storefront_db"
	dbUser := "user"
	dbPassword := "password"

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../../migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for E2E tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for CartStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *CartStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates both cart tables before each test.
func (s *CartStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE cart_records, cart_lines")
	require.NoError(s.T(), err, "Failed to truncate cart tables")
}

func (s *CartStoreSuite) TestWriteBothThenReadBack() {
	userID := "user-1"
	state := cart.State{
		{ProductID: "detox-60", Quantity: 2},
		{ProductID: "growth-100", Quantity: 1},
	}

	err := s.store.WriteBoth(s.ctx, userID, state)
	require.NoError(s.T(), err)

	namespaced, err := s.store.ReadNamespaced(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), state, namespaced)

	legacy, err := s.store.ReadLegacy(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), state, legacy, "legacy projection preserves line order")
}

func (s *CartStoreSuite) TestReadMissReturnsNoCartRecord() {
	_, err := s.store.ReadNamespaced(s.ctx, "nobody")
	assert.True(s.T(), errors.Is(err, sferrors.ErrNoCartRecord))

	_, err = s.store.ReadLegacy(s.ctx, "nobody")
	assert.True(s.T(), errors.Is(err, sferrors.ErrNoCartRecord))
}

func (s *CartStoreSuite) TestRewriteReplacesPreviousLines() {
	userID := "user-1"
	require.NoError(s.T(), s.store.WriteBoth(s.ctx, userID, cart.State{
		{ProductID: "detox-60", Quantity: 2},
		{ProductID: "growth-100", Quantity: 1},
	}))

	replacement := cart.State{{ProductID: "repair-75", Quantity: 5}}
	require.NoError(s.T(), s.store.WriteBoth(s.ctx, userID, replacement))

	namespaced, err := s.store.ReadNamespaced(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), replacement, namespaced)

	legacy, err := s.store.ReadLegacy(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), replacement, legacy, "stale lines are deleted, not merged")
}

func (s *CartStoreSuite) TestEmptyStateWritesAreReadable() {
	userID := "user-1"
	require.NoError(s.T(), s.store.WriteBoth(s.ctx, userID, cart.State{
		{ProductID: "detox-60", Quantity: 2},
	}))
	require.NoError(s.T(), s.store.WriteBoth(s.ctx, userID, cart.State{}))

	namespaced, err := s.store.ReadNamespaced(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), namespaced, "an emptied cart reads back empty, not as a miss")
}

func (s *CartStoreSuite) TestUsersAreIsolated() {
	require.NoError(s.T(), s.store.WriteBoth(s.ctx, "user-1", cart.State{{ProductID: "detox-60", Quantity: 1}}))
	require.NoError(s.T(), s.store.WriteBoth(s.ctx, "user-2", cart.State{{ProductID: "growth-100", Quantity: 3}}))

	first, err := s.store.ReadNamespaced(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), cart.State{{ProductID: "detox-60", Quantity: 1}}, first)

	second, err := s.store.ReadLegacy(s.ctx, "user-2")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), cart.State{{ProductID: "growth-100", Quantity: 3}}, second)
}

// TestCartStoreIntegration runs the cart store integration tests.
func TestCartStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(CartStoreSuite))
}
