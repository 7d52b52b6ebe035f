package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eval-flow/internal/database"
	"eval-flow/migrations"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/modules/vault"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

// TestContainers holds references to test containers
type TestContainers struct {
	PostgresContainer *postgres.PostgresContainer
	VaultContainer    *vault.VaultContainer
	RedisContainer    *redis.RedisContainer
	DB                *sql.DB
	DBConnString      string
	VaultToken        string
	VaultAddr         string
	RedisAddr         string
}

// SetupTestContainers starts a migrated PostgreSQL container
func SetupTestContainers(t *testing.T) *TestContainers {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:18",
		postgres.WithDatabase("evalflow_test"),
		postgres.WithUsername("evalflow_test"),
		postgres.WithPassword("evalflow_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	tc := &TestContainers{PostgresContainer: postgresContainer}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to get connection string: %v", err)
	}
	tc.DBConnString = connStr

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to connect to database: %v", err)
	}
	tc.DB = db

	if err := db.PingContext(ctx); err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := database.NewMigrationExecutor(db).RunMigrations(ctx, migrations.FS); err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return tc
}

// WithVault starts a dev-mode Vault container next to the database
func (tc *TestContainers) WithVault(t *testing.T) *TestContainers {
	t.Helper()
	ctx := context.Background()

	vaultContainer, err := vault.Run(ctx,
		"hashicorp/vault:1.15",
		vault.WithToken("test-token"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Vault server started!").
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start Vault container: %v", err)
	}
	tc.VaultContainer = vaultContainer

	vaultAddr, err := vaultContainer.HttpHostAddress(ctx)
	if err != nil {
		t.Fatalf("Failed to get Vault address: %v", err)
	}
	tc.VaultAddr = vaultAddr
	tc.VaultToken = "test-token"
	return tc
}

// SetupRedis starts a standalone Redis container
func SetupRedis(t *testing.T) *TestContainers {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	return &TestContainers{RedisContainer: redisContainer, RedisAddr: endpoint}
}

// Cleanup terminates all test containers
func (tc *TestContainers) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tc.DB != nil {
		tc.DB.Close()
	}

	terminate := func(name string, c testcontainers.Container) {
		if err := c.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate %s container: %v", name, err)
		}
	}
	if tc.PostgresContainer != nil {
		terminate("PostgreSQL", tc.PostgresContainer)
	}
	if tc.VaultContainer != nil {
		terminate("Vault", tc.VaultContainer)
	}
	if tc.RedisContainer != nil {
		terminate("Redis", tc.RedisContainer)
	}
}
