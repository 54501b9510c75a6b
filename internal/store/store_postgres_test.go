package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaoforge/dev-engine/internal/config"
	"github.com/gaoforge/dev-engine/internal/models"
)

// TestOpen_Postgres_AppliesMigrationsAndRoundTrips spins up a real
// PostgreSQL container, points Open at it, and confirms the postgres
// migration source under internal/store/migrations/postgres applies
// cleanly and a feature row round-trips through the resulting schema.
// Skipped unless Docker is reachable, same as the teacher's own
// container-backed suites.
func TestOpen_Postgres_AppliesMigrationsAndRoundTrips(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}

	ctx := context.Background()

	container, err := postgresContainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgresContainer.WithDatabase("devengine_test"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{Store: config.StoreConfig{
		Driver:        "postgres",
		Host:          host,
		Port:          port.Port(),
		User:          "testuser",
		Password:      "testpass",
		DBName:        "devengine_test",
		SSLMode:       "disable",
		MigrationsDir: "migrations",
	}}

	st, err := Open(cfg)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	repo := NewFeatureRepository(st.DB())
	feature := &models.Feature{
		Name:       "search",
		Scope:      models.FeatureScopeFeature,
		ScaleLevel: models.ScaleLevelSmall,
	}
	require.NoError(t, repo.Create(feature))

	fetched, err := repo.GetByName("search")
	require.NoError(t, err)
	require.Equal(t, feature.Name, fetched.Name)

	// A second Migrate call must be a no-op, not an error.
	require.NoError(t, st.Migrate(cfg.Store))
}
