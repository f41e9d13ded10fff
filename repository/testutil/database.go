package testutil

import (
	"context"
	"testing"
	"time"

	"tipster/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const postgresImage = "postgres:16-alpine"

// TestDatabase is a migrated PostgreSQL instance owned by a single test
type TestDatabase struct {
	DB  *database.DB
	URL string
}

// SetupTestDatabase starts a throwaway PostgreSQL container with the tipster schema applied.
// The pool and the container are released when the test ends.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("container-backed repository tests are skipped with -short")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("tipster_test"),
		postgres.WithUsername("tipster"),
		postgres.WithPassword("tipster"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"tipster.test": t.Name()}),
	)
	require.NoError(t, err, "postgres container did not start")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("could not terminate postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(url), "migrations failed")

	db, err := database.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return &TestDatabase{DB: db, URL: url}
}
