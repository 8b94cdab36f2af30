//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/platform/database"
	"shortlink/migrations"
	"shortlink/pkg/testutil/containers"
)

func TestMigrateIsIdempotent(t *testing.T) {
	pg := containers.Postgres(t)
	ctx := context.Background()

	// The container already applied the schema on start.
	applied, err := database.Migrate(ctx, pg.DB, migrations.FS)
	require.NoError(t, err)
	assert.Empty(t, applied)

	var count int
	require.NoError(t, pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}
