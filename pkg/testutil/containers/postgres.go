//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"shortlink/internal/platform/database"
	"shortlink/migrations"
)

// PostgresContainer wraps a testcontainers Postgres instance with the
// shortlink schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("shortlink_test"),
		postgres.WithUsername("shortlink"),
		postgres.WithPassword("shortlink_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	pc := &PostgresContainer{Container: container, DSN: dsn, DB: db}
	if err := pc.migrate(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Shared per test binary; Ryuk removes the container when the test binary exits.
	return pc
}

func (p *PostgresContainer) migrate(ctx context.Context) error {
	_, err := database.Migrate(ctx, p.DB, migrations.FS)
	return err
}

// Reset empties the links and users tables between tests.
func (p *PostgresContainer) Reset(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join([]string{"links", "users"}, ", ")+" CASCADE")
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// InsertUser adds a user row with a placeholder hash and fails the test on error.
func (p *PostgresContainer) InsertUser(ctx context.Context, t testing.TB, username string) {
	t.Helper()
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, '$2a$10$placeholderplaceholderplaceholderplaceholderpla', NOW())
	`, username)
	if err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
}
