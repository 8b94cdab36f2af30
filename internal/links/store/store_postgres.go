package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"shortlink/internal/links/models"
	"shortlink/pkg/platform/sentinel"
)

// PostgresStore persists links in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const linkColumns = `id, image_path, url_mobile, url_desktop, username, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, link *models.Link) error {
	if link == nil {
		return fmt.Errorf("link is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO links (`+linkColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		link.ID,
		link.ImagePath,
		link.URLMobile,
		nullString(link.URLDesktop),
		link.Username,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("link %q: %w", link.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Link, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, id)
	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find link: %w", err)
	}
	return link, nil
}

func (s *PostgresStore) ListByUsername(ctx context.Context, username string) ([]*models.Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+linkColumns+`
		FROM links
		WHERE username = $1
		ORDER BY created_at DESC, id
	`, username)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete link rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*models.Link, error) {
	var (
		link    models.Link
		desktop sql.NullString
	)
	if err := row.Scan(
		&link.ID,
		&link.ImagePath,
		&link.URLMobile,
		&desktop,
		&link.Username,
		&link.CreatedAt,
		&link.UpdatedAt,
	); err != nil {
		return nil, err
	}
	link.URLDesktop = desktop.String
	return &link, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
