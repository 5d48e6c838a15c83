package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// PostgresStore persists guest accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed guest store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const guestColumns = `id, password, first_name, last_name, image_name, created_by_id, date_last_login`

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	g, err := scanGuest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find guest by id: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE password = $1`
	g, err := scanGuest(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find guest by code: %w", err)
	}
	return g, nil
}

// ProfileByID loads a guest together with the administrator who created the
// account, used to route the login notification.
func (s *PostgresStore) ProfileByID(ctx context.Context, id int64) (*models.GuestProfile, error) {
	query := `
		SELECT g.id, g.password, g.first_name, g.last_name, g.image_name, g.created_by_id, g.date_last_login,
		       u.email, u.first_name || ' ' || u.last_name
		FROM guests g
		LEFT JOIN users u ON u.id = g.created_by_id
		WHERE g.id = $1
	`
	var p models.GuestProfile
	var lastLogin sql.NullTime
	var createdBy sql.NullInt64
	var adminEmail, adminName sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Code, &p.FirstName, &p.LastName, &p.ImageName, &createdBy, &lastLogin,
		&adminEmail, &adminName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find guest profile: %w", err)
	}
	if lastLogin.Valid {
		p.LastLoginAt = &lastLogin.Time
	}
	p.CreatedByID = createdBy.Int64
	p.AdminEmail = adminEmail.String
	p.AdminName = adminName.String
	return &p, nil
}

func (s *PostgresStore) TouchLastLogin(ctx context.Context, id int64, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE guests SET date_last_login = $2 WHERE id = $1`, id, now)
	if err != nil {
		return fmt.Errorf("touch guest last login: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch guest last login rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("guest not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type guestRow interface {
	Scan(dest ...any) error
}

func scanGuest(row guestRow) (*models.Guest, error) {
	var g models.Guest
	var lastLogin sql.NullTime
	var createdBy sql.NullInt64
	if err := row.Scan(&g.ID, &g.Code, &g.FirstName, &g.LastName, &g.ImageName, &createdBy, &lastLogin); err != nil {
		return nil, err
	}
	g.CreatedByID = createdBy.Int64
	if lastLogin.Valid {
		g.LastLoginAt = &lastLogin.Time
	}
	return &g, nil
}
