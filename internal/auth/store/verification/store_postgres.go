package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// PostgresStore persists two-factor pins in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create stores a new pin after removing prior pins for the same email and
// reason, so only the latest issued pin can verify.
func (s *PostgresStore) Create(ctx context.Context, pin *models.VerificationPin) error {
	if pin == nil {
		return fmt.Errorf("verification pin is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pin create tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_verifications WHERE email = $1 AND reason = $2`,
		pin.Email, pin.Reason,
	)
	if err != nil {
		return fmt.Errorf("delete prior pins: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_verifications (email, pin, reason, date_created)
		VALUES ($1, $2, $3, $4)
	`, pin.Email, pin.Pin, pin.Reason, pin.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pin create: %w", err)
	}
	return nil
}

// Find returns the pin matching email, pin value and reason.
func (s *PostgresStore) Find(ctx context.Context, email, pin, reason string) (*models.VerificationPin, error) {
	query := `
		SELECT email, pin, reason, date_created
		FROM user_verifications
		WHERE email = $1 AND pin = $2 AND reason = $3
	`
	var rec models.VerificationPin
	err := s.db.QueryRowContext(ctx, query, email, pin, reason).Scan(
		&rec.Email, &rec.Pin, &rec.Reason, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification pin not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find pin: %w", err)
	}
	return &rec, nil
}

// Delete consumes a pin. Missing rows are not an error; consumption is
// best effort.
func (s *PostgresStore) Delete(ctx context.Context, email, pin, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_verifications WHERE email = $1 AND pin = $2 AND reason = $3`,
		email, pin, reason,
	)
	if err != nil {
		return fmt.Errorf("delete pin: %w", err)
	}
	return nil
}

// DeleteStale removes pins created before the cutoff.
func (s *PostgresStore) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_verifications WHERE date_created < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale pins: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete stale pins rows: %w", err)
	}
	return int(rows), nil
}
