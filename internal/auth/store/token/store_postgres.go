package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

// PostgresStore persists rotating bearer tokens in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed token store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Replace rotates the token for the record's identity inside one
// transaction: delete the prior row, insert the new one. Concurrent calls
// for the same identity serialize on the row lock; last writer wins with
// exactly one surviving row.
func (s *PostgresStore) Replace(ctx context.Context, rec *models.TokenRecord) error {
	if rec == nil {
		return fmt.Errorf("token record is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin token replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE object_id = $1 AND object_type = $2`,
		rec.ObjectID, string(rec.ObjectType),
	)
	if err != nil {
		return fmt.Errorf("delete prior token: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_tokens (object_id, object_type, token, app_name, date_expiry)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ObjectID, string(rec.ObjectType), rec.Token, rec.AppName, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit token replace: %w", err)
	}
	return nil
}

// FindValid returns the record for a token whose expiry is after now.
func (s *PostgresStore) FindValid(ctx context.Context, token string, now time.Time) (*models.TokenRecord, error) {
	query := `
		SELECT object_id, object_type, token, app_name, date_expiry, date_last_usage
		FROM user_tokens
		WHERE token = $1 AND date_expiry > $2
	`
	var rec models.TokenRecord
	var objectType string
	var lastUsed sql.NullTime
	err := s.db.QueryRowContext(ctx, query, token, now).Scan(
		&rec.ObjectID, &objectType, &rec.Token, &rec.AppName, &rec.ExpiresAt, &lastUsed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	rec.ObjectType = models.PrincipalKind(objectType)
	if lastUsed.Valid {
		rec.LastUsedAt = &lastUsed.Time
	}
	return &rec, nil
}

// TouchLastUsage stamps the token's last usage time.
func (s *PostgresStore) TouchLastUsage(ctx context.Context, token string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_tokens SET date_last_usage = $2 WHERE token = $1`, token, now)
	if err != nil {
		return fmt.Errorf("touch token last usage: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch token last usage rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes all tokens expired as of the given time.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE date_expiry < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens rows: %w", err)
	}
	return int(rows), nil
}
