package repository

import (
	"context"
	"fmt"
	"time"
)

// PgLoginAttemptRepository implements LoginAttemptRepository using pgx.
type PgLoginAttemptRepository struct {
	db DBTX
}

// NewPgLoginAttemptRepository creates a new PgLoginAttemptRepository.
func NewPgLoginAttemptRepository(db DBTX) *PgLoginAttemptRepository {
	return &PgLoginAttemptRepository{db: db}
}

// Record inserts a login attempt row.
func (r *PgLoginAttemptRepository) Record(ctx context.Context, email, ip string, success bool) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_login_attempts (email, ip_address, success)
		VALUES ($1, $2, $3)`,
		email, ip, success)
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// CountFailuresSince counts failed attempts for email created after since.
func (r *PgLoginAttemptRepository) CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE email = $1 AND success = false AND created_at > $2`,
		email, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count login failures: %w", err)
	}
	return count, nil
}
