package repository

import (
	"context"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AdminRepository provides access to the admins table.
type AdminRepository interface {
	// FindByEmail returns an admin by normalized email, or nil if absent.
	FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error)

	// FindByID returns an admin by ID, or nil if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error)

	// List returns all admins, newest first.
	List(ctx context.Context) ([]domain.AdminAccount, error)

	// Insert creates a new admin. A taken email yields DUPLICATE_EMAIL; the
	// unique constraint is the only duplicate check.
	Insert(ctx context.Context, admin domain.NewAdmin) (*domain.AdminAccount, error)

	// UpdateFields applies a partial update and refreshes updated_at.
	// Returns nil if the admin does not exist.
	UpdateFields(ctx context.Context, id uuid.UUID, update domain.AdminUpdate) (*domain.AdminAccount, error)

	// Delete removes an admin and reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// TouchLastLogin sets last_login_at and updated_at to at.
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// LoginAttemptRepository provides access to the admin_login_attempts table.
type LoginAttemptRepository interface {
	// Record stores one login attempt keyed by normalized email.
	Record(ctx context.Context, email, ip string, success bool) error

	// CountFailuresSince counts failed attempts for email after since.
	CountFailuresSince(ctx context.Context, email string, since time.Time) (int, error)
}
