package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const adminColumns = `id, email, name, password_hash, role, is_active, last_login_at, created_at, updated_at`

// PgAdminRepository implements AdminRepository using pgx.
type PgAdminRepository struct {
	db DBTX
}

// NewPgAdminRepository creates a new PgAdminRepository.
func NewPgAdminRepository(db DBTX) *PgAdminRepository {
	return &PgAdminRepository{db: db}
}

func scanAdmin(row pgx.Row) (*domain.AdminAccount, error) {
	a := &domain.AdminAccount{}
	var role string
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &a.IsActive,
		&a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	return a, nil
}

// FindByEmail returns an admin by email, or nil if not found.
func (r *PgAdminRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	a, err := scanAdmin(r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return a, nil
}

// FindByID returns an admin by ID, or nil if not found.
func (r *PgAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	a, err := scanAdmin(r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return a, nil
}

// List returns all admins ordered by created_at DESC.
func (r *PgAdminRepository) List(ctx context.Context) ([]domain.AdminAccount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC, email`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := []domain.AdminAccount{}
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

// Insert creates a new admin row and returns it.
func (r *PgAdminRepository) Insert(ctx context.Context, admin domain.NewAdmin) (*domain.AdminAccount, error) {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	a, err := scanAdmin(r.db.QueryRow(ctx, `
		INSERT INTO admins (id, email, name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+adminColumns,
		admin.ID, admin.Email, admin.Name, admin.PasswordHash, string(admin.Role), admin.IsActive))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail(admin.Email)
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	return a, nil
}

// UpdateFields builds a SET clause from the non-nil fields of update.
func (r *PgAdminRepository) UpdateFields(ctx context.Context, id uuid.UUID, update domain.AdminUpdate) (*domain.AdminAccount, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Role != nil {
		add("role", string(*update.Role))
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}

	a, err := scanAdmin(r.db.QueryRow(ctx,
		`UPDATE admins SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+adminColumns,
		args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update admin: %w", err)
	}
	return a, nil
}

// Delete removes the admin row.
func (r *PgAdminRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete admin: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TouchLastLogin records a successful login.
func (r *PgAdminRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admins SET last_login_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
