package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/google/uuid"
)

// MemoryAdminRepository is an in-process AdminRepository. It enforces the
// same unique-email rule as the admins table under a single mutex, so
// concurrent inserts of one email behave as they do against Postgres.
type MemoryAdminRepository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*memoryAdmin
	byEmail map[string]uuid.UUID
	seq     int64
	now     func() time.Time
}

type memoryAdmin struct {
	account domain.AdminAccount
	seq     int64
}

// NewMemoryAdminRepository creates an empty MemoryAdminRepository.
func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{
		byID:    make(map[uuid.UUID]*memoryAdmin),
		byEmail: make(map[string]uuid.UUID),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FindByEmail returns a copy of the admin with email, or nil.
func (r *MemoryAdminRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return r.copyOf(id), nil
}

// FindByID returns a copy of the admin with id, or nil.
func (r *MemoryAdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyOf(id), nil
}

// List returns all admins, newest first.
func (r *MemoryAdminRepository) List(ctx context.Context) ([]domain.AdminAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]*memoryAdmin, 0, len(r.byID))
	for _, row := range r.byID {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	admins := make([]domain.AdminAccount, 0, len(rows))
	for _, row := range rows {
		admins = append(admins, cloneAccount(row.account))
	}
	return admins, nil
}

// Insert adds a new admin, failing with DUPLICATE_EMAIL on a taken email.
func (r *MemoryAdminRepository) Insert(ctx context.Context, admin domain.NewAdmin) (*domain.AdminAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.NormalizeEmail(admin.Email)
	if _, taken := r.byEmail[key]; taken {
		return nil, domain.ErrDuplicateEmail(admin.Email)
	}
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}

	now := r.now()
	hash := admin.PasswordHash
	r.seq++
	r.byID[admin.ID] = &memoryAdmin{
		seq: r.seq,
		account: domain.AdminAccount{
			ID:           admin.ID,
			Email:        admin.Email,
			Name:         admin.Name,
			PasswordHash: &hash,
			Role:         admin.Role,
			IsActive:     admin.IsActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	r.byEmail[key] = admin.ID
	return r.copyOf(admin.ID), nil
}

// UpdateFields applies the non-nil fields of update.
func (r *MemoryAdminRepository) UpdateFields(ctx context.Context, id uuid.UUID, update domain.AdminUpdate) (*domain.AdminAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	a := &row.account
	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Role != nil {
		a.Role = *update.Role
	}
	if update.IsActive != nil {
		a.IsActive = *update.IsActive
	}
	if update.PasswordHash != nil {
		hash := *update.PasswordHash
		a.PasswordHash = &hash
	}
	a.UpdatedAt = r.now()
	return r.copyOf(id), nil
}

// Delete removes the admin with id.
func (r *MemoryAdminRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byEmail, domain.NormalizeEmail(row.account.Email))
	delete(r.byID, id)
	return true, nil
}

// TouchLastLogin sets last_login_at and updated_at.
func (r *MemoryAdminRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.byID[id]; ok {
		t := at
		row.account.LastLoginAt = &t
		row.account.UpdatedAt = at
	}
	return nil
}

// ClearPassword drops the stored credential, leaving a row that can never
// authenticate. No service operation does this; tests and data imports use it.
func (r *MemoryAdminRepository) ClearPassword(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.byID[id]; ok {
		row.account.PasswordHash = nil
	}
}

func (r *MemoryAdminRepository) copyOf(id uuid.UUID) *domain.AdminAccount {
	row, ok := r.byID[id]
	if !ok {
		return nil
	}
	a := cloneAccount(row.account)
	return &a
}

func cloneAccount(a domain.AdminAccount) domain.AdminAccount {
	if a.PasswordHash != nil {
		hash := *a.PasswordHash
		a.PasswordHash = &hash
	}
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		a.LastLoginAt = &t
	}
	return a
}

// MemoryLoginAttemptRepository is an in-process LoginAttemptRepository.
type MemoryLoginAttemptRepository struct {
	mu       sync.Mutex
	attempts []loginAttempt
	now      func() time.Time
}

type loginAttempt struct {
	email   string
	ip      string
	success bool
	at      time.Time
}

// NewMemoryLoginAttemptRepository creates an empty MemoryLoginAttemptRepository.
func NewMemoryLoginAttemptRepository() *MemoryLoginAttemptRepository {
	return &MemoryLoginAttemptRepository{now: time.Now}
}

// Record stores one attempt.
func (r *MemoryLoginAttemptRepository) Record(_ context.Context, email, ip string, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, loginAttempt{email: email, ip: ip, success: success, at: r.now()})
	return nil
}

// CountFailuresSince counts failed attempts for email after since.
func (r *MemoryLoginAttemptRepository) CountFailuresSince(_ context.Context, email string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, a := range r.attempts {
		if a.email == email && !a.success && a.at.After(since) {
			n++
		}
	}
	return n, nil
}
