package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/designcode/backoffice/internal/auth"
	"github.com/designcode/backoffice/internal/credential"
	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/guard"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "service-test-secret-that-is-long-enough"

type testEnv struct {
	repo     *repository.MemoryAdminRepository
	attempts *repository.MemoryLoginAttemptRepository
	hasher   *credential.BcryptHasher
	jwtMgr   *auth.JWTManager
	admins   *AdminService
	auth     *AuthService
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, repository.NewMemoryAdminRepository())
}

func newTestEnvWithRepo(t *testing.T, store repository.AdminRepository) *testEnv {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	env := &testEnv{
		attempts: repository.NewMemoryLoginAttemptRepository(),
		hasher:   credential.NewBcryptHasher(bcrypt.MinCost),
		jwtMgr:   auth.NewJWTManager(testJWTSecret, 8*time.Hour),
		logs:     logs,
	}
	switch s := store.(type) {
	case *repository.MemoryAdminRepository:
		env.repo = s
	case *brokenRepo:
		env.repo = s.MemoryAdminRepository
	}
	env.admins = NewAdminService(store, env.hasher, logger)
	env.auth = NewAuthService(store, env.hasher, env.jwtMgr,
		guard.NewLockout(env.attempts, logger),
		guard.NewRateLimiter(100, time.Minute),
		logger)
	return env
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedAdmin inserts an admin directly, bypassing authorization.
func (e *testEnv) seedAdmin(t *testing.T, email, password string, role domain.Role) *domain.AdminAccount {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	a, err := e.repo.Insert(context.Background(), domain.NewAdmin{
		Email:        email,
		Name:         "Seeded " + string(role),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	require.NoError(t, err)
	return a
}

func actorOf(a *domain.AdminAccount) *domain.Actor {
	return &domain.Actor{ID: a.ID, Role: a.Role}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

var errDBDown = errors.New("connection refused")

// brokenRepo fails selected operations on top of the in-memory store.
type brokenRepo struct {
	*repository.MemoryAdminRepository
	failFind   bool
	failWrite  bool
	failList   bool
	failTouch  bool
	touchCalls int
}

func newBrokenRepo() *brokenRepo {
	return &brokenRepo{MemoryAdminRepository: repository.NewMemoryAdminRepository()}
}

func (r *brokenRepo) FindByEmail(ctx context.Context, email string) (*domain.AdminAccount, error) {
	if r.failFind {
		return nil, errDBDown
	}
	return r.MemoryAdminRepository.FindByEmail(ctx, email)
}

func (r *brokenRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	if r.failFind {
		return nil, errDBDown
	}
	return r.MemoryAdminRepository.FindByID(ctx, id)
}

func (r *brokenRepo) List(ctx context.Context) ([]domain.AdminAccount, error) {
	if r.failList {
		return nil, errDBDown
	}
	return r.MemoryAdminRepository.List(ctx)
}

func (r *brokenRepo) Insert(ctx context.Context, admin domain.NewAdmin) (*domain.AdminAccount, error) {
	if r.failWrite {
		return nil, errDBDown
	}
	return r.MemoryAdminRepository.Insert(ctx, admin)
}

func (r *brokenRepo) UpdateFields(ctx context.Context, id uuid.UUID, update domain.AdminUpdate) (*domain.AdminAccount, error) {
	if r.failWrite {
		return nil, errDBDown
	}
	return r.MemoryAdminRepository.UpdateFields(ctx, id, update)
}

func (r *brokenRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if r.failWrite {
		return false, errDBDown
	}
	return r.MemoryAdminRepository.Delete(ctx, id)
}

func (r *brokenRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.touchCalls++
	if r.failTouch {
		return errDBDown
	}
	return r.MemoryAdminRepository.TouchLastLogin(ctx, id, at)
}
