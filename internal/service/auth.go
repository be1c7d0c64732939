package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/designcode/backoffice/internal/auth"
	"github.com/designcode/backoffice/internal/credential"
	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/guard"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/google/uuid"
)

// AuthService handles admin login.
type AuthService struct {
	admins   repository.AdminRepository
	hasher   credential.Hasher
	jwtMgr   *auth.JWTManager
	lockout  *guard.Lockout
	throttle *guard.RateLimiter
	logger   *slog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. lockout and throttle may be nil.
func NewAuthService(
	admins repository.AdminRepository,
	hasher credential.Hasher,
	jwtMgr *auth.JWTManager,
	lockout *guard.Lockout,
	throttle *guard.RateLimiter,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		admins:   admins,
		hasher:   hasher,
		jwtMgr:   jwtMgr,
		lockout:  lockout,
		throttle: throttle,
		logger:   logger,
		now:      time.Now,
	}
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresIn int64           `json:"expires_in"`
	Admin     domain.Identity `json:"admin"`
}

// fallbackDummyHash is a cost-10 bcrypt hash of a throwaway value, used when
// the hasher cannot produce a dummy of its own.
const fallbackDummyHash = "$2a$10$XajjQvNhvvRt5GSeFk1xFeyqRrsxkhBkUiQeg0dt.wU1qD4aFDcga"

// dummy returns a hash that is compared against when there is no real one,
// so a missing account costs the same bcrypt work as a wrong password.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		seed, err := credential.GeneratePassword(credential.DefaultGeneratedLength)
		if err != nil {
			seed = uuid.NewString()
		}
		hash, err := s.hasher.Hash(seed)
		if err != nil {
			s.logger.Warn("dummy hash unavailable, using fallback", "error", err)
			hash = fallbackDummyHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Authenticate verifies an email/password pair. Every failure returns the
// same INVALID_CREDENTIALS error; the actual reason is only logged.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Debug("login rejected", "reason", "missing_fields")
		return nil, domain.ErrInvalidCredentials()
	}

	account, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("admin lookup failed", "op", "authenticate", "error", err)
		return nil, domain.ErrStorage("authenticate", err)
	}

	if account == nil || !account.HasCredential() {
		s.hasher.Verify(password, s.dummy())
		reason := "unknown_email"
		if account != nil {
			reason = "no_credential"
		}
		s.logger.Debug("login rejected", "reason", reason)
		return nil, domain.ErrInvalidCredentials()
	}

	matches := s.hasher.Verify(password, *account.PasswordHash)
	if !account.IsActive {
		s.logger.Info("login rejected", "reason", "disabled", "admin_id", account.ID)
		return nil, domain.ErrInvalidCredentials()
	}
	if !matches {
		s.logger.Info("login rejected", "reason", "wrong_password", "admin_id", account.ID)
		return nil, domain.ErrInvalidCredentials()
	}

	if err := s.admins.TouchLastLogin(ctx, account.ID, s.now()); err != nil {
		s.logger.Warn("update last login failed", "admin_id", account.ID, "error", err)
	}

	identity := account.Identity()
	return &identity, nil
}

// Login authenticates an admin behind the throttle and lockout guards and
// issues a session token.
func (s *AuthService) Login(ctx context.Context, input LoginInput, ip string) (*LoginResult, error) {
	email := domain.NormalizeEmail(input.Email)

	if s.throttle != nil && email != "" {
		if res := s.throttle.Check(ctx, email); !res.Allowed {
			s.logger.Warn("login throttled", "guard", res.Guard, "ip", ip)
			return nil, domain.ErrAccountLocked("too many login attempts, try again later")
		}
	}
	if s.lockout != nil && email != "" {
		if err := s.lockout.CheckLocked(ctx, email); err != nil {
			s.logger.Warn("login locked out", "ip", ip)
			return nil, err
		}
	}

	identity, err := s.Authenticate(ctx, email, input.Password)
	if err != nil {
		if s.lockout != nil && email != "" && domain.HasCode(err, domain.CodeInvalidCredentials) {
			s.lockout.RecordAttempt(ctx, email, ip, false)
		}
		return nil, err
	}
	if s.lockout != nil {
		s.lockout.RecordAttempt(ctx, email, ip, true)
	}

	token, err := s.jwtMgr.GenerateToken(*identity)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.logger.Info("admin logged in", "admin_id", identity.ID, "ip", ip)
	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtMgr.Expiry().Seconds()),
		Admin:     *identity,
	}, nil
}

// ResolveActor reloads the admin behind a session token. It returns nil when
// the account is gone, disabled or has no credential.
func (s *AuthService) ResolveActor(ctx context.Context, id uuid.UUID) (*domain.Actor, error) {
	account, err := s.admins.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("admin lookup failed", "op", "resolve actor", "admin_id", id, "error", err)
		return nil, domain.ErrStorage("resolve actor", err)
	}
	if account == nil || !account.CanAuthenticate() {
		return nil, nil
	}
	return &domain.Actor{ID: account.ID, Role: account.Role}, nil
}
