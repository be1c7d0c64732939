package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/repository"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout blocks logins for an email after repeated failures.
type Lockout struct {
	attempts repository.LoginAttemptRepository
	logger   *slog.Logger
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewLockout creates a lockout guard using MaxAttempts and LockoutWindow.
func NewLockout(attempts repository.LoginAttemptRepository, logger *slog.Logger) *Lockout {
	return &Lockout{
		attempts: attempts,
		logger:   logger,
		max:      MaxAttempts,
		window:   LockoutWindow,
		now:      time.Now,
	}
}

// RecordAttempt stores a login attempt. Failures are logged and dropped.
func (l *Lockout) RecordAttempt(ctx context.Context, email, ip string, success bool) {
	if err := l.attempts.Record(ctx, email, ip, success); err != nil {
		l.logger.Warn("record login attempt failed", "error", err)
	}
}

// CheckLocked returns ErrAccountLocked if the email has >= MaxAttempts failed
// logins within the lockout window.
func (l *Lockout) CheckLocked(ctx context.Context, email string) error {
	count, err := l.attempts.CountFailuresSince(ctx, email, l.now().Add(-l.window))
	if err != nil {
		// fail open on DB error, don't block login
		l.logger.Warn("lockout check failed", "error", err)
		return nil
	}
	if count >= l.max {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}
