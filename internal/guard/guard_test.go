package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "test-key")
	rl.Check(ctx, "test-key")
	result := rl.Check(ctx, "test-key")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "k").Allowed)
	assert.False(t, rl.Check(ctx, "k").Allowed)

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Check(ctx, "k").Allowed)
}

func TestRateLimiter_ForgetsQuietKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		require.True(t, rl.Check(ctx, fmt.Sprintf("user%d@x.com", i)).Allowed)
	}
	assert.False(t, rl.Check(ctx, "user0@x.com").Allowed)

	// Two windows later the counter has rotated past every stored key.
	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Check(ctx, "fresh@x.com").Allowed)

	current := now.Truncate(time.Minute)
	for _, key := range []string{"user0@x.com", "user9999@x.com"} {
		curr, prev, err := rl.counter.Get(key, current, current.Add(-time.Minute))
		require.NoError(t, err)
		assert.Zero(t, curr, key)
		assert.Zero(t, prev, key)
	}
	assert.True(t, rl.Check(ctx, "user0@x.com").Allowed)
}

func TestRateLimiter_PreviousWindowStillCounts(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 50, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	assert.True(t, rl.Check(ctx, "k").Allowed)
	assert.True(t, rl.Check(ctx, "k").Allowed)

	// Just past the boundary the previous window still weighs 2*55/60.
	now = time.Date(2026, 1, 1, 12, 1, 5, 0, time.UTC)
	assert.True(t, rl.Check(ctx, "k").Allowed)
	assert.False(t, rl.Check(ctx, "k").Allowed)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLockout_LocksAfterMaxFailures(t *testing.T) {
	attempts := repository.NewMemoryLoginAttemptRepository()
	l := NewLockout(attempts, discardLogger())
	ctx := context.Background()

	for i := 0; i < MaxAttempts-1; i++ {
		l.RecordAttempt(ctx, "a@x.com", "10.0.0.1", false)
	}
	require.NoError(t, l.CheckLocked(ctx, "a@x.com"))

	l.RecordAttempt(ctx, "a@x.com", "10.0.0.1", false)
	err := l.CheckLocked(ctx, "a@x.com")
	assert.True(t, domain.HasCode(err, domain.CodeAccountLocked))

	assert.NoError(t, l.CheckLocked(ctx, "b@x.com"))
}

func TestLockout_SuccessesDoNotCount(t *testing.T) {
	l := NewLockout(repository.NewMemoryLoginAttemptRepository(), discardLogger())
	ctx := context.Background()

	for i := 0; i < MaxAttempts*2; i++ {
		l.RecordAttempt(ctx, "a@x.com", "", true)
	}
	assert.NoError(t, l.CheckLocked(ctx, "a@x.com"))
}

func TestLockout_WindowExpires(t *testing.T) {
	l := NewLockout(repository.NewMemoryLoginAttemptRepository(), discardLogger())
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		l.RecordAttempt(ctx, "a@x.com", "", false)
	}
	require.Error(t, l.CheckLocked(ctx, "a@x.com"))

	l.now = func() time.Time { return time.Now().Add(LockoutWindow + time.Minute) }
	assert.NoError(t, l.CheckLocked(ctx, "a@x.com"))
}

type failingAttempts struct{}

func (failingAttempts) Record(context.Context, string, string, bool) error {
	return errors.New("db down")
}

func (failingAttempts) CountFailuresSince(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("db down")
}

func TestLockout_FailsOpen(t *testing.T) {
	l := NewLockout(failingAttempts{}, discardLogger())
	ctx := context.Background()

	l.RecordAttempt(ctx, "a@x.com", "", false)
	assert.NoError(t, l.CheckLocked(ctx, "a@x.com"))
}
