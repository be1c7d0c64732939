//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every table the service writes to.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range []string{"admin_login_attempts", "admins"} {
		if _, err := env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			env.t.Fatalf("CleanAll: truncate %s: %v", table, err)
		}
	}
}
