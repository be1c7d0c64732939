// Package cli implements backofficectl, the operator tool for bootstrapping
// and recovering administrator accounts.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/designcode/backoffice/internal/credential"
	"github.com/designcode/backoffice/internal/infra"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/designcode/backoffice/internal/service"
	"github.com/spf13/cobra"
)

// Runtime is what the admin subcommands operate on.
type Runtime struct {
	Admins *service.AdminService
	Close  func()
}

// Opener builds a Runtime.
type Opener func(ctx context.Context, logger *slog.Logger) (*Runtime, error)

// Execute builds the command tree against the configured database and runs it.
func Execute() error {
	return NewRootCmd(openPostgres, newTerminalPrompt(os.Stdin)).Execute()
}

// NewRootCmd assembles the command tree.
func NewRootCmd(open Opener, prompt PasswordPrompt) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "backofficectl",
		Short: "Operate the back-office admin store",
		Long: `backofficectl manages administrator accounts directly against the database.

It acts as the bootstrap super admin: it can create the first account,
list accounts and recover access with a one-time generated password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level to stderr")

	logger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	cmd.AddCommand(newAdminCmd(open, prompt, logger))
	cmd.AddCommand(newMigrateCmd(logger))

	return cmd
}

func openPostgres(ctx context.Context, logger *slog.Logger) (*Runtime, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	repo := repository.NewPgAdminRepository(pool)
	return &Runtime{
		Admins: service.NewAdminService(repo, credential.NewBcryptHasher(cfg.BcryptCost), logger),
		Close:  pool.Close,
	}, nil
}
