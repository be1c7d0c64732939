package cli

import (
	"log/slog"

	"github.com/designcode/backoffice/internal/infra"
	"github.com/spf13/cobra"
)

func newMigrateCmd(logger func() *slog.Logger) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (default: MIGRATIONS_DIR or ./db/migrations)")

	resolve := func() (string, string, error) {
		cfg, err := infra.LoadConfig()
		if err != nil {
			return "", "", err
		}
		d := dir
		if d == "" {
			d = cfg.MigrationsDir
		}
		return cfg.DSN(), d, nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, d, err := resolve()
			if err != nil {
				return err
			}
			return infra.RunMigrations(dsn, d, logger())
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, d, err := resolve()
			if err != nil {
				return err
			}
			return infra.RollbackMigrations(dsn, d, steps, logger())
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 = all)")

	cmd.AddCommand(up, down)
	return cmd
}

