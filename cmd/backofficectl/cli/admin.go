package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/service"
	"github.com/spf13/cobra"
)

func newAdminCmd(open Opener, prompt PasswordPrompt, logger func() *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(newAdminCreateCmd(open, prompt, logger))
	cmd.AddCommand(newAdminListCmd(open, logger))
	cmd.AddCommand(newAdminResetPasswordCmd(open, logger))
	return cmd
}

func withRuntime(cmd *cobra.Command, open Opener, logger func() *slog.Logger, fn func(rt *Runtime) error) error {
	rt, err := open(cmd.Context(), logger())
	if err != nil {
		return err
	}
	if rt.Close != nil {
		defer rt.Close()
	}
	return fn(rt)
}

func newAdminCreateCmd(open Opener, prompt PasswordPrompt, logger func() *slog.Logger) *cobra.Command {
	var email, name, role, password string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		Long: `Create an administrator account.

If --password is not given, the password is read from the terminal
twice without echo.`,
		Example: `  backofficectl admin create --email ops@example.com --name "Ops Lead" --role SUPER_ADMIN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if password == "" {
				var err error
				if password, err = promptNewPassword(prompt, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			input := service.CreateAdminInput{Email: email, Name: name, Password: password}
			if role != "" {
				input.Role = &role
			}
			if disabled {
				active := false
				input.IsActive = &active
			}

			return withRuntime(cmd, open, logger, func(rt *Runtime) error {
				admin, err := rt.Admins.Create(cmd.Context(), domain.SystemActor(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Created %s %s (%s, %s)\n", admin.Role, admin.Email, admin.ID, admin.Status())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", "", "SUPER_ADMIN, ADMIN or SUPPORT (default ADMIN)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the account disabled")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

type adminRow struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newAdminListCmd(open Opener, logger func() *slog.Logger) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List administrator accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withRuntime(cmd, open, logger, func(rt *Runtime) error {
				admins, err := rt.Admins.List(cmd.Context(), domain.SystemActor())
				if err != nil {
					return err
				}

				rows := make([]adminRow, 0, len(admins))
				for _, a := range admins {
					rows = append(rows, adminRow{
						ID:          a.ID.String(),
						Email:       a.Email,
						Name:        a.Name,
						Role:        string(a.Role),
						Status:      string(a.Status()),
						LastLoginAt: a.LastLoginAt,
						CreatedAt:   a.CreatedAt,
					})
				}

				if jsonOutput {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(rows)
				}

				if len(rows) == 0 {
					fmt.Fprintln(out, "No administrators.")
					return nil
				}
				fmt.Fprintf(out, "%-36s  %-30s  %-12s  %-14s  %s\n", "ID", "EMAIL", "ROLE", "STATUS", "LAST LOGIN")
				for _, r := range rows {
					last := "never"
					if r.LastLoginAt != nil {
						last = r.LastLoginAt.UTC().Format(time.RFC3339)
					}
					fmt.Fprintf(out, "%-36s  %-30s  %-12s  %-14s  %s\n", r.ID, r.Email, r.Role, r.Status, last)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newAdminResetPasswordCmd(open Opener, logger func() *slog.Logger) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace an admin's password with a generated one",
		Long: `Replace an admin's password with a freshly generated one.

The new password is printed once and is not stored anywhere in plaintext.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withRuntime(cmd, open, logger, func(rt *Runtime) error {
				actor := domain.SystemActor()
				admin, err := rt.Admins.GetByEmail(cmd.Context(), actor, email)
				if err != nil {
					return err
				}
				reset, err := rt.Admins.ResetPassword(cmd.Context(), actor, admin.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "New password for %s: %s\n", reset.Admin.Email, reset.Password)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
