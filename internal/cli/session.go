package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/session"
	"github.com/idilsaglam/todo/internal/tui"
	"github.com/idilsaglam/todo/internal/ui"
)

func (r *runner) loginCmd() *cobra.Command {
	var creds session.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in (any username and password are accepted)",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if creds.Username == "" && creds.Password == "" && r.opt.Interactive {
				entered, err := tui.RunLogin()
				if err != nil {
					return err
				}
				creds = entered
			}

			a, err := r.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return r.login(cmd, a, creds)
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password")
	return cmd
}

func (r *runner) login(cmd *cobra.Command, a *app.App, creds session.Credentials) error {
	name, err := a.Session.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}
	r.logger.Info("logged in", "username", name)
	ui.OK(r.opt.Stdout, "logged in as "+name)
	return nil
}

func (r *runner) logoutCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the saved list",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := r.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			name, ok, err := a.Session.Current(ctx)
			if err != nil {
				return err
			}
			if !ok {
				ui.Hint(r.opt.Stdout, "not logged in")
				return nil
			}
			if !yes {
				if !r.opt.Interactive {
					return usagef("logout removes your saved todos; pass --yes to confirm")
				}
				confirmed, err := tui.ConfirmLogout(name)
				if err != nil {
					return err
				}
				if !confirmed {
					ui.Hint(r.opt.Stdout, "still logged in as "+name)
					return nil
				}
			}
			if err := a.Logout(ctx); err != nil {
				return err
			}
			ui.OK(r.opt.Stdout, "logged out")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func (r *runner) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in username",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withSession(cmd.Context(), func(_ *app.App, username string) error {
				fmt.Fprintln(r.opt.Stdout, username)
				return nil
			})
		},
	}
}

// ensureLogin returns the session user, showing the login form when allowed.
func (r *runner) ensureLogin(cmd *cobra.Command, a *app.App) (string, error) {
	ctx := cmd.Context()
	name, ok, err := a.Session.Current(ctx)
	if err != nil || ok {
		return name, err
	}
	if !r.opt.Interactive {
		_, err := a.Session.Require(ctx)
		return "", err
	}
	creds, err := tui.RunLogin()
	if err != nil {
		return "", err
	}
	return a.Session.Login(ctx, creds)
}
