package cli

import (
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/tui"
	"github.com/idilsaglam/todo/internal/ui"
)

func (r *runner) dashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive dashboard",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !r.opt.Interactive {
				return usagef("dash needs an interactive terminal")
			}
			logger, closeLog, err := r.fileLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			a, err := app.Open(cmd.Context(), r.cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			username, err := r.ensureLogin(cmd, a)
			if err != nil {
				return err
			}

			res, err := tui.Run(tui.Options{
				Store:         a.Store,
				Sync:          a.Bridge,
				Logout:        a.Logout,
				Username:      username,
				DeleteDelay:   r.cfg.UI.DeleteDelay,
				ToastDuration: r.cfg.UI.ToastDuration,
			})
			if err != nil {
				return err
			}
			if res.LoggedOut {
				ui.OK(r.opt.Stdout, "logged out")
			}
			return nil
		},
	}
}
