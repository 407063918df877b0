package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/ui"
)

func (r *runner) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or print the configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to config.toml",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := r.cfgFile
			if path == "" {
				path = r.cfg.Path()
			}
			if err := r.cfg.WriteFile(path, force); err != nil {
				return err
			}
			ui.OK(r.opt.Stdout, "wrote "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as TOML",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := r.cfg.Encode()
			if err != nil {
				return err
			}
			if r.cfg.ConfigFile != "" {
				fmt.Fprintf(r.opt.Stdout, "# loaded from %s\n", r.cfg.ConfigFile)
			}
			_, err = r.opt.Stdout.Write(b)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
