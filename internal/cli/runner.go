// Package cli is the `todo` command line: cobra subcommands over the app.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	"github.com/idilsaglam/todo/internal/config"
	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/ui"
)

// Options wires the runner to its environment.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// Interactive allows forms, confirmations and the dashboard.
	Interactive bool
}

// usageError marks a mistake in how the command was invoked (exit 2).
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// errHelpShown ends a bare `todo` after the help text was printed.
var errHelpShown = errors.New("help shown")

type runner struct {
	opt     Options
	cfgFile string
	cfg     *config.Config
	logOpts logging.Options
	logger  *log.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	r := &runner{opt: opt, logger: logging.Discard()}
	root := r.rootCmd()
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.report(root.ExecuteContext(ctx))
}

func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "todo - a tiny todo list",
		Long: `todo - a tiny todo list

Log in once, then add, edit, toggle and remove items. Indexes are 1-based,
as shown by 'todo ls'. Run 'todo dash' for the interactive dashboard.`,
		Example: `  todo login --username ada --password secret
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(r.opt.Stderr)
			_ = cmd.Help()
			return errHelpShown
		},
	}
	root.SetOut(r.opt.Stdout)
	root.SetErr(r.opt.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&r.cfgFile, "config", "", "config file (default <dir>/config.toml)")
	pf.String("backend", "", "storage backend: file, sqlite or memory")
	pf.String("dir", "", "profile directory (default ~/.todo)")
	pf.String("theme", "", "color theme: "+strings.Join(ui.Themes, ", "))
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("group", false, "group output by pending/done")

	root.AddCommand(
		r.loginCmd(),
		r.logoutCmd(),
		r.whoamiCmd(),
		r.addCmd(),
		r.editCmd(),
		r.doneCmd(),
		r.rmCmd(),
		r.lsCmd(),
		r.dashCmd(),
		r.configCmd(),
	)
	return root
}

// setup resolves configuration once flags are parsed.
func (r *runner) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(r.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	r.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	r.logOpts = logging.DefaultOptions()
	r.logOpts.Level = cfg.Log.Level
	r.logOpts.Format = cfg.Log.Format
	r.logger = logging.New(r.opt.Stderr, r.logOpts)
	r.logger.Debug("config loaded", "file", cfg.ConfigFile, "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)
	return nil
}

// open builds the app for a command. Callers close it.
func (r *runner) open(ctx context.Context) (*app.App, error) {
	return app.Open(ctx, r.cfg, r.logger)
}

// DashLogName is the file the dashboard logs to while it owns the screen.
const DashLogName = "dash.log"

// fileLogger appends to <dir>/dash.log. The returned func closes the file.
func (r *runner) fileLogger() (*log.Logger, func(), error) {
	if err := os.MkdirAll(r.cfg.Storage.Dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("mkdir: %w", err)
	}
	path := filepath.Join(r.cfg.Storage.Dir, DashLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	opts := r.logOpts
	opts.ReportTimestamp = true
	return logging.New(f, opts), func() { _ = f.Close() }, nil
}

// withSession opens the app and fails with NotLoggedIn when nobody is logged in.
func (r *runner) withSession(ctx context.Context, fn func(a *app.App, username string) error) error {
	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	username, err := a.Session.Require(ctx)
	if err != nil {
		return err
	}
	return fn(a, username)
}

// args wraps a cobra positional validator so its failures exit with 2.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return &usageError{err: fmt.Errorf("%w\nusage: %s", err, cmd.UseLine())}
		}
		return nil
	}
}

// report prints err and maps it to an exit code.
func (r *runner) report(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, errHelpShown) {
		return 2
	}

	w := r.opt.Stderr
	var ue *usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		ui.Fail(w, err.Error())
		ui.Hint(w, "Run `todo --help` for usage.")
		return 2
	}

	ui.Fail(w, apperr.CommandMessage(err))
	r.logger.Debug("command failed", "err", err)
	switch {
	case apperr.IsKind(err, apperr.KindIndexOutOfRange):
		ui.Hint(w, "Hint: run `todo ls` to see valid indexes")
	case apperr.IsKind(err, apperr.KindPersistenceUnavailable):
		ui.Hint(w, err.Error())
	}
	if apperr.IsCallerError(err) {
		return 2
	}
	return 1
}
