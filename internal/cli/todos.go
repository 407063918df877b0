package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todo/internal/app"
	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/ui"
)

// parseIndex turns a 1-based CLI index into a store index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usagef("not a number: %s", arg)
	}
	return n - 1, nil
}

// userIndex rewrites a store range error in the 1-based terms the user typed.
func userIndex(err error, idx, length int) error {
	if !apperr.IsKind(err, apperr.KindIndexOutOfRange) {
		return err
	}
	return &apperr.AppError{
		Kind:    apperr.KindIndexOutOfRange,
		Message: fmt.Sprintf("index out of range: have %d, got %d", length, idx+1),
		Cause:   err,
	}
}

// saved surfaces a failed write: the CLI exits right after, so an unsaved
// mutation would be lost.
func saved(a *app.App) error {
	return a.Bridge.LastError()
}

func (r *runner) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a new item (text can be multiple words)",
		Args:  args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			text := strings.Join(a, " ")
			return r.withSession(cmd.Context(), func(ap *app.App, _ string) error {
				list, err := ap.Store.Add(model.Item{Text: text})
				if err != nil {
					return err
				}
				if err := saved(ap); err != nil {
					return err
				}
				ui.OK(r.opt.Stdout, fmt.Sprintf("added #%d", len(list)))
				return nil
			})
		},
	}
}

func (r *runner) editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <text...>",
		Short: "Replace the text of the item at a 1-based index",
		Args:  args(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			idx, err := parseIndex(a[0])
			if err != nil {
				return err
			}
			text := strings.Join(a[1:], " ")
			return r.withSession(cmd.Context(), func(ap *app.App, _ string) error {
				if _, err := ap.Store.Edit(idx, text); err != nil {
					return userIndex(err, idx, ap.Store.Len())
				}
				if err := saved(ap); err != nil {
					return err
				}
				ui.OK(r.opt.Stdout, fmt.Sprintf("updated #%d", idx+1))
				return nil
			})
		},
	}
}

func (r *runner) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle done for the item at a 1-based index",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			idx, err := parseIndex(a[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), func(ap *app.App, _ string) error {
				list, err := ap.Store.ToggleComplete(idx)
				if err != nil {
					return userIndex(err, idx, ap.Store.Len())
				}
				if err := saved(ap); err != nil {
					return err
				}
				state := "pending"
				if list[idx].Completed {
					state = "done"
				}
				ui.OK(r.opt.Stdout, fmt.Sprintf("marked #%d %s", idx+1, state))
				return nil
			})
		},
	}
}

func (r *runner) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			idx, err := parseIndex(a[0])
			if err != nil {
				return err
			}
			return r.withSession(cmd.Context(), func(ap *app.App, _ string) error {
				if _, err := ap.Store.Delete(idx); err != nil {
					return userIndex(err, idx, ap.Store.Len())
				}
				if err := saved(ap); err != nil {
					return err
				}
				ui.OK(r.opt.Stdout, fmt.Sprintf("removed #%d", idx+1))
				return nil
			})
		},
	}
}

func (r *runner) lsCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withSession(cmd.Context(), func(ap *app.App, _ string) error {
				if watch {
					return r.watch(cmd.Context(), ap)
				}
				r.render(ap.Store.Items())
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the saved list changes")
	return cmd
}

// render prints the list panel: header, progress bar, rows and a tip.
func (r *runner) render(items model.List) {
	t := ui.Current()
	d, p := items.Stats()

	var lines []string
	lines = append(lines, ui.Header(items))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")
	if r.cfg.UI.Group {
		lines = append(lines, ui.GroupLines(items)...)
	} else {
		lines = append(lines, ui.FlatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(r.opt.Stdout, lines)
}
