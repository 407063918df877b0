package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/todo/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// PanelString frames lines in the current theme's border.
func PanelString(lines []string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Panel writes a framed box to w.
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(lines))
}

// Header is the "Todos ✔ 1 • 2 Total 3" line shown above every list.
func Header(items model.List) string {
	t := Current()
	d, p := items.Stats()
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)
}

// ItemLine renders one row without the selection prefix, e.g. "☐ Buy milk".
func ItemLine(it model.Item) string {
	t := Current()
	if it.Completed {
		return t.Success.Render(t.BoxChecked) + " " + t.Done.Render(it.Text)
	}
	return t.Muted.Render(t.BoxUnchecked) + " " + it.Text
}

// FlatLines renders numbered rows (1-based, as the CLI addresses them).
func FlatLines(items model.List) []string {
	return numbered(items, nil)
}

// GroupLines renders pending items first, then done items, keeping each
// item's original 1-based number so it can still be passed to `todo done`.
func GroupLines(items model.List) []string {
	t := Current()
	var pend, done []int
	for i, it := range items {
		if it.Completed {
			done = append(done, i)
		} else {
			pend = append(pend, i)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, numbered(items, pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, numbered(items, done)...)
	}
	return lines
}

// numbered renders the items at the given positions (all when idx is nil).
func numbered(items model.List, idx []int) []string {
	t := Current()
	if idx == nil {
		if len(items) == 0 {
			return []string{t.Muted.Render("no items")}
		}
		idx = make([]int, len(items))
		for i := range items {
			idx[i] = i
		}
	}
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		it := items[i]
		if r := []rune(it.Text); len(r) > 80 {
			it.Text = string(r[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s", t.Muted.Render(fmt.Sprintf("%2d.", i+1)), ItemLine(it)))
	}
	return out
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymDone+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Error.Render("✖ "+msg))
}

// Hint prints a muted follow-up line.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Render(msg))
}
