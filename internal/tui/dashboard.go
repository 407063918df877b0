// Package tui is the interactive dashboard: a bubbletea list over the store
// with inline add and edit, a delete animation, toasts and a logout dialog.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/ui"
)

// SyncStatus reports the outcome of the last persistence write.
type SyncStatus interface {
	LastError() error
}

// Options configures a dashboard.
type Options struct {
	Store    *store.Store
	Sync     SyncStatus
	Logout   func(ctx context.Context) error
	Username string

	// DeleteDelay is how long a row shows as removing before it is deleted.
	DeleteDelay   time.Duration
	ToastDuration time.Duration
}

type mode int

const (
	modeBrowse mode = iota
	modeAdding
	modeEditing
	modeConfirmLogout
)

// deleteDueMsg fires when a row's removal animation is over.
type deleteDueMsg struct{ id uuid.UUID }

type toastExpiredMsg struct{ seq int }

// listItem adapts a store row to bubbles/list.Item.
type listItem struct {
	id       uuid.UUID
	item     model.Item
	removing bool
}

func (i listItem) Title() string       { return i.item.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Text }

// itemDelegate renders a row on a single line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                        { return 1 }
func (d itemDelegate) Spacing() int                       { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	line := ui.ItemLine(it.item)
	if it.removing {
		line = t.Removing.Render(t.BoxUnchecked + " " + it.item.Text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+line)
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	logoutBind = key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout"))
)

// Model is the dashboard's bubbletea model.
type Model struct {
	opts Options

	list  list.Model
	input textinput.Model
	mode  mode

	editID   uuid.UUID
	inputErr string

	removing map[uuid.UUID]bool

	toast      string
	toastIsErr bool
	toastSeq   int

	loggedOut bool
	width     int
	height    int
}

// New builds a dashboard over opts.Store.
func New(opts Options) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.DisableQuitKeybindings()
	extra := func() []key.Binding { return []key.Binding{addBind, editBind, toggleBind, deleteBind, logoutBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		opts:     opts,
		list:     l,
		input:    ti,
		removing: make(map[uuid.UUID]bool),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// LoggedOut reports whether the dashboard ended through the logout dialog.
func (m Model) LoggedOut() bool { return m.loggedOut }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case deleteDueMsg:
		delete(m.removing, msg.id)
		idx := m.opts.Store.IndexOf(msg.id)
		if idx < 0 {
			m.refresh()
			return m, nil
		}
		_, err := m.opts.Store.Delete(idx)
		m.refresh()
		return m, m.afterMutation("Deleted", err)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
			m.toastIsErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdding, modeEditing:
			return m.updateInput(msg)
		case modeConfirmLogout:
			return m.updateConfirm(msg)
		}
		if m.list.FilterState() != list.Filtering {
			if next, cmd, handled := m.updateBrowse(msg); handled {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit, true

	case " ":
		id, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		snap, err := m.opts.Store.ToggleComplete(m.opts.Store.IndexOf(id))
		label := "Marked pending"
		if err == nil && snap[m.opts.Store.IndexOf(id)].Completed {
			label = "Marked done"
		}
		m.refresh()
		return m, m.afterMutation(label, err), true

	case "d":
		id, ok := m.selected()
		if !ok || m.removing[id] {
			return m, nil, true
		}
		if m.opts.DeleteDelay <= 0 {
			next, cmd := m.Update(deleteDueMsg{id: id})
			return next, cmd, true
		}
		m.removing[id] = true
		m.refresh()
		return m, tea.Tick(m.opts.DeleteDelay, func(time.Time) tea.Msg { return deleteDueMsg{id: id} }), true

	case "a":
		m.mode = modeAdding
		m.inputErr = ""
		m.input.SetValue("")
		m.input.Placeholder = "New item..."
		return m, m.input.Focus(), true

	case "e":
		id, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		m.mode = modeEditing
		m.editID = id
		m.inputErr = ""
		m.input.SetValue(m.opts.Store.Items()[m.opts.Store.IndexOf(id)].Text)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit item..."
		return m, m.input.Focus(), true

	case "L":
		m.mode = modeConfirmLogout
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput()
		return m, nil

	case "enter":
		var (
			err   error
			label string
		)
		if m.mode == modeAdding {
			_, err = m.opts.Store.Add(model.Item{Text: m.input.Value()})
			label = "Added"
		} else {
			idx := m.opts.Store.IndexOf(m.editID)
			if idx < 0 {
				m.leaveInput()
				return m, m.showToast("Item no longer exists", true)
			}
			_, err = m.opts.Store.Edit(idx, m.input.Value())
			label = "Updated"
		}
		if apperr.IsKind(err, apperr.KindEmptyInput) || apperr.IsKind(err, apperr.KindInvalidInput) {
			m.inputErr = apperr.UserMessage(err)
			return m, nil
		}
		adding := m.mode == modeAdding
		m.leaveInput()
		m.refresh()
		if adding && err == nil {
			m.list.Select(len(m.list.Items()) - 1)
		}
		return m, m.afterMutation(label, err)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if m.opts.Logout != nil {
			if err := m.opts.Logout(context.Background()); err != nil {
				m.mode = modeBrowse
				return m, m.showToast("Logout failed: "+apperr.UserMessage(err), true)
			}
		}
		m.loggedOut = true
		return m, tea.Quit
	case "n", "N", "esc":
		m.mode = modeBrowse
		return m, nil
	}
	return m, nil
}

// afterMutation reports the outcome of a store operation as a toast,
// preferring a persistence warning when the write behind it failed.
func (m *Model) afterMutation(label string, err error) tea.Cmd {
	if err != nil {
		return m.showToast(apperr.UserMessage(err), true)
	}
	if m.opts.Sync != nil {
		if serr := m.opts.Sync.LastError(); serr != nil {
			return m.showToast(label+" (not saved: "+apperr.UserMessage(serr)+")", true)
		}
	}
	return m.showToast(label, false)
}

func (m *Model) showToast(msg string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast = msg
	m.toastIsErr = isErr
	if m.opts.ToastDuration <= 0 {
		return nil
	}
	seq := m.toastSeq
	return tea.Tick(m.opts.ToastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
}

// selected returns the ID of the highlighted row.
func (m Model) selected() (uuid.UUID, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return uuid.Nil, false
	}
	return it.id, true
}

// refresh rebuilds the list rows from the store snapshot.
func (m *Model) refresh() {
	items := m.opts.Store.Items()
	rows := make([]list.Item, 0, len(items))
	for i, it := range items {
		id, err := m.opts.Store.ID(i)
		if err != nil {
			continue
		}
		rows = append(rows, listItem{id: id, item: it, removing: m.removing[id]})
	}
	m.list.SetItems(rows)
	if n := len(rows); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	m.list.Title = ui.Header(items)
	m.resize()
}

func (m *Model) resize() {
	h := m.height - 4
	if m.mode == modeAdding || m.mode == modeEditing || m.mode == modeConfirmLogout {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	t := ui.Current()
	content := m.list.View()

	switch m.mode {
	case modeAdding, modeEditing:
		title := "Add new item"
		if m.mode == modeEditing {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += " - " + t.Error.Render(m.inputErr)
		}
		content += "\n" + ui.PanelString([]string{title, m.input.View()})
	case modeConfirmLogout:
		who := m.opts.Username
		if who == "" {
			who = "current user"
		}
		content += "\n" + ui.PanelString([]string{
			t.Title.Render("Log out " + who + "?"),
			t.Muted.Render("Saved todos will be removed.  y: log out  n: cancel"),
		})
	}

	if m.toast != "" {
		style := t.Toast
		if m.toastIsErr {
			style = t.Error
		}
		content += "\n" + style.Render(m.toast)
	}
	return ui.PanelString([]string{content})
}

// Result is what the dashboard reports when it exits.
type Result struct {
	LoggedOut bool
}

// Run starts the dashboard in the alternate screen and blocks until it exits.
func Run(opts Options) (Result, error) {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return Result{}, nil
	}
	return Result{LoggedOut: fm.LoggedOut()}, nil
}
