// Package tui is the interactive terminal client. All state that matters
// lives in store.Store; the model only keeps cursor, input widgets and
// window size, and renders whatever View the store reports.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/applytrack/internal/store"
)

// doneMsg reports that a store operation started by the model finished.
// The store has already moved to Idle or ErrorShown.
type doneMsg struct {
	err error
}

type field int

const (
	fieldTitle field = iota
	fieldComments
)

type Model struct {
	ctx   context.Context
	store *store.Store
	keys  KeyMap
	help  help.Model

	search    textinput.Model
	searching bool

	title    textinput.Model
	comments textinput.Model
	focus    field
	rejected bool

	// selectedID follows a record across refreshes and re-filtering.
	selectedID string

	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, s *store.Store) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search companies"

	title := textinput.New()
	title.Prompt = "Company: "
	title.CharLimit = 200

	comments := textinput.New()
	comments.Prompt = "Comments: "
	comments.CharLimit = 1000

	return Model{
		ctx:      ctx,
		store:    s,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		search:   search,
		title:    title,
		comments: comments,
	}
}

func (m Model) Init() tea.Cmd {
	return m.run(m.store.Refresh)
}

// run executes op off the UI goroutine and reports back with doneMsg.
func (m Model) run(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: op(ctx)}
	}
}

// cursor is the index of the selected record in the visible list, or -1.
func (m Model) cursor() int {
	visible := m.store.Visible()
	for i, c := range visible {
		if c.ID == m.selectedID {
			return i
		}
	}
	return -1
}

// clampSelection keeps the selection on a visible record, falling back to
// the first one.
func (m *Model) clampSelection() {
	if m.cursor() >= 0 {
		return
	}
	visible := m.store.Visible()
	if len(visible) == 0 {
		m.selectedID = ""
		return
	}
	m.selectedID = visible[0].ID
}

func (m *Model) move(delta int) {
	visible := m.store.Visible()
	if len(visible) == 0 {
		return
	}
	i := m.cursor() + delta
	if i < 0 {
		i = 0
	}
	if i >= len(visible) {
		i = len(visible) - 1
	}
	m.selectedID = visible[i].ID
}

// loadDraft copies a store draft into the modal inputs.
func (m *Model) loadDraft(d store.Draft) {
	m.title.SetValue(d.Title)
	m.comments.SetValue(d.Comments)
	m.rejected = d.Rejected
	m.focus = fieldTitle
	m.comments.Blur()
	m.title.Focus()
}

func (m Model) draft() store.Draft {
	return store.Draft{
		Title:    m.title.Value(),
		Comments: m.comments.Value(),
		Rejected: m.rejected,
	}
}
