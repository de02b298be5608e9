package tui

import (
	"context"
	"html"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/applytrack/internal/store"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case doneMsg:
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.store.View().(type) {
		case store.Loading:
			return m, nil
		case store.ErrorShown:
			return m.updateError(msg)
		case store.Adding, store.Editing:
			return m.updateForm(msg)
		case store.Deleting:
			return m.updateDelete(msg)
		default:
			if m.searching {
				return m.updateSearch(msg)
			}
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(m.store.Refresh)
	case key.Matches(msg, m.keys.Add):
		if m.store.OpenAdd() == nil {
			m.loadDraft(store.Draft{})
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keys.Edit):
		if m.store.OpenEdit(m.selectedID) == nil {
			if v, ok := m.store.View().(store.Editing); ok {
				m.loadDraft(v.Draft)
			}
			return m, textinput.Blink
		}
	case key.Matches(msg, m.keys.Delete):
		m.store.OpenDelete(m.selectedID)
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleSelected()
	}
	return m, nil
}

// toggleSelected flips the selected record between pending and rejected
// without opening the edit modal.
func (m Model) toggleSelected() tea.Cmd {
	idx := m.cursor()
	if idx < 0 {
		return nil
	}
	c := m.store.Visible()[idx]
	return m.run(func(ctx context.Context) error {
		_, err := m.store.EditRecord(ctx, c.ID, html.UnescapeString(c.Name), !c.Rejected, c.Comments)
		return err
	})
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.store.SetQuery(m.search.Value())
	m.clampSelection()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.store.Cancel()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if err := m.store.SetDraft(m.draft()); err != nil {
			return m, nil
		}
		return m, m.run(m.store.Submit)
	case key.Matches(msg, m.keys.FlipStatus):
		if _, editing := m.store.View().(store.Editing); editing {
			m.rejected = !m.rejected
		}
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		if m.focus == fieldTitle {
			m.focus = fieldComments
			m.title.Blur()
			return m, m.comments.Focus()
		}
		m.focus = fieldTitle
		m.comments.Blur()
		return m, m.title.Focus()
	}

	var cmd tea.Cmd
	if m.focus == fieldTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.comments, cmd = m.comments.Update(msg)
	}
	return m, cmd
}

func (m Model) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m, m.run(m.store.Submit)
	case key.Matches(msg, m.keys.Cancel), msg.String() == "n":
		m.store.Cancel()
	}
	return m, nil
}

func (m Model) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
		m.store.DismissError()
	}
	return m, nil
}
