package tui

import (
	"fmt"
	"html"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/applytrack/internal/store"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var overlay string
	switch v := m.store.View().(type) {
	case store.Adding:
		overlay = m.viewForm("Add application", false)
	case store.Editing:
		overlay = m.viewForm("Edit application", true)
	case store.Deleting:
		overlay = modalStyle.Render(fmt.Sprintf(
			"Delete %s?\n\n%s",
			html.UnescapeString(v.Record.Name),
			dimStyle.Render("[y] delete  [esc] cancel"),
		))
	case store.ErrorShown:
		overlay = errorModalStyle.Render(v.Message + "\n\n" + dimStyle.Render("[enter] dismiss"))
	case store.Loading:
		overlay = dimStyle.Render("Loading…")
	}

	parts := []string{m.viewHeader(), m.viewSearch(), m.viewTable()}
	if overlay != "" {
		parts = append(parts, overlay)
	}
	parts = append(parts, m.help.View(m.keys))

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("applytrack"),
		"  ",
		statStyle.Render(fmt.Sprintf("Applied: %d", len(m.store.Records()))),
		" ",
		statStyle.Render("Rejection: "+m.store.RejectionDisplay()),
	)
}

func (m Model) viewSearch() string {
	if m.searching || m.search.Value() != "" {
		return m.search.View()
	}
	return dimStyle.Render("press / to search")
}

func (m Model) viewTable() string {
	visible := m.store.Visible()
	if len(visible) == 0 {
		if m.store.Query() != "" {
			return dimStyle.Render("No companies match your search.")
		}
		return dimStyle.Render("No applications yet. Press a to add one.")
	}
	return RenderTable(visible, m.cursor())
}

func (m Model) viewForm(heading string, editing bool) string {
	lines := []string{
		titleStyle.Render(heading),
		"",
		m.title.View(),
		m.comments.View(),
	}
	hint := "[enter] save  [tab] next field  [esc] cancel"
	if editing {
		status := pendingStyle.Render("Pending")
		if m.rejected {
			status = rejectedStyle.Render("Rejected")
		}
		lines = append(lines, "Status: "+status)
		hint = "[enter] save  [tab] next field  [ctrl+r] status  [esc] cancel"
	}
	lines = append(lines, "", dimStyle.Render(hint))
	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
