package tui

import (
	"html"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sakif/applytrack/internal/model"
)

const maxComment = 40

// RenderTable draws records as a bordered table. Row selected (an index into
// records, or -1 for none) is highlighted. Names are shown unescaped.
func RenderTable(records []model.Company, selected int) string {
	rows := make([][]string, 0, len(records))
	for _, c := range records {
		rows = append(rows, []string{
			c.Date,
			html.UnescapeString(c.Name),
			c.Status(),
			truncate(c.Comments, maxComment),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("DATE", "COMPANY", "STATUS", "COMMENTS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == selected:
				return selectedStyle
			case col == 2 && records[row].Rejected:
				return rejectedStyle
			case col == 2:
				return pendingStyle
			default:
				return cellStyle
			}
		})

	return t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
