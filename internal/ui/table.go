package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders left aligned columns sized to their widest cell.
type Table struct {
	Headers []string
	Rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	widths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	b.WriteString(StyleTableHeader.Render(joinPadded(t.Headers, widths)))
	b.WriteString("\n")

	separator := make([]string, len(widths))
	for i, width := range widths {
		separator[i] = strings.Repeat("─", width)
	}
	b.WriteString(StyleTableBorder.Render(strings.Join(separator, "  ")))
	b.WriteString("\n")

	for _, row := range t.Rows {
		b.WriteString(joinPadded(row, widths))
		b.WriteString("\n")
	}
	return b.String()
}

func joinPadded(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", max(0, width-lipgloss.Width(cell)))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
