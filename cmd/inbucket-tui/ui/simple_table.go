package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders static rows without the focus handling of
// bubbles/table. Used for the monitor feed and the status summary.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Highlight is the row drawn as selected, -1 for none.
	Highlight int
	// MaxCell truncates cells wider than this many cells; 0 disables.
	MaxCell int
}

func NewSimpleTable(title string, headers ...string) *SimpleTable {
	return &SimpleTable{
		Title:     title,
		Headers:   headers,
		Rows:      make([][]string, 0),
		Highlight: -1,
	}
}

func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table. An empty table renders only its title.
func (t *SimpleTable) View(styles Styles) string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Bold.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		return sb.String()
	}

	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if w := lipgloss.Width(t.clip(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	writeRow := func(row []string, style lipgloss.Style, marker string) {
		sb.WriteString(marker)
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = t.clip(row[i])
			}
			sb.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString("\n")
	}

	if len(t.Headers) > 0 {
		writeRow(t.Headers, styles.Muted, "  ")
	}
	for i, row := range t.Rows {
		if i == t.Highlight {
			writeRow(row, styles.Selected, "> ")
		} else {
			writeRow(row, styles.Body, "  ")
		}
	}
	return sb.String()
}

func (t *SimpleTable) clip(cell string) string {
	if t.MaxCell <= 0 || lipgloss.Width(cell) <= t.MaxCell {
		return cell
	}
	r := []rune(cell)
	if len(r) > t.MaxCell-1 {
		r = r[:t.MaxCell-1]
	}
	return string(r) + "…"
}
