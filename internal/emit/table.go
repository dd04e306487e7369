package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	styleTableCell   = lipgloss.NewStyle()
)

// TableWriter renders records as an aligned text table. Columns come from
// the first record. Rows are buffered until Flush so column widths can be
// computed; use it only for small fixed-shape row sets.
type TableWriter struct {
	w      io.Writer
	header []string
	rows   [][]string
}

// NewTable returns a buffered table Writer.
func NewTable(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

func (t *TableWriter) Write(rec Record) error {
	if t.header == nil {
		t.header = make([]string, len(rec))
		for i, p := range rec {
			t.header[i] = p.Key
		}
	}

	row := make([]string, len(t.header))
	for i, key := range t.header {
		row[i] = rec.Get(key)
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *TableWriter) Flush() error {
	if t.header == nil {
		return nil
	}

	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if err := t.writeRow(t.header, widths, styleTableHeader); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.writeRow(row, widths, styleTableCell); err != nil {
			return err
		}
	}
	return nil
}

func (t *TableWriter) writeRow(cells []string, widths []int, style lipgloss.Style) error {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = style.Render(cell) + strings.Repeat(" ", widths[i]-len(cell))
	}
	_, err := fmt.Fprintln(t.w, strings.TrimRight(strings.Join(parts, "  "), " "))
	return err
}
