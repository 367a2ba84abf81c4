package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableBorderColor = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	tableBorderStyle = lipgloss.NewStyle().Foreground(tableBorderColor)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableDimStyle    = tableCellStyle.Foreground(tableBorderColor)
)

// Dim marks a column whose cells are rendered in the border color.
type Dim int

// RenderTable returns headers and rows as a bordered table. Cells in columns
// listed in dim are rendered in a muted color.
func RenderTable(headers []string, rows [][]string, dim ...Dim) string {
	muted := make(map[int]bool, len(dim))
	for _, d := range dim {
		muted[int(d)] = true
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case muted[col]:
				return tableDimStyle
			}
			return tableCellStyle
		})
	return t.String()
}

// Table writes the table to w.
func Table(w io.Writer, headers []string, rows [][]string, dim ...Dim) {
	fmt.Fprintln(w, RenderTable(headers, rows, dim...))
}
