package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmate/internal/ui/theme"
)

// CellState is the answer state shown by a grid cell.
type CellState int

const (
	CellOpen CellState = iota
	CellCorrect
	CellIncorrect
)

// GridCell is one question in the list grid.
type GridCell struct {
	State   CellState
	Starred bool
	Active  bool
}

// Grid lays out numbered cells in rows that fit the width. Only rows
// around the active cell are shown when there are more than MaxRows.
type Grid struct {
	Cells   []GridCell
	Width   int
	MaxRows int
}

// View renders the grid.
func (g Grid) View() string {
	if len(g.Cells) == 0 {
		return ""
	}
	digits := len(fmt.Sprint(len(g.Cells)))
	cellWidth := digits + 2
	perRow := max(g.Width/cellWidth, 1)
	rows := (len(g.Cells) + perRow - 1) / perRow

	first, last := 0, rows
	if g.MaxRows > 0 && rows > g.MaxRows {
		active := 0
		for i, c := range g.Cells {
			if c.Active {
				active = i / perRow
				break
			}
		}
		first = min(max(active-g.MaxRows/2, 0), rows-g.MaxRows)
		last = first + g.MaxRows
	}

	var b strings.Builder
	for r := first; r < last; r++ {
		for i := r * perRow; i < min((r+1)*perRow, len(g.Cells)); i++ {
			b.WriteString(renderCell(g.Cells[i], i+1, digits))
		}
		if r < last-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderCell(c GridCell, n, digits int) string {
	mark := " "
	if c.Starred {
		mark = "*"
	}
	label := fmt.Sprintf("%*d", digits, n)

	var style lipgloss.Style
	switch {
	case c.Active:
		style = theme.CellActive
	case c.State == CellCorrect:
		style = lipgloss.NewStyle().Foreground(theme.Success)
	case c.State == CellIncorrect:
		style = lipgloss.NewStyle().Foreground(theme.Error)
	default:
		style = lipgloss.NewStyle().Foreground(theme.TextDim)
	}
	return " " + style.Render(label) + theme.Starred.Render(mark)
}
