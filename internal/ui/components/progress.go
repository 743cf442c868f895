package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmate/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar with a "done/total" count.
type ProgressBar struct {
	Done  int
	Total int
	Width int
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	count := fmt.Sprintf("  %d/%d", p.Done, p.Total)
	barWidth := max(p.Width-lipgloss.Width(count), 4)

	filled := 0
	if p.Total > 0 {
		filled = min(barWidth*p.Done/p.Total, barWidth)
	}

	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
}
