package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmate/internal/ui/layout"
	"github.com/abhisek/quizmate/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.firstEnabled(0, 1)
	return m
}

// SetItems replaces the items and keeps the selection in range.
func (m *Menu) SetItems(items []MenuItem) {
	m.Items = items
	if m.Selected >= len(items) || m.Selected < 0 || items[m.Selected].Disabled {
		m.Selected = m.firstEnabled(0, 1)
	}
}

func (m Menu) firstEnabled(from, step int) int {
	for i := from; i >= 0 && i < len(m.Items); i += step {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return 0
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// maxLabelWidth caps long labels such as unit names.
const maxLabelWidth = 32

// View renders the menu. Details line up in a column after the widest label.
func (m Menu) View() string {
	labels := make([]string, len(m.Items))
	col := 0
	for i, item := range m.Items {
		labels[i] = layout.Truncate(item.Label, maxLabelWidth)
		col = max(col, lipgloss.Width(labels[i]))
	}

	var b strings.Builder
	for i, item := range m.Items {
		label := labels[i]
		if item.Detail != "" {
			label = layout.PadRight(label, col)
		}
		switch {
		case item.Disabled:
			b.WriteString(theme.Disabled.Render("    " + label))
			if item.Detail != "" {
				b.WriteString("  " + theme.Disabled.Render(item.Detail))
			}
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + label))
			if item.Detail != "" {
				b.WriteString("  " + theme.Hint.Render(item.Detail))
			}
		default:
			b.WriteString(theme.Unselected.Render("    " + label))
			if item.Detail != "" {
				b.WriteString("  " + theme.Hint.Render(item.Detail))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
