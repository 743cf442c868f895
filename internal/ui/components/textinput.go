package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// NumberInput wraps bubbles/textinput for entering a question number.
// Keys other than digits and editing keys are ignored.
type NumberInput struct {
	Model textinput.Model
}

// NewNumberInput creates a focused number input.
func NewNumberInput(prompt string, maxDigits int) NumberInput {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "#"
	if maxDigits > 0 {
		ti.CharLimit = maxDigits
	}
	ti.Focus()
	return NumberInput{Model: ti}
}

// Focus returns the cursor blink command.
func (n *NumberInput) Focus() tea.Cmd {
	return n.Model.Focus()
}

// Update handles messages.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return n, nil
		}
	}
	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the input.
func (n NumberInput) View() string {
	return n.Model.View()
}

// Value returns the entered number. ok is false when the input is empty or
// not a number.
func (n NumberInput) Value() (v int, ok bool) {
	v, err := strconv.Atoi(strings.TrimSpace(n.Model.Value()))
	return v, err == nil
}
