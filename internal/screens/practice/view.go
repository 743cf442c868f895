package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmate/internal/progression"
	"github.com/abhisek/quizmate/internal/quiz"
	sess "github.com/abhisek/quizmate/internal/session"
	"github.com/abhisek/quizmate/internal/ui/components"
	"github.com/abhisek/quizmate/internal/ui/layout"
	"github.com/abhisek/quizmate/internal/ui/theme"
)

const maxContentWidth = 90

func (s *Screen) View(width, height int) string {
	if s.notice != "" {
		box := theme.Notice.Render(s.notice + "\n\n" + theme.Hint.Render("press any key"))
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	if s.errMsg != "" {
		box := theme.Card.Render(theme.Incorrect.Render("Could not open the quiz") + "\n\n" + s.errMsg)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	if s.session == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Hint.Render("Loading…"))
	}

	w := min(width-4, maxContentWidth)
	var sections []string
	sections = append(sections, s.renderStatusBar(w))

	switch {
	case s.session.Len() == 0:
		sections = append(sections, "", theme.Hint.Render("This list has no questions."))
	case s.session.Finished():
		sections = append(sections, "", s.renderFinished())
	case s.view == nil && s.loading:
		sections = append(sections, "", theme.Hint.Render("Loading question…"))
	case s.view != nil:
		sections = append(sections, "", s.renderQuestion(w))
	}

	if s.jumping {
		sections = append(sections, "", s.jump.View())
	}
	if s.status != "" {
		sections = append(sections, "", theme.Hint.Render(s.status))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	gridRows := max(height-lipgloss.Height(body)-3, 1)
	grid := components.Grid{
		Cells:   s.gridCells(),
		Width:   w,
		MaxRows: min(gridRows, 6),
	}.View()
	if grid != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", grid)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Width(w).Render(body))
}

func (s *Screen) renderStatusBar(w int) string {
	mode := s.session.Mode()
	bar := components.ProgressBar{Done: s.answeredCount(), Total: s.session.Len(), Width: max(w/3, 16)}.View()

	// Unit names come from the bank and can be arbitrarily long.
	name := layout.Truncate(progression.Describe(mode.Key), max(w-lipgloss.Width(bar)-20, 8))
	left := theme.Title.Render(name)
	var tags []string
	if mode.Ephemeral {
		tags = append(tags, "review")
	}
	if mode.Reveal {
		tags = append(tags, "reveal")
	}
	if len(tags) > 0 {
		left += theme.Hint.Render("  [" + strings.Join(tags, ", ") + "]")
	}

	gap := max(w-lipgloss.Width(left)-lipgloss.Width(bar), 1)
	return left + strings.Repeat(" ", gap) + bar
}

func (s *Screen) answeredCount() int {
	n := 0
	for _, st := range s.session.ListStatus() {
		if st.Answered {
			n++
		}
	}
	return n
}

func (s *Screen) renderQuestion(w int) string {
	v := s.view
	q := v.Question

	head := fmt.Sprintf("%d / %d  %s", v.Index+1, v.Total, q.Type.Label())
	if v.Starred {
		head += "  " + theme.Starred.Render("★")
	}
	text := lipgloss.NewStyle().Width(w).Render(q.Text)

	lines := []string{theme.Hint.Render(head), theme.Body.Render(text), ""}
	for i, o := range v.Options {
		lines = append(lines, s.renderOption(i, o, w))
	}

	if v.Prior != nil {
		lines = append(lines, "", theme.Hint.Render("Previously answered: "+v.Prior.Selected.String()))
	}
	if s.submitting || v.InFlight {
		lines = append(lines, "", theme.Hint.Render("Submitting…"))
	}
	if fb := renderFeedback(v); fb != "" {
		lines = append(lines, "", fb)
	}
	if v.Explanation != "" {
		exp := lipgloss.NewStyle().Width(w - 4).Render(v.Explanation)
		lines = append(lines, "", theme.Card.Render(theme.Hint.Render("Explanation")+"\n"+exp))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s *Screen) renderOption(i int, o sess.OptionView, w int) string {
	cursor := "  "
	if i == s.cursor && s.view.Interactive() {
		cursor = "▸ "
	}

	box := ""
	if s.view.Question.Type == quiz.MultiSelect {
		switch {
		case s.picks[o.Key] || o.Selected:
			box = "[x] "
		default:
			box = "[ ] "
		}
	}

	label := fmt.Sprintf("%s%s%s. %s", cursor, box, o.Key, o.Text)
	label = lipgloss.NewStyle().Width(w - 2).Render(label)

	switch o.Mark {
	case sess.MarkCorrect:
		return theme.Correct.Render(label) + " " + theme.Correct.Render("✓")
	case sess.MarkIncorrect:
		return theme.Incorrect.Render(label) + " " + theme.Incorrect.Render("✗")
	case sess.MarkSelected:
		return theme.Selected.Render(label)
	}
	if !o.Interactive {
		return theme.Disabled.Render(label)
	}
	if i == s.cursor {
		return theme.Selected.Render(label)
	}
	return theme.Unselected.Render(label)
}

func renderFeedback(v *sess.QuestionView) string {
	switch v.Feedback {
	case sess.FeedbackCorrect:
		return theme.Correct.Render("Correct!")
	case sess.FeedbackIncorrect:
		msg := "Wrong."
		if v.Disclosed {
			msg += " Answer: " + v.Question.Answer.String()
		}
		return theme.Incorrect.Render(msg)
	}
	return ""
}

func (s *Screen) renderFinished() string {
	var correct, answered int
	for _, st := range s.session.ListStatus() {
		if st.Answered {
			answered++
			if st.Correct {
				correct++
			}
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("You reached the end of this list."),
		"",
		theme.Body.Render(fmt.Sprintf("Answered %d of %d, %d correct.", answered, s.session.Len(), correct)),
		theme.Hint.Render("Press ← to go back or g to jump to a question."),
	)
}

func (s *Screen) gridCells() []components.GridCell {
	statuses := s.session.ListStatus()
	cells := make([]components.GridCell, len(statuses))
	for i, st := range statuses {
		c := components.GridCell{Starred: st.Starred, Active: st.Active}
		switch {
		case st.Answered && st.Correct:
			c.State = components.CellCorrect
		case st.Answered:
			c.State = components.CellIncorrect
		}
		cells[i] = c
	}
	return cells
}
