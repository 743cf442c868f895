package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens that hold resources until they are
// popped off the stack.
type Closer interface {
	Close()
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them was popped.
type Resumer interface {
	Resume() tea.Cmd
}

// Backend is the remote side of the client: the session operations plus
// the menu operations.
type Backend interface {
	gateway.Gateway
	gateway.Catalog
}

// InputCapturer is implemented by screens that take every key while a
// prompt or a notice is open. Esc goes to the screen instead of popping it.
type InputCapturer interface {
	CapturingInput() bool
}
