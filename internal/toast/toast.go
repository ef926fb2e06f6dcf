package toast

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gugverein/portal/internal/theme"
)

// Kind classifies a toast for styling.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

// DisplayDuration is how long a toast stays visible without interaction.
const DisplayDuration = 5 * time.Second

// Toast is one transient notification message.
type Toast struct {
	ID      string
	Message string
	Kind    Kind
}

// expireMsg removes a toast after its display duration. Arriving after
// the toast was manually dismissed it is a no-op.
type expireMsg struct {
	id string
}

// Model is the toast overlay: an ordered, self-expiring list of
// notification messages, oldest first. It is independent of whatever
// component pushed the message.
type Model struct {
	toasts []Toast
	width  int
}

// New creates an empty toast overlay.
func New(width int) Model {
	return Model{width: width}
}

// Push appends a toast and schedules its automatic removal.
func (m Model) Push(message string, kind Kind) (Model, tea.Cmd) {
	t := Toast{
		ID:      uuid.New().String(),
		Message: message,
		Kind:    kind,
	}
	m.toasts = append(m.toasts, t)

	id := t.ID
	cmd := tea.Tick(DisplayDuration, func(time.Time) tea.Msg {
		return expireMsg{id: id}
	})
	return m, cmd
}

// Dismiss removes the toast with the given id; no-op if absent. The
// pending expiry tick for that id then finds nothing to remove.
func (m Model) Dismiss(id string) Model {
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			break
		}
	}
	return m
}

// DismissOldest removes the oldest visible toast. Bound to a key so the
// user can clear toasts without waiting for expiry.
func (m Model) DismissOldest() Model {
	if len(m.toasts) == 0 {
		return m
	}
	return m.Dismiss(m.toasts[0].ID)
}

// Update handles expiry ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if exp, ok := msg.(expireMsg); ok {
		return m.Dismiss(exp.id), nil
	}
	return m, nil
}

// Toasts returns the visible toasts in insertion order.
func (m Model) Toasts() []Toast {
	return m.toasts
}

// SetWidth adjusts the render width.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// View renders the toast stack, oldest on top. Empty when no toasts
// are visible.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	maxWidth := m.width - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	lines := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		style := theme.ToastSuccessStyle
		if t.Kind == KindError {
			style = theme.ToastErrorStyle
		}
		lines[i] = style.MaxWidth(maxWidth).Render(t.Message)
	}

	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}
