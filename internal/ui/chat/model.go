package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/keys"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/theme"
)

// MessagesLoadedMsg is sent when the chat history has been fetched.
type MessagesLoadedMsg struct {
	Messages []model.ChatMessage
	Err      error
}

// postedMsg carries the outcome of sending a message.
type postedMsg struct {
	err error
}

// Model is the association chat view: a scrollback viewport plus a
// composer line.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap
	selfID func() int

	viewport  viewport.Model
	input     textinput.Model
	messages  []model.ChatMessage
	composing bool
	errMsg    string
	width     int
	height    int
}

// New creates the chat view. selfID reports the signed-in member's id
// so their own messages can be highlighted.
func New(client *api.Client, k *keys.KeyMap, selfID func() int, width, height int) Model {
	vp := viewport.New(width-4, height-5)

	ti := textinput.New()
	ti.Placeholder = "write a message..."
	ti.Prompt = "> "
	ti.CharLimit = 500
	ti.Width = width - 6

	return Model{
		client:   client,
		keys:     k,
		selfID:   selfID,
		viewport: vp,
		input:    ti,
		width:    width,
		height:   height,
	}
}

// Init loads the chat history.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload re-fetches the chat history.
func (m Model) Reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		msgs, err := client.ChatMessages(context.Background())
		return MessagesLoadedMsg{Messages: msgs, Err: err}
	}
}

// Composing reports whether the composer has focus, so the app root
// leaves number keys alone while the user types.
func (m Model) Composing() bool {
	return m.composing
}

// Update handles chat messages and composer input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MessagesLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.messages = msg.Messages
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case postedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, m.Reload()

	case tea.KeyMsg:
		if m.composing {
			return m.handleComposerKeys(msg)
		}
		switch msg.String() {
		case "i":
			m.composing = true
			m.input.Focus()
			return m, textinput.Blink
		case "r":
			return m, m.Reload()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleComposerKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.composing = false
		m.input.Reset()
		m.input.Blur()
		client := m.client
		return m, func() tea.Msg {
			err := client.PostChatMessage(context.Background(), text)
			return postedMsg{err: err}
		}

	case "esc":
		m.composing = false
		m.input.Reset()
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) renderMessages() string {
	if len(m.messages) == 0 {
		return theme.HelpStyle.Render("No messages yet.")
	}

	self := m.selfID()
	var b strings.Builder
	for _, msg := range m.messages {
		name := msg.DisplayName
		nameStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		if msg.UserID == self {
			nameStyle = theme.OwnMessageStyle
			name += " (you)"
		}
		b.WriteString(fmt.Sprintf(
			"%s %s\n%s\n\n",
			nameStyle.Render(name),
			theme.HelpStyle.Render(msg.CreatedAt),
			msg.Message,
		))
	}
	return b.String()
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = height - 5
	m.input.Width = width - 6
	m.viewport.SetContent(m.renderMessages())
	return m
}

// View renders the chat panel.
func (m Model) View() string {
	var composer string
	if m.composing {
		composer = m.input.View()
	} else {
		composer = theme.HelpStyle.Render("i: compose   r: refresh")
	}

	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		theme.HeaderStyle.Render("Chat"),
		m.viewport.View(),
		errLine,
		composer,
	)
}
