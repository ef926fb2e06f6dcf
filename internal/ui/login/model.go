package login

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/theme"
)

// SubmittedMsg is sent when the user completes the login form.
type SubmittedMsg struct {
	Username string
	Password string
}

// SwitchToRegisterMsg asks the app root to show the registration form.
type SwitchToRegisterMsg struct{}

// Model is the sign-in view: a username/password form plus an inline
// error line for rejected attempts.
type Model struct {
	form     *huh.Form
	username string
	password string
	errMsg   string
	busy     bool
	width    int
	height   int
}

// New creates the login view.
func New(width, height int) Model {
	m := Model{width: width, height: height}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&m.username),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password),
		),
	)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles form progress and submission.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+n" {
		return m, func() tea.Msg { return SwitchToRegisterMsg{} }
	}

	if m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		username := m.form.GetString("username")
		password := m.form.GetString("password")
		m.busy = true
		m.errMsg = ""
		return m, func() tea.Msg {
			return SubmittedMsg{Username: username, Password: password}
		}
	}

	return m, cmd
}

// SetError displays a failed login and re-arms the form.
func (m Model) SetError(message string) Model {
	m.errMsg = message
	m.busy = false
	m.password = ""
	m.form = m.buildForm()
	return m
}

// Reset clears the form for a fresh sign-in (e.g. after logout).
func (m Model) Reset() Model {
	m.errMsg = ""
	m.busy = false
	m.username = ""
	m.password = ""
	m.form = m.buildForm()
	return m
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the sign-in panel.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Sign in to the member portal")

	body := m.form.View()
	if m.busy {
		body = "Signing in..."
	}

	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	hint := theme.HelpStyle.Render("ctrl+n: create an account")

	panel := theme.PanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, errLine, "", hint),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
