package register

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/theme"
)

// DoneMsg is sent after a successful registration so the app root can
// return to the login view.
type DoneMsg struct{}

// CancelMsg is sent when the user backs out of the form.
type CancelMsg struct{}

// resultMsg carries the outcome of the registration request.
type resultMsg struct {
	err error
}

var validate = validator.New()

// Model is the account-registration view. Input is validated locally
// before the request is sent; server-side errors are shown inline.
type Model struct {
	client *api.Client
	form   *huh.Form

	username    string
	email       string
	password    string
	displayName string

	errMsg string
	busy   bool
	done   bool
	width  int
	height int
}

// New creates the registration view.
func New(client *api.Client, width, height int) Model {
	m := Model{client: client, width: width, height: height}
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
				Key("display_name").
				Title("Display name").
				Value(&m.displayName),
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.email),
			huh.NewInput().
				Key("password").
				Title("Password (min. 8 characters)").
				EchoMode(huh.EchoModePassword).
				Value(&m.password),
		),
	)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles form progress, validation, and submission.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		m.done = true
		return m, nil

	case tea.KeyMsg:
		if m.done {
			return m, func() tea.Msg { return DoneMsg{} }
		}
		if msg.String() == "esc" {
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	if m.busy || m.done {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	req := api.RegisterRequest{
		Username:    m.form.GetString("username"),
		Email:       m.form.GetString("email"),
		Password:    m.form.GetString("password"),
		DisplayName: m.form.GetString("display_name"),
	}

	if err := validate.Struct(req); err != nil {
		m.errMsg = "Please check your input: username (3+ chars), valid email, password (8+ chars)"
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	m.busy = true
	m.errMsg = ""
	client := m.client
	return m, func() tea.Msg {
		err := client.Register(context.Background(), req)
		return resultMsg{err: err}
	}
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the registration panel.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Create a member account")

	var body string
	switch {
	case m.done:
		body = "Registration received.\n\n" +
			"Check your inbox for the verification mail, then sign in.\n\n" +
			theme.HelpStyle.Render("press any key to continue")
	case m.busy:
		body = "Submitting registration..."
	default:
		body = m.form.View()
	}

	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	panel := theme.PanelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, errLine),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
