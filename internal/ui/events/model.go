package events

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/keys"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/theme"
)

// EventsLoadedMsg is sent when the calendar has been fetched.
type EventsLoadedMsg struct {
	Events []model.Event
	Err    error
}

type createdMsg struct {
	err error
}

// Model is the event calendar view.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	events []model.Event
	cursor int

	creating    bool
	form        *huh.Form
	newTitle    string
	newDate     string
	newTime     string
	newLocation string
	newDesc     string

	errMsg string
	width  int
	height int
}

// New creates the events view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	return Model{client: client, keys: k, width: width, height: height}
}

// Init loads the calendar.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the calendar from the server.
func (m Model) Reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		events, err := client.Events(context.Background())
		return EventsLoadedMsg{Events: events, Err: err}
	}
}

// Editing reports whether the creation form has focus.
func (m Model) Editing() bool {
	return m.creating
}

// Update handles calendar messages and the creation form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventsLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.events = msg.Events
		if m.cursor >= len(m.events) {
			m.cursor = 0
		}
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, m.Reload()
	}

	if m.creating {
		return m.updateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "j", "down":
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m, m.Reload()
		case "n":
			m.creating = true
			m.newTitle = ""
			m.newDate = ""
			m.newTime = ""
			m.newLocation = ""
			m.newDesc = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.newTitle),
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(&m.newDate),
			huh.NewInput().
				Title("Time (HH:MM, optional)").
				Value(&m.newTime),
			huh.NewInput().
				Title("Location (optional)").
				Value(&m.newLocation),
			huh.NewText().
				Title("Description (optional)").
				Value(&m.newDesc),
		),
	)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateAborted {
		m.creating = false
		return m, nil
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.creating = false

	title := strings.TrimSpace(m.newTitle)
	date := strings.TrimSpace(m.newDate)
	if title == "" || date == "" {
		m.errMsg = "An event needs a title and a date"
		return m, nil
	}

	ev := model.Event{
		Title:       title,
		Date:        date,
		Time:        strings.TrimSpace(m.newTime),
		Location:    strings.TrimSpace(m.newLocation),
		Description: strings.TrimSpace(m.newDesc),
	}
	client := m.client
	return m, func() tea.Msg {
		err := client.CreateEvent(context.Background(), ev)
		return createdMsg{err: err}
	}
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the calendar panel.
func (m Model) View() string {
	header := theme.HeaderStyle.Render("Events")

	if m.creating {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.form.View())
	}

	var b strings.Builder
	if len(m.events) == 0 {
		b.WriteString(theme.HelpStyle.Render("No upcoming events."))
	}
	for i, ev := range m.events {
		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}

		when := ev.Date
		if ev.Time != "" {
			when += " " + ev.Time
		}
		line := fmt.Sprintf(
			"%s  %s",
			lipgloss.NewStyle().Bold(true).Render(ev.Title),
			theme.HelpStyle.Render(when),
		)
		if ev.Location != "" {
			line += theme.HelpStyle.Render(" @ " + ev.Location)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if i == m.cursor && ev.Description != "" {
			b.WriteString(theme.ListItemStyle.Render(ev.Description))
			b.WriteString("\n")
		}
	}

	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	hints := theme.HelpStyle.Render("n: new event   r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, header, b.String(), errLine, hints)
}
