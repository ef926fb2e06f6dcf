package tasks

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

// TasksLoadedMsg is sent when the task list has been fetched.
type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

type actionDoneMsg struct {
	err error
}

// Model is the association task board: claim, complete, create.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap
	selfID func() int

	tasks  []model.Task
	cursor int

	creating bool
	form     *huh.Form
	newTitle string
	newDesc  string
	newDue   string

	errMsg string
	width  int
	height int
}

// New creates the tasks view.
func New(client *api.Client, k *keys.KeyMap, selfID func() int, width, height int) Model {
	return Model{client: client, keys: k, selfID: selfID, width: width, height: height}
}

// Init loads the task list.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the task list from the server.
func (m Model) Reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		tasks, err := client.Tasks(context.Background())
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

// Editing reports whether the creation form has focus.
func (m Model) Editing() bool {
	return m.creating
}

// Update handles task messages and actions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.tasks = msg.Tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = 0
		}
		return m, nil

	case actionDoneMsg:
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
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			return m, m.Reload()
		case "c":
			return m.claimSelected()
		case "enter":
			return m.completeSelected()
		case "n":
			m.creating = true
			m.newTitle = ""
			m.newDesc = ""
			m.newDue = ""
			m.form = m.buildForm()
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m Model) claimSelected() (Model, tea.Cmd) {
	if m.cursor >= len(m.tasks) {
		return m, nil
	}
	t := m.tasks[m.cursor]
	if t.Status != model.TaskStatusOpen {
		m.errMsg = "Only open tasks can be claimed"
		return m, nil
	}

	upd := api.TaskUpdate{
		Status:     model.TaskStatusAssigned,
		AssigneeID: m.selfID(),
	}
	client := m.client
	return m, func() tea.Msg {
		err := client.UpdateTask(context.Background(), t.ID, upd)
		return actionDoneMsg{err: err}
	}
}

func (m Model) completeSelected() (Model, tea.Cmd) {
	if m.cursor >= len(m.tasks) {
		return m, nil
	}
	t := m.tasks[m.cursor]
	if t.Status == model.TaskStatusDone {
		return m, nil
	}

	client := m.client
	return m, func() tea.Msg {
		err := client.UpdateTask(
			context.Background(), t.ID,
			api.TaskUpdate{Status: model.TaskStatusDone},
		)
		return actionDoneMsg{err: err}
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.newTitle),
			huh.NewInput().
				Title("Due date (YYYY-MM-DD, optional)").
				Value(&m.newDue),
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
	if title == "" {
		m.errMsg = "A task needs a title"
		return m, nil
	}

	t := model.Task{
		Title:       title,
		Description: strings.TrimSpace(m.newDesc),
		DueDate:     strings.TrimSpace(m.newDue),
		Status:      model.TaskStatusOpen,
	}
	client := m.client
	return m, func() tea.Msg {
		err := client.CreateTask(context.Background(), t)
		return actionDoneMsg{err: err}
	}
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the task board.
func (m Model) View() string {
	header := theme.HeaderStyle.Render("Tasks")

	if m.creating {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.form.View())
	}

	var b strings.Builder
	if len(m.tasks) == 0 {
		b.WriteString(theme.HelpStyle.Render("No tasks right now."))
	}
	for i, t := range m.tasks {
		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}

		line := fmt.Sprintf(
			"%s %s",
			theme.TaskStatusStyle(t.Status).Render(t.Status),
			t.Title,
		)
		if t.AssigneeName != "" {
			line += theme.HelpStyle.Render("  → " + t.AssigneeName)
		}
		if t.DueDate != "" {
			line += theme.HelpStyle.Render("  due " + t.DueDate)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if i == m.cursor && t.Description != "" {
			b.WriteString(theme.ListItemStyle.Render(t.Description))
			b.WriteString("\n")
		}
	}

	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	hints := theme.HelpStyle.Render("c: claim   enter: complete   n: new task   r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, header, b.String(), errLine, hints)
}
