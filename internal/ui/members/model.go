package members

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/keys"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/theme"
)

// MembersLoadedMsg is sent when the directory has been fetched.
type MembersLoadedMsg struct {
	Members []model.Member
	Err     error
}

// MemberItem wraps a model.Member so it can be used in a bubbles/list.
type MemberItem struct {
	Member model.Member
}

// FilterValue returns the string used for fuzzy filtering.
func (i MemberItem) FilterValue() string { return i.Member.DisplayName }

// Title returns the member name for the list.
func (i MemberItem) Title() string { return i.Member.DisplayName }

// Description returns a short summary line for the list.
func (i MemberItem) Description() string {
	var parts []string
	if i.Member.Email != "" {
		parts = append(parts, i.Member.Email)
	}
	if len(i.Member.Roles) > 0 {
		parts = append(parts, strings.Join(i.Member.Roles, ", "))
	}
	if i.Member.MemberSince != "" {
		parts = append(parts, "since "+i.Member.MemberSince)
	}
	return strings.Join(parts, " | ")
}

// Model is the member directory view.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap
	list   list.Model
	errMsg string
	width  int
	height int
}

// New creates the member directory view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Members"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		client: client,
		keys:   k,
		list:   l,
		width:  width,
		height: height,
	}
}

// Init loads the directory.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the directory from the server.
func (m Model) Reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		members, err := client.Members(context.Background())
		return MembersLoadedMsg{Members: members, Err: err}
	}
}

// Editing reports whether the list's filter input has focus.
func (m Model) Editing() bool {
	return m.list.FilterState() == list.Filtering
}

// Update handles directory messages and list navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MembersLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		items := make([]list.Item, len(msg.Members))
		for i, member := range msg.Members {
			items[i] = MemberItem{Member: member}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering && msg.String() == "r" {
			return m, m.Reload()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	return m
}

// View renders the directory panel.
func (m Model) View() string {
	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.list.View(),
		errLine,
		theme.HelpStyle.Render("/: filter   r: refresh"),
	)
}
