package settings

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/keys"
	"github.com/gugverein/portal/internal/store"
	"github.com/gugverein/portal/internal/theme"
)

// SavedMsg is sent after the preferences have been persisted.
type SavedMsg struct{}

// CancelMsg is sent when the user backs out without saving.
type CancelMsg struct{}

// Model is the settings view. It is the only writer of the notification
// preference blob; the watcher reads it each cycle.
type Model struct {
	local *store.SQLiteStore
	keys  *keys.KeyMap
	form  *huh.Form

	chatEnabled  bool
	chatPreview  bool
	pollsEnabled bool
	pollsPreview bool
	themeName    string

	width  int
	height int
}

// New creates the settings view seeded from the persisted preferences.
func New(local *store.SQLiteStore, k *keys.KeyMap, width, height int) Model {
	m := Model{local: local, keys: k, width: width, height: height}
	m.load()
	m.form = m.buildForm()
	return m
}

func (m *Model) load() {
	ctx := context.Background()
	prefs := m.local.GetPreferences(ctx)
	m.chatEnabled = prefs.Chat.Enabled
	m.chatPreview = prefs.Chat.PreviewEnabled
	m.pollsEnabled = prefs.Polls.Enabled
	m.pollsPreview = prefs.Polls.PreviewEnabled
	m.themeName = m.local.GetString(ctx, store.KeyTheme, "default")
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Chat notifications").
				Affirmative("On").
				Negative("Off").
				Value(&m.chatEnabled),
			huh.NewConfirm().
				Title("Chat message preview").
				Affirmative("On").
				Negative("Off").
				Value(&m.chatPreview),
			huh.NewConfirm().
				Title("Poll notifications").
				Affirmative("On").
				Negative("Off").
				Value(&m.pollsEnabled),
			huh.NewConfirm().
				Title("Poll question preview").
				Affirmative("On").
				Negative("Off").
				Value(&m.pollsPreview),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Default", "default"),
					huh.NewOption("High contrast", "contrast"),
				).
				Value(&m.themeName),
		),
	)
}

// Reset re-seeds the form from the persisted state.
func (m Model) Reset() Model {
	m.load()
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and persists on completion.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}
	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	ctx := context.Background()
	prefs := m.local.GetPreferences(ctx)
	prefs.Chat.Enabled = m.chatEnabled
	prefs.Chat.PreviewEnabled = m.chatPreview
	prefs.Polls.Enabled = m.pollsEnabled
	prefs.Polls.PreviewEnabled = m.pollsPreview

	if err := m.local.SetPreferences(ctx, prefs); err != nil {
		log.Printf("settings: saving preferences: %v", err)
	}
	if err := m.local.SetString(ctx, store.KeyTheme, m.themeName); err != nil {
		log.Printf("settings: saving theme: %v", err)
	}

	return m, func() tea.Msg { return SavedMsg{} }
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the settings panel.
func (m Model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		theme.HeaderStyle.Render("Settings"),
		m.form.View(),
		theme.HelpStyle.Render("esc: back without saving"),
	)
}
