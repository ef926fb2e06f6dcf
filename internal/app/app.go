package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/keys"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/session"
	"github.com/gugverein/portal/internal/store"
	"github.com/gugverein/portal/internal/theme"
	"github.com/gugverein/portal/internal/toast"
	"github.com/gugverein/portal/internal/ui"
	chatview "github.com/gugverein/portal/internal/ui/chat"
	eventsview "github.com/gugverein/portal/internal/ui/events"
	loginview "github.com/gugverein/portal/internal/ui/login"
	membersview "github.com/gugverein/portal/internal/ui/members"
	pollsview "github.com/gugverein/portal/internal/ui/polls"
	posview "github.com/gugverein/portal/internal/ui/pos"
	registerview "github.com/gugverein/portal/internal/ui/register"
	settingsview "github.com/gugverein/portal/internal/ui/settings"
	tasksview "github.com/gugverein/portal/internal/ui/tasks"
	"github.com/gugverein/portal/internal/watch"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewRegister
	ViewChat
	ViewPolls
	ViewEvents
	ViewMembers
	ViewTasks
	ViewPOS
	ViewSettings
)

// sessionInvalidatedMsg is delivered when the gateway reported an
// authorization failure and the session was torn down.
type sessionInvalidatedMsg struct{}

// restoredMsg carries the result of the startup session restore.
type restoredMsg struct {
	profile *model.Profile
}

// loginResultMsg carries the outcome of a sign-in attempt.
type loginResultMsg struct {
	profile *model.Profile
	err     error
}

// Model is the root Bubble Tea model: view routing, session lifecycle,
// the update watcher, and the toast overlay.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap

	local   *store.SQLiteStore
	sess    *session.Store
	client  *api.Client
	watcher *watch.Watcher

	toasts       toast.Model
	invalidateCh chan struct{}

	loginView    loginview.Model
	registerView registerview.Model
	chatView     chatview.Model
	pollsView    pollsview.Model
	eventsView   eventsview.Model
	membersView  membersview.Model
	tasksView    tasksview.Model
	posView      posview.Model
	settingsView settingsview.Model

	ready    bool
	showHelp bool
}

// New wires the portal client together: session store, gateway,
// watcher, and all views.
func New(cfg *model.AppConfig, local *store.SQLiteStore) Model {
	k := keys.DefaultKeyMap()

	unauthorized := api.NewBroadcaster()
	sess := session.New(local)
	client := api.NewClient(cfg.Server.BaseURL, sess, unauthorized)
	sess.Bind(client, unauthorized)

	selfID := func() int {
		if p := sess.Profile(); p != nil {
			return p.ID
		}
		return 0
	}

	watcher := watch.New(
		watch.NewChatSource(client),
		watch.NewPollSource(client, local),
		local,
		local,
		selfID,
		time.Duration(cfg.Server.PollIntervalSec)*time.Second,
	)
	unauthorized.Subscribe(watcher.Stop)

	// Bridge invalidation events into the Bubble Tea runtime.
	invalidateCh := make(chan struct{}, 1)
	unauthorized.Subscribe(func() {
		select {
		case invalidateCh <- struct{}{}:
		default:
		}
	})

	return Model{
		currentView:  ViewLogin,
		layout:       ui.NewLayout(80, 24),
		keys:         k,
		local:        local,
		sess:         sess,
		client:       client,
		watcher:      watcher,
		toasts:       toast.New(80),
		invalidateCh: invalidateCh,
		loginView:    loginview.New(80, 24),
		registerView: registerview.New(client, 80, 24),
		chatView:     chatview.New(client, k, selfID, 80, 22),
		pollsView:    pollsview.New(client, local, k, selfID, 80, 22),
		eventsView:   eventsview.New(client, k, 80, 22),
		membersView:  membersview.New(client, k, 80, 22),
		tasksView:    tasksview.New(client, k, selfID, 80, 22),
		posView:      posview.New(client, k, 80, 22),
		settingsView: settingsview.New(local, k, 80, 22),
	}
}

// Init restores any persisted session and arms the invalidation bridge.
func (m Model) Init() tea.Cmd {
	sess := m.sess
	restore := func() tea.Msg {
		return restoredMsg{profile: sess.Restore(context.Background())}
	}
	return tea.Batch(m.loginView.Init(), restore, m.waitForInvalidation())
}

// waitForInvalidation blocks until the broadcaster fires, then delivers
// a sessionInvalidatedMsg.
func (m Model) waitForInvalidation() tea.Cmd {
	ch := m.invalidateCh
	return func() tea.Msg {
		<-ch
		return sessionInvalidatedMsg{}
	}
}

// Update routes messages to the session lifecycle, the watcher bridge,
// and the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The toast overlay sees every message so expiry ticks always land.
	var toastCmd tea.Cmd
	m.toasts, toastCmd = m.toasts.Update(msg)
	if toastCmd != nil {
		cmds = append(cmds, toastCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg, cmds)

	case restoredMsg:
		if msg.profile != nil || m.sess.Authenticated() {
			return m.enterPortal(cmds)
		}
		return m, tea.Batch(cmds...)

	case sessionInvalidatedMsg:
		m.watcher.Stop()
		m.currentView = ViewLogin
		m.loginView = m.loginView.Reset().SetError("Your session has expired. Please sign in again.")
		cmds = append(cmds, m.loginView.Init(), m.waitForInvalidation())
		return m, tea.Batch(cmds...)

	case loginview.SubmittedMsg:
		sess := m.sess
		username, password := msg.Username, msg.Password
		cmds = append(cmds, func() tea.Msg {
			profile, err := sess.Login(context.Background(), username, password)
			return loginResultMsg{profile: profile, err: err}
		})
		return m, tea.Batch(cmds...)

	case loginResultMsg:
		if msg.err != nil {
			m.loginView = m.loginView.SetError(msg.err.Error())
			cmds = append(cmds, m.loginView.Init())
			return m, tea.Batch(cmds...)
		}
		return m.enterPortal(cmds)

	case loginview.SwitchToRegisterMsg:
		m.currentView = ViewRegister
		m.registerView = registerview.New(m.client, m.layout.Width, m.layout.Height)
		cmds = append(cmds, m.registerView.Init())
		return m, tea.Batch(cmds...)

	case registerview.DoneMsg, registerview.CancelMsg:
		m.currentView = ViewLogin
		m.loginView = m.loginView.Reset()
		cmds = append(cmds, m.loginView.Init())
		return m, tea.Batch(cmds...)

	case watch.NotificationMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Push(msg.Message, toast.KindSuccess)
		cmds = append(cmds, cmd, m.watcher.WaitForNextResult())
		if msg.Feed == "chat" {
			cmds = append(cmds, m.chatView.Reload())
		}
		return m, tea.Batch(cmds...)

	case watch.PollsRefreshedMsg:
		cmds = append(cmds, m.pollsView.ReloadFromCache(), m.watcher.WaitForNextResult())
		return m, tea.Batch(cmds...)

	case settingsview.SavedMsg, settingsview.CancelMsg:
		m.currentView = ViewChat
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if handled, nm, cmd := m.handleGlobalKeys(msg); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return nm, tea.Batch(cmds...)
		}
	}

	nm, cmd := m.routeToView(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return nm, tea.Batch(cmds...)
}

// enterPortal switches to the main surface after login/restore and
// starts the update watcher.
func (m Model) enterPortal(cmds []tea.Cmd) (Model, tea.Cmd) {
	m.currentView = ViewChat
	cmds = append(cmds,
		m.watcher.Start(),
		m.chatView.Init(),
		m.pollsView.Init(),
		m.eventsView.Init(),
		m.membersView.Init(),
		m.tasksView.Init(),
		m.posView.Init(),
	)
	return m, tea.Batch(cmds...)
}

func (m Model) handleResize(msg tea.WindowSizeMsg, cmds []tea.Cmd) (Model, tea.Cmd) {
	m.layout = ui.NewLayout(msg.Width, msg.Height)
	m.ready = true

	contentH := m.layout.ContentHeight()
	m.toasts = m.toasts.SetWidth(msg.Width)
	m.loginView = m.loginView.SetSize(msg.Width, msg.Height)
	m.registerView = m.registerView.SetSize(msg.Width, msg.Height)
	m.chatView = m.chatView.SetSize(msg.Width, contentH)
	m.pollsView = m.pollsView.SetSize(msg.Width, contentH)
	m.eventsView = m.eventsView.SetSize(msg.Width, contentH)
	m.membersView = m.membersView.SetSize(msg.Width, contentH)
	m.tasksView = m.tasksView.SetSize(msg.Width, contentH)
	m.posView = m.posView.SetSize(msg.Width, contentH)
	m.settingsView = m.settingsView.SetSize(msg.Width, contentH)

	return m, tea.Batch(cmds...)
}

// handleGlobalKeys processes bindings that work from any main view.
// Returns handled=false while a form or composer has focus.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return true, m, tea.Quit
	}

	if !m.sess.Authenticated() || m.viewEditing() {
		return false, m, nil
	}

	switch {
	case key.Matches(msg, m.keys.GoChat):
		m.currentView = ViewChat
	case key.Matches(msg, m.keys.GoPolls):
		m.currentView = ViewPolls
	case key.Matches(msg, m.keys.GoEvents):
		m.currentView = ViewEvents
	case key.Matches(msg, m.keys.GoMembers):
		m.currentView = ViewMembers
	case key.Matches(msg, m.keys.GoTasks):
		m.currentView = ViewTasks
	case key.Matches(msg, m.keys.GoPOS):
		m.currentView = ViewPOS
	case key.Matches(msg, m.keys.GoSettings):
		m.currentView = ViewSettings
		m.settingsView = m.settingsView.Reset()
		return true, m, m.settingsView.Init()
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts = m.toasts.DismissOldest()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Logout):
		return true, m, m.logout()
	default:
		return false, m, nil
	}
	return true, m, nil
}

// logout tears down the session locally. The watermarks stay put, so a
// relogin does not renotify old items.
func (m *Model) logout() tea.Cmd {
	m.watcher.Stop()
	m.sess.Invalidate()
	m.currentView = ViewLogin
	m.loginView = m.loginView.Reset()
	return m.loginView.Init()
}

// viewEditing reports whether the active view holds a focused text
// input, in which case global single-key bindings must not fire.
func (m Model) viewEditing() bool {
	switch m.currentView {
	case ViewChat:
		return m.chatView.Composing()
	case ViewPolls:
		return m.pollsView.Editing()
	case ViewEvents:
		return m.eventsView.Editing()
	case ViewMembers:
		return m.membersView.Editing()
	case ViewTasks:
		return m.tasksView.Editing()
	case ViewSettings:
		return true
	case ViewLogin, ViewRegister:
		return true
	}
	return false
}

func (m Model) routeToView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewRegister:
		m.registerView, cmd = m.registerView.Update(msg)
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewPolls:
		m.pollsView, cmd = m.pollsView.Update(msg)
	case ViewEvents:
		m.eventsView, cmd = m.eventsView.Update(msg)
	case ViewMembers:
		m.membersView, cmd = m.membersView.Update(msg)
	case ViewTasks:
		m.tasksView, cmd = m.tasksView.Update(msg)
	case ViewPOS:
		m.posView, cmd = m.posView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

// View renders the full terminal frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}
	if m.currentView == ViewRegister {
		return m.registerView.View()
	}

	identity := ""
	if p := m.sess.Profile(); p != nil {
		identity = p.DisplayName
	}

	header := m.layout.RenderHeader("GUG member portal", identity)
	statusBar := m.layout.RenderStatusBar(m.statusHints())

	content := m.activeContent()
	if m.showHelp {
		content = m.helpContent()
	}

	return m.layout.RenderWithFrame(header, content, m.toasts.View(), statusBar)
}

func (m Model) activeContent() string {
	switch m.currentView {
	case ViewChat:
		return m.chatView.View()
	case ViewPolls:
		return m.pollsView.View()
	case ViewEvents:
		return m.eventsView.View()
	case ViewMembers:
		return m.membersView.View()
	case ViewTasks:
		return m.tasksView.View()
	case ViewPOS:
		return m.posView.View()
	case ViewSettings:
		return m.settingsView.View()
	}
	return ""
}

func (m Model) statusHints() string {
	return "1:chat 2:polls 3:events 4:members 5:tasks 6:pos 0:settings ?:help ctrl+l:sign out"
}

func (m Model) helpContent() string {
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render("Keyboard reference"))
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString("  ")
			b.WriteString(theme.OwnMessageStyle.Render(h.Key))
			b.WriteString("  ")
			b.WriteString(h.Desc)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(theme.HelpStyle.Render("?: close help"))
	return b.String()
}
