package polls

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
	"github.com/gugverein/portal/internal/store"
	"github.com/gugverein/portal/internal/theme"
)

// PollsLoadedMsg is sent when the poll list has been loaded.
type PollsLoadedMsg struct {
	Polls []model.Poll
	Err   error
}

type actionDoneMsg struct {
	err error
}

// mode is the view's input state.
type mode int

const (
	modeBrowse mode = iota
	modeVote
	modeCreate
)

// Model is the polls view: browse, vote, create, delete.
type Model struct {
	client *api.Client
	local  *store.SQLiteStore
	keys   *keys.KeyMap
	selfID func() int

	polls  []model.Poll
	cursor int
	mode   mode

	voteForm    *huh.Form
	votePollID  int
	voteSingle  string
	voteMulti   []string
	createForm  *huh.Form
	newQuestion string
	newOptions  string
	newMulti    bool

	errMsg string
	width  int
	height int
}

// New creates the polls view.
func New(client *api.Client, local *store.SQLiteStore, k *keys.KeyMap, selfID func() int, width, height int) Model {
	return Model{
		client: client,
		local:  local,
		keys:   k,
		selfID: selfID,
		width:  width,
		height: height,
	}
}

// Init loads polls from the server.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the poll list from the server.
func (m Model) Reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		polls, err := client.Polls(context.Background())
		return PollsLoadedMsg{Polls: polls, Err: err}
	}
}

// ReloadFromCache loads the poll list the watcher last cached. Used
// when a background cycle refreshed the cache so the view stays current
// without an extra request.
func (m Model) ReloadFromCache() tea.Cmd {
	local := m.local
	return func() tea.Msg {
		polls, err := local.GetPolls(context.Background())
		return PollsLoadedMsg{Polls: polls, Err: err}
	}
}

// Editing reports whether a form has focus.
func (m Model) Editing() bool {
	return m.mode != modeBrowse
}

// Update handles poll list messages, voting, and creation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PollsLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.polls = msg.Polls
		if m.cursor >= len(m.polls) {
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

	switch m.mode {
	case modeVote:
		return m.updateVoteForm(msg)
	case modeCreate:
		return m.updateCreateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleBrowseKeys(key)
	}
	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.polls)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m, m.Reload()
	case "n":
		m.mode = modeCreate
		m.newQuestion = ""
		m.newOptions = ""
		m.newMulti = false
		m.createForm = m.buildCreateForm()
		return m, m.createForm.Init()
	case "d":
		return m.deleteSelected()
	case "enter":
		return m.startVote()
	}
	return m, nil
}

func (m Model) startVote() (Model, tea.Cmd) {
	if m.cursor >= len(m.polls) {
		return m, nil
	}
	p := m.polls[m.cursor]
	if p.HasVoted {
		m.errMsg = "You already voted in this poll"
		return m, nil
	}

	m.votePollID = p.ID
	m.voteSingle = ""
	m.voteMulti = nil

	options := make([]huh.Option[string], len(p.Options))
	for i, o := range p.Options {
		options[i] = huh.NewOption(o.Text, fmt.Sprintf("%d", o.ID))
	}

	if p.IsMultipleChoice {
		m.voteForm = huh.NewForm(
			huh.NewGroup(
				huh.NewMultiSelect[string]().
					Title(p.Question).
					Options(options...).
					Value(&m.voteMulti),
			),
		)
	} else {
		m.voteForm = huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(p.Question).
					Options(options...).
					Value(&m.voteSingle),
			),
		)
	}

	m.mode = modeVote
	m.errMsg = ""
	return m, m.voteForm.Init()
}

func (m Model) updateVoteForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.voteForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.voteForm = f
	}

	if m.voteForm.State == huh.StateAborted {
		m.mode = modeBrowse
		return m, nil
	}
	if m.voteForm.State != huh.StateCompleted {
		return m, cmd
	}

	var raw []string
	if m.voteSingle != "" {
		raw = []string{m.voteSingle}
	} else {
		raw = m.voteMulti
	}

	var optionIDs []int
	for _, r := range raw {
		var id int
		if _, err := fmt.Sscanf(r, "%d", &id); err == nil {
			optionIDs = append(optionIDs, id)
		}
	}

	m.mode = modeBrowse
	if len(optionIDs) == 0 {
		return m, nil
	}

	client := m.client
	pollID := m.votePollID
	return m, func() tea.Msg {
		err := client.Vote(context.Background(), pollID, optionIDs)
		return actionDoneMsg{err: err}
	}
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Question").
				Value(&m.newQuestion),
			huh.NewInput().
				Title("Options (comma separated)").
				Value(&m.newOptions),
			huh.NewConfirm().
				Title("Allow multiple choices?").
				Value(&m.newMulti),
		),
	)
}

func (m Model) updateCreateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.createForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.createForm = f
	}

	if m.createForm.State == huh.StateAborted {
		m.mode = modeBrowse
		return m, nil
	}
	if m.createForm.State != huh.StateCompleted {
		return m, cmd
	}

	m.mode = modeBrowse

	var options []string
	for _, o := range strings.Split(m.newOptions, ",") {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}

	question := strings.TrimSpace(m.newQuestion)
	if question == "" || len(options) < 2 {
		m.errMsg = "A poll needs a question and at least two options"
		return m, nil
	}

	req := api.CreatePollRequest{
		Question:         question,
		Options:          options,
		IsMultipleChoice: m.newMulti,
	}
	client := m.client
	return m, func() tea.Msg {
		err := client.CreatePoll(context.Background(), req)
		return actionDoneMsg{err: err}
	}
}

func (m Model) deleteSelected() (Model, tea.Cmd) {
	if m.cursor >= len(m.polls) {
		return m, nil
	}
	p := m.polls[m.cursor]
	if p.AuthorID != m.selfID() {
		m.errMsg = "Only the poll's author can delete it"
		return m, nil
	}

	client := m.client
	return m, func() tea.Msg {
		err := client.DeletePoll(context.Background(), p.ID)
		return actionDoneMsg{err: err}
	}
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the polls panel.
func (m Model) View() string {
	header := theme.HeaderStyle.Render("Polls")

	if m.mode == modeVote {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.voteForm.View())
	}
	if m.mode == modeCreate {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.createForm.View())
	}

	var b strings.Builder
	if len(m.polls) == 0 {
		b.WriteString(theme.HelpStyle.Render("No polls right now."))
	}
	for i, p := range m.polls {
		b.WriteString(m.renderPoll(p, i == m.cursor))
		b.WriteString("\n")
	}

	var errLine string
	if m.errMsg != "" {
		errLine = theme.ErrorStyle.Render(m.errMsg)
	}

	hints := theme.HelpStyle.Render("enter: vote   n: new poll   d: delete   r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, header, b.String(), errLine, hints)
}

func (m Model) renderPoll(p model.Poll, selected bool) string {
	style := theme.ListItemStyle
	if selected {
		style = theme.SelectedItemStyle
	}

	status := fmt.Sprintf("%d votes", p.TotalVotes)
	if p.HasVoted {
		status += " · voted"
	}
	if p.IsMultipleChoice {
		status += " · multiple choice"
	}

	var lines []string
	lines = append(lines, fmt.Sprintf(
		"%s  %s",
		lipgloss.NewStyle().Bold(true).Render(p.Question),
		theme.HelpStyle.Render(status),
	))
	for _, o := range p.Options {
		lines = append(lines, fmt.Sprintf("  %s (%d)", o.Text, o.Votes))
	}

	return style.Render(strings.Join(lines, "\n")) + "\n"
}
