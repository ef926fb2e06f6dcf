package pos

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/keys"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/theme"
)

// ArticlesLoadedMsg is sent when the catalog has been fetched.
type ArticlesLoadedMsg struct {
	Articles []model.Article
	Err      error
}

// orderDoneMsg carries the outcome of submitting an order. The server
// computes the authoritative total.
type orderDoneMsg struct {
	order *model.Order
	err   error
}

// reportLoadedMsg carries today's sales summary.
type reportLoadedMsg struct {
	report *model.DailyReport
	err    error
}

// Model is the point-of-sale view: catalog, cart, and daily report.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	articles []model.Article
	cursor   int
	cart     map[int]int // article id -> quantity
	report   *model.DailyReport

	infoMsg string
	errMsg  string
	width   int
	height  int
}

// New creates the point-of-sale view.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	return Model{
		client: client,
		keys:   k,
		cart:   make(map[int]int),
		width:  width,
		height: height,
	}
}

// Init loads the catalog.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the catalog from the server.
func (m Model) Reload() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		articles, err := client.Articles(context.Background())
		return ArticlesLoadedMsg{Articles: articles, Err: err}
	}
}

// Editing always reports false; the view has no text input.
func (m Model) Editing() bool {
	return false
}

// Update handles catalog messages and cart actions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ArticlesLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.articles = activeArticles(msg.Articles)
		if m.cursor >= len(m.articles) {
			m.cursor = 0
		}
		return m, nil

	case orderDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.cart = make(map[int]int)
		m.infoMsg = fmt.Sprintf(
			"Order #%d complete: %s", msg.order.ID, formatCents(msg.order.Total),
		)
		return m, m.loadReport()

	case reportLoadedMsg:
		if msg.err == nil {
			m.report = msg.report
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.articles)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		return m, tea.Batch(m.Reload(), m.loadReport())
	case "enter", "+":
		if m.cursor < len(m.articles) {
			m.cart[m.articles[m.cursor].ID]++
			m.infoMsg = ""
		}
	case "-":
		if m.cursor < len(m.articles) {
			id := m.articles[m.cursor].ID
			if m.cart[id] > 0 {
				m.cart[id]--
			}
			if m.cart[id] == 0 {
				delete(m.cart, id)
			}
		}
	case "o":
		return m.submitOrder()
	}
	return m, nil
}

func (m Model) submitOrder() (Model, tea.Cmd) {
	if len(m.cart) == 0 {
		m.errMsg = "The cart is empty"
		return m, nil
	}

	var items []model.OrderItem
	for _, a := range m.articles {
		if qty := m.cart[a.ID]; qty > 0 {
			items = append(items, model.OrderItem{ArticleID: a.ID, Quantity: qty})
		}
	}

	client := m.client
	return m, func() tea.Msg {
		order, err := client.CreateOrder(context.Background(), items)
		return orderDoneMsg{order: order, err: err}
	}
}

func (m Model) loadReport() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		report, err := client.DailyReport(context.Background())
		return reportLoadedMsg{report: report, err: err}
	}
}

// SetSize adjusts the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the point-of-sale panel.
func (m Model) View() string {
	header := theme.HeaderStyle.Render("Point of sale")

	var b strings.Builder
	if len(m.articles) == 0 {
		b.WriteString(theme.HelpStyle.Render("No articles in the catalog."))
	}
	for i, a := range m.articles {
		style := theme.ListItemStyle
		if i == m.cursor {
			style = theme.SelectedItemStyle
		}

		line := fmt.Sprintf("%-24s %s", a.Name, theme.PriceStyle.Render(formatCents(a.Price)))
		if qty := m.cart[a.ID]; qty > 0 {
			line += fmt.Sprintf("  × %d", qty)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	cartLine := fmt.Sprintf(
		"Cart: %d items, %s",
		cartCount(m.cart),
		theme.PriceStyle.Render(formatCents(m.cartTotal())),
	)

	var reportLine string
	if m.report != nil {
		reportLine = theme.HelpStyle.Render(fmt.Sprintf(
			"Today: %d orders, %s total",
			m.report.OrderCount, formatCents(m.report.Total),
		))
	}

	var statusLine string
	switch {
	case m.errMsg != "":
		statusLine = theme.ErrorStyle.Render(m.errMsg)
	case m.infoMsg != "":
		statusLine = theme.OwnMessageStyle.Render(m.infoMsg)
	}

	hints := theme.HelpStyle.Render("+/-: cart   o: order   r: refresh")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header, b.String(), cartLine, reportLine, statusLine, hints,
	)
}

// cartTotal is a display-only preview; the server total is
// authoritative once the order is placed.
func (m Model) cartTotal() int {
	total := 0
	for _, a := range m.articles {
		total += a.Price * m.cart[a.ID]
	}
	return total
}

func cartCount(cart map[int]int) int {
	n := 0
	for _, qty := range cart {
		n += qty
	}
	return n
}

func activeArticles(articles []model.Article) []model.Article {
	out := articles[:0:0]
	for _, a := range articles {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}

func formatCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d €", sign, cents/100, cents%100)
}
