package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/antfarm/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 80 // Minimum width to show the game list sidebar
	sidebarWidth       = 22 // Width of the game list sidebar
)

// HistoryKeyMap defines the key bindings for the history browser.
type HistoryKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextGame key.Binding
	PrevGame key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextGame, k.PrevGame, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextGame, k.PrevGame},
		{k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextGame: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next game"),
		),
		PrevGame: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev game"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// TurnRow summarizes one committed turn for display.
func TurnRow(rec storage.TurnRecord) table.Row {
	losses := 0
	for _, stage := range rec.Interactions {
		for _, in := range stage {
			losses += in.NumberLost
		}
	}
	foraged, delivered, spawned, hatched := 0, 0, 0, 0
	if rec.Economy != nil {
		foraged = rec.Economy.Foraged
		for _, d := range rec.Economy.Delivered {
			delivered += d
		}
		spawned = len(rec.Economy.Spawned)
		hatched = rec.Economy.Hatched
	}
	return table.Row{
		fmt.Sprintf("%d", rec.Turn),
		fmt.Sprintf("%d", rec.Draws),
		fmt.Sprintf("%d", losses),
		fmt.Sprintf("%d", foraged),
		fmt.Sprintf("%d", delivered),
		fmt.Sprintf("%d", spawned),
		fmt.Sprintf("%d", hatched),
		rec.CreatedAt.Format("Jan 02 15:04"),
	}
}

// HistoryModel is the Bubble Tea model for browsing committed turns.
type HistoryModel struct {
	games       []storage.Game
	gameCursor  int
	store       *storage.Store
	turns       []storage.TurnRecord
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewHistoryModel creates a history browser that starts at game startID.
func NewHistoryModel(store *storage.Store, startID string, width, height int) HistoryModel {
	games, err := store.Games()

	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		games:       games,
		store:       store,
		loadErr:     err,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	for i, g := range games {
		if g.ID == startID {
			m.gameCursor = i
		}
	}

	m.table = m.createTable()
	if len(m.games) > 0 {
		m.loadTurns(m.games[m.gameCursor].ID)
	}
	return m
}

func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Turn", Width: 5},
		{Title: "Draws", Width: 6},
		{Title: "Lost", Width: 5},
		{Title: "Forage", Width: 7},
		{Title: "Banked", Width: 7},
		{Title: "Food+", Width: 6},
		{Title: "Hatch", Width: 6},
		{Title: "Date", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m *HistoryModel) loadTurns(gameID string) {
	turns, err := m.store.Turns(gameID)
	m.turns = turns
	m.loadErr = err
	m.updateTableRows()
}

func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.turns))
	for i, rec := range m.turns {
		rows[i] = TurnRow(rec)
	}
	m.table.SetRows(rows)
	m.table.GotoBottom()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history browser.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextGame):
			if len(m.games) > 0 {
				m.gameCursor = (m.gameCursor + 1) % len(m.games)
				m.loadTurns(m.games[m.gameCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevGame):
			if len(m.games) > 0 {
				m.gameCursor--
				if m.gameCursor < 0 {
					m.gameCursor = len(m.games) - 1
				}
				m.loadTurns(m.games[m.gameCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history browser.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "TURN HISTORY"
	if len(m.games) > 0 {
		g := m.games[m.gameCursor]
		title = fmt.Sprintf("TURN HISTORY - %s (%s)", g.ID, g.Scenario)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	content := boxStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", content))
	} else {
		b.WriteString(content)
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m HistoryModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Games\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, g := range m.games {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.gameCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := g.ID
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return sidebarStyle.Render(sidebar.String())
}

func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	switch {
	case m.loadErr != nil:
		return emptyStyle.Render("Error: " + m.loadErr.Error())
	case len(m.games) == 0:
		return emptyStyle.Render("No games stored yet.\nCreate one with 'antfarm new <scenario>'.")
	}
	return m.table.View()
}

// RunHistory runs the history browser.
func RunHistory(store *storage.Store, startID string, width, height int) error {
	p := tea.NewProgram(
		NewHistoryModel(store, startID, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
