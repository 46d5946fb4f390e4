package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/antfarm/internal/combat"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

// CommitFunc persists a committed turn-start state.
type CommitFunc func(next world.State) error

// ViewerModel animates one turn of a controller. Each tick steps the
// controller once; scrubbing back recomputes earlier positions without
// drawing from the random sequence.
type ViewerModel struct {
	ctrl     *turn.Controller
	title    string
	screen   *core.Screen
	config   core.RuntimeConfig
	keys     ViewerKeyMap
	help     help.Model
	onCommit CommitFunc

	paused    bool
	scrub     int // index of the scrubbed position, -1 while following the controller
	shown     world.State
	shownAt   turn.Position
	status    string
	err       error
	committed bool
	quitting  bool
}

// NewViewerModel creates a viewer for c. onCommit may be nil, in which case
// the viewer only watches.
func NewViewerModel(c *turn.Controller, title string, cfg core.RuntimeConfig, onCommit CommitFunc) ViewerModel {
	m := ViewerModel{
		ctrl:     c,
		title:    title,
		screen:   core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:   cfg,
		keys:     DefaultViewerKeyMap(),
		help:     help.New(),
		onCommit: onCommit,
		scrub:    -1,
	}
	m.follow()
	return m
}

// Init starts the tick loop.
func (m ViewerModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m ViewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "?" {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.keys.MapKey(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionPause:
		m.paused = !m.paused
	case core.ActionStep:
		m.paused = true
		m.forward()
	case core.ActionBack:
		m.paused = true
		m.back()
	case core.ActionSkipToEnd:
		m.scrub = -1
		if err := m.ctrl.SkipToEnd(); err != nil {
			m.err = err
		}
		m.follow()
	case core.ActionCommit:
		m.commit()
	}
	return m, nil
}

func (m ViewerModel) handleTick() (tea.Model, tea.Cmd) {
	if !m.paused && m.scrub < 0 && !m.ctrl.Done() && m.ctrl.Err() == nil {
		if err := m.ctrl.Step(); err != nil {
			m.err = err
		}
		m.follow()
	}
	return m, tickCmd(m.config.TickRate)
}

// forward moves the scrub position on, or steps the controller when the
// live position is shown.
func (m *ViewerModel) forward() {
	if m.scrub < 0 {
		if m.ctrl.Done() || m.ctrl.Err() != nil {
			return
		}
		if err := m.ctrl.Step(); err != nil {
			m.err = err
		}
		m.follow()
		return
	}
	m.scrubTo(m.scrub + 1)
}

func (m *ViewerModel) back() {
	current := m.shownAt.Index()
	if current == 0 {
		return
	}
	m.scrubTo(current - 1)
}

func (m *ViewerModel) scrubTo(index int) {
	live := m.ctrl.Shown().Index()
	if index >= live {
		m.scrub = -1
		m.follow()
		return
	}
	pos := turn.PositionAt(index)
	w, err := m.ctrl.DisplayAt(pos)
	if err != nil {
		m.err = err
		return
	}
	m.scrub = index
	m.shown = w
	m.shownAt = pos
}

func (m *ViewerModel) follow() {
	m.shown = m.ctrl.Displayed()
	m.shownAt = m.ctrl.Shown()
}

func (m *ViewerModel) commit() {
	if m.committed || m.onCommit == nil {
		return
	}
	if !m.ctrl.Done() {
		m.status = "turn not resolved yet"
		return
	}
	next, err := m.ctrl.Commit()
	if err == nil {
		err = m.onCommit(next)
	}
	if err != nil {
		m.err = err
		return
	}
	m.committed = true
	m.status = fmt.Sprintf("turn %d committed", next.Turn)
}

// Shown returns the position currently on screen.
func (m ViewerModel) Shown() turn.Position {
	return m.shownAt
}

// Committed reports whether the turn was committed from the viewer.
func (m ViewerModel) Committed() bool {
	return m.committed
}

// Err returns the last error reported by the controller or the commit callback.
func (m ViewerModel) Err() error {
	return m.err
}

// View renders the current state to a string for display.
func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	DrawWorld(m.screen, &m.shown, 0, 0)
	DrawSeparator(m.screen, m.shown.Height())
	y := m.shown.Height() + 1
	y = DrawStatus(m.screen, &m.shown, m.shownAt, y)
	if m.shownAt.Substage == turn.After && m.shownAt.Stage > 0 {
		y = DrawInteractions(m.screen, &m.shown, m.stageLosses(), y)
	}

	state := "playing"
	switch {
	case m.err != nil:
		state = "error: " + m.err.Error()
	case m.ctrl.Done() && m.scrub < 0:
		state = "resolved"
	case m.scrub >= 0:
		state = "scrubbing"
	case m.paused:
		state = "paused"
	}
	if m.status != "" {
		state += "  " + m.status
	}
	m.screen.DrawTextCentered(y, state)

	return titleStyle.Render(centerText(m.title, m.config.ScreenW)) + "\n" +
		RenderScreen(m.screen) + "\n" +
		m.help.View(m.keys)
}

func (m ViewerModel) stageLosses() []combat.Interaction {
	log := m.ctrl.Interactions()
	if m.shownAt.Stage < len(log) {
		return log[m.shownAt.Stage]
	}
	return nil
}

// Run starts the Bubble Tea program for one turn and returns the final model.
func Run(c *turn.Controller, title string, cfg core.RuntimeConfig, onCommit CommitFunc) (ViewerModel, error) {
	model := NewViewerModel(c, title, cfg, onCommit)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return model, err
	}
	if vm, ok := final.(ViewerModel); ok {
		return vm, nil
	}
	return model, nil
}
