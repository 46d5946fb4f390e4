package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

func viewerWorld() world.State {
	at := core.C(1, 1)
	return world.State{
		Terrain: world.NewTerrain(4, 3, world.TerrainDirt),
		Colonies: []world.Colony{{
			Ants:       []world.AntStack{{Cast: world.CastQueen, Location: at, StartLocation: at, NumberOfAnts: 1}},
			FoodSupply: 3,
			AntColor:   "red",
		}},
		Food: []world.FoodItem{{Location: core.C(3, 2), Value: 2}},
	}
}

func newTestViewer(t *testing.T, onCommit CommitFunc) ViewerModel {
	t.Helper()
	w := viewerWorld()
	c, err := turn.New(w, turn.Idle(&w), config.DefaultRules(), rng.NewSeeded(3))
	if err != nil {
		t.Fatalf("turn.New() failed: %v", err)
	}
	cfg := core.DefaultConfig()
	return NewViewerModel(c, "test", cfg, onCommit)
}

func update(t *testing.T, m ViewerModel, msg tea.Msg) ViewerModel {
	t.Helper()
	next, _ := m.Update(msg)
	vm, ok := next.(ViewerModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return vm
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewerTicksStep(t *testing.T) {
	m := newTestViewer(t, nil)
	if m.Shown().Index() != 0 {
		t.Fatalf("initial position = %v", m.Shown())
	}
	for i := 0; i < 3; i++ {
		m = update(t, m, TickMsg{})
	}
	if got := m.Shown().Index(); got != 2 {
		t.Errorf("shown index after 3 ticks = %d, expected 2", got)
	}

	m = update(t, m, runes("p"))
	m = update(t, m, TickMsg{})
	if got := m.Shown().Index(); got != 2 {
		t.Errorf("paused viewer moved to %d", got)
	}
}

func TestViewerScrub(t *testing.T) {
	m := newTestViewer(t, nil)
	for i := 0; i < 4; i++ {
		m = update(t, m, TickMsg{})
	}
	live := m.Shown().Index()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.Shown().Index(); got != live-1 {
		t.Errorf("after back shown = %d, expected %d", got, live-1)
	}
	m = update(t, m, TickMsg{})
	if got := m.Shown().Index(); got != live-1 {
		t.Errorf("tick while scrubbing moved to %d", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Shown().Index(); got != live {
		t.Errorf("after forward shown = %d, expected live %d", got, live)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Shown().Index(); got != live+1 {
		t.Errorf("forward at the live position = %d, expected a step to %d", got, live+1)
	}
	if m.Err() != nil {
		t.Errorf("unexpected error: %v", m.Err())
	}
}

func TestViewerSkipAndCommit(t *testing.T) {
	var committed []world.State
	m := newTestViewer(t, func(next world.State) error {
		committed = append(committed, next)
		return nil
	})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(committed) != 0 || m.Committed() {
		t.Fatal("committed before the turn was resolved")
	}

	m = update(t, m, runes("e"))
	if got := m.Shown().Index(); got != turn.LastIndex {
		t.Errorf("after skip shown = %d, expected %d", got, turn.LastIndex)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(committed) != 1 || !m.Committed() {
		t.Fatalf("commit callback ran %d times, expected 1", len(committed))
	}
	if committed[0].Turn != 1 {
		t.Errorf("committed turn = %d, expected 1", committed[0].Turn)
	}
	if !strings.Contains(m.View(), "turn 1 committed") {
		t.Error("view does not report the commit")
	}
}

func TestDrawWorld(t *testing.T) {
	w := viewerWorld()
	s := core.NewScreen(10, 4)
	DrawWorld(s, &w, 0, 0)

	qx, qy := CellOrigin(core.C(1, 1), 0, 0)
	if s.Get(qx, qy) != 'Q' || s.Get(qx+1, qy) != '1' {
		t.Errorf("queen drawn as %q%q", s.Get(qx, qy), s.Get(qx+1, qy))
	}
	if s.GetCell(qx, qy).Color != core.ColorRed {
		t.Errorf("queen color = %v, expected red", s.GetCell(qx, qy).Color)
	}
	fx, fy := CellOrigin(core.C(3, 2), 0, 0)
	if s.Get(fx, fy) != '*' || s.Get(fx+1, fy) != '2' {
		t.Errorf("food drawn as %q%q", s.Get(fx, fy), s.Get(fx+1, fy))
	}
	if s.Get(0, 0) != world.TerrainDirt.Glyph() {
		t.Errorf("dirt drawn as %q", s.Get(0, 0))
	}
}

func TestMapKey(t *testing.T) {
	keys := DefaultViewerKeyMap()
	tests := []struct {
		msg      tea.KeyMsg
		expected core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionStep},
		{runes("h"), core.ActionBack},
		{runes("e"), core.ActionSkipToEnd},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionPause},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionCommit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{runes("z"), core.ActionNone},
	}
	for _, tc := range tests {
		if got := keys.MapKey(tc.msg); got != tc.expected {
			t.Errorf("MapKey(%q) = %v, expected %v", tc.msg.String(), got, tc.expected)
		}
	}
}

func TestViewerLayout(t *testing.T) {
	m := newTestViewer(t, nil)
	m.View()

	rows := strings.Split(m.screen.String(), "\n")
	width := m.screen.Width()
	if sep := rows[m.shown.Height()]; sep != strings.Repeat("─", width) {
		t.Errorf("separator row = %q, expected a full-width rule", sep)
	}

	last := ""
	for _, row := range rows {
		if strings.TrimSpace(row) != "" {
			last = row
		}
	}
	state := strings.TrimSpace(last)
	if state != "playing" {
		t.Fatalf("state line = %q, expected %q", state, "playing")
	}
	if x := strings.Index(last, state); x != (width-len(state))/2 {
		t.Errorf("state line starts at column %d, expected %d", x, (width-len(state))/2)
	}
}
