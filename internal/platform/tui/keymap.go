package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/antfarm/internal/core"
)

// ViewerKeyMap defines the key bindings of the turn viewer.
type ViewerKeyMap struct {
	Step   key.Binding
	Back   key.Binding
	Skip   key.Binding
	Pause  key.Binding
	Commit key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Step, k.Back, k.Skip, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ViewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Step, k.Back, k.Skip},
		{k.Commit, k.Help, k.Quit},
	}
}

// DefaultViewerKeyMap returns default key bindings.
func DefaultViewerKeyMap() ViewerKeyMap {
	return ViewerKeyMap{
		Step: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "step"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "back"),
		),
		Skip: key.NewBinding(
			key.WithKeys("e", "end"),
			key.WithHelp("e", "skip to end"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "pause"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "commit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MapKey translates a key message to a viewer action.
// Help is handled by the model and maps to ActionNone.
func (k ViewerKeyMap) MapKey(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Step):
		return core.ActionStep
	case key.Matches(msg, k.Back):
		return core.ActionBack
	case key.Matches(msg, k.Skip):
		return core.ActionSkipToEnd
	case key.Matches(msg, k.Pause):
		return core.ActionPause
	case key.Matches(msg, k.Commit):
		return core.ActionCommit
	}
	return core.ActionNone
}
