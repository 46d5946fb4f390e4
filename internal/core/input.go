package core

// Action represents a semantic viewer command, abstracted from physical key presses.
type Action int

const (
	ActionNone      Action = iota
	ActionStep             // Right, L - advance one transition
	ActionBack             // Left, H - scrub back one transition
	ActionSkipToEnd        // E, End - resolve the remaining stages at once
	ActionPause            // Space, P - pause/resume automatic ticking
	ActionCommit           // Enter - commit a finished turn
	ActionQuit             // Q, Ctrl+C - exit the viewer
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionStep:
		return "Step"
	case ActionBack:
		return "Back"
	case ActionSkipToEnd:
		return "SkipToEnd"
	case ActionPause:
		return "Pause"
	case ActionCommit:
		return "Commit"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
