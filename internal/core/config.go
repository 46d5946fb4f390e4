package core

// RuntimeConfig contains configuration passed to the viewer at startup.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Stage transitions per second
	Seed     int64 // Random sequence seed for the turn being resolved
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 8,
		Seed:     0, // 0 means derive from the game seed and turn number
	}
}
