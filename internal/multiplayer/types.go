// Package multiplayer gathers the orders of several colonies for one turn and
// tells connected viewers when a turn has been committed.
package multiplayer

// SessionID uniquely identifies a viewer's session (e.g., SSH connection).
type SessionID string

// GameID names a stored game.
type GameID string
