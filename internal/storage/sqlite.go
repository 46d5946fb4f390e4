// Package storage provides SQLite-based persistence for games and their
// committed turns. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/antfarm/internal/combat"
	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/economy"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

var (
	// ErrNotFound is returned when a game or turn does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrTurnExists is returned when a turn has already been committed.
	ErrTurnExists = errors.New("storage: turn already committed")
)

// Store manages the SQLite database connection.
type Store struct {
	db *sqlx.DB
}

// Game is one stored game.
type Game struct {
	ID        string    `db:"id"`
	Scenario  string    `db:"scenario"`
	Seed      int64     `db:"seed"`
	Preset    string    `db:"preset"`
	RulesYAML string    `db:"rules_yaml"` // rules every turn of the game is resolved with
	CreatedAt time.Time `db:"created_at"`
}

// TurnRecord is a committed turn-start state together with what produced it.
// Turn 0 has no selections, seed or interactions.
type TurnRecord struct {
	GameID       string
	Turn         int
	State        world.State
	Selections   turn.Selections
	Seed         int64
	Draws        int
	Interactions [][]combat.Interaction
	Economy      *economy.Report
	CreatedAt    time.Time
}

type turnRow struct {
	GameID           string         `db:"game_id"`
	Turn             int            `db:"turn"`
	StateJSON        string         `db:"state_json"`
	SelectionsJSON   sql.NullString `db:"selections_json"`
	Seed             sql.NullInt64  `db:"seed"`
	Draws            int            `db:"draws"`
	InteractionsJSON sql.NullString `db:"interactions_json"`
	EconomyJSON      sql.NullString `db:"economy_json"`
	CreatedAt        time.Time      `db:"created_at"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL,
			preset TEXT NOT NULL DEFAULT 'normal',
			rules_yaml TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS turns (
			game_id TEXT NOT NULL REFERENCES games(id),
			turn INTEGER NOT NULL,
			state_json TEXT NOT NULL,
			selections_json TEXT,
			seed INTEGER,
			draws INTEGER NOT NULL DEFAULT 0,
			interactions_json TEXT,
			economy_json TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game_id, turn)
		);
		CREATE INDEX IF NOT EXISTS idx_turns_game ON turns(game_id, turn DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before rules were stored lack the column.
	var hasRules int
	if err := s.db.Get(&hasRules, "SELECT COUNT(*) FROM pragma_table_info('games') WHERE name = 'rules_yaml'"); err != nil {
		return err
	}
	if hasRules == 0 {
		if _, err := s.db.Exec("ALTER TABLE games ADD COLUMN rules_yaml TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateGame stores a new game and its turn 0 state. The game's preset is
// applied to rules and the result is stored with the game, so every later
// turn resolves with the same rules wherever it is run.
func (s *Store) CreateGame(g Game, initial world.State, rules config.Rules) error {
	rulesYAML, err := encodeGameRules(g.Preset, rules)
	if err != nil {
		return err
	}
	stateJSON, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("storage: cannot encode state: %w", err)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO games (id, scenario, seed, preset, rules_yaml) VALUES (?, ?, ?, ?, ?)",
		g.ID, g.Scenario, g.Seed, g.Preset, rulesYAML,
	); err != nil {
		return fmt.Errorf("storage: cannot create game %s: %w", g.ID, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO turns (game_id, turn, state_json) VALUES (?, ?, ?)",
		g.ID, initial.Turn, string(stateJSON),
	); err != nil {
		return fmt.Errorf("storage: cannot save initial turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit game: %w", err)
	}
	return nil
}

// Game returns a stored game by ID.
func (s *Store) Game(id string) (Game, error) {
	var g Game
	err := s.db.Get(&g, "SELECT id, scenario, seed, preset, rules_yaml, created_at FROM games WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return Game{}, fmt.Errorf("storage: cannot load game: %w", err)
	}
	return g, nil
}

// Games returns every stored game, newest first.
func (s *Store) Games() ([]Game, error) {
	var games []Game
	err := s.db.Select(&games, "SELECT id, scenario, seed, preset, rules_yaml, created_at FROM games ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list games: %w", err)
	}
	return games, nil
}

// SaveTurn commits a resolved turn. The record's Turn must not exist yet.
func (s *Store) SaveTurn(rec TurnRecord) error {
	row, err := encodeTurn(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.Get(&exists, "SELECT COUNT(*) FROM turns WHERE game_id = ? AND turn = ?", rec.GameID, rec.Turn); err != nil {
		return fmt.Errorf("storage: cannot check turn: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: game %s turn %d", ErrTurnExists, rec.GameID, rec.Turn)
	}

	if _, err := tx.NamedExec(`
		INSERT INTO turns (game_id, turn, state_json, selections_json, seed, draws, interactions_json, economy_json)
		VALUES (:game_id, :turn, :state_json, :selections_json, :seed, :draws, :interactions_json, :economy_json)`,
		row,
	); err != nil {
		return fmt.Errorf("storage: cannot save turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit turn: %w", err)
	}
	return nil
}

const turnColumns = "game_id, turn, state_json, selections_json, seed, draws, interactions_json, economy_json, created_at"

// Turn returns one committed turn of a game.
func (s *Store) Turn(gameID string, n int) (TurnRecord, error) {
	var row turnRow
	err := s.db.Get(&row, "SELECT "+turnColumns+" FROM turns WHERE game_id = ? AND turn = ?", gameID, n)
	if errors.Is(err, sql.ErrNoRows) {
		return TurnRecord{}, fmt.Errorf("%w: game %s turn %d", ErrNotFound, gameID, n)
	}
	if err != nil {
		return TurnRecord{}, fmt.Errorf("storage: cannot load turn: %w", err)
	}
	return decodeTurn(row)
}

// LatestTurn returns the most recent committed turn of a game.
func (s *Store) LatestTurn(gameID string) (TurnRecord, error) {
	var row turnRow
	err := s.db.Get(&row, "SELECT "+turnColumns+" FROM turns WHERE game_id = ? ORDER BY turn DESC LIMIT 1", gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return TurnRecord{}, fmt.Errorf("%w: game %s has no turns", ErrNotFound, gameID)
	}
	if err != nil {
		return TurnRecord{}, fmt.Errorf("storage: cannot load turn: %w", err)
	}
	return decodeTurn(row)
}

// Turns returns every committed turn of a game in order.
func (s *Store) Turns(gameID string) ([]TurnRecord, error) {
	var rows []turnRow
	if err := s.db.Select(&rows, "SELECT "+turnColumns+" FROM turns WHERE game_id = ? ORDER BY turn", gameID); err != nil {
		return nil, fmt.Errorf("storage: cannot list turns: %w", err)
	}
	out := make([]TurnRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeTurn(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteGame removes a game and all its turns.
func (s *Store) DeleteGame(id string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM turns WHERE game_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete turns: %w", err)
	}
	res, err := tx.Exec("DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	return tx.Commit()
}

func encodeTurn(rec TurnRecord) (turnRow, error) {
	row := turnRow{GameID: rec.GameID, Turn: rec.Turn, Draws: rec.Draws}

	b, err := json.Marshal(rec.State)
	if err != nil {
		return row, fmt.Errorf("storage: cannot encode state: %w", err)
	}
	row.StateJSON = string(b)

	if rec.Selections != nil {
		b, err := json.Marshal(rec.Selections)
		if err != nil {
			return row, fmt.Errorf("storage: cannot encode selections: %w", err)
		}
		row.SelectionsJSON = sql.NullString{String: string(b), Valid: true}
		row.Seed = sql.NullInt64{Int64: rec.Seed, Valid: true}
	}
	if rec.Interactions != nil {
		b, err := json.Marshal(rec.Interactions)
		if err != nil {
			return row, fmt.Errorf("storage: cannot encode interactions: %w", err)
		}
		row.InteractionsJSON = sql.NullString{String: string(b), Valid: true}
	}
	if rec.Economy != nil {
		b, err := json.Marshal(rec.Economy)
		if err != nil {
			return row, fmt.Errorf("storage: cannot encode economy report: %w", err)
		}
		row.EconomyJSON = sql.NullString{String: string(b), Valid: true}
	}
	return row, nil
}

func decodeTurn(row turnRow) (TurnRecord, error) {
	rec := TurnRecord{
		GameID:    row.GameID,
		Turn:      row.Turn,
		Seed:      row.Seed.Int64,
		Draws:     row.Draws,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.StateJSON), &rec.State); err != nil {
		return rec, fmt.Errorf("storage: turn %d: cannot decode state: %w", row.Turn, err)
	}
	if row.SelectionsJSON.Valid {
		if err := json.Unmarshal([]byte(row.SelectionsJSON.String), &rec.Selections); err != nil {
			return rec, fmt.Errorf("storage: turn %d: cannot decode selections: %w", row.Turn, err)
		}
	}
	if row.InteractionsJSON.Valid {
		if err := json.Unmarshal([]byte(row.InteractionsJSON.String), &rec.Interactions); err != nil {
			return rec, fmt.Errorf("storage: turn %d: cannot decode interactions: %w", row.Turn, err)
		}
	}
	if row.EconomyJSON.Valid {
		var report economy.Report
		if err := json.Unmarshal([]byte(row.EconomyJSON.String), &report); err != nil {
			return rec, fmt.Errorf("storage: turn %d: cannot decode economy report: %w", row.Turn, err)
		}
		rec.Economy = &report
	}
	return rec, nil
}
