package storage

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/turn"
)

// ErrNoRules is returned for a game whose stored rules cannot be read.
var ErrNoRules = errors.New("storage: game has no usable rules")

// encodeGameRules applies a preset to rules and encodes the result for storage.
func encodeGameRules(preset string, rules config.Rules) (string, error) {
	out := rules.Clone()
	if preset != "" {
		p, err := config.ParsePreset(preset)
		if err != nil {
			return "", err
		}
		config.ApplyPreset(&out, p)
	}
	data, err := config.MarshalRules(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Rules returns the rules stored with the game. Games stored before rules
// were recorded fall back to the built-in defaults with the preset applied,
// never to a local rules file.
func (g Game) Rules() (config.Rules, error) {
	if g.RulesYAML == "" {
		legacy, err := encodeGameRules(g.Preset, config.DefaultRules())
		if err != nil {
			return config.Rules{}, err
		}
		g.RulesYAML = legacy
	}
	rules, err := config.ParseRules([]byte(g.RulesYAML))
	if err != nil {
		return config.Rules{}, fmt.Errorf("%w: %s: %w", ErrNoRules, g.ID, err)
	}
	return rules, nil
}

// Advance resolves the latest turn of a game with sel and the game's stored
// rules, and stores the result as the next turn. The random source is seeded
// from the game seed and the turn number, so the same orders always produce
// the same record.
func (s *Store) Advance(gameID string, sel turn.Selections) (TurnRecord, error) {
	return s.AdvanceSeeded(gameID, sel, 0)
}

// AdvanceSeeded is Advance with an explicit seed. Zero derives the seed from
// the game seed and the turn number.
func (s *Store) AdvanceSeeded(gameID string, sel turn.Selections, seed int64) (TurnRecord, error) {
	g, err := s.Game(gameID)
	if err != nil {
		return TurnRecord{}, err
	}
	rules, err := g.Rules()
	if err != nil {
		return TurnRecord{}, err
	}
	latest, err := s.LatestTurn(gameID)
	if err != nil {
		return TurnRecord{}, err
	}

	if seed == 0 {
		seed = rng.TurnSeed(g.Seed, latest.Turn)
	}
	src := rng.NewRecorder(rng.NewSeeded(seed))
	res, err := turn.Resolve(latest.State, sel, rules, src)
	if err != nil {
		return TurnRecord{}, fmt.Errorf("storage: resolve turn %d of %s: %w", latest.Turn, gameID, err)
	}

	econ := res.Economy
	rec := TurnRecord{
		GameID:       gameID,
		Turn:         res.State.Turn,
		State:        res.State,
		Selections:   sel,
		Seed:         seed,
		Draws:        src.Count(),
		Interactions: res.Interactions,
		Economy:      &econ,
	}
	if err := s.SaveTurn(rec); err != nil {
		return TurnRecord{}, err
	}
	return rec, nil
}

// Rerun rebuilds the controller that resolved stored turn n into turn n+1,
// with the game's stored rules and seeded exactly as Advance seeded it. The recorder counts the draws made.
func (s *Store) Rerun(gameID string, n int) (*turn.Controller, *rng.Recorder, error) {
	g, err := s.Game(gameID)
	if err != nil {
		return nil, nil, err
	}
	rules, err := g.Rules()
	if err != nil {
		return nil, nil, err
	}
	start, err := s.Turn(gameID, n)
	if err != nil {
		return nil, nil, err
	}
	next, err := s.Turn(gameID, n+1)
	if err != nil {
		return nil, nil, err
	}

	src := rng.NewRecorder(rng.NewSeeded(next.Seed))
	c, err := turn.New(start.State, next.Selections, rules, src)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: rerun turn %d of %s: %w", n, gameID, err)
	}
	return c, src, nil
}
