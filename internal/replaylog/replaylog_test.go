package replaylog

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vovakirdan/antfarm/internal/action"
	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

func duel() (world.State, turn.Selections) {
	w := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainDirt),
		Colonies: []world.Colony{
			{Ants: []world.AntStack{{Cast: world.CastWarrior, Location: core.C(2, 2), NumberOfAnts: 5}}},
			{Ants: []world.AntStack{{Cast: world.CastWarrior, Location: core.C(3, 2), NumberOfAnts: 4}}},
		},
	}
	return w, turn.Selections{{action.Defend()}, {action.None()}}
}

func TestCaptureAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "turn-0.jsonl.zst")
	w, sel := duel()

	c, err := turn.New(w, sel, config.DefaultRules(), rng.NewFixed(0.1, 0.9, 0.9, 0.9, 0.5, 0.5, 0.5, 0.5, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	lw, err := Create(path)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := Capture(c, lw, 0); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if err := lw.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := lw.Close(); err != nil {
		t.Errorf("second Close() = %v, expected nil", err)
	}

	entries, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() failed: %v", err)
	}
	if len(entries) != turn.LastIndex+1 {
		t.Fatalf("got %d entries, expected %d", len(entries), turn.LastIndex+1)
	}

	first := entries[0]
	if first.Stage != 0 || first.Substage != "after" {
		t.Errorf("first entry is %d/%s, expected 0/after", first.Stage, first.Substage)
	}
	// Stage 1 Interacting carries the fight.
	fight := entries[2]
	if fight.Stage != 1 || fight.Substage != "interacting" || len(fight.Interactions) != 1 {
		t.Errorf("entry 2 = %d/%s with %+v", fight.Stage, fight.Substage, fight.Interactions)
	}
	last := entries[len(entries)-1]
	if !reflect.DeepEqual(last.State, c.Displayed()) {
		t.Error("last entry does not match the final displayed state")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "absent.zst")); err == nil {
		t.Error("expected error for a missing log")
	}
}
