package action

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

var testParams = Params{
	EggMax:         3,
	IncubationDays: 4,
	LayCost:        2,
	TunnelCost:     1,
	ChamberCost:    3,
}

// singleStack builds a 5x5 dirt world with one colony holding one stack.
func singleStack(cast world.Cast, at core.Coord, supply int) world.State {
	return world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainDirt),
		Colonies: []world.Colony{{
			Ants: []world.AntStack{{
				Cast:          cast,
				Facing:        0,
				Location:      at,
				StartLocation: at,
				NumberOfAnts:  3,
			}},
			FoodSupply: supply,
		}},
	}
}

var ref0 = world.AntRef{Colony: 0, Ant: 0}

func TestStepIndex(t *testing.T) {
	tests := []struct {
		steps, stage, expected int
	}{
		{1, 0, -1},
		{1, 1, 0},
		{1, 12, 0},
		{3, 0, -1},
		{3, 4, 0},
		{3, 5, 1},
		{3, 8, 1},
		{3, 9, 2},
		{3, 12, 2},
		{12, 1, 0},
		{12, 6, 5},
		{12, 12, 11},
		{20, 12, 19},
		{20, 1, 1},
	}

	for _, tc := range tests {
		if got := StepIndex(tc.steps, tc.stage); got != tc.expected {
			t.Errorf("StepIndex(%d, %d) = %d, expected %d", tc.steps, tc.stage, got, tc.expected)
		}
	}
}

func TestStepIndexMonotone(t *testing.T) {
	for n := 1; n <= 30; n++ {
		prev := StepIndex(n, 0)
		if prev != -1 {
			t.Errorf("StepIndex(%d, 0) = %d, expected -1", n, prev)
		}
		for stage := 1; stage <= Stages; stage++ {
			k := StepIndex(n, stage)
			if k < prev {
				t.Errorf("StepIndex(%d, %d) = %d decreased from %d", n, stage, k, prev)
			}
			prev = k
		}
		if prev != n-1 {
			t.Errorf("StepIndex(%d, 12) = %d, expected %d", n, prev, n-1)
		}
	}
}

func TestMoveAcrossStages(t *testing.T) {
	w := singleStack(world.CastWorker, core.C(2, 1), 0)
	act := Move(core.C(2, 1), core.C(2, 2), core.C(3, 2))
	if err := act.Check(w.Colonies[0].Ants[0]); err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	expected := map[int]struct {
		loc    core.Coord
		facing int
	}{
		0:  {core.C(2, 1), 0},
		4:  {core.C(2, 1), 0},
		5:  {core.C(2, 2), 7},
		8:  {core.C(2, 2), 7},
		9:  {core.C(3, 2), 3},
		12: {core.C(3, 2), 3},
	}

	ap := NewApplier(testParams)
	for stage := 0; stage <= Stages; stage++ {
		if err := ap.ApplyStage(&w, ref0, act, stage); err != nil {
			t.Fatalf("stage %d: %v", stage, err)
		}
		want, ok := expected[stage]
		if !ok {
			continue
		}
		got := w.Colonies[0].Ants[0]
		if got.Location != want.loc {
			t.Errorf("stage %d: location = %v, expected %v", stage, got.Location, want.loc)
		}
		if got.Facing != want.facing {
			t.Errorf("stage %d: facing = %d, expected %d", stage, got.Facing, want.facing)
		}
	}
}

func TestMoveFromFreshCopyMatchesSequential(t *testing.T) {
	start := singleStack(world.CastWorker, core.C(1, 1), 0)
	act := Move(core.C(1, 1), core.C(2, 1), core.C(2, 2), core.C(2, 3), core.C(1, 3))

	seq := start.Clone()
	ap := NewApplier(testParams)
	for stage := 0; stage <= Stages; stage++ {
		if err := ap.ApplyStage(&seq, ref0, act, stage); err != nil {
			t.Fatal(err)
		}
		fresh := start.Clone()
		if err := NewApplier(testParams).ApplyStage(&fresh, ref0, act, stage); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(seq, fresh) {
			t.Errorf("stage %d: sequential and fresh application differ", stage)
		}
	}
	if loc := seq.Colonies[0].Ants[0].Location; loc != core.C(1, 3) {
		t.Errorf("final location = %v, expected [1,3]", loc)
	}
}

func TestMoveFirstStepAway(t *testing.T) {
	// A move whose first step leaves the start cell faces that way immediately.
	w := singleStack(world.CastWorker, core.C(2, 2), 0)
	act := Move(core.C(3, 2))
	if err := NewApplier(testParams).ApplyStage(&w, ref0, act, 1); err != nil {
		t.Fatal(err)
	}
	got := w.Colonies[0].Ants[0]
	if got.Location != core.C(3, 2) || got.Facing != 3 {
		t.Errorf("got %v facing %d, expected [3,2] facing 3", got.Location, got.Facing)
	}
}

func TestDigChargesOnce(t *testing.T) {
	w := singleStack(world.CastWorker, core.C(1, 1), 10)
	act := Dig(core.C(2, 1), DigTunnel)

	ap := NewApplier(testParams)
	for stage := 0; stage <= Stages; stage++ {
		if err := ap.ApplyStage(&w, ref0, act, stage); err != nil {
			t.Fatalf("stage %d: %v", stage, err)
		}
		stack := w.Colonies[0].Ants[0]
		if stage == digMoveStage && stack.Location != core.C(1, 1) {
			t.Errorf("stage %d: moved too early to %v", stage, stack.Location)
		}
		if stage == digMoveStage+1 && (stack.Location != core.C(2, 1) || stack.Facing != 3) {
			t.Errorf("stage %d: at %v facing %d, expected [2,1] facing 3", stage, stack.Location, stack.Facing)
		}
		if stage == 10 && w.Terrain[1][2] != world.TerrainDirt {
			t.Errorf("stage 10: terrain already dug")
		}
	}
	// Apply the last stage again within the same pass.
	if err := ap.ApplyStage(&w, ref0, act, Stages); err != nil {
		t.Fatal(err)
	}

	if w.Terrain[1][2] != world.TerrainTunnel {
		t.Errorf("terrain = %v, expected tunnel", w.Terrain[1][2])
	}
	if w.Colonies[0].FoodSupply != 9 {
		t.Errorf("food supply = %d, expected 9", w.Colonies[0].FoodSupply)
	}
}

func TestDigChamberCost(t *testing.T) {
	w := singleStack(world.CastWorker, core.C(1, 1), 10)
	if err := NewApplier(testParams).ApplyStage(&w, ref0, Dig(core.C(1, 1), DigChamber), Stages); err != nil {
		t.Fatal(err)
	}
	if w.Terrain[1][1] != world.TerrainChamber {
		t.Errorf("terrain = %v, expected chamber", w.Terrain[1][1])
	}
	if w.Colonies[0].FoodSupply != 7 {
		t.Errorf("food supply = %d, expected 7", w.Colonies[0].FoodSupply)
	}
}

func TestDigUnknownKind(t *testing.T) {
	w := singleStack(world.CastWorker, core.C(1, 1), 10)
	act := Action{Kind: KindDig, Location: core.C(2, 1)}
	err := NewApplier(testParams).ApplyStage(&w, ref0, act, 1)
	if !errors.Is(err, ErrUnknownDig) {
		t.Errorf("ApplyStage error = %v, expected ErrUnknownDig", err)
	}
}

func TestUnknownKind(t *testing.T) {
	w := singleStack(world.CastWorker, core.C(1, 1), 10)
	err := NewApplier(testParams).ApplyStage(&w, ref0, Action{Kind: Kind(42)}, 1)
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("ApplyStage error = %v, expected ErrUnknownAction", err)
	}
}

func TestLayEgg(t *testing.T) {
	w := singleStack(world.CastQueen, core.C(2, 2), 10)

	ap := NewApplier(testParams)
	for stage := 0; stage <= Stages; stage++ {
		if err := ap.ApplyStage(&w, ref0, LayEgg(), stage); err != nil {
			t.Fatal(err)
		}
		if stage < finalizeStage && len(w.Colonies[0].Eggs) != 0 {
			t.Fatalf("stage %d: egg laid too early", stage)
		}
	}

	eggs := w.Colonies[0].Eggs
	if len(eggs) != 1 {
		t.Fatalf("got %d egg stacks, expected 1", len(eggs))
	}
	if eggs[0].NumberOfEggs != 1 || eggs[0].DaysToHatch != 4 || eggs[0].Location != core.C(2, 2) {
		t.Errorf("egg stack = %+v", eggs[0])
	}
	if w.Colonies[0].FoodSupply != 8 {
		t.Errorf("food supply = %d, expected 8", w.Colonies[0].FoodSupply)
	}
}

func TestLayEggCapped(t *testing.T) {
	w := singleStack(world.CastQueen, core.C(2, 2), 10)
	w.Colonies[0].Eggs = []world.EggStack{{Location: core.C(2, 2), NumberOfEggs: 3, DaysToHatch: 1}}

	if err := NewApplier(testParams).ApplyStage(&w, ref0, LayEgg(), Stages); err != nil {
		t.Fatal(err)
	}
	if n := w.Colonies[0].Eggs[0].NumberOfEggs; n != 3 {
		t.Errorf("eggs = %d, expected capped at 3", n)
	}
}

func TestRevertMoveAndDig(t *testing.T) {
	tests := []struct {
		name string
		act  Action
	}{
		{"move", Move(core.C(1, 1), core.C(2, 1), core.C(2, 2))},
		{"tunnel", Dig(core.C(2, 1), DigTunnel)},
		{"chamber", Dig(core.C(1, 0), DigChamber)},
		{"defend", Defend()},
		{"none", None()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start := singleStack(world.CastWorker, core.C(1, 1), 10)
			start.Colonies[0].Ants[0].Facing = 5
			w := start.Clone()

			ap := NewApplier(testParams)
			for stage := 0; stage <= Stages; stage++ {
				if err := ap.ApplyStage(&w, ref0, tc.act, stage); err != nil {
					t.Fatal(err)
				}
			}
			if err := Revert(&w, &start, ref0, tc.act, testParams); err != nil {
				t.Fatalf("Revert failed: %v", err)
			}
			if !reflect.DeepEqual(w, start) {
				t.Errorf("reverted state differs from turn start:\n got %+v\nwant %+v", w, start)
			}
		})
	}
}

func TestRevertLayEgg(t *testing.T) {
	start := singleStack(world.CastQueen, core.C(2, 2), 10)
	w := start.Clone()

	if err := NewApplier(testParams).ApplyStage(&w, ref0, LayEgg(), Stages); err != nil {
		t.Fatal(err)
	}
	if err := Revert(&w, &start, ref0, LayEgg(), testParams); err != nil {
		t.Fatal(err)
	}
	if len(w.Colonies[0].Eggs) != 0 {
		t.Errorf("egg stacks = %+v, expected none", w.Colonies[0].Eggs)
	}
	if w.Colonies[0].FoodSupply != 10 {
		t.Errorf("food supply = %d, expected 10", w.Colonies[0].FoodSupply)
	}
}

func TestRevertCappedLayEgg(t *testing.T) {
	start := singleStack(world.CastQueen, core.C(2, 2), 10)
	start.Colonies[0].Eggs = []world.EggStack{{Location: core.C(2, 2), NumberOfEggs: 3, DaysToHatch: 1}}
	w := start.Clone()

	if err := NewApplier(testParams).ApplyStage(&w, ref0, LayEgg(), Stages); err != nil {
		t.Fatal(err)
	}
	if err := Revert(&w, &start, ref0, LayEgg(), testParams); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(w, start) {
		t.Errorf("reverted state differs from turn start:\n got %+v\nwant %+v", w, start)
	}
}

func TestCheck(t *testing.T) {
	worker := world.AntStack{Cast: world.CastWorker, Location: core.C(2, 2), StartLocation: core.C(2, 2), NumberOfAnts: 1}
	queen := worker
	queen.Cast = world.CastQueen

	tests := []struct {
		name  string
		stack world.AntStack
		act   Action
		err   error
	}{
		{"none", worker, None(), nil},
		{"move from start", worker, Move(core.C(2, 2), core.C(3, 2)), nil},
		{"move to neighbour", worker, Move(core.C(3, 2)), nil},
		{"empty move", worker, Action{Kind: KindMove}, ErrInvalidAction},
		{"move jumps", worker, Move(core.C(2, 2), core.C(4, 2)), ErrInvalidAction},
		{"move starts far away", worker, Move(core.C(0, 0)), ErrInvalidAction},
		{"worker lays egg", worker, LayEgg(), ErrInvalidAction},
		{"queen lays egg", queen, LayEgg(), nil},
		{"dig adjacent", worker, Dig(core.C(1, 2), DigTunnel), nil},
		{"dig far", worker, Dig(core.C(4, 4), DigTunnel), ErrInvalidAction},
		{"dig unknown", worker, Action{Kind: KindDig, Location: core.C(1, 2)}, ErrUnknownDig},
		{"unknown kind", worker, Action{Kind: Kind(9)}, ErrUnknownAction},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.act.Check(tc.stack)
			if tc.err == nil && err != nil {
				t.Errorf("Check() = %v, expected nil", err)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Errorf("Check() = %v, expected %v", err, tc.err)
			}
		})
	}
}

func TestActionJSON(t *testing.T) {
	acts := []Action{
		None(),
		Defend(),
		LayEgg(),
		Move(core.C(2, 1), core.C(2, 2)),
		Dig(core.C(3, 4), DigChamber),
	}
	b, err := json.Marshal(acts)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `[{"type":"none"},{"type":"defend"},{"type":"lay_egg"},` +
		`{"type":"move","steps":[[2,1],[2,2]]},{"type":"dig","location":[3,4],"what_to_dig":"chamber"}]`
	if string(b) != expected {
		t.Errorf("Marshal = %s\nexpected %s", b, expected)
	}

	var decoded []Action
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, acts) {
		t.Errorf("decoded %+v, expected %+v", decoded, acts)
	}
}

func TestActionJSONRejects(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{`{"type":"attack"}`, ErrUnknownAction},
		{`{"type":"dig","location":[1,1],"what_to_dig":"moat"}`, ErrUnknownDig},
		{`{"type":"dig","what_to_dig":"tunnel"}`, ErrInvalidAction},
		{`{"type":"move","destination":[1,1]}`, ErrInvalidAction},
		{`{"type":"move","steps":[]}`, ErrInvalidAction},
		{`{"type":"move","steps":[[1,2,3]]}`, core.ErrInvalidCoord},
	}

	for _, tc := range tests {
		var a Action
		err := json.Unmarshal([]byte(tc.input), &a)
		if !errors.Is(err, tc.err) {
			t.Errorf("Unmarshal(%s) error = %v, expected %v", tc.input, err, tc.err)
		}
	}
}
