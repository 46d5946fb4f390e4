package multiplayer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vovakirdan/antfarm/internal/action"
	"github.com/vovakirdan/antfarm/internal/orders"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

var (
	// ErrWrongTurn is returned for orders addressed to another turn.
	ErrWrongTurn = errors.New("multiplayer: orders for wrong turn")
	// ErrUnknownColony is returned for orders of a colony the snapshot lacks.
	ErrUnknownColony = errors.New("multiplayer: unknown colony")
)

// Collector assembles the per-colony orders of one turn into Selections.
// Submitting again for a colony replaces its earlier orders.
type Collector struct {
	mu        sync.Mutex
	turn      int
	antCounts []int
	orders    [][]action.Action
	submitted []bool
}

// NewCollector creates a collector for the turn that starts from w.
func NewCollector(w *world.State) *Collector {
	c := &Collector{
		turn:      w.Turn,
		antCounts: make([]int, len(w.Colonies)),
		orders:    make([][]action.Action, len(w.Colonies)),
		submitted: make([]bool, len(w.Colonies)),
	}
	for i, col := range w.Colonies {
		c.antCounts[i] = len(col.Ants)
	}
	return c
}

// Turn returns the turn number the collector accepts orders for.
func (c *Collector) Turn() int {
	return c.turn
}

// Submit records a colony's orders. Stacks without an order idle.
// Whether the actions are legal is checked when the turn is resolved.
func (c *Collector) Submit(sub orders.Submission) error {
	if sub.Turn != c.turn {
		return fmt.Errorf("%w: got %d, collecting %d", ErrWrongTurn, sub.Turn, c.turn)
	}
	if sub.Colony < 0 || sub.Colony >= len(c.antCounts) {
		return fmt.Errorf("%w: %d", ErrUnknownColony, sub.Colony)
	}

	acts := make([]action.Action, c.antCounts[sub.Colony])
	for _, o := range sub.Orders {
		if o.Ant < 0 || o.Ant >= len(acts) {
			return fmt.Errorf("%w: colony %d ant %d", action.ErrUnknownAnt, sub.Colony, o.Ant)
		}
		acts[o.Ant] = o.Action
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[sub.Colony] = acts
	c.submitted[sub.Colony] = true
	return nil
}

// Submitted reports whether a colony has orders on file.
func (c *Collector) Submitted(colony int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return colony >= 0 && colony < len(c.submitted) && c.submitted[colony]
}

// Missing returns the colonies that have not submitted, in index order.
func (c *Collector) Missing() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var missing []int
	for i, ok := range c.submitted {
		if !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Complete reports whether every colony has submitted.
func (c *Collector) Complete() bool {
	return len(c.Missing()) == 0
}

// Selections returns the collected orders. Colonies that never submitted idle.
func (c *Collector) Selections() turn.Selections {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := make(turn.Selections, len(c.antCounts))
	for i, n := range c.antCounts {
		sel[i] = make([]action.Action, n)
		copy(sel[i], c.orders[i])
	}
	return sel
}

// Withdraw forgets a colony's orders.
func (c *Collector) Withdraw(colony int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if colony < 0 || colony >= len(c.submitted) {
		return
	}
	c.orders[colony] = nil
	c.submitted[colony] = false
}
