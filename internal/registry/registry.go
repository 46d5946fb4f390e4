// Package registry provides a global registry of starting scenarios.
// Scenarios register themselves in init() functions, allowing the CLI
// to discover and build them without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/antfarm/internal/world"
)

// ErrUnknownScenario is returned by Create for unregistered IDs.
var ErrUnknownScenario = errors.New("registry: unknown scenario")

// Scenario builds a turn 0 world.
type Scenario interface {
	// ID returns a unique identifier (e.g., "skirmish", "generated").
	// Used for CLI commands and stored with each game.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Build returns the starting world. Scenarios that use randomness
	// derive it from seed only.
	Build(seed int64) (world.State, error)
}

// ScenarioInfo contains metadata about a registered scenario.
type ScenarioInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a scenario.
type Factory func() Scenario

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scenario factory to the registry.
// Panics if a scenario with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scenario %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered scenarios, sorted by ID.
func List() []ScenarioInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ScenarioInfo, 0, len(factories))
	for id := range factories {
		result = append(result, ScenarioInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a scenario by its ID.
func Create(id string) (Scenario, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}

	return f(), nil
}

// Exists checks if a scenario with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Build creates the scenario and validates the world it returns.
func Build(id string, seed int64) (world.State, error) {
	s, err := Create(id)
	if err != nil {
		return world.State{}, err
	}
	w, err := s.Build(seed)
	if err != nil {
		return world.State{}, fmt.Errorf("registry: build %s: %w", id, err)
	}
	if err := w.Validate(); err != nil {
		return world.State{}, fmt.Errorf("registry: scenario %s: %w", id, err)
	}
	return w, nil
}
