// Package orders reads the orders a colony submits for one turn. Documents
// are validated against an embedded JSON Schema before they are decoded.
package orders

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vovakirdan/antfarm/internal/action"
)

//go:embed orders.schema.json
var schemaJSON string

const schemaURL = "https://github.com/vovakirdan/antfarm/orders.schema.json"

// ErrInvalidOrders is returned for documents that do not match the schema.
var ErrInvalidOrders = errors.New("orders: invalid document")

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaJSON)
	})
	return schema, schemaErr
}

// Order is the action of one ant stack.
type Order struct {
	Ant    int
	Action action.Action
}

// Submission is everything one colony orders for one turn.
type Submission struct {
	Game   string  `json:"game,omitempty"`
	Turn   int     `json:"turn"`
	Colony int     `json:"colony"`
	Orders []Order `json:"orders"`
}

// MarshalJSON flattens the ant index into the action object.
func (o Order) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(o.Action)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	fields["ant"] = json.RawMessage(fmt.Sprintf("%d", o.Ant))
	return json.Marshal(fields)
}

// UnmarshalJSON reads an action object carrying an ant index.
func (o *Order) UnmarshalJSON(data []byte) error {
	var head struct {
		Ant int `json:"ant"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var act action.Action
	if err := json.Unmarshal(data, &act); err != nil {
		return err
	}
	*o = Order{Ant: head.Ant, Action: act}
	return nil
}

// Parse validates and decodes an orders document.
func Parse(data []byte) (Submission, error) {
	s, err := compiled()
	if err != nil {
		return Submission{}, fmt.Errorf("orders: compile schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidOrders, err)
	}
	if err := s.Validate(doc); err != nil {
		return Submission{}, fmt.Errorf("%w: %w", ErrInvalidOrders, err)
	}

	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return Submission{}, fmt.Errorf("orders: decode: %w", err)
	}
	seen := make(map[int]bool, len(sub.Orders))
	for _, o := range sub.Orders {
		if seen[o.Ant] {
			return Submission{}, fmt.Errorf("%w: ant %d ordered twice", ErrInvalidOrders, o.Ant)
		}
		seen[o.Ant] = true
	}
	return sub, nil
}

// Load reads and parses an orders file.
func Load(path string) (Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Submission{}, fmt.Errorf("orders: read %s: %w", path, err)
	}
	sub, err := Parse(data)
	if err != nil {
		return Submission{}, fmt.Errorf("%s: %w", path, err)
	}
	return sub, nil
}
