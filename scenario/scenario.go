// Package scenario reads a sequence of widget actions from YAML and plays it
// against a Vaadin application.
//
// A scenario file looks like:
//
//	name: delete first order
//	steps:
//	  - open: http://localhost:8080/orders
//	  - click_tab: 2
//	  - input: {entity: order, attribute: customer, value: Acme}
//	  - click_button: save
//	  - click_table_button: {table: orders, row: 1, col: 4, confirm: true}
//
// Every step holds exactly one action.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Action names, as used for the keys of a step.
const (
	ActionOpen             = "open"
	ActionClickButton      = "click_button"
	ActionClickTab         = "click_tab"
	ActionClickTableButton = "click_table_button"
	ActionClickCellItem    = "click_cell_item"
	ActionExpandTree       = "expand_tree"
	ActionInput            = "input"
	ActionClear            = "clear"
	ActionWaitIdle         = "wait_idle"
)

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one action. Exactly one field other than Name must be set.
type Step struct {
	Name string `yaml:"name,omitempty"`

	Open             string      `yaml:"open,omitempty"`
	ClickButton      string      `yaml:"click_button,omitempty"`
	ClickTab         *int        `yaml:"click_tab,omitempty"`
	ClickTableButton *Cell       `yaml:"click_table_button,omitempty"`
	ClickCellItem    *Cell       `yaml:"click_cell_item,omitempty"`
	ExpandTree       *Cell       `yaml:"expand_tree,omitempty"`
	Input            *FieldValue `yaml:"input,omitempty"`
	Clear            *Field      `yaml:"clear,omitempty"`
	WaitIdle         bool        `yaml:"wait_idle,omitempty"`
}

// Cell addresses a table cell with 1-based indices.
type Cell struct {
	Table string `yaml:"table"`
	Row   int    `yaml:"row"`
	Col   int    `yaml:"col"`
	// Class selects the element inside the cell, for click_cell_item.
	Class string `yaml:"class,omitempty"`
	// Confirm accepts the ConfirmDialog the button opens, for
	// click_table_button.
	Confirm bool `yaml:"confirm,omitempty"`
}

// Field names a form field by the entity and attribute it is bound to.
type Field struct {
	Entity    string `yaml:"entity"`
	Attribute string `yaml:"attribute"`
}

// FieldValue is a Field and the value to enter.
type FieldValue struct {
	Entity    string `yaml:"entity"`
	Attribute string `yaml:"attribute"`
	Value     string `yaml:"value"`
}

// Actions returns the names of the actions set on s, in declaration order.
func (s *Step) Actions() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(s.Open != "", ActionOpen)
	add(s.ClickButton != "", ActionClickButton)
	add(s.ClickTab != nil, ActionClickTab)
	add(s.ClickTableButton != nil, ActionClickTableButton)
	add(s.ClickCellItem != nil, ActionClickCellItem)
	add(s.ExpandTree != nil, ActionExpandTree)
	add(s.Input != nil, ActionInput)
	add(s.Clear != nil, ActionClear)
	add(s.WaitIdle, ActionWaitIdle)
	return names
}

// Action returns the single action of s, or an empty string when s does not
// hold exactly one.
func (s *Step) Action() string {
	if names := s.Actions(); len(names) == 1 {
		return names[0]
	}
	return ""
}

// Validate checks that s holds exactly one well-formed action.
func (s *Step) Validate() error {
	names := s.Actions()
	switch len(names) {
	case 0:
		return errors.New("no action")
	case 1:
	default:
		return fmt.Errorf("more than one action: %v", names)
	}

	switch names[0] {
	case ActionClickTab:
		if *s.ClickTab < 1 {
			return fmt.Errorf("%s: tab index must be positive, got %d", ActionClickTab, *s.ClickTab)
		}
	case ActionClickTableButton:
		return s.ClickTableButton.validate(ActionClickTableButton, true)
	case ActionClickCellItem:
		if s.ClickCellItem.Class == "" {
			return fmt.Errorf("%s: class is required", ActionClickCellItem)
		}
		return s.ClickCellItem.validate(ActionClickCellItem, false)
	case ActionExpandTree:
		return s.ExpandTree.validate(ActionExpandTree, false)
	case ActionInput:
		return validateField(ActionInput, s.Input.Entity, s.Input.Attribute)
	case ActionClear:
		return validateField(ActionClear, s.Clear.Entity, s.Clear.Attribute)
	}
	return nil
}

func (c *Cell) validate(action string, confirmAllowed bool) error {
	if c.Table == "" {
		return fmt.Errorf("%s: table is required", action)
	}
	if c.Row < 1 || c.Col < 1 {
		return fmt.Errorf("%s: row and col must be positive, got %d and %d", action, c.Row, c.Col)
	}
	if !confirmAllowed && c.Confirm {
		return fmt.Errorf("%s: confirm is only supported by %s", action, ActionClickTableButton)
	}
	return nil
}

func validateField(action, entity, attribute string) error {
	if entity == "" || attribute == "" {
		return fmt.Errorf("%s: entity and attribute are required", action)
	}
	return nil
}

// Validate checks every step. The error names the first invalid step.
func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	for i := range sc.Steps {
		if err := sc.Steps[i].Validate(); err != nil {
			return fmt.Errorf("step #%d: %w", i+1, err)
		}
	}
	return nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario")
		}
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}
