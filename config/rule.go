package config

import (
	"fmt"
	"math"
)

// Rule changes a point's value when it is read or written.
type Rule struct {
	Point   string   `toml:"point"`   // point name
	Trigger string   `toml:"trigger"` // "on_read", "on_write" or "on_read_write"
	Action  string   `toml:"action"`  // "set_value", "increment", "decrement", "toggle" or "write_point"
	Value   *float64 `toml:"value"`   // target of set_value, value stored by write_point
	Target  string   `toml:"target"`  // point written by write_point
	When    *float64 `toml:"when"`    // fire only while the point holds this value
	Step    float64  `toml:"step"`    // increment/decrement step, 1 if unset
}

func (r Rule) Validate() error {
	switch r.Trigger {
	case "on_read", "on_write", "on_read_write":
	default:
		return fmt.Errorf("invalid trigger %q", r.Trigger)
	}
	switch r.Action {
	case "increment", "decrement", "toggle":
	case "set_value":
		if r.Value == nil {
			return fmt.Errorf("set_value requires a value")
		}
	case "write_point":
		if r.Value == nil || r.Target == "" {
			return fmt.Errorf("write_point requires a target and a value")
		}
	default:
		return fmt.Errorf("invalid action %q", r.Action)
	}
	if r.Step < 0 || math.IsNaN(r.Step) || math.IsInf(r.Step, 0) {
		return fmt.Errorf("invalid step %v", r.Step)
	}
	return nil
}

// validateFor checks the rule's numbers against the kind of the points it
// reads and writes.
func (r Rule) validateFor(p Point, points map[string]Point) error {
	if r.When != nil {
		if err := p.checkValue(*r.When); err != nil {
			return fmt.Errorf("when: %w", err)
		}
	}
	switch r.Action {
	case "set_value":
		return p.checkValue(*r.Value)
	case "increment", "decrement":
		switch p.Kind {
		case KindCoil:
			return fmt.Errorf("%s does not apply to coil %q, use toggle", r.Action, p.Name)
		case KindRegister:
			if r.Step != math.Trunc(r.Step) || r.Step > math.MaxUint16 {
				return fmt.Errorf("register %q: step %v is not a 16-bit unsigned integer", p.Name, r.Step)
			}
		}
	case "write_point":
		target, exists := points[r.Target]
		if !exists {
			return fmt.Errorf("unknown target point %q", r.Target)
		}
		if err := target.checkValue(*r.Value); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}
	return nil
}
