package rules

import (
	"fmt"
	"log/slog"

	"github.com/rwirdemann/modbusdata/config"
)

// TriggerType defines when a rule should be executed
type TriggerType string

const (
	TriggerOnRead      TriggerType = "on_read"
	TriggerOnWrite     TriggerType = "on_write"
	TriggerOnReadWrite TriggerType = "on_read_write"
)

// Engine manages and executes rules for typed points. Values reach the engine
// already decoded; the caller re-encodes whatever the engine returns.
type Engine struct {
	rules map[string][]config.Rule // map[point]rules
}

// NewEngine creates a new rule engine from configuration rules
func NewEngine(configRules []config.Rule) *Engine {
	e := &Engine{
		rules: make(map[string][]config.Rule),
	}

	// Index rules by point for faster lookup
	for _, rule := range configRules {
		e.rules[rule.Point] = append(e.rules[rule.Point], rule)
	}

	return e
}

// Write is a value a rule stores into another point.
type Write struct {
	Point string
	Value float64
}

// ApplyRead applies all read-triggered rules for the given point.
// Returns the modified value, the writes to other points and true if the
// point's own value was changed.
func (e *Engine) ApplyRead(point config.Point, currentValue float64) (float64, []Write, bool) {
	return e.apply(point, currentValue, TriggerOnRead)
}

// ApplyWrite applies all write-triggered rules for the given point.
func (e *Engine) ApplyWrite(point config.Point, currentValue float64) (float64, []Write, bool) {
	return e.apply(point, currentValue, TriggerOnWrite)
}

func (e *Engine) apply(point config.Point, currentValue float64, triggerType TriggerType) (float64, []Write, bool) {
	rules, exists := e.rules[point.Name]
	if !exists {
		return currentValue, nil, false
	}

	modified := false
	value := currentValue
	var writes []Write

	for _, rule := range rules {
		if !e.shouldTrigger(rule.Trigger, triggerType) {
			continue
		}

		// Conditional rules only fire while the point holds the expected value
		if rule.When != nil && !matches(point.Kind, *rule.When, currentValue) {
			slog.Debug("Rule condition not met",
				"point", point.Name,
				"expectedValue", *rule.When,
				"actualValue", currentValue)
			continue
		}

		if rule.Action == "write_point" {
			if rule.Value != nil {
				writes = append(writes, Write{Point: rule.Target, Value: *rule.Value})
				slog.Debug("Rule side-effect",
					"point", point.Name,
					"target", rule.Target,
					"writtenValue", *rule.Value)
			}
			continue
		}

		oldValue := value
		value = e.executeAction(rule, point.Kind, value)
		modified = true

		slog.Debug("Rule executed",
			"point", point.Name,
			"trigger", rule.Trigger,
			"action", rule.Action,
			"oldValue", oldValue,
			"newValue", value)
	}

	return value, writes, modified
}

// matches compares at the precision the point is stored with.
func matches(kind string, want, got float64) bool {
	if kind == config.KindFloat32 {
		return float32(want) == float32(got)
	}
	return want == got
}

// HasRules reports whether any rule is bound to the given point
func (e *Engine) HasRules(point string) bool {
	_, exists := e.rules[point]
	return exists
}

func (e *Engine) Status() string {
	if len(e.rules) == 0 {
		return ""
	}
	s := "\n      Rules:"
	for point, rules := range e.rules {
		for i, r := range rules {
			s += fmt.Sprintf("\n      - R%d: %s => %s %s", i+1, point, r.Trigger, r.Action)
			if r.Target != "" {
				s += " " + r.Target
			}
		}
	}
	return s
}

func (e *Engine) shouldTrigger(ruleTrigger string, triggerType TriggerType) bool {
	if ruleTrigger == string(TriggerOnReadWrite) {
		return true
	}
	return ruleTrigger == string(triggerType)
}

func (e *Engine) executeAction(rule config.Rule, kind string, currentValue float64) float64 {
	step := rule.Step
	if step == 0 {
		step = 1
	}

	switch rule.Action {
	case "set_value":
		if rule.Value != nil {
			return *rule.Value
		}
		return currentValue

	// Registers count modulo 2^16 in both directions
	case "increment":
		if kind == config.KindRegister {
			return float64(uint16(currentValue) + uint16(step))
		}
		return currentValue + step

	case "decrement":
		if kind == config.KindRegister {
			return float64(uint16(currentValue) - uint16(step))
		}
		return currentValue - step

	case "toggle":
		if currentValue == 0 {
			return 1
		}
		return 0

	default:
		slog.Warn("Unknown action", "action", rule.Action)
		return currentValue
	}
}
