package config

import (
	"fmt"
	"math"

	"github.com/rwirdemann/modbusdata/encoding"
)

// Point kinds
const (
	KindCoil     = "coil"
	KindRegister = "register"
	KindFloat32  = "float32"
	KindFloat64  = "float64"
)

// Point is a typed value living at a coil or a run of holding registers.
type Point struct {
	Name    string  `toml:"name"`
	Address uint16  `toml:"address"`
	Kind    string  `toml:"kind"`
	Order   string  `toml:"order"` // ABCD/DCBA for float32, ABCDEFGH/HGFEDCBA for float64
	Value   float64 `toml:"value"` // initial value
}

// Registers returns the number of addresses the point occupies.
func (p Point) Registers() int {
	switch p.Kind {
	case KindFloat32:
		return encoding.Float32Registers
	case KindFloat64:
		return encoding.Float64Registers
	}
	return 1
}

// ByteOrder returns the parsed order, ABCD when none is configured.
func (p Point) ByteOrder() encoding.ByteOrder {
	if p.Order == "" {
		return encoding.ABCD
	}
	o, _ := encoding.ParseByteOrder(p.Order, p.Registers())
	return o
}

func (p Point) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := p.checkValue(p.Value); err != nil {
		return err
	}
	if p.Kind == KindFloat32 || p.Kind == KindFloat64 {
		if p.Order != "" {
			if _, err := encoding.ParseByteOrder(p.Order, p.Registers()); err != nil {
				return fmt.Errorf("%s %q: %w", p.Kind, p.Name, err)
			}
		}
	}
	if int(p.Address)+p.Registers() > math.MaxUint16+1 {
		return fmt.Errorf("point %q: exceeds address space", p.Name)
	}
	if p.Kind != KindFloat32 && p.Kind != KindFloat64 && p.Order != "" {
		return fmt.Errorf("point %q: order only applies to float kinds", p.Name)
	}
	return nil
}

// checkValue reports whether v can be stored in p without loss.
func (p Point) checkValue(v float64) error {
	switch p.Kind {
	case KindCoil:
		if v != 0 && v != 1 {
			return fmt.Errorf("coil %q: value %v must be 0 or 1", p.Name, v)
		}
	case KindRegister:
		if v < 0 || v > math.MaxUint16 || v != math.Trunc(v) {
			return fmt.Errorf("register %q: value %v is not a 16-bit unsigned integer", p.Name, v)
		}
	case KindFloat32, KindFloat64:
	default:
		return fmt.Errorf("point %q: invalid kind %q", p.Name, p.Kind)
	}
	return nil
}
