package encoding

import "math"

// RegistersToFloat64 reinterprets four registers as an IEEE-754 double.
// regs[3] carries the highest word down to regs[0] the lowest; HGFEDCBA
// reverses all eight bytes of the assembled integer.
func RegistersToFloat64(regs [4]uint16, order ByteOrder) float64 {
	bits := uint64(regs[3])<<48 | uint64(regs[2])<<32 | uint64(regs[1])<<16 | uint64(regs[0])
	if order.Reversed() {
		bits = Swap64(bits)
	}
	return math.Float64frombits(bits)
}

// Float64ToRegisters is the inverse of RegistersToFloat64.
func Float64ToRegisters(f float64, order ByteOrder) [4]uint16 {
	bits := math.Float64bits(f)
	if order.Reversed() {
		bits = Swap64(bits)
	}
	return [4]uint16{uint16(bits), uint16(bits >> 16), uint16(bits >> 32), uint16(bits >> 48)}
}
