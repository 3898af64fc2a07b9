package encoding

import "math"

// Register counts of the two float widths.
const (
	Float32Registers = 2
	Float64Registers = 4
)

// RegistersToFloat32 reinterprets two registers as an IEEE-754 single.
// regs[1] is the high word and regs[0] the low word of the assembled integer;
// DCBA then reverses its four bytes.
func RegistersToFloat32(regs [2]uint16, order ByteOrder) float32 {
	bits := uint32(regs[1])<<16 | uint32(regs[0])
	if order.Reversed() {
		bits = Swap32(bits)
	}
	return math.Float32frombits(bits)
}

// Float32ToRegisters is the inverse of RegistersToFloat32.
func Float32ToRegisters(f float32, order ByteOrder) [2]uint16 {
	bits := math.Float32bits(f)
	if order.Reversed() {
		bits = Swap32(bits)
	}
	return [2]uint16{uint16(bits), uint16(bits >> 16)}
}
