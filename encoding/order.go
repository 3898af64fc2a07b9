package encoding

import (
	"fmt"
	"strings"
)

// ByteOrder describes how a multi-register value is laid out on the wire.
// Register 0 always carries the low-order word of the assembled integer; the
// order only decides whether that integer is byte reversed.
type ByteOrder uint8

const (
	// ABCD keeps the assembled 32-bit integer as is.
	ABCD ByteOrder = iota
	// DCBA reverses all four bytes of the assembled 32-bit integer.
	DCBA
)

// 64-bit names of the same two layouts.
const (
	ABCDEFGH = ABCD
	HGFEDCBA = DCBA
)

var orderNames = map[int][2]string{
	2: {"ABCD", "DCBA"},
	4: {"ABCDEFGH", "HGFEDCBA"},
}

// Reversed reports whether o byte-reverses the assembled integer.
func (o ByteOrder) Reversed() bool {
	return o == DCBA
}

// Valid reports whether o is one of the defined layouts.
func (o ByteOrder) Valid() bool {
	return o == ABCD || o == DCBA
}

// Name returns the name of o for a value spanning the given number of
// registers (2 or 4).
func (o ByteOrder) Name(registers int) string {
	names, ok := orderNames[registers]
	if !ok || !o.Valid() {
		return fmt.Sprintf("ByteOrder(%d)", o)
	}
	return names[o]
}

func (o ByteOrder) String() string {
	return o.Name(2)
}

// ParseByteOrder parses a byte order name valid for a value spanning the given
// number of registers. Names are case insensitive.
func ParseByteOrder(name string, registers int) (ByteOrder, error) {
	names, ok := orderNames[registers]
	if !ok {
		return 0, fmt.Errorf("no byte orders defined for %d registers", registers)
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return ByteOrder(i), nil
		}
	}
	return 0, fmt.Errorf("invalid byte order %q for %d registers, must be %s or %s", name, registers, names[0], names[1])
}
