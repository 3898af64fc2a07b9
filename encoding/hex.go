package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// Hex is a register or coil address that parses from decimal or 0x notation
// and prints as hex. It implements flag.Value.
type Hex uint16

func (h *Hex) Uint16() uint16 {
	return uint16(*h)
}

func (h *Hex) Set(value string) error {
	value = strings.TrimSpace(value)
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid hex address: %w", err)
	}
	*h = Hex(addr)
	return nil
}

func (h *Hex) String() string {
	return fmt.Sprintf("0x%04X", uint16(*h))
}
