package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOddLength is returned when a byte block cannot be split into registers.
var ErrOddLength = errors.New("odd number of bytes for register block")

func Uint16ToBytes(in uint16) []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, in)
	return out
}

func BytesToUint16(in []byte) uint16 {
	return binary.BigEndian.Uint16(in)
}

// RegistersToBytes lays out registers as big endian words, the way they travel
// in a PDU payload.
func RegistersToBytes(regs []uint16) []byte {
	out := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(out[2*i:], r)
	}
	return out
}

// BytesToRegisters splits a PDU register block into registers.
func BytesToRegisters(in []byte) ([]uint16, error) {
	if len(in)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddLength, len(in))
	}
	out := make([]uint16, len(in)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(in[2*i:])
	}
	return out, nil
}
