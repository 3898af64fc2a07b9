package encoding

// Bits are held in expanded form on the host side: one byte per bit, each
// exactly 0 or 1. The wire packs 8 bits per byte, least significant bit first.

// ExpandByte writes the 8 bits of value to dest[index:index+8], bit 0 first.
func ExpandByte(dest []byte, index int, value byte) {
	d := dest[index : index+8]
	for i := range d {
		d[i] = (value >> i) & 0x01
	}
}

// ExpandBytes writes n bits taken from the packed bytes in src to
// dest[index:index+n]. src must hold at least ceil(n/8) bytes.
func ExpandBytes(dest []byte, index int, n int, src []byte) {
	for i := 0; i < n; i++ {
		dest[index+i] = (src[i/8] >> (i % 8)) & 0x01
	}
}

// PackBits packs up to 8 expanded bits from src[index:] into one byte, the
// first bit landing in bit 0. Asking for more than 8 bits breaks the contract
// of the function; n is clamped to 8 once the contract layer has seen it.
func PackBits(src []byte, index int, n int) byte {
	if n > 8 {
		violated("PackBits", "bit count %d exceeds 8", n)
		n = 8
	}
	var value byte
	for i := 0; i < n; i++ {
		if src[index+i] != 0 {
			value |= 1 << i
		}
	}
	return value
}

// PackAll packs every expanded bit in src into ceil(len(src)/8) wire bytes.
func PackAll(src []byte) []byte {
	out := make([]byte, (len(src)+7)/8)
	for i := range out {
		out[i] = PackBits(src, i*8, min(8, len(src)-i*8))
	}
	return out
}

// EncodeBools converts a boolean slice into a byte slice where each byte
// contains up to 8 boolean values packed as bits. The encoding uses LSB-first
// bit ordering, where the first boolean maps to bit 0 (least significant bit)
// of the first byte. This encoding is commonly used in Modbus for representing
// coil states.
//
// Example: []bool{true, false, true} -> []byte{0x05} (binary: 00000101)
func EncodeBools(in []bool) []byte {
	bits := make([]byte, len(in))
	for i, b := range in {
		if b {
			bits[i] = 1
		}
	}
	return PackAll(bits)
}

// DecodeBools is the inverse of EncodeBools for the first n bits of in.
func DecodeBools(in []byte, n int) []bool {
	bits := make([]byte, n)
	ExpandBytes(bits, 0, n, in)
	out := make([]bool, n)
	for i, b := range bits {
		out[i] = b == 1
	}
	return out
}
