package encoding

// Word is the set of register-sized integers SwapBytes operates on.
type Word interface {
	~uint16 | ~uint32 | ~uint64
}

// SwapBytes reverses the byte order of v across its full width.
func SwapBytes[T Word](v T) T {
	var out T
	for m := ^T(0); m != 0; m >>= 8 {
		out = out<<8 | v&0xFF
		v >>= 8
	}
	return out
}

func Swap16(v uint16) uint16 { return SwapBytes(v) }

func Swap32(v uint32) uint32 { return SwapBytes(v) }

func Swap64(v uint64) uint64 { return SwapBytes(v) }
