package encoding

import (
	"math/bits"
	"testing"
)

func TestSwapBytesMatchesReverseBytes(t *testing.T) {
	for _, v := range []uint64{0, 1, 0xFF, 0x0102030405060708, 0x8000000000000001, 0xDEADBEEFCAFEBABE, ^uint64(0)} {
		if got, want := Swap16(uint16(v)), bits.ReverseBytes16(uint16(v)); got != want {
			t.Errorf("Swap16(0x%04X) = 0x%04X, want 0x%04X", uint16(v), got, want)
		}
		if got, want := Swap32(uint32(v)), bits.ReverseBytes32(uint32(v)); got != want {
			t.Errorf("Swap32(0x%08X) = 0x%08X, want 0x%08X", uint32(v), got, want)
		}
		if got, want := Swap64(v), bits.ReverseBytes64(v); got != want {
			t.Errorf("Swap64(0x%016X) = 0x%016X, want 0x%016X", v, got, want)
		}
	}
}

func TestSwapBytesIsAnInvolution(t *testing.T) {
	type register uint16
	r := register(0xABCD)
	if got := SwapBytes(r); got != 0xCDAB {
		t.Fatalf("SwapBytes(0xABCD) = 0x%04X", got)
	}
	if got := SwapBytes(SwapBytes(r)); got != r {
		t.Fatalf("double swap = 0x%04X, want 0x%04X", got, r)
	}
}
