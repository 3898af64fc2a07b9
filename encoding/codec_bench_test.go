package encoding

import "testing"

var (
	sinkF32  float32
	sinkF64  float64
	sinkByte byte
)

func BenchmarkFloat32DCBA(b *testing.B) {
	for i := 0; i < b.N; i++ {
		sinkF32 = RegistersToFloat32(Float32ToRegisters(float32(i), DCBA), DCBA)
	}
}

func BenchmarkFloat64HGFEDCBA(b *testing.B) {
	for i := 0; i < b.N; i++ {
		sinkF64 = RegistersToFloat64(Float64ToRegisters(float64(i), HGFEDCBA), HGFEDCBA)
	}
}

func BenchmarkExpandPack(b *testing.B) {
	bits := make([]byte, 8)
	for i := 0; i < b.N; i++ {
		ExpandByte(bits, 0, byte(i))
		sinkByte = PackBits(bits, 0, 8)
	}
}
