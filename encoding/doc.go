// Package encoding converts between the Modbus wire representation and host
// values.
//
// Modbus only knows 16-bit registers and single bits. Wider values travel as
// register sequences and bits travel packed 8 per byte, least significant bit
// first. This package is the one place where those conversions happen:
//
//   - ExpandByte, ExpandBytes and PackBits move between packed wire bytes and
//     the expanded form, one byte per bit holding 0 or 1.
//   - RegistersToFloat32 and Float32ToRegisters map a float32 onto 2 registers.
//   - RegistersToFloat64 and Float64ToRegisters map a float64 onto 4 registers.
//
// Register 0 always carries the low-order word of the assembled integer. The
// ByteOrder decides whether that integer is byte reversed (DCBA, HGFEDCBA)
// before it is reinterpreted as IEEE-754 bits. Encoding and decoding with the
// same order reproduce the original bit pattern, NaN payloads and signed
// zeros included.
//
// All functions are pure and safe for concurrent use on disjoint buffers.
// Broken input contracts are handled by the mode set with SetContractMode;
// builds tagged modbusdebug default to ContractPanic, others to ContractClamp.
package encoding
