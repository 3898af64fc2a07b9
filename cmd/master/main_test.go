package main

import (
	"testing"

	bmodbus "github.com/goburrow/modbus"
	"github.com/rwirdemann/modbusdata/encoding"
	"github.com/rwirdemann/modbusdata/pkg/modbus"
)

type memoryClient struct {
	bmodbus.Client
	registers map[uint16]uint16
	coils     []byte
}

func (m *memoryClient) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	regs := make([]uint16, quantity)
	for i := range regs {
		regs[i] = m.registers[address+uint16(i)]
	}
	return encoding.RegistersToBytes(regs), nil
}

func (m *memoryClient) WriteMultipleRegisters(address, _ uint16, value []byte) ([]byte, error) {
	regs, err := encoding.BytesToRegisters(value)
	for i, r := range regs {
		m.registers[address+uint16(i)] = r
	}
	return nil, err
}

func (m *memoryClient) WriteMultipleCoils(_, _ uint16, value []byte) ([]byte, error) {
	m.coils = value
	return nil, nil
}

func TestRun(t *testing.T) {
	c := &memoryClient{registers: map[uint16]uint16{}}
	dev := modbus.NewDevice(c)

	if err := run(dev, "float32", 0x10, "dcba", "1", 1); err != nil {
		t.Fatal(err)
	}
	if c.registers[0x10] != 0x803F || c.registers[0x11] != 0x0000 {
		t.Fatalf("registers = %04X %04X", c.registers[0x10], c.registers[0x11])
	}
	if err := run(dev, "float64", 0x20, "HGFEDCBA", "", 1); err != nil {
		t.Fatal(err)
	}
	if err := run(dev, "coils", 0, "", "1,0,1", 1); err != nil {
		t.Fatal(err)
	}
	if len(c.coils) != 1 || c.coils[0] != 0x05 {
		t.Fatalf("coils = % X", c.coils)
	}

	for _, tc := range []struct{ kind, order, value string }{
		{"float32", "HGFEDCBA", ""},
		{"float64", "ABCD", ""},
		{"coils", "", "1,2"},
		{"register", "", "0x10000"},
		{"string", "", ""},
	} {
		if err := run(dev, tc.kind, 0, tc.order, tc.value, 1); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
}

func TestParseSlaveID(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"101", 101, true},
		{"1", 1, true},
		{"247", 247, true},
		{"0xF7", 247, true},
		{"0", 0, false},
		{"248", 0, false},
		{"256", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, err := parseSlaveID(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseSlaveID(%q) = %d, %v", tt.in, got, err)
		}
	}
}
