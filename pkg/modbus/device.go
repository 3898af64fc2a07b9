// Package modbus reads and writes typed values on a remote Modbus device.
// Registers and coils travel through github.com/goburrow/modbus and are
// converted with the encoding package.
package modbus

import (
	"fmt"

	bmodbus "github.com/goburrow/modbus"
	"github.com/rwirdemann/modbusdata/encoding"
)

const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// Device wraps a goburrow client. Holding registers back all register
// accessors.
type Device struct {
	client bmodbus.Client
}

func NewDevice(client bmodbus.Client) *Device {
	return &Device{client: client}
}

// ReadRegisters reads quantity holding registers starting at address.
func (d *Device) ReadRegisters(address, quantity uint16) ([]uint16, error) {
	b, err := d.client.ReadHoldingRegisters(address, quantity)
	if err != nil {
		return nil, fmt.Errorf("read holding registers 0x%04X/%d: %w", address, quantity, err)
	}
	regs, err := encoding.BytesToRegisters(b)
	if err != nil {
		return nil, err
	}
	if len(regs) != int(quantity) {
		return nil, fmt.Errorf("read holding registers 0x%04X: got %d registers, want %d", address, len(regs), quantity)
	}
	return regs, nil
}

// WriteRegisters writes regs starting at address.
func (d *Device) WriteRegisters(address uint16, regs []uint16) error {
	if _, err := d.client.WriteMultipleRegisters(address, uint16(len(regs)), encoding.RegistersToBytes(regs)); err != nil {
		return fmt.Errorf("write multiple registers 0x%04X/%d: %w", address, len(regs), err)
	}
	return nil
}

func (d *Device) ReadFloat32(address uint16, order encoding.ByteOrder) (float32, error) {
	regs, err := d.ReadRegisters(address, encoding.Float32Registers)
	if err != nil {
		return 0, err
	}
	return encoding.RegistersToFloat32([2]uint16(regs), order), nil
}

func (d *Device) WriteFloat32(address uint16, value float32, order encoding.ByteOrder) error {
	regs := encoding.Float32ToRegisters(value, order)
	return d.WriteRegisters(address, regs[:])
}

func (d *Device) ReadFloat64(address uint16, order encoding.ByteOrder) (float64, error) {
	regs, err := d.ReadRegisters(address, encoding.Float64Registers)
	if err != nil {
		return 0, err
	}
	return encoding.RegistersToFloat64([4]uint16(regs), order), nil
}

func (d *Device) WriteFloat64(address uint16, value float64, order encoding.ByteOrder) error {
	regs := encoding.Float64ToRegisters(value, order)
	return d.WriteRegisters(address, regs[:])
}

// ReadCoils returns the states of quantity coils starting at address.
func (d *Device) ReadCoils(address, quantity uint16) ([]bool, error) {
	packed, err := d.client.ReadCoils(address, quantity)
	if err != nil {
		return nil, fmt.Errorf("read coils 0x%04X/%d: %w", address, quantity, err)
	}
	if len(packed)*8 < int(quantity) {
		return nil, fmt.Errorf("read coils 0x%04X: got %d bytes for %d coils", address, len(packed), quantity)
	}
	return encoding.DecodeBools(packed, int(quantity)), nil
}

// WriteCoils writes coil states starting at address. A single coil goes out
// as FC5, more as FC15.
func (d *Device) WriteCoils(address uint16, states []bool) error {
	if len(states) == 1 {
		value := coilOff
		if states[0] {
			value = coilOn
		}
		if _, err := d.client.WriteSingleCoil(address, value); err != nil {
			return fmt.Errorf("write single coil 0x%04X: %w", address, err)
		}
		return nil
	}
	if _, err := d.client.WriteMultipleCoils(address, uint16(len(states)), encoding.EncodeBools(states)); err != nil {
		return fmt.Errorf("write multiple coils 0x%04X/%d: %w", address, len(states), err)
	}
	return nil
}
