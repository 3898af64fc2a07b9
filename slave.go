package modbusdata

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/rwirdemann/modbusdata/config"
	"github.com/rwirdemann/modbusdata/encoding"
	"github.com/rwirdemann/modbusdata/message"
	"github.com/rwirdemann/modbusdata/rules"
)

// Quantity limits per request
const (
	maxReadBits       = 2000
	maxReadRegisters  = 125
	maxWriteBits      = 1968
	maxWriteRegisters = 123
)

const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// Slave simulates one unit. Registers are kept as raw words, coils in
// expanded form (one byte per bit, 0 or 1). Discrete inputs share the coil
// store and input registers share the holding register store.
type Slave struct {
	unitID       uint8
	registers    map[uint16]uint16
	coils        map[uint16]byte
	points       []config.Point
	connected    bool
	ruleEngine   *rules.Engine
	protocolPort ProtocolPort
}

func NewSlave(unitID uint8, connected bool, points []config.Point, ruleEngine *rules.Engine, protocolPort ProtocolPort) *Slave {
	s := &Slave{
		unitID:       unitID,
		registers:    make(map[uint16]uint16),
		coils:        make(map[uint16]byte),
		points:       points,
		connected:    connected,
		ruleEngine:   ruleEngine,
		protocolPort: protocolPort,
	}
	for _, p := range points {
		s.writePoint(p, p.Value)
	}
	return s
}

func (s *Slave) Process(pdu PDU) *PDU {
	switch pdu.FunctionCode {
	case FC1ReadCoils, FC2ReadDiscreteInputs:
		return s.processReadBits(pdu)
	case FC3ReadHoldingRegisters, FC4ReadInputRegisters:
		return s.processReadRegisters(pdu)
	case FC5WriteSingleCoil:
		return s.processFC5(pdu)
	case FC6WriteSingleRegister:
		return s.processFC6(pdu)
	case FC15WriteMultipleCoils:
		return s.processFC15(pdu)
	case FC16WriteMultipleRegisters:
		return s.processFC16(pdu)
	}
	slog.Debug("function code not implemented", "unitID", pdu.UnitId, "fc", pdu.FunctionCode)
	return NewException(pdu, ExceptionIllegalFunction)
}

// readRequest parses the [addr(2)][quantity(2)] payload shared by all read
// function codes.
func readRequest(pdu PDU, limit int) (uint16, uint16, *PDU) {
	if len(pdu.Payload) < 4 {
		return 0, 0, NewException(pdu, ExceptionIllegalDataValue)
	}
	addr := encoding.BytesToUint16(pdu.Payload[0:2])
	quantity := encoding.BytesToUint16(pdu.Payload[2:4])
	if quantity == 0 || int(quantity) > limit {
		return 0, 0, NewException(pdu, ExceptionIllegalDataValue)
	}
	if int(addr)+int(quantity) > 0x10000 {
		return 0, 0, NewException(pdu, ExceptionIllegalDataAddress)
	}
	return addr, quantity, nil
}

// Response Payload:  [Byte Count] [Status Byte 1] [Status Byte 2] ... Each
// status byte contains up to 8 coils.
func (s *Slave) processReadBits(pdu PDU) *PDU {
	addr, quantity, exception := readRequest(pdu, maxReadBits)
	if exception != nil {
		return exception
	}
	s.protocolPort.InfoX(message.NewRaw("TX FC=%d UnitID=%d Address=0x%04X Quantity=%d", pdu.FunctionCode, pdu.UnitId, addr, quantity))

	bits := make([]byte, quantity)
	for i := range bits {
		bits[i] = s.coils[addr+uint16(i)]
	}
	packed := encoding.PackAll(bits)

	res := &PDU{
		UnitId:       pdu.UnitId,
		FunctionCode: pdu.FunctionCode,
		Payload:      append([]byte{uint8(len(packed))}, packed...),
	}
	s.protocolPort.InfoX(message.NewRaw("RX FC=%d UnitID=%d Payload=% X", res.FunctionCode, res.UnitId, res.Payload))

	s.afterRead(addr, quantity, true)
	return res
}

func (s *Slave) processReadRegisters(pdu PDU) *PDU {
	addr, quantity, exception := readRequest(pdu, maxReadRegisters)
	if exception != nil {
		return exception
	}
	s.protocolPort.InfoX(message.NewRaw("TX FC=%d UnitID=%d Address=0x%04X Quantity=%d", pdu.FunctionCode, pdu.UnitId, addr, quantity))

	data := encoding.RegistersToBytes(s.window(addr, int(quantity)))
	res := &PDU{
		UnitId:       pdu.UnitId,
		FunctionCode: pdu.FunctionCode,
		Payload:      append([]byte{uint8(len(data))}, data...),
	}
	s.protocolPort.InfoX(message.NewRaw("RX FC=%d UnitID=%d Payload=% X", res.FunctionCode, res.UnitId, res.Payload))

	s.afterRead(addr, quantity, false)
	return res
}

// FC5 payload format: [coilAddr(2 bytes)][value(2 bytes)]. Value is 0xFF00 for ON, 0x0000 for OFF
func (s *Slave) processFC5(pdu PDU) *PDU {
	if len(pdu.Payload) < 4 {
		return NewException(pdu, ExceptionIllegalDataValue)
	}
	addr := encoding.BytesToUint16(pdu.Payload[0:2])
	value := encoding.BytesToUint16(pdu.Payload[2:4])
	if value != coilOn && value != coilOff {
		return NewException(pdu, ExceptionIllegalDataValue)
	}
	s.protocolPort.InfoX(message.NewRaw("TX FC=%d UnitID=%d Address=0x%04X Value=0x%04X", pdu.FunctionCode, pdu.UnitId, addr, value))

	if value == coilOn {
		s.coils[addr] = 1
	} else {
		s.coils[addr] = 0
	}
	slog.Debug("FC5 Write Single Coil", "unitID", pdu.UnitId, "addr", fmt.Sprintf("0x%04X", addr), "value", fmt.Sprintf("0x%04X", value))

	s.afterWrite(addr, 1, true)
	return s.echo(pdu)
}

// FC6 payload format: [regAddr(2 bytes)][value(2 bytes)]
func (s *Slave) processFC6(pdu PDU) *PDU {
	if len(pdu.Payload) < 4 {
		return NewException(pdu, ExceptionIllegalDataValue)
	}
	addr := encoding.BytesToUint16(pdu.Payload[0:2])
	value := encoding.BytesToUint16(pdu.Payload[2:4])
	s.protocolPort.InfoX(message.NewRaw("TX FC=%d UnitID=%d Address=0x%04X Value=0x%04X", pdu.FunctionCode, pdu.UnitId, addr, value))

	s.registers[addr] = value
	slog.Debug("FC6 Write Single Register", "unitID", pdu.UnitId, "addr", fmt.Sprintf("0x%04X", addr), "value", fmt.Sprintf("0x%04X", value))

	s.afterWrite(addr, 1, false)
	return s.echo(pdu)
}

// writeRequest parses [startAddr(2)][quantity(2)][byteCount(1)][values(N)].
func writeRequest(pdu PDU, limit int, byteCount func(quantity int) int) (uint16, uint16, []byte, *PDU) {
	if len(pdu.Payload) < 5 {
		return 0, 0, nil, NewException(pdu, ExceptionIllegalDataValue)
	}
	addr := encoding.BytesToUint16(pdu.Payload[0:2])
	quantity := encoding.BytesToUint16(pdu.Payload[2:4])
	count := int(pdu.Payload[4])
	if quantity == 0 || int(quantity) > limit || count != byteCount(int(quantity)) || len(pdu.Payload) < 5+count {
		slog.Debug("invalid write request", "fc", pdu.FunctionCode, "quantity", quantity, "byteCount", count, "payload", len(pdu.Payload))
		return 0, 0, nil, NewException(pdu, ExceptionIllegalDataValue)
	}
	if int(addr)+int(quantity) > 0x10000 {
		return 0, 0, nil, NewException(pdu, ExceptionIllegalDataAddress)
	}
	return addr, quantity, pdu.Payload[5 : 5+count], nil
}

// FC15 packs coil values 8 per byte, first coil in bit 0.
func (s *Slave) processFC15(pdu PDU) *PDU {
	addr, quantity, values, exception := writeRequest(pdu, maxWriteBits, func(q int) int { return (q + 7) / 8 })
	if exception != nil {
		return exception
	}
	s.protocolPort.InfoX(message.NewRaw("TX FC=%d UnitID=%d Address=0x%04X Quantity=%d Values=% X", pdu.FunctionCode, pdu.UnitId, addr, quantity, values))

	bits := make([]byte, quantity)
	encoding.ExpandBytes(bits, 0, int(quantity), values)
	for i, b := range bits {
		s.coils[addr+uint16(i)] = b
	}
	slog.Debug("FC15 Write Multiple Coils", "unitID", pdu.UnitId, "addr", fmt.Sprintf("0x%04X", addr), "bits", bits)

	s.afterWrite(addr, quantity, true)
	return s.echo(pdu)
}

func (s *Slave) processFC16(pdu PDU) *PDU {
	addr, quantity, values, exception := writeRequest(pdu, maxWriteRegisters, func(q int) int { return 2 * q })
	if exception != nil {
		return exception
	}
	regs, err := encoding.BytesToRegisters(values)
	if err != nil {
		return NewException(pdu, ExceptionIllegalDataValue)
	}
	s.protocolPort.InfoX(message.NewRaw("TX FC=%d UnitID=%d Address=0x%04X Quantity=%d Values=%04X", pdu.FunctionCode, pdu.UnitId, addr, quantity, regs))

	for i, r := range regs {
		s.registers[addr+uint16(i)] = r
	}
	slog.Debug("FC16 Write Multiple Registers", "unitID", pdu.UnitId, "addr", fmt.Sprintf("0x%04X", addr), "quantity", quantity)

	s.afterWrite(addr, quantity, false)
	return s.echo(pdu)
}

// echo answers a write with its address and value/quantity words.
func (s *Slave) echo(pdu PDU) *PDU {
	res := &PDU{
		UnitId:       pdu.UnitId,
		FunctionCode: pdu.FunctionCode,
		Payload:      slices.Clone(pdu.Payload[0:4]),
	}
	s.protocolPort.InfoX(message.NewRaw("RX FC=%d UnitID=%d Payload=% X", res.FunctionCode, res.UnitId, res.Payload))
	return res
}

// Read rules run after the response has been assembled: the master sees the
// stored value, the store then holds the changed one.
func (s *Slave) afterRead(addr, quantity uint16, coils bool) {
	for _, p := range s.touched(addr, quantity, coils) {
		value := s.readPoint(p)
		s.applyRules(p, value, rules.TriggerOnRead)
		s.protocolPort.InfoX(message.NewDecoded("RD UnitID=%d Point=%s Kind=%s Value=%v", s.unitID, p.Name, p.Kind, value))
	}
}

func (s *Slave) afterWrite(addr, quantity uint16, coils bool) {
	for _, p := range s.touched(addr, quantity, coils) {
		value := s.readPoint(p)
		s.protocolPort.InfoX(message.NewDecoded("WR UnitID=%d Point=%s Kind=%s Value=%v", s.unitID, p.Name, p.Kind, value))
		s.applyRules(p, value, rules.TriggerOnWrite)
	}
}

// applyRules runs the rules bound to p and stores their results. Writes to
// other points do not trigger the rules of those points.
func (s *Slave) applyRules(p config.Point, value float64, trigger rules.TriggerType) {
	if !s.ruleEngine.HasRules(p.Name) {
		return
	}
	apply := s.ruleEngine.ApplyRead
	if trigger == rules.TriggerOnWrite {
		apply = s.ruleEngine.ApplyWrite
	}

	newValue, writes, modified := apply(p, value)
	if modified {
		s.writePoint(p, newValue)
		s.protocolPort.InfoX(message.NewDecoded("R1 UnitID=%d Rule=%s Point=%s NewValue=%v", s.unitID, trigger, p.Name, s.readPoint(p)))
	}
	for _, w := range writes {
		target, exists := s.point(w.Point)
		if !exists {
			slog.Warn("rule target does not exist", "unitID", s.unitID, "point", p.Name, "target", w.Point)
			continue
		}
		s.writePoint(target, w.Value)
		s.protocolPort.InfoX(message.NewDecoded("R1 UnitID=%d Rule=%s Point=%s Target=%s NewValue=%v", s.unitID, trigger, p.Name, target.Name, s.readPoint(target)))
	}
}

func (s *Slave) point(name string) (config.Point, bool) {
	for _, p := range s.points {
		if p.Name == name {
			return p, true
		}
	}
	return config.Point{}, false
}

// touched returns the points overlapping [addr, addr+quantity).
func (s *Slave) touched(addr, quantity uint16, coils bool) []config.Point {
	var out []config.Point
	start, end := int(addr), int(addr)+int(quantity)
	for _, p := range s.points {
		if (p.Kind == config.KindCoil) != coils {
			continue
		}
		pStart := int(p.Address)
		if pStart < end && pStart+p.Registers() > start {
			out = append(out, p)
		}
	}
	return out
}

func (s *Slave) window(addr uint16, n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = s.registers[addr+uint16(i)]
	}
	return out
}

func (s *Slave) store(addr uint16, regs []uint16) {
	for i, r := range regs {
		s.registers[addr+uint16(i)] = r
	}
}

// readPoint decodes the current value of p.
func (s *Slave) readPoint(p config.Point) float64 {
	switch p.Kind {
	case config.KindCoil:
		return float64(s.coils[p.Address])
	case config.KindFloat32:
		return float64(encoding.RegistersToFloat32([2]uint16(s.window(p.Address, 2)), p.ByteOrder()))
	case config.KindFloat64:
		return encoding.RegistersToFloat64([4]uint16(s.window(p.Address, 4)), p.ByteOrder())
	}
	return float64(s.registers[p.Address])
}

// writePoint encodes value into the store backing p.
func (s *Slave) writePoint(p config.Point, value float64) {
	switch p.Kind {
	case config.KindCoil:
		if value != 0 {
			s.coils[p.Address] = 1
		} else {
			s.coils[p.Address] = 0
		}
	case config.KindFloat32:
		regs := encoding.Float32ToRegisters(float32(value), p.ByteOrder())
		s.store(p.Address, regs[:])
	case config.KindFloat64:
		regs := encoding.Float64ToRegisters(value, p.ByteOrder())
		s.store(p.Address, regs[:])
	default:
		// out of range values saturate
		s.registers[p.Address] = uint16(min(max(math.Round(value), 0), math.MaxUint16))
	}
}

// Status renders registers, coils and decoded points.
func (s *Slave) Status() string {
	var status string
	status += s.ruleEngine.Status()
	if len(s.points) > 0 {
		status += "\n    Points:"
		for _, p := range s.points {
			order := ""
			if p.Kind == config.KindFloat32 || p.Kind == config.KindFloat64 {
				order = " " + p.ByteOrder().Name(p.Registers())
			}
			status += fmt.Sprintf("\n    - %s @0x%04X %s%s => %v", p.Name, p.Address, p.Kind, order, s.readPoint(p))
		}
	}
	if len(s.registers) > 0 {
		status += "\n    Registers:"
		for _, addr := range slices.Sorted(maps.Keys(s.registers)) {
			status += fmt.Sprintf("\n    - 0x%04X => 0x%04X", addr, s.registers[addr])
		}
	}
	if len(s.coils) > 0 {
		status += "\n    Coils:"
		for _, addr := range slices.Sorted(maps.Keys(s.coils)) {
			status += fmt.Sprintf("\n    - 0x%04X => %d", addr, s.coils[addr])
		}
	}
	return status
}
