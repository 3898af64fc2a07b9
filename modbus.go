package modbusdata

import (
	"errors"
	"fmt"
	"io"

	"github.com/rwirdemann/modbusdata/encoding"
)

const (
	FC1ReadCoils               uint8 = 0x01
	FC2ReadDiscreteInputs      uint8 = 0x02
	FC3ReadHoldingRegisters    uint8 = 0x03
	FC4ReadInputRegisters      uint8 = 0x04
	FC5WriteSingleCoil         uint8 = 0x05
	FC6WriteSingleRegister     uint8 = 0x06
	FC15WriteMultipleCoils     uint8 = 0x0F
	FC16WriteMultipleRegisters uint8 = 0x10
)

// Exception codes
const (
	ExceptionIllegalFunction    uint8 = 0x01
	ExceptionIllegalDataAddress uint8 = 0x02
	ExceptionIllegalDataValue   uint8 = 0x03
)

const (
	mbapHeaderLength = 7
	maxPDULength     = 253
)

// ErrInvalidFrame is returned for MBAP frames that cannot be parsed.
var ErrInvalidFrame = errors.New("invalid MBAP frame")

// PDU is a struct to represent a Modbus Protocol Data unit.
type PDU struct {
	UnitId       uint8
	FunctionCode uint8
	Payload      []byte
}

func (p PDU) String() string {
	return fmt.Sprintf("UnitId:%d FC:%d Payload:% X", p.UnitId, p.FunctionCode, p.Payload)
}

// IsException reports whether p is an exception response.
func (p PDU) IsException() bool {
	return p.FunctionCode&0x80 != 0
}

// NewException builds the exception response to req.
func NewException(req PDU, code uint8) *PDU {
	return &PDU{
		UnitId:       req.UnitId,
		FunctionCode: req.FunctionCode | 0x80,
		Payload:      []byte{code},
	}
}

// AssembleMBAPFrame turns a PDU into an MBAP frame (MBAP header + PDU) and returns it as bytes.
func AssembleMBAPFrame(txnId uint16, p *PDU) []byte {
	// transaction identifier
	payload := encoding.Uint16ToBytes(txnId)

	// protocol identifier (always 0x0000)
	payload = append(payload, 0x00, 0x00)

	// length (covers unit identifier + function code + payload fields)
	payload = append(payload, encoding.Uint16ToBytes(uint16(2+len(p.Payload)))...)

	// unit identifier
	payload = append(payload, p.UnitId)

	// function code
	payload = append(payload, p.FunctionCode)

	// payload
	payload = append(payload, p.Payload...)

	return payload
}

// ReadMBAPFrame reads one MBAP frame from r. io.EOF is returned unwrapped
// when r is exhausted before a new frame starts.
func ReadMBAPFrame(r io.Reader) (uint16, *PDU, error) {
	header := make([]byte, mbapHeaderLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	txnId := encoding.BytesToUint16(header[0:2])
	if protocolId := encoding.BytesToUint16(header[2:4]); protocolId != 0 {
		return txnId, nil, fmt.Errorf("%w: protocol id 0x%04X", ErrInvalidFrame, protocolId)
	}
	length := int(encoding.BytesToUint16(header[4:6]))
	if length < 2 || length > maxPDULength+1 {
		return txnId, nil, fmt.Errorf("%w: length %d", ErrInvalidFrame, length)
	}

	body := make([]byte, length-1)
	if _, err := io.ReadFull(r, body); err != nil {
		return txnId, nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	return txnId, &PDU{UnitId: header[6], FunctionCode: body[0], Payload: body[1:]}, nil
}
