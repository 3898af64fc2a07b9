package rtu

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goburrow/serial"
	"github.com/rwirdemann/modbusdata"
	"github.com/rwirdemann/modbusdata/message"
)

// ErrCRC is returned for frames whose checksum does not match.
var ErrCRC = errors.New("crc mismatch")

// Handler serves Modbus RTU masters on a serial port.
type Handler struct {
	serialPort   serial.Port
	url          string
	protocolPort modbusdata.ProtocolPort
	open         func(*serial.Config) (serial.Port, error)
}

// NewHandler creates a new RTU handler.
func NewHandler(url string, protocolPort modbusdata.ProtocolPort) *Handler {
	return &Handler{url: url, protocolPort: protocolPort, open: serial.Open}
}

func (h *Handler) Start(ctx context.Context, processPDU modbusdata.ProcessPDUCallback) (err error) {
	config := &serial.Config{
		Address:  h.url,
		BaudRate: 9600,
		DataBits: 8,
		Parity:   "N",
		StopBits: 1,
		Timeout:  5 * time.Second,
	}

	h.serialPort, err = h.open(config)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	go h.startRequestCycle(ctx, processPDU)
	slog.Debug("RTU listener started", "url", h.url)
	return nil
}

func (h *Handler) Description() string {
	return h.url
}

func (h *Handler) startRequestCycle(ctx context.Context, processPDU modbusdata.ProcessPDUCallback) {
	buffer := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			n, err := h.serialPort.Read(buffer)
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, serial.ErrTimeout) {
					slog.Error("Error reading from serial port", "err", err)
				}
				time.Sleep(100 * time.Millisecond)
				continue
			}
			if n == 0 {
				continue
			}
			data := buffer[:n]
			slog.Debug("Received data from serial port", "n", n, "data", fmt.Sprintf("% X", data))

			response, err := h.handleFrame(data, processPDU)
			if err != nil {
				slog.Error("dropping RTU frame", "error", err)
				continue
			}
			if response == nil {
				continue
			}
			if _, err := h.serialPort.Write(response); err != nil {
				slog.Error("failed to write RTU response", "error", err)
				continue
			}
			h.protocolPort.InfoX(message.NewRaw("RX % X", response))
		}
	}
}

// handleFrame checks an ADU (unit id, function code, payload, CRC), processes
// it and returns the response ADU, nil when there is nothing to send.
func (h *Handler) handleFrame(data []byte, processPDU modbusdata.ProcessPDUCallback) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(data))
	}
	receivedCRC := binary.LittleEndian.Uint16(data[len(data)-2:])
	if calculatedCRC := calculateCRC(data[:len(data)-2]); receivedCRC != calculatedCRC {
		return nil, fmt.Errorf("%w: received 0x%04X, calculated 0x%04X", ErrCRC, receivedCRC, calculatedCRC)
	}

	pdu := modbusdata.PDU{
		UnitId:       data[0],
		FunctionCode: data[1],
		Payload:      data[2 : len(data)-2],
	}
	h.protocolPort.Separator()
	h.protocolPort.Info(fmt.Sprintf("Incoming request on %s => %d", h.url, pdu.UnitId))
	h.protocolPort.InfoX(message.NewRaw("TX % X", data))

	res := processPDU(pdu)
	if res == nil {
		return nil, nil
	}
	return AssembleADU(res), nil
}

// AssembleADU builds an RTU frame: UnitId + FunctionCode + Payload + CRC.
func AssembleADU(p *modbusdata.PDU) []byte {
	response := make([]byte, 0, 4+len(p.Payload))
	response = append(response, p.UnitId)
	response = append(response, p.FunctionCode)
	response = append(response, p.Payload...)

	crc := calculateCRC(response)
	return append(response, byte(crc&0xFF), byte(crc>>8))
}

// Stop stops the handler.
func (h *Handler) Stop() error {
	slog.Debug("Closing serial port")
	if h.serialPort != nil {
		return h.serialPort.Close()
	}
	return nil
}

func calculateCRC(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for range 8 {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc = crc >> 1
			}
		}
	}
	return crc
}
