package rtu

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goburrow/serial"
	"github.com/rwirdemann/modbusdata"
	"github.com/rwirdemann/modbusdata/message"
)

type nopPort struct{}

func (nopPort) InfoX(message.Message) {}
func (nopPort) Info(string)           {}
func (nopPort) Println(string)        {}
func (nopPort) Separator()            {}
func (nopPort) Mute()                 {}
func (nopPort) Unmute()               {}
func (nopPort) Toggle()               {}

// fakeSerial hands out one request frame and records what is written back.
type fakeSerial struct {
	mu      sync.Mutex
	request []byte
	written chan []byte
}

func (f *fakeSerial) Open(*serial.Config) error { return nil }
func (f *fakeSerial) Close() error              { return nil }

func (f *fakeSerial) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.request == nil {
		return 0, serial.ErrTimeout
	}
	n := copy(p, f.request)
	f.request = nil
	return n, nil
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	f.written <- bytes.Clone(p)
	return len(p), nil
}

func TestCalculateCRC(t *testing.T) {
	if got := calculateCRC([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A}); got != 0xCDC5 {
		t.Fatalf("crc = 0x%04X, want 0xCDC5", got)
	}
}

func TestAssembleADU(t *testing.T) {
	adu := AssembleADU(&modbusdata.PDU{UnitId: 1, FunctionCode: 3, Payload: []byte{0x00, 0x00, 0x00, 0x0A}})
	want := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A, 0xC5, 0xCD}
	if !bytes.Equal(adu, want) {
		t.Fatalf("adu = % X, want % X", adu, want)
	}
}

func TestHandleFrameRejectsBadCRC(t *testing.T) {
	h := NewHandler("/dev/null", nopPort{})
	_, err := h.handleFrame([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00}, func(modbusdata.PDU) *modbusdata.PDU {
		t.Fatal("processPDU must not be called")
		return nil
	})
	if !errors.Is(err, ErrCRC) {
		t.Fatalf("expected ErrCRC, got %v", err)
	}
	if _, err := h.handleFrame([]byte{1, 2}, nil); err == nil {
		t.Fatal("expected error for short frame")
	}
}

func TestRequestCycleAnswersOverSerial(t *testing.T) {
	port := &fakeSerial{
		request: AssembleADU(&modbusdata.PDU{UnitId: 9, FunctionCode: 6, Payload: []byte{0x00, 0x01, 0x12, 0x34}}),
		written: make(chan []byte, 1),
	}
	h := NewHandler("/tmp/virtualcom0", nopPort{})
	h.open = func(*serial.Config) (serial.Port, error) { return port, nil }

	var got modbusdata.PDU
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := h.Start(ctx, func(p modbusdata.PDU) *modbusdata.PDU {
		got = p
		return &p
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.Stop()

	select {
	case res := <-port.written:
		want := AssembleADU(&modbusdata.PDU{UnitId: 9, FunctionCode: 6, Payload: []byte{0x00, 0x01, 0x12, 0x34}})
		if !bytes.Equal(res, want) {
			t.Fatalf("response = % X, want % X", res, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no response written")
	}
	if got.UnitId != 9 || got.FunctionCode != 6 {
		t.Fatalf("processed pdu = %v", got)
	}
}
