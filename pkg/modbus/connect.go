package modbus

import (
	"fmt"
	"io"
	"strings"
	"time"

	bmodbus "github.com/goburrow/modbus"
)

// Options select the transport to a device.
type Options struct {
	Transport string // "tcp" or "rtu"
	URL       string // host:port (tcp:// prefix allowed) or serial device
	SlaveID   uint8
	Timeout   time.Duration
}

// Connect opens a TCP or RTU connection and returns the device together with
// the handler that must be closed when done.
func Connect(opts Options) (*Device, io.Closer, error) {
	switch opts.Transport {
	case "tcp":
		h := bmodbus.NewTCPClientHandler(strings.TrimPrefix(opts.URL, "tcp://"))
		h.Timeout = opts.Timeout
		h.SlaveId = opts.SlaveID
		if err := h.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", opts.URL, err)
		}
		return NewDevice(bmodbus.NewClient(h)), h, nil
	case "rtu":
		h := bmodbus.NewRTUClientHandler(opts.URL)
		h.Timeout = opts.Timeout
		h.SlaveId = opts.SlaveID
		h.BaudRate = 9600
		h.Parity = "N"
		h.StopBits = 1
		h.DataBits = 8
		if err := h.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", opts.URL, err)
		}
		return NewDevice(bmodbus.NewClient(h)), h, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q, must be tcp or rtu", opts.Transport)
}
