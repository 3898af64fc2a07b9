package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rwirdemann/modbusdata/encoding"
	"github.com/rwirdemann/modbusdata/pkg/modbus"
)

func main() {
	var addr encoding.Hex
	flag.Var(&addr, "address", "0x0000 to 0xFFFF")
	transport := flag.String("transport", "tcp", "the modbus mode (tcp|rtu)")
	url := flag.String("url", "localhost:5002", "host:port for tcp, serial device for rtu")
	slave := flag.String("slave", "101", "the slave id (1-247)")
	kind := flag.String("type", "float32", "the value type (float32|float64|coils|register)")
	orderName := flag.String("order", "", "byte order, ABCD/DCBA for float32, ABCDEFGH/HGFEDCBA for float64")
	value := flag.String("value", "", "value to write; comma separated 0/1 list for coils. Reads when empty")
	quantity := flag.Int("quantity", 1, "number of coils or registers to read")
	debug := flag.Bool("debug", false, "set log level to debug")
	flag.Parse()

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slaveID, err := parseSlaveID(*slave)
	if err != nil {
		log.Fatal(err)
	}

	timeout := 1 * time.Second
	if *transport == "rtu" {
		timeout = 5 * time.Second
	}
	dev, closer, err := modbus.Connect(modbus.Options{
		Transport: *transport,
		URL:       *url,
		SlaveID:   slaveID,
		Timeout:   timeout,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	if err := run(dev, *kind, addr.Uint16(), *orderName, *value, *quantity); err != nil {
		log.Fatal(err)
	}
}

func run(dev *modbus.Device, kind string, addr uint16, orderName, value string, quantity int) error {
	switch kind {
	case "float32":
		order, err := parseOrder(orderName, encoding.Float32Registers)
		if err != nil {
			return err
		}
		if value != "" {
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return err
			}
			return dev.WriteFloat32(addr, float32(f), order)
		}
		f, err := dev.ReadFloat32(addr, order)
		if err != nil {
			return err
		}
		fmt.Printf("0x%04X %s => %v\n", addr, order.Name(encoding.Float32Registers), f)
	case "float64":
		order, err := parseOrder(orderName, encoding.Float64Registers)
		if err != nil {
			return err
		}
		if value != "" {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return err
			}
			return dev.WriteFloat64(addr, f, order)
		}
		f, err := dev.ReadFloat64(addr, order)
		if err != nil {
			return err
		}
		fmt.Printf("0x%04X %s => %v\n", addr, order.Name(encoding.Float64Registers), f)
	case "coils":
		if value != "" {
			var states []bool
			for _, s := range strings.Split(value, ",") {
				switch strings.TrimSpace(s) {
				case "1":
					states = append(states, true)
				case "0":
					states = append(states, false)
				default:
					return fmt.Errorf("invalid coil value %q", s)
				}
			}
			return dev.WriteCoils(addr, states)
		}
		states, err := dev.ReadCoils(addr, uint16(quantity))
		if err != nil {
			return err
		}
		fmt.Printf("0x%04X => %v\n", addr, states)
	case "register":
		if value != "" {
			v, err := strconv.ParseUint(value, 0, 16)
			if err != nil {
				return err
			}
			return dev.WriteRegisters(addr, []uint16{uint16(v)})
		}
		regs, err := dev.ReadRegisters(addr, uint16(quantity))
		if err != nil {
			return err
		}
		fmt.Printf("0x%04X => %04X\n", addr, regs)
	default:
		return fmt.Errorf("unknown type %q", kind)
	}
	return nil
}

// parseSlaveID accepts the unicast unit ids 1 to 247.
func parseSlaveID(s string) (uint8, error) {
	id, err := strconv.ParseUint(s, 0, 8)
	if err != nil || id < 1 || id > 247 {
		return 0, fmt.Errorf("invalid slave id %q, must be between 1 and 247", s)
	}
	return uint8(id), nil
}

func parseOrder(name string, registers int) (encoding.ByteOrder, error) {
	if name == "" {
		return encoding.ABCD, nil
	}
	return encoding.ParseByteOrder(name, registers)
}
