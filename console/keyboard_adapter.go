package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type KeyboardAdapter struct {
	simulator simulatorPort
	protocol  protocolPort
	in        io.Reader
	out       io.Writer
}

func NewKeyboardAdapter(slaveSimulator simulatorPort, protocol protocolPort, in io.Reader, out io.Writer) *KeyboardAdapter {
	return &KeyboardAdapter{simulator: slaveSimulator, protocol: protocol, in: in, out: out}
}

func (a *KeyboardAdapter) Start(cancel context.CancelFunc) {
	scanner := bufio.NewScanner(a.in)
	fmt.Fprintln(a.out, "Enter 'h' followed by <enter> for help...")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit", "q":
			fmt.Fprintln(a.out, "Terminating simulator...")
			cancel()
			return
		case "status", "s":
			fmt.Fprintln(a.out, a.simulator.Status())
		case "connect", "c":
			if len(fields) != 3 {
				fmt.Fprintln(a.out, "usage: connect <unitID> <url>")
				continue
			}
			unitID, err := parseUnitID(fields[1])
			if err != nil {
				fmt.Fprintln(a.out, err)
				continue
			}
			if err := a.simulator.ConnectSlave(unitID, fields[2]); err != nil {
				fmt.Fprintln(a.out, err)
			}
		case "disconnect", "d":
			if len(fields) != 2 {
				fmt.Fprintln(a.out, "usage: disconnect <unitID>")
				continue
			}
			unitID, err := parseUnitID(fields[1])
			if err != nil {
				fmt.Fprintln(a.out, err)
				continue
			}
			a.simulator.DisconnectSlave(unitID)
		case "toggle", "t":
			a.protocol.Toggle()
		case "mute", "m":
			a.protocol.Mute()
		case "unmute", "u":
			a.protocol.Unmute()
		case "help", "h":
			fmt.Fprintln(a.out, "Commands:")
			fmt.Fprintln(a.out, "  quit/exit/q            - Quit simulator")
			fmt.Fprintln(a.out, "  status/s               - Show simulator status")
			fmt.Fprintln(a.out, "  connect/c <unit> <url> - Connect a slave")
			fmt.Fprintln(a.out, "  disconnect/d <unit>    - Disconnect a slave")
			fmt.Fprintln(a.out, "  toggle/t               - Switch between raw and decoded trace")
			fmt.Fprintln(a.out, "  mute/m, unmute/u       - Silence or resume the trace")
			fmt.Fprintln(a.out, "  help                   - Show help")
		default:
			fmt.Fprintf(a.out, "Unknown command: %s (use 'h' for help)\n", fields[0])
		}
	}
}

func parseUnitID(s string) (uint8, error) {
	id, err := strconv.ParseUint(s, 0, 8)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid unit id %q", s)
	}
	return uint8(id), nil
}

type simulatorPort interface {
	ConnectSlave(unitID uint8, url string) error
	DisconnectSlave(unitID uint8)
	Status() string
}

type protocolPort interface {
	Toggle()
	Mute()
	Unmute()
}
