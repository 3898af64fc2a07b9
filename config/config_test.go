package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rwirdemann/modbusdata/encoding"
)

const sample = `
[codec]
contract = "log"

[[transport]]
type = "tcp"
address = "tcp://localhost:5002"

[[slave]]
id = 101
address = "tcp://localhost:5002"

  [[slave.point]]
  name = "voltage"
  address = 0x0010
  kind = "float32"
  order = "DCBA"
  value = 230.5

  [[slave.point]]
  name = "energy"
  address = 0x0020
  kind = "float64"
  order = "HGFEDCBA"
  value = 1234.125

  [[slave.point]]
  name = "relay"
  address = 0x0001
  kind = "coil"
  value = 1

  [[slave.rule]]
  point = "energy"
  trigger = "on_read"
  action = "increment"
  step = 0.5
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.toml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m, ok := cfg.ContractMode(); !ok || m != encoding.ContractLog {
		t.Fatalf("contract mode = %v %v", m, ok)
	}
	if len(cfg.Slaves) != 1 || len(cfg.Slaves[0].Points) != 3 || len(cfg.Slaves[0].Rules) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	p := cfg.Slaves[0].Points[0]
	if p.Address != 0x10 || p.ByteOrder() != encoding.DCBA || p.Registers() != 2 {
		t.Fatalf("voltage point = %+v", p)
	}
	if got := cfg.Slaves[0].Points[1].ByteOrder(); got != encoding.HGFEDCBA {
		t.Fatalf("energy order = %v", got)
	}
	if cfg.GetTransportByAddress("tcp://localhost:5002") == nil {
		t.Fatal("transport not found")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateErrors(t *testing.T) {
	base := `
[[transport]]
type = "tcp"
address = "tcp://localhost:5002"
`
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"no transport", `[[slave]]
id = 1
address = "x"`, "at least one transport"},
		{"bad transport type", `[[transport]]
type = "udp"
address = "a"`, "invalid type"},
		{"bad contract", base + `[codec]
contract = "assert"`, "invalid contract mode"},
		{"unknown transport", base + `[[slave]]
id = 1
address = "tcp://other"`, "does not match any transport"},
		{"zero id", base + `[[slave]]
id = 0
address = "tcp://localhost:5002"`, "invalid ID"},
		{"order for wrong width", base + `[[slave]]
id = 1
address = "tcp://localhost:5002"
[[slave.point]]
name = "f"
address = 0
kind = "float32"
order = "HGFEDCBA"`, "invalid byte order"},
		{"overlap", base + `[[slave]]
id = 1
address = "tcp://localhost:5002"
[[slave.point]]
name = "a"
address = 0
kind = "float64"
[[slave.point]]
name = "b"
address = 3
kind = "register"`, "overlaps"},
		{"rule for unknown point", base + `[[slave]]
id = 1
address = "tcp://localhost:5002"
[[slave.rule]]
point = "nope"
trigger = "on_read"
action = "toggle"`, "unknown point"},
		{"set_value without value", base + `[[slave]]
id = 1
address = "tcp://localhost:5002"
[[slave.point]]
name = "a"
address = 0
kind = "register"
[[slave.rule]]
point = "a"
trigger = "on_write"
action = "set_value"`, "requires a value"},
		{"coil value", base + `[[slave]]
id = 1
address = "tcp://localhost:5002"
[[slave.point]]
name = "c"
address = 0
kind = "coil"
value = 2`, "must be 0 or 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCoilAndRegisterMayShareAddress(t *testing.T) {
	_, err := Parse([]byte(`
[[transport]]
type = "rtu"
address = "/tmp/virtualcom0"
[[slave]]
id = 7
address = "/tmp/virtualcom0"
[[slave.point]]
name = "c"
address = 5
kind = "coil"
[[slave.point]]
name = "r"
address = 5
kind = "register"
value = 42
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestRuleValidatesAgainstPointKind(t *testing.T) {
	points := `
[[transport]]
type = "tcp"
address = "tcp://localhost:5002"
[[slave]]
id = 1
address = "tcp://localhost:5002"
[[slave.point]]
name = "counter"
address = 0
kind = "register"
[[slave.point]]
name = "relay"
address = 0
kind = "coil"
[[slave.point]]
name = "level"
address = 1
kind = "float32"
[[slave.rule]]
`
	tests := []struct {
		name string
		rule string
		want string // empty when the rule is valid
	}{
		{"register set out of range", `point = "counter"
trigger = "on_read"
action = "set_value"
value = 70000`, "not a 16-bit unsigned integer"},
		{"register set fractional", `point = "counter"
trigger = "on_read"
action = "set_value"
value = 1.5`, "not a 16-bit unsigned integer"},
		{"register fractional step", `point = "counter"
trigger = "on_read"
action = "increment"
step = 0.5`, "step 0.5"},
		{"negative step", `point = "level"
trigger = "on_read"
action = "decrement"
step = -1`, "invalid step"},
		{"coil increment", `point = "relay"
trigger = "on_write"
action = "increment"`, "use toggle"},
		{"coil when", `point = "relay"
trigger = "on_write"
action = "toggle"
when = 2`, "when"},
		{"write_point without target", `point = "relay"
trigger = "on_write"
action = "write_point"
value = 1`, "requires a target"},
		{"write_point unknown target", `point = "relay"
trigger = "on_write"
action = "write_point"
target = "nope"
value = 1`, "unknown target"},
		{"write_point value for target kind", `point = "level"
trigger = "on_write"
action = "write_point"
target = "counter"
value = -1`, "target"},
		{"register step", `point = "counter"
trigger = "on_read_write"
action = "decrement"
step = 2`, ""},
		{"float set", `point = "level"
trigger = "on_write"
action = "set_value"
when = 0.1
value = 70000.25`, ""},
		{"conditional write_point", `point = "relay"
trigger = "on_write"
action = "write_point"
when = 1
target = "counter"
value = 65535`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(points + tt.rule))
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Parse: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDuplicateUnitsAndTransports(t *testing.T) {
	transports := `
[[transport]]
type = "tcp"
address = "tcp://localhost:5002"
[[transport]]
type = "rtu"
address = "/tmp/virtualcom0"
`
	_, err := Parse([]byte(transports + `
[[slave]]
id = 7
address = "tcp://localhost:5002"
[[slave]]
id = 7
address = "/tmp/virtualcom0"`))
	if err != nil {
		t.Fatalf("same id on different transports: %v", err)
	}

	_, err = Parse([]byte(transports + `
[[slave]]
id = 7
address = "/tmp/virtualcom0"
[[slave]]
id = 7
address = "/tmp/virtualcom0"`))
	if err == nil || !strings.Contains(err.Error(), "duplicate ID 7") {
		t.Fatalf("err = %v", err)
	}

	_, err = Parse([]byte(transports + `
[[transport]]
type = "tcp"
address = "tcp://localhost:5002"`))
	if err == nil || !strings.Contains(err.Error(), "duplicate address") {
		t.Fatalf("err = %v", err)
	}
}
