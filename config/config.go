package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rwirdemann/modbusdata/encoding"
)

// Config represents the slavesim configuration
type Config struct {
	Codec      Codec       `toml:"codec"`
	Transports []Transport `toml:"transport"`
	Slaves     []Slave     `toml:"slave"`
}

// Codec holds process wide codec settings
type Codec struct {
	Contract string `toml:"contract"` // "clamp", "log" or "panic"; empty keeps the build default
}

// Transport defines a transport handler (TCP or RTU)
type Transport struct {
	Type    string `toml:"type"`    // "tcp" or "rtu"
	Address string `toml:"address"` // For TCP: "tcp://localhost:502", for RTU: "/tmp/virtualcom0"
}

// Slave defines a slave configuration
type Slave struct {
	ID      uint8   `toml:"id"`      // Slave ID (e.g., 101)
	Address string  `toml:"address"` // Reference to transport address
	Points  []Point `toml:"point"`
	Rules   []Rule  `toml:"rule"`
}

// Load reads and parses a TOML configuration file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a TOML configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Codec.Contract != "" {
		if _, err := encoding.ParseContractMode(c.Codec.Contract); err != nil {
			return fmt.Errorf("codec: %w", err)
		}
	}

	if len(c.Transports) == 0 {
		return fmt.Errorf("at least one transport must be defined")
	}

	// Check that all transports have valid types
	for i, t := range c.Transports {
		if t.Type != "tcp" && t.Type != "rtu" {
			return fmt.Errorf("transport[%d]: invalid type %q, must be 'tcp' or 'rtu'", i, t.Type)
		}
		if t.Address == "" {
			return fmt.Errorf("transport[%d]: address is required", i)
		}
		if c.GetTransportByAddress(t.Address) != &c.Transports[i] {
			return fmt.Errorf("transport[%d]: duplicate address %q", i, t.Address)
		}
	}

	// Check that all slaves reference valid transports
	units := make(map[string]bool)
	for i, s := range c.Slaves {
		if s.ID == 0 {
			return fmt.Errorf("slave[%d]: invalid ID %d, must be between 1 and 255", i, s.ID)
		}
		if c.GetTransportByAddress(s.Address) == nil {
			return fmt.Errorf("slave[%d]: address %q does not match any transport", i, s.Address)
		}
		unit := fmt.Sprintf("%s/%d", s.Address, s.ID)
		if units[unit] {
			return fmt.Errorf("slave[%d]: duplicate ID %d on %q", i, s.ID, s.Address)
		}
		units[unit] = true
		if err := s.validatePoints(); err != nil {
			return fmt.Errorf("slave[%d]: %w", i, err)
		}
	}

	return nil
}

// ContractMode returns the configured codec contract mode and whether one
// was set at all.
func (c *Config) ContractMode() (encoding.ContractMode, bool) {
	if c.Codec.Contract == "" {
		return 0, false
	}
	m, err := encoding.ParseContractMode(c.Codec.Contract)
	return m, err == nil
}

func (s Slave) validatePoints() error {
	names := make(map[string]Point)
	registers := make(map[uint16]string)
	coils := make(map[uint16]string)
	for i, p := range s.Points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("point[%d]: %w", i, err)
		}
		if _, exists := names[p.Name]; exists {
			return fmt.Errorf("point[%d]: duplicate name %q", i, p.Name)
		}
		names[p.Name] = p

		used := registers
		if p.Kind == KindCoil {
			used = coils
		}
		for r := range p.Registers() {
			addr := p.Address + uint16(r)
			if other, exists := used[addr]; exists {
				return fmt.Errorf("point %q overlaps point %q at 0x%04X", p.Name, other, addr)
			}
			used[addr] = p.Name
		}
	}

	for i, r := range s.Rules {
		p, exists := names[r.Point]
		if !exists {
			return fmt.Errorf("rule[%d]: unknown point %q", i, r.Point)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule[%d]: %w", i, err)
		}
		if err := r.validateFor(p, names); err != nil {
			return fmt.Errorf("rule[%d]: %w", i, err)
		}
	}
	return nil
}

// GetTransportByAddress returns the transport configuration for a given address
func (c *Config) GetTransportByAddress(address string) *Transport {
	for i := range c.Transports {
		if c.Transports[i].Address == address {
			return &c.Transports[i]
		}
	}
	return nil
}
