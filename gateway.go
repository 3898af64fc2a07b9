package modbusdata

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/rwirdemann/modbusdata/config"
	"github.com/rwirdemann/modbusdata/rules"
)

var _ ControlPort = (*Gateway)(nil)

// Gateway represents a gateway with modbus devices.
type Gateway struct {
	handler      []TransportHandler
	protocolPort ProtocolPort
	slaves       map[string]map[uint8]*Slave // map[url]map[unitID]slave
	slaveLock    *sync.Mutex
}

// NewGateway creates a new gateway.
func NewGateway(handler []TransportHandler, protocolPort ProtocolPort) *Gateway {
	b := &Gateway{
		handler:      handler,
		protocolPort: protocolPort,
		slaves:       make(map[string]map[uint8]*Slave),
		slaveLock:    new(sync.Mutex),
	}
	for _, h := range b.handler {
		b.slaves[h.Description()] = make(map[uint8]*Slave)
	}
	return b
}

// Start starts the gateway.
func (g *Gateway) Start(ctx context.Context) error {
	for _, h := range g.handler {
		url := h.Description()
		processPDU := func(pdu PDU) *PDU { return g.processPDU(url, pdu) }
		if err := h.Start(ctx, processPDU); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops gateway.
func (g *Gateway) Stop() error {
	for _, h := range g.handler {
		if err := h.Stop(); err != nil {
			slog.Error("failed to stop transport", "transport", h.Description(), "error", err)
		}
	}
	return nil
}

// findSlave looks up a unit on the transport the request arrived on.
func (g *Gateway) findSlave(url string, unitID uint8) (*Slave, bool) {
	if s, exists := g.slaves[url][unitID]; exists {
		return s, true
	}
	slog.Debug("slave does not exist", "unitID", unitID, "url", url)

	return nil, false
}

// processPDU dispatches a request to its slave. Requests for unknown or
// disconnected slaves get no response, like a silent device on the bus.
func (g *Gateway) processPDU(url string, pdu PDU) *PDU {
	g.slaveLock.Lock()
	defer g.slaveLock.Unlock()
	slave, exists := g.findSlave(url, pdu.UnitId)
	if !exists || !slave.connected {
		g.protocolPort.Info(fmt.Sprintf("slave %d does not exist or is offline", pdu.UnitId))
		return nil
	}
	return slave.Process(pdu)
}

func (g *Gateway) ConnectSlave(unitID uint8, url string) error {
	g.slaveLock.Lock()
	defer g.slaveLock.Unlock()
	if _, exists := g.slaves[url]; !exists {
		return fmt.Errorf("URL %s not configured", url)
	}

	if s, exists := g.slaves[url][unitID]; exists {
		s.connected = true
		slog.Debug("slave reconnected", "unitID", unitID, "url", url)
		return nil
	}

	g.slaves[url][unitID] = NewSlave(unitID, true, nil, rules.NewEngine(nil), g.protocolPort)
	slog.Debug("slave connected", "unitID", unitID, "url", url)
	return nil
}

// ConnectSlaveWithConfig connects a slave with its points and rules
func (g *Gateway) ConnectSlaveWithConfig(slaveConfig config.Slave) error {
	g.slaveLock.Lock()
	defer g.slaveLock.Unlock()
	slaves, exists := g.slaves[slaveConfig.Address]
	if !exists {
		return fmt.Errorf("URL %s not configured", slaveConfig.Address)
	}
	if _, exists := slaves[slaveConfig.ID]; !exists {
		ruleEngine := rules.NewEngine(slaveConfig.Rules)
		slaves[slaveConfig.ID] = NewSlave(slaveConfig.ID, true, slaveConfig.Points, ruleEngine, g.protocolPort)
		slog.Info("Slave connected", "unitID", slaveConfig.ID, "url", slaveConfig.Address,
			"pointCount", len(slaveConfig.Points), "ruleCount", len(slaveConfig.Rules))
	}
	return nil
}

func (g *Gateway) DisconnectSlave(unitID uint8) {
	g.slaveLock.Lock()
	defer g.slaveLock.Unlock()
	for _, v := range g.slaves {
		if s, exists := v[unitID]; exists {
			s.connected = false
		}
	}
}

func (g *Gateway) Status() string {
	g.slaveLock.Lock()
	defer g.slaveLock.Unlock()
	var status string
	for i, p := range g.handler {
		if i > 0 {
			status += "\n"
		}
		status = fmt.Sprintf("%sPort %d: %s", status, i, p.Description())
		slaves := g.slaves[p.Description()]
		if len(slaves) == 0 {
			status += "\n  <no slaves connected>"
		}
		for _, unitID := range slices.Sorted(maps.Keys(slaves)) {
			slave := slaves[unitID]
			connectStatus := "disconnected"
			if slave.connected {
				connectStatus = "connected"
			}
			status = fmt.Sprintf("%s\n  - Unit %d: %s", status, unitID, connectStatus)
			status += slave.Status()
		}
	}
	return status
}
