package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/rwirdemann/modbusdata"
	"github.com/rwirdemann/modbusdata/message"
)

// Handler serves Modbus TCP (MBAP framed) masters.
type Handler struct {
	url          string
	address      string
	listener     net.Listener
	protocolPort modbusdata.ProtocolPort
}

// NewHandler creates a handler for an url of the form tcp://host:port.
func NewHandler(url string, protocolPort modbusdata.ProtocolPort) (*Handler, error) {
	splitURL := strings.SplitN(url, "://", 2)
	if len(splitURL) == 2 && splitURL[0] == "tcp" {
		return &Handler{url: url, address: splitURL[1], protocolPort: protocolPort}, nil
	}
	return nil, fmt.Errorf("invalid url format %s", url)
}

func (h *Handler) Start(ctx context.Context, processPDU modbusdata.ProcessPDUCallback) (err error) {
	h.listener, err = net.Listen("tcp", h.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP listener: %w", err)
	}
	go h.acceptClients(ctx, processPDU)
	slog.Info("TCP listener started", "url", h.url, "addr", h.listener.Addr())
	return nil
}

// Addr returns the bound listener address, nil before Start.
func (h *Handler) Addr() net.Addr {
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}

func (h *Handler) Description() string {
	return h.url
}

func (h *Handler) Stop() error {
	if h.listener != nil {
		slog.Info("Stopping TCP listener", "url", h.url)
		return h.listener.Close()
	}
	return nil
}

func (h *Handler) acceptClients(ctx context.Context, processPDU modbusdata.ProcessPDUCallback) {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept client", "error", err)
			continue
		}
		slog.Info("client connected", "remote addr", conn.RemoteAddr())
		go h.serve(ctx, conn, processPDU)
	}
}

func (h *Handler) serve(ctx context.Context, conn net.Conn, processPDU modbusdata.ProcessPDUCallback) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		txnId, pdu, err := modbusdata.ReadMBAPFrame(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Debug("client disconnected", "remote addr", conn.RemoteAddr())
				return
			}
			slog.Error("failed to read MBAP frame", "remote addr", conn.RemoteAddr(), "error", err)
			return
		}
		slog.Debug("MBAP frame received", "pdu", pdu, "txid", txnId)
		h.protocolPort.Separator()
		h.protocolPort.InfoX(message.NewRaw("req %s", pdu))

		res := processPDU(*pdu)
		if res == nil {
			continue
		}
		frame := modbusdata.AssembleMBAPFrame(txnId, res)
		if _, err := conn.Write(frame); err != nil {
			slog.Error("failed to write response", "error", err)
			return
		}
		h.protocolPort.InfoX(message.NewRaw("rsp % X", frame))
	}
}
