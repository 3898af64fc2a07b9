package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rwirdemann/modbusdata"
	"github.com/rwirdemann/modbusdata/config"
	"github.com/rwirdemann/modbusdata/console"
	"github.com/rwirdemann/modbusdata/encoding"
	"github.com/rwirdemann/modbusdata/rtu"
	"github.com/rwirdemann/modbusdata/tcp"
)

func main() {
	debug := flag.Bool("debug", false, "set log level to debug")
	configFile := flag.String("config", "slavesim.toml", "the simulator configuration")
	flag.Parse()

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "file", *configFile, "error", err)
		os.Exit(1)
	}
	if mode, ok := cfg.ContractMode(); ok {
		encoding.SetContractMode(mode)
	}
	slog.Debug("codec contract mode", "mode", encoding.CurrentContractMode())

	protocolPort := console.NewProtocolAdapter()
	var handlers []modbusdata.TransportHandler
	for _, t := range cfg.Transports {
		switch t.Type {
		case "tcp":
			h, err := tcp.NewHandler(t.Address, protocolPort)
			if err != nil {
				slog.Error("invalid transport", "address", t.Address, "error", err)
				os.Exit(1)
			}
			handlers = append(handlers, h)
		case "rtu":
			handlers = append(handlers, rtu.NewHandler(t.Address, protocolPort))
		}
	}

	gateway := modbusdata.NewGateway(handlers, protocolPort)
	for _, s := range cfg.Slaves {
		if err := gateway.ConnectSlaveWithConfig(s); err != nil {
			slog.Error("failed to connect slave", "unitID", s.ID, "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := gateway.Start(ctx); err != nil {
		slog.Error("failed to start gateway", "error", err)
		os.Exit(1)
	}
	defer gateway.Stop()

	go console.NewKeyboardAdapter(gateway, protocolPort, os.Stdin, os.Stdout).Start(cancel)

	<-ctx.Done()
}
