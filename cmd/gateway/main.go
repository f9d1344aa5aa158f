//go:build linux

// Command gateway runs the robot-inventor-tools gateway: a process that
// speaks line-framed JSON-RPC with a LEGO hub over a single transport and
// relays every line to any number of TCP (or Bluetooth) clients, per
// spec §6. Bluetooth RFCOMM is Linux-only (pkg/transport/bluetooth.go), so
// this binary only builds there.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ckumpe/robot-inventor-tools/pkg/gateway"
	"github.com/ckumpe/robot-inventor-tools/pkg/gwconfig"
	gwlog "github.com/ckumpe/robot-inventor-tools/pkg/log"
	"github.com/ckumpe/robot-inventor-tools/pkg/trace"
	"github.com/ckumpe/robot-inventor-tools/pkg/transport"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "gateway",
		Usage: "bridge a LEGO hub to any number of TCP/Bluetooth RPC clients",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "client-facing TCP port", Value: gwconfig.DefaultPort},
			&cli.BoolFlag{Name: "bluetooth", Aliases: []string{"b"}, Usage: "also accept clients over Bluetooth RFCOMM"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Usage: "trace log path (mutually exclusive with --nolog)"},
			&cli.BoolFlag{Name: "nolog", Aliases: []string{"n"}, Usage: "disable trace logging (mutually exclusive with --log)"},
			&cli.StringFlag{Name: "tty", Aliases: []string{"t"}, Usage: "hub serial device (e.g. /dev/ttyACM0)"},
			&cli.StringFlag{Name: "device", Aliases: []string{"d"}, Usage: "hub Bluetooth device address"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "replay a captured trace log instead of a live hub"},
			&cli.StringFlag{Name: "config", Usage: "defaults TOML file", Value: gwconfig.DefaultConfigPath()},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	raw := gwconfig.RawFlags{
		Debug:      c.Bool("debug"),
		Port:       int(c.Int("port")),
		Bluetooth:  c.Bool("bluetooth"),
		LogPath:    c.String("log"),
		NoLog:      c.Bool("nolog"),
		TTYPath:    c.String("tty"),
		DeviceAddr: c.String("device"),
		FilePath:   c.String("file"),
	}

	defaults, err := gwconfig.LoadDefaults(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading defaults: %w", err)
	}
	defaults.Apply(&raw)

	opts, err := gwconfig.Resolve(raw)
	if err != nil {
		return err
	}
	gwlog.SetGlobalDebug(opts.Debug)

	hub, err := openHub(opts)
	if err != nil {
		return fmt.Errorf("opening hub transport: %w", err)
	}

	var tr trace.Logger
	if opts.NoLog {
		tr = trace.NewNoop()
	} else {
		tr, err = trace.NewFile(opts.LogPath)
		if err != nil {
			return fmt.Errorf("opening trace log: %w", err)
		}
	}

	acceptors, closeAcceptors, err := buildAcceptors(opts)
	if err != nil {
		return fmt.Errorf("starting acceptors: %w", err)
	}
	defer closeAcceptors()

	fmt.Printf("gateway listening on port %d, hub %s\n", opts.Port, hub.String())

	loop := gateway.NewLoop(hub, acceptors, tr, nil)
	return loop.Run()
}

func openHub(opts *gwconfig.Options) (transport.Transport, error) {
	switch opts.Transport {
	case gwconfig.TransportTTY:
		return transport.NewSerial(opts.TTYPath)
	case gwconfig.TransportDevice:
		return transport.NewBluetoothClient(opts.DeviceAddr)
	case gwconfig.TransportFile:
		return transport.NewReplay(opts.FilePath)
	default:
		return nil, fmt.Errorf("no hub transport selected")
	}
}

// buildAcceptors starts the client-facing TCP listener (always) and, when
// requested, a Bluetooth RFCOMM server, wrapping both as gateway.Acceptor
// so Loop.Run treats them uniformly. On success the returned close func
// tears both down; Loop.Run itself also closes each Acceptor on exit, so
// the deferred call in run closes them a second time. If buildAcceptors
// fails partway through, it closes what it already opened and returns a
// no-op close func.
func buildAcceptors(opts *gwconfig.Options) ([]gateway.Acceptor, func(), error) {
	tcpLn, err := transport.NewTCPListener(opts.Port)
	if err != nil {
		return nil, func() {}, err
	}

	acceptors := []gateway.Acceptor{{
		Name: "tcp",
		Accept: func() (transport.Transport, error) {
			return tcpLn.Accept()
		},
		Close: tcpLn.Close,
	}}

	closeAll := func() {
		tcpLn.Close()
	}

	if opts.Bluetooth {
		btSrv, err := transport.NewBluetoothServer()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("starting bluetooth server: %w", err)
		}
		acceptors = append(acceptors, gateway.Acceptor{
			Name: "bluetooth",
			Accept: func() (transport.Transport, error) {
				return btSrv.Accept()
			},
			Close: btSrv.Close,
		})
		prevClose := closeAll
		closeAll = func() {
			prevClose()
			btSrv.Close()
		}
	}

	return acceptors, closeAll, nil
}
