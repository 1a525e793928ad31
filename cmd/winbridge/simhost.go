package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/internal/hostsim"
	"github.com/winbridge/winbridge/internal/runtimepath"
	"github.com/winbridge/winbridge/window"
)

func runSimhost(args []string) int {
	fs := flag.NewFlagSet("simhost", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge simhost")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the in-memory host simulator in the foreground. Clients connect")
		fmt.Fprintln(os.Stderr, "over the same socket a native host would use.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "simhost takes no positional arguments")
		fs.Usage()
		return 2
	}

	cfg, err := conn.load()
	if err != nil {
		return fail(err)
	}
	setupLogging(cfg.LogLevel)

	socketPath := conn.socket
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	if socketPath == "" {
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return fail(err)
		}
	}

	host := hostsim.New(socketPath, slog.Default())
	if len(cfg.SimMonitors) > 0 {
		monitors := make([]window.Monitor, len(cfg.SimMonitors))
		for i, m := range cfg.SimMonitors {
			monitors[i] = window.Monitor{
				Name:        m.Name,
				ScaleFactor: m.ScaleFactor,
				Position:    geometry.PhysicalPosition{X: m.X, Y: m.Y},
				Size:        geometry.PhysicalSize{Width: m.Width, Height: m.Height},
			}
		}
		host.SetMonitors(monitors)
	}

	if err := host.Start(); err != nil {
		return fail(err)
	}
	defer host.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down host simulator")
	return 0
}
