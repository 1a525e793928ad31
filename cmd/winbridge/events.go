package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/winbridge/winbridge/internal/tui"
	"github.com/winbridge/winbridge/window"
)

func runEmit(args []string) int {
	fs := flag.NewFlagSet("emit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	payload := fs.String("payload", "", "JSON payload to attach to the event")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge emit [--payload JSON] <label> <event>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "emit requires a window label and an event name")
		fs.Usage()
		return 2
	}

	var value any
	if *payload != "" {
		if !json.Valid([]byte(*payload)) {
			fmt.Fprintln(os.Stderr, "--payload must be valid JSON")
			return 2
		}
		value = json.RawMessage(*payload)
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()

	w := window.Get(client, bus, fs.Arg(0))
	if err := w.Emit(context.Background(), fs.Arg(1), value); err != nil {
		return fail(err)
	}
	return 0
}

func runListen(args []string) int {
	fs := flag.NewFlagSet("listen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	events := fs.String("events", "", "comma-separated event names (default: all standard window events)")
	once := fs.Bool("once", false, "exit after the first delivery")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge listen [--events a,b,c] [--once] <label>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Prints one JSON line per delivered event until interrupted.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "listen requires exactly one window label")
		fs.Usage()
		return 2
	}

	names := standardEvents()
	if *events != "" {
		names = nil
		for _, name := range strings.Split(*events, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "no event names to listen for")
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := window.Get(client, bus, fs.Arg(0))
	delivered := make(chan struct{}, 1)
	enc := json.NewEncoder(os.Stdout)

	handler := func(ev window.Event) error {
		line := map[string]any{
			"event":        ev.Name,
			"id":           ev.ID,
			"window_label": ev.WindowLabel,
		}
		if raw, ok := ev.Payload.(json.RawMessage); ok {
			line["payload"] = raw
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
		if *once {
			select {
			case delivered <- struct{}{}:
			default:
			}
		}
		return nil
	}

	var unlistens []window.UnlistenFunc
	for _, name := range names {
		unlisten, err := w.Listen(ctx, name, handler)
		if err != nil {
			for _, fn := range unlistens {
				_ = fn()
			}
			return fail(err)
		}
		unlistens = append(unlistens, unlisten)
	}
	defer func() {
		for _, fn := range unlistens {
			_ = fn()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-delivered:
	}
	return 0
}

func standardEvents() []string {
	return []string{
		window.EventResized,
		window.EventMoved,
		window.EventCloseRequested,
		window.EventFocusGained,
		window.EventFocusLost,
		window.EventScaleFactorChanged,
		window.EventMenuItemClicked,
		window.EventFileDrop,
		window.EventFileDropHover,
		window.EventFileDropCancelled,
		window.EventThemeChanged,
	}
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge watch <label>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a live inspector showing the window's state and event stream.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "watch requires exactly one window label")
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()

	if err := tui.Run(client, bus, fs.Arg(0)); err != nil {
		return fail(err)
	}
	return 0
}
