package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/window"
)

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	x := fs.Float64("x", 0, "target x coordinate")
	y := fs.Float64("y", 0, "target y coordinate")
	logical := fs.Bool("logical", false, "treat coordinates as logical (scale-independent)")
	center := fs.Bool("center", false, "center the window on its monitor instead of using --x/--y")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge move [--x N --y N [--logical] | --center] <label>")
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
		fmt.Fprintln(os.Stderr, "move requires exactly one window label")
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, fs.Arg(0))

	ctx := context.Background()
	if *center {
		if err := w.Center(ctx); err != nil {
			return fail(err)
		}
	} else {
		var pos geometry.Position
		if *logical {
			pos = geometry.LogicalPosition{X: *x, Y: *y}
		} else {
			pos = geometry.PhysicalPosition{X: int(*x), Y: int(*y)}
		}
		if err := w.SetPosition(ctx, pos); err != nil {
			return fail(err)
		}
	}

	final, err := w.OuterPosition(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%d,%d\n", final.X, final.Y)
	return 0
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	width := fs.Float64("width", 0, "target width")
	height := fs.Float64("height", 0, "target height")
	logical := fs.Bool("logical", false, "treat dimensions as logical (scale-independent)")
	maximize := fs.Bool("maximize", false, "maximize instead of resizing")
	unmaximize := fs.Bool("unmaximize", false, "restore a maximized window")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge resize [--width N --height N [--logical] | --maximize | --unmaximize] <label>")
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
		fmt.Fprintln(os.Stderr, "resize requires exactly one window label")
		fs.Usage()
		return 2
	}
	if *maximize && *unmaximize {
		fmt.Fprintln(os.Stderr, "--maximize and --unmaximize are mutually exclusive")
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, fs.Arg(0))

	ctx := context.Background()
	switch {
	case *maximize:
		err = w.Maximize(ctx)
	case *unmaximize:
		err = w.Unmaximize(ctx)
	default:
		if *width <= 0 || *height <= 0 {
			fmt.Fprintln(os.Stderr, "resize requires positive --width and --height")
			return 2
		}
		var size geometry.Size
		if *logical {
			size = geometry.LogicalSize{Width: *width, Height: *height}
		} else {
			size = geometry.PhysicalSize{Width: int(*width), Height: int(*height)}
		}
		err = w.SetSize(ctx, size)
	}
	if err != nil {
		return fail(err)
	}

	final, err := w.OuterSize(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("%dx%d\n", final.Width, final.Height)
	return 0
}

// windowState is the JSON shape printed by the state command.
type windowState struct {
	Label       string  `json:"label"`
	Title       string  `json:"title"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Visible     bool    `json:"visible"`
	Focused     bool    `json:"focused"`
	Maximized   bool    `json:"maximized"`
	Minimized   bool    `json:"minimized"`
	Decorated   bool    `json:"decorated"`
	ScaleFactor float64 `json:"scale_factor"`
	Theme       string  `json:"theme"`
}

func runState(args []string) int {
	fs := flag.NewFlagSet("state", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	asJSON := fs.Bool("json", false, "print as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge state [--json] <label>")
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
		fmt.Fprintln(os.Stderr, "state requires exactly one window label")
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, fs.Arg(0))

	state, err := readState(context.Background(), w)
	if err != nil {
		return fail(err)
	}

	if *asJSON {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("label:        %s\n", state.Label)
	fmt.Printf("title:        %s\n", state.Title)
	fmt.Printf("position:     %d,%d\n", state.X, state.Y)
	fmt.Printf("size:         %dx%d\n", state.Width, state.Height)
	fmt.Printf("visible:      %t\n", state.Visible)
	fmt.Printf("focused:      %t\n", state.Focused)
	fmt.Printf("maximized:    %t\n", state.Maximized)
	fmt.Printf("minimized:    %t\n", state.Minimized)
	fmt.Printf("decorated:    %t\n", state.Decorated)
	fmt.Printf("scale_factor: %g\n", state.ScaleFactor)
	fmt.Printf("theme:        %s\n", state.Theme)
	return 0
}

func readState(ctx context.Context, w *window.Window) (*windowState, error) {
	state := &windowState{Label: w.Label()}

	var err error
	if state.Title, err = w.Title(ctx); err != nil {
		return nil, err
	}
	pos, err := w.OuterPosition(ctx)
	if err != nil {
		return nil, err
	}
	state.X, state.Y = pos.X, pos.Y
	size, err := w.OuterSize(ctx)
	if err != nil {
		return nil, err
	}
	state.Width, state.Height = size.Width, size.Height
	if state.Visible, err = w.IsVisible(ctx); err != nil {
		return nil, err
	}
	if state.Focused, err = w.IsFocused(ctx); err != nil {
		return nil, err
	}
	if state.Maximized, err = w.IsMaximized(ctx); err != nil {
		return nil, err
	}
	if state.Minimized, err = w.IsMinimized(ctx); err != nil {
		return nil, err
	}
	if state.Decorated, err = w.IsDecorated(ctx); err != nil {
		return nil, err
	}
	if state.ScaleFactor, err = w.ScaleFactor(ctx); err != nil {
		return nil, err
	}
	if state.Theme, err = w.Theme(ctx); err != nil {
		return nil, err
	}
	return state, nil
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	label := fs.String("label", "main", "window label used to address the query")
	asJSON := fs.Bool("json", false, "print as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge monitors [--label LABEL] [--json]")
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
		fmt.Fprintln(os.Stderr, "monitors takes no positional arguments")
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, *label)

	ctx := context.Background()
	monitors, err := w.AvailableMonitors(ctx)
	if err != nil {
		return fail(err)
	}
	primary, err := w.PrimaryMonitor(ctx)
	if err != nil {
		return fail(err)
	}

	if *asJSON {
		data, err := json.MarshalIndent(monitors, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(data))
		return 0
	}

	for _, m := range monitors {
		marker := " "
		if primary != nil && primary.Name == m.Name {
			marker = "*"
		}
		fmt.Printf("%s %-12s %dx%d+%d+%d scale=%g\n",
			marker, m.Name, m.Size.Width, m.Size.Height, m.Position.X, m.Position.Y, m.ScaleFactor)
	}
	return 0
}
