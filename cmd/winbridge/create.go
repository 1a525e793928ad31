package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/winbridge/winbridge/window"
)

func runCreate(args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	label := fs.String("label", "", "window label (default: generated)")
	title := fs.String("title", "", "window title")
	width := fs.Float64("width", 0, "initial width in pixels (default: config)")
	height := fs.Float64("height", 0, "initial height in pixels (default: config)")
	theme := fs.String("theme", "", "window theme: light or dark")
	hidden := fs.Bool("hidden", false, "create the window hidden")
	noResize := fs.Bool("no-resize", false, "disallow user resizing")
	onTop := fs.Bool("on-top", false, "keep the window above others")
	interactive := fs.Bool("interactive", false, "prompt for options instead of using flags")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge create [options]")
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
		fmt.Fprintln(os.Stderr, "create takes no positional arguments")
		fs.Usage()
		return 2
	}

	cfg, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()

	opts := &window.Options{
		Title:       *title,
		Width:       *width,
		Height:      *height,
		Theme:       *theme,
		AlwaysOnTop: *onTop,
	}
	if opts.Title == "" {
		opts.Title = cfg.DefaultWindow.Title
	}
	if opts.Width == 0 {
		opts.Width = cfg.DefaultWindow.Width
	}
	if opts.Height == 0 {
		opts.Height = cfg.DefaultWindow.Height
	}
	if opts.Theme == "" {
		opts.Theme = cfg.DefaultWindow.Theme
	}
	if *hidden {
		visible := false
		opts.Visible = &visible
	}
	if *noResize {
		resizable := false
		opts.Resizable = &resizable
	}

	windowLabel := *label
	if *interactive {
		windowLabel, err = promptCreateOptions(windowLabel, opts)
		if err != nil {
			return fail(err)
		}
	}
	if windowLabel == "" {
		windowLabel = "win-" + uuid.NewString()[:8]
	}

	if _, err := window.Create(context.Background(), client, bus, windowLabel, opts); err != nil {
		return fail(err)
	}
	fmt.Println(windowLabel)
	return 0
}

// promptCreateOptions collects creation options through a form, seeded
// with whatever the flags already set.
func promptCreateOptions(label string, opts *window.Options) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("interactive create requires a terminal")
	}

	widthStr := strconv.FormatFloat(opts.Width, 'f', -1, 64)
	heightStr := strconv.FormatFloat(opts.Height, 'f', -1, 64)
	theme := opts.Theme
	if theme == "" {
		theme = "light"
	}
	visible := opts.Visible == nil || *opts.Visible

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Label").
				Description("Unique window label; leave empty to generate one").
				Value(&label),
			huh.NewInput().
				Title("Title").
				Value(&opts.Title),
			huh.NewInput().
				Title("Width").
				Validate(validateDimension).
				Value(&widthStr),
			huh.NewInput().
				Title("Height").
				Validate(validateDimension).
				Value(&heightStr),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("light", "light"),
					huh.NewOption("dark", "dark"),
				).
				Value(&theme),
			huh.NewConfirm().
				Title("Visible on creation?").
				Value(&visible),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}

	opts.Width, _ = strconv.ParseFloat(widthStr, 64)
	opts.Height, _ = strconv.ParseFloat(heightStr, 64)
	opts.Theme = theme
	if !visible {
		v := false
		opts.Visible = &v
	} else {
		opts.Visible = nil
	}
	return label, nil
}

func validateDimension(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if v < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}
