// Package tui is a live inspector for one window: the left pane shows
// the window's current state, the right pane streams the events the
// host delivers for it.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/window"
)

// Run opens the inspector for the window with the given label. It
// blocks until the user quits.
func Run(inv window.Invoker, bus window.EventBus, label string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	w := window.Get(inv, bus, label)
	events := make(chan logLine, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unlisten, err := subscribe(ctx, w, events)
	if err != nil {
		return fmt.Errorf("failed to subscribe to window events: %w", err)
	}
	defer unlisten()

	m := newModel(w, events)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type logLine struct {
	at   time.Time
	text string
}

// subscribe wires every composite listener to the event feed and
// returns one combined unlisten.
func subscribe(ctx context.Context, w *window.Window, events chan<- logLine) (window.UnlistenFunc, error) {
	push := func(format string, args ...any) error {
		select {
		case events <- logLine{at: time.Now(), text: fmt.Sprintf(format, args...)}:
		default:
			// Feed full; drop rather than block the dispatcher.
		}
		return nil
	}

	var established []window.UnlistenFunc
	cleanup := func() {
		for _, fn := range established {
			_ = fn()
		}
	}
	add := func(fn window.UnlistenFunc, err error) error {
		if err != nil {
			cleanup()
			return err
		}
		established = append(established, fn)
		return nil
	}

	if err := add(w.OnResized(ctx, func(s geometry.PhysicalSize) error {
		return push("resized to %dx%d", s.Width, s.Height)
	})); err != nil {
		return nil, err
	}
	if err := add(w.OnMoved(ctx, func(p geometry.PhysicalPosition) error {
		return push("moved to %d,%d", p.X, p.Y)
	})); err != nil {
		return nil, err
	}
	if err := add(w.OnFocusChanged(ctx, func(focused bool) error {
		if focused {
			return push("focus gained")
		}
		return push("focus lost")
	})); err != nil {
		return nil, err
	}
	if err := add(w.OnScaleChanged(ctx, func(c window.ScaleFactorChanged) error {
		return push("scale factor changed to %.2f (%dx%d)", c.ScaleFactor, c.Size.Width, c.Size.Height)
	})); err != nil {
		return nil, err
	}
	if err := add(w.OnThemeChanged(ctx, func(theme string) error {
		return push("theme changed to %s", theme)
	})); err != nil {
		return nil, err
	}
	if err := add(w.OnFileDrop(ctx, func(ev window.DragDropEvent) error {
		switch ev.Type {
		case window.DragDropCancelled:
			return push("file drop cancelled")
		default:
			return push("file %s: %v", ev.Type, ev.Paths)
		}
	})); err != nil {
		return nil, err
	}
	if err := add(w.Listen(ctx, window.EventCloseRequested, func(window.Event) error {
		return push("close requested")
	})); err != nil {
		return nil, err
	}

	fns := established
	return func() error {
		for _, fn := range fns {
			_ = fn()
		}
		return nil
	}, nil
}
