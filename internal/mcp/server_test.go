package mcp

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/winbridge/winbridge/internal/hostsim"
	"github.com/winbridge/winbridge/ipc"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "winbridge.sock")
	host := hostsim.New(socketPath, slog.Default())
	if err := host.Start(); err != nil {
		t.Fatalf("start host: %v", err)
	}
	t.Cleanup(host.Stop)

	client := ipc.NewClientWithPath(socketPath, 2*time.Second)
	bus := ipc.NewBusWithPath(socketPath, 2*time.Second, slog.Default())
	t.Cleanup(func() { bus.Close() })

	return NewServer(client, bus)
}

func TestCreateWindow_GeneratesLabelWhenOmitted(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleCreateWindow(context.Background(), nil, CreateWindowInput{Title: "Untitled"})
	if err != nil {
		t.Fatalf("create_window: %v", err)
	}
	if !strings.HasPrefix(out.Label, "win-") {
		t.Fatalf("expected generated label, got %q", out.Label)
	}

	_, state, err := s.handleWindowState(context.Background(), nil, WindowStateInput{Label: out.Label})
	if err != nil {
		t.Fatalf("get_window_state: %v", err)
	}
	if state.Title != "Untitled" {
		t.Fatalf("expected title Untitled, got %q", state.Title)
	}
}

func TestCreateWindow_DuplicateLabelFails(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	if _, _, err := s.handleCreateWindow(ctx, nil, CreateWindowInput{Label: "main"}); err != nil {
		t.Fatalf("create_window: %v", err)
	}
	if _, _, err := s.handleCreateWindow(ctx, nil, CreateWindowInput{Label: "main"}); err == nil {
		t.Fatal("expected duplicate label to fail")
	}
}

func TestMoveAndResize_ReturnGeometry(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	if _, _, err := s.handleCreateWindow(ctx, nil, CreateWindowInput{Label: "main"}); err != nil {
		t.Fatalf("create_window: %v", err)
	}

	_, geo, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{Label: "main", X: 100, Y: 50})
	if err != nil {
		t.Fatalf("move_window: %v", err)
	}
	if geo.X != 100 || geo.Y != 50 {
		t.Fatalf("expected position 100,50, got %d,%d", geo.X, geo.Y)
	}

	_, geo, err = s.handleResizeWindow(ctx, nil, ResizeWindowInput{Label: "main", Width: 1280, Height: 720})
	if err != nil {
		t.Fatalf("resize_window: %v", err)
	}
	if geo.Width != 1280 || geo.Height != 720 {
		t.Fatalf("expected 1280x720, got %dx%d", geo.Width, geo.Height)
	}
}

func TestCloseWindow_RemovesWindow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.handleCreateWindow(ctx, nil, CreateWindowInput{Label: "main"})

	_, out, err := s.handleCloseWindow(ctx, nil, CloseWindowInput{Label: "main"})
	if err != nil {
		t.Fatalf("close_window: %v", err)
	}
	if !out.Closed {
		t.Fatal("expected closed=true")
	}

	if _, _, err := s.handleWindowState(ctx, nil, WindowStateInput{Label: "main"}); err == nil {
		t.Fatal("expected state query on closed window to fail")
	}
}

func TestGetMonitors_MarksPrimary(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.handleCreateWindow(ctx, nil, CreateWindowInput{Label: "main"})

	_, out, err := s.handleMonitors(ctx, nil, MonitorsInput{Label: "main"})
	if err != nil {
		t.Fatalf("get_monitors: %v", err)
	}
	if len(out.Monitors) != 1 {
		t.Fatalf("expected one monitor, got %d", len(out.Monitors))
	}
	if !out.Monitors[0].Primary {
		t.Fatal("expected the only monitor to be primary")
	}
}

func TestEmitAndWaitForEvent(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	s.handleCreateWindow(ctx, nil, CreateWindowInput{Label: "main"})

	done := make(chan struct{})
	var out WaitForEventOutput
	var waitErr error
	go func() {
		defer close(done)
		_, out, waitErr = s.handleWaitForEvent(ctx, nil, WaitForEventInput{
			Event:   "app-ready",
			Label:   "main",
			Timeout: 5,
		})
	}()

	// Give the waiter time to establish its subscription.
	time.Sleep(200 * time.Millisecond)

	if _, _, err := s.handleEmitEvent(ctx, nil, EmitEventInput{
		Event:   "app-ready",
		Label:   "main",
		Payload: `{"version":1}`,
	}); err != nil {
		t.Fatalf("emit_event: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for wait_for_event to return")
	}
	if waitErr != nil {
		t.Fatalf("wait_for_event: %v", waitErr)
	}
	if out.Event != "app-ready" || out.Label != "main" {
		t.Fatalf("unexpected output %+v", out)
	}
	if !strings.Contains(out.Payload, `"version":1`) {
		t.Fatalf("expected payload, got %q", out.Payload)
	}
}

func TestEmitEvent_RejectsInvalidJSON(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleEmitEvent(context.Background(), nil, EmitEventInput{
		Event:   "app-ready",
		Label:   "main",
		Payload: "{not json",
	})
	if err == nil {
		t.Fatal("expected invalid payload to be rejected")
	}
}
