package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/window"
)

func (s *Server) handleCreateWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, CreateWindowOutput, error) {
	label := args.Label
	if label == "" {
		label = "win-" + uuid.NewString()[:8]
	}

	opts := &window.Options{
		Title:       args.Title,
		Width:       args.Width,
		Height:      args.Height,
		Resizable:   args.Resizable,
		Decorations: args.Decorations,
		AlwaysOnTop: args.AlwaysOnTop,
		Visible:     args.Visible,
		Theme:       args.Theme,
	}
	if _, err := window.Create(ctx, s.inv, s.bus, label, opts); err != nil {
		return nil, CreateWindowOutput{}, err
	}
	return nil, CreateWindowOutput{Label: label}, nil
}

func (s *Server) handleSetTitle(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, SetTitleOutput, error) {
	w := window.Get(s.inv, s.bus, args.Label)
	if err := w.SetTitle(ctx, args.Title); err != nil {
		return nil, SetTitleOutput{}, err
	}
	return nil, SetTitleOutput{Label: args.Label, Title: args.Title}, nil
}

func (s *Server) handleMoveWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, GeometryOutput, error) {
	w := window.Get(s.inv, s.bus, args.Label)

	var pos geometry.Position
	if args.Logical {
		pos = geometry.LogicalPosition{X: args.X, Y: args.Y}
	} else {
		pos = geometry.PhysicalPosition{X: int(args.X), Y: int(args.Y)}
	}
	if err := w.SetPosition(ctx, pos); err != nil {
		return nil, GeometryOutput{}, err
	}
	return s.geometryOutput(ctx, w)
}

func (s *Server) handleResizeWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, GeometryOutput, error) {
	w := window.Get(s.inv, s.bus, args.Label)

	var size geometry.Size
	if args.Logical {
		size = geometry.LogicalSize{Width: args.Width, Height: args.Height}
	} else {
		size = geometry.PhysicalSize{Width: int(args.Width), Height: int(args.Height)}
	}
	if err := w.SetSize(ctx, size); err != nil {
		return nil, GeometryOutput{}, err
	}
	return s.geometryOutput(ctx, w)
}

func (s *Server) geometryOutput(ctx context.Context, w *window.Window) (*mcpsdk.CallToolResult, GeometryOutput, error) {
	pos, err := w.OuterPosition(ctx)
	if err != nil {
		return nil, GeometryOutput{}, err
	}
	size, err := w.OuterSize(ctx)
	if err != nil {
		return nil, GeometryOutput{}, err
	}
	return nil, GeometryOutput{
		Label:  w.Label(),
		X:      pos.X,
		Y:      pos.Y,
		Width:  size.Width,
		Height: size.Height,
	}, nil
}

func (s *Server) handleWindowState(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowStateInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	w := window.Get(s.inv, s.bus, args.Label)

	out := WindowStateOutput{Label: args.Label}
	var err error
	if out.Title, err = w.Title(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	pos, err := w.OuterPosition(ctx)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}
	out.X, out.Y = pos.X, pos.Y
	size, err := w.OuterSize(ctx)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}
	out.Width, out.Height = size.Width, size.Height
	if out.Visible, err = w.IsVisible(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	if out.Focused, err = w.IsFocused(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	if out.Maximized, err = w.IsMaximized(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	if out.Minimized, err = w.IsMinimized(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	if out.Decorated, err = w.IsDecorated(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	if out.ScaleFactor, err = w.ScaleFactor(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	if out.Theme, err = w.Theme(ctx); err != nil {
		return nil, WindowStateOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleCloseWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	w := window.Get(s.inv, s.bus, args.Label)

	var err error
	if args.Force {
		err = w.Destroy(ctx)
	} else {
		err = w.Close(ctx)
	}
	if err != nil {
		return nil, CloseWindowOutput{}, err
	}
	return nil, CloseWindowOutput{Label: args.Label, Closed: true}, nil
}

func (s *Server) handleFocusWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, struct{}, error) {
	w := window.Get(s.inv, s.bus, args.Label)
	if err := w.SetFocus(ctx); err != nil {
		return nil, struct{}{}, err
	}
	return nil, struct{}{}, nil
}

func (s *Server) handleSetVisible(ctx context.Context, _ *mcpsdk.CallToolRequest, args SetVisibleInput) (*mcpsdk.CallToolResult, struct{}, error) {
	w := window.Get(s.inv, s.bus, args.Label)
	var err error
	if args.Visible {
		err = w.Show(ctx)
	} else {
		err = w.Hide(ctx)
	}
	if err != nil {
		return nil, struct{}{}, err
	}
	return nil, struct{}{}, nil
}

func (s *Server) handleMonitors(ctx context.Context, _ *mcpsdk.CallToolRequest, args MonitorsInput) (*mcpsdk.CallToolResult, MonitorsOutput, error) {
	label := args.Label
	if label == "" {
		label = "main"
	}
	w := window.Get(s.inv, s.bus, label)

	monitors, err := w.AvailableMonitors(ctx)
	if err != nil {
		return nil, MonitorsOutput{}, err
	}
	primary, err := w.PrimaryMonitor(ctx)
	if err != nil {
		return nil, MonitorsOutput{}, err
	}

	out := MonitorsOutput{Monitors: make([]MonitorInfo, len(monitors))}
	for i, m := range monitors {
		out.Monitors[i] = MonitorInfo{
			Name:        m.Name,
			ScaleFactor: m.ScaleFactor,
			X:           m.Position.X,
			Y:           m.Position.Y,
			Width:       m.Size.Width,
			Height:      m.Size.Height,
			Primary:     primary != nil && primary.Name == m.Name,
		}
	}
	return nil, out, nil
}

func (s *Server) handleEmitEvent(ctx context.Context, _ *mcpsdk.CallToolRequest, args EmitEventInput) (*mcpsdk.CallToolResult, struct{}, error) {
	var payload any
	if args.Payload != "" {
		if !json.Valid([]byte(args.Payload)) {
			return nil, struct{}{}, fmt.Errorf("payload is not valid JSON")
		}
		payload = json.RawMessage(args.Payload)
	}
	if err := s.bus.Emit(ctx, args.Event, args.Label, payload); err != nil {
		return nil, struct{}{}, err
	}
	return nil, struct{}{}, nil
}

func (s *Server) handleWaitForEvent(ctx context.Context, _ *mcpsdk.CallToolRequest, args WaitForEventInput) (*mcpsdk.CallToolResult, WaitForEventOutput, error) {
	timeout := time.Duration(args.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	got := make(chan window.Event, 1)
	unlisten, err := s.bus.Once(ctx, args.Event, args.Label, func(ev window.Event) error {
		select {
		case got <- ev:
		default:
		}
		return nil
	})
	if err != nil {
		return nil, WaitForEventOutput{}, err
	}
	defer unlisten()

	select {
	case ev := <-got:
		out := WaitForEventOutput{Event: ev.Name, Label: ev.WindowLabel, ID: ev.ID}
		if raw, ok := ev.Payload.(json.RawMessage); ok {
			out.Payload = string(raw)
		}
		return nil, out, nil
	case <-time.After(timeout):
		return nil, WaitForEventOutput{}, fmt.Errorf("timed out waiting for %s on %q", args.Event, args.Label)
	case <-ctx.Done():
		return nil, WaitForEventOutput{}, ctx.Err()
	}
}
