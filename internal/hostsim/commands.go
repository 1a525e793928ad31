package hostsim

import (
	"encoding/json"
	"fmt"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/ipc"
	"github.com/winbridge/winbridge/window"
)

const actionPing = "host|ping"

// handleInvoke mutates or queries simulator state for one command and
// publishes whatever events the mutation implies.
func (h *Host) handleInvoke(action, label string, value json.RawMessage) *ipc.Response {
	if action == actionPing {
		resp, _ := ipc.NewOKResponse(true)
		return resp
	}
	if action == window.ActionCreate {
		return h.handleCreate(label, value)
	}

	h.mu.Lock()
	w, ok := h.windows[label]
	if !ok {
		h.mu.Unlock()
		return ipc.NewErrorResponse(fmt.Sprintf("no window with label %q", label))
	}

	var (
		data   any
		pushes []pendingPush
		err    error
	)
	switch action {
	case window.ActionClose, window.ActionDestroy:
		delete(h.windows, label)
		if h.focused == label {
			h.focused = ""
		}

	case window.ActionRequestClose:
		pushes = append(pushes, pendingPush{event: window.EventCloseRequested, label: label})

	case window.ActionSetTitle:
		err = json.Unmarshal(value, &w.title)

	case window.ActionTitle:
		data = w.title

	case window.ActionShow:
		w.visible = true
	case window.ActionHide:
		w.visible = false

	case window.ActionMaximize:
		if !w.maximized {
			w.savedSize = w.size
			w.maximized = true
			w.size = h.monitors[0].Size
			pushes = append(pushes, pendingPush{event: window.EventResized, label: label, payload: w.size})
		}
	case window.ActionUnmaximize:
		if w.maximized {
			w.maximized = false
			w.size = w.savedSize
			pushes = append(pushes, pendingPush{event: window.EventResized, label: label, payload: w.size})
		}

	case window.ActionMinimize:
		w.minimized = true
	case window.ActionUnminimize:
		w.minimized = false

	case window.ActionSetFullscreen:
		err = json.Unmarshal(value, &w.fullscreen)
	case window.ActionSetDecorations:
		err = json.Unmarshal(value, &w.decorations)
	case window.ActionSetResizable:
		err = json.Unmarshal(value, &w.resizable)
	case window.ActionSetAlwaysOnTop:
		err = json.Unmarshal(value, &w.alwaysOnTop)
	case window.ActionSetSkipTaskbar:
		err = json.Unmarshal(value, &w.skipTaskbar)

	case window.ActionSetPosition:
		var pos geometry.Position
		pos, err = geometry.UnmarshalPosition(value)
		if err == nil {
			w.position = h.toPhysicalPosition(pos)
			pushes = append(pushes, pendingPush{event: window.EventMoved, label: label, payload: w.position})
		}

	case window.ActionSetSize:
		var size geometry.Size
		size, err = geometry.UnmarshalSize(value)
		if err == nil {
			w.size = h.clampSize(w, h.toPhysicalSize(size))
			pushes = append(pushes, pendingPush{event: window.EventResized, label: label, payload: w.size})
		}

	case window.ActionSetMinSize:
		var size geometry.Size
		size, err = geometry.UnmarshalSize(value)
		if err == nil {
			min := h.toPhysicalSize(size)
			w.minSize = &min
		}
	case window.ActionSetMaxSize:
		var size geometry.Size
		size, err = geometry.UnmarshalSize(value)
		if err == nil {
			max := h.toPhysicalSize(size)
			w.maxSize = &max
		}

	case window.ActionInnerPosition, window.ActionOuterPosition:
		data = json.RawMessage(mustMarshalPosition(w.position))
	case window.ActionInnerSize, window.ActionOuterSize:
		data = json.RawMessage(mustMarshalSize(w.size))

	case window.ActionScaleFactor:
		data = h.monitors[0].ScaleFactor
	case window.ActionTheme:
		data = w.theme

	case window.ActionIsVisible:
		data = w.visible
	case window.ActionIsFocused:
		data = h.focused == label
	case window.ActionIsMaximized:
		data = w.maximized
	case window.ActionIsMinimized:
		data = w.minimized
	case window.ActionIsDecorated:
		data = w.decorations

	case window.ActionSetFocus:
		if h.focused != label {
			if prev := h.focused; prev != "" {
				if _, stillOpen := h.windows[prev]; stillOpen {
					pushes = append(pushes, pendingPush{event: window.EventFocusLost, label: prev})
				}
			}
			h.focused = label
			pushes = append(pushes, pendingPush{event: window.EventFocusGained, label: label})
		}

	case window.ActionCenter:
		mon := h.monitors[0]
		w.position = geometry.PhysicalPosition{
			X: mon.Position.X + (mon.Size.Width-w.size.Width)/2,
			Y: mon.Position.Y + (mon.Size.Height-w.size.Height)/2,
		}
		pushes = append(pushes, pendingPush{event: window.EventMoved, label: label, payload: w.position})

	case window.ActionRequestUserAttention:
		// Accepted and ignored: nothing to flash in a simulator.

	case window.ActionCurrentMonitor, window.ActionPrimaryMonitor:
		data = h.monitors[0]
	case window.ActionAvailableMonitors:
		data = h.monitors

	default:
		h.mu.Unlock()
		return ipc.NewErrorResponse(fmt.Sprintf("unknown action: %s", action))
	}
	h.mu.Unlock()

	if err != nil {
		return ipc.NewErrorResponse(fmt.Sprintf("invalid %s value: %v", action, err))
	}

	h.deliver(pushes)

	resp, err := ipc.NewOKResponse(data)
	if err != nil {
		return ipc.NewErrorResponse(err.Error())
	}
	return resp
}

func (h *Host) handleCreate(label string, value json.RawMessage) *ipc.Response {
	if label == "" {
		return ipc.NewErrorResponse("window label must not be empty")
	}

	var opts window.Options
	if len(value) > 0 {
		if err := json.Unmarshal(value, &opts); err != nil {
			return ipc.NewErrorResponse(fmt.Sprintf("invalid create options: %v", err))
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.windows[label]; exists {
		return ipc.NewErrorResponse(fmt.Sprintf("a window with label %q already exists", label))
	}

	w := &simWindow{
		label:       label,
		title:       opts.Title,
		size:        geometry.PhysicalSize{Width: 800, Height: 600},
		visible:     true,
		resizable:   true,
		decorations: true,
		theme:       "light",
	}
	if opts.Width > 0 && opts.Height > 0 {
		w.size = geometry.PhysicalSize{Width: int(opts.Width), Height: int(opts.Height)}
	}
	if opts.X != nil {
		w.position.X = *opts.X
	}
	if opts.Y != nil {
		w.position.Y = *opts.Y
	}
	if opts.Resizable != nil {
		w.resizable = *opts.Resizable
	}
	if opts.Decorations != nil {
		w.decorations = *opts.Decorations
	}
	if opts.Visible != nil {
		w.visible = *opts.Visible
	}
	if opts.Theme != "" {
		w.theme = opts.Theme
	}
	w.alwaysOnTop = opts.AlwaysOnTop
	w.fullscreen = opts.Fullscreen
	w.maximized = opts.Maximized
	w.skipTaskbar = opts.SkipTaskbar
	if w.maximized {
		w.savedSize = w.size
		w.size = h.monitors[0].Size
	}

	h.windows[label] = w

	resp, _ := ipc.NewOKResponse(nil)
	return resp
}

// toPhysicalPosition resolves either coordinate space into device
// pixels using the primary monitor's scale factor.
func (h *Host) toPhysicalPosition(p geometry.Position) geometry.PhysicalPosition {
	switch v := p.(type) {
	case geometry.PhysicalPosition:
		return v
	case geometry.LogicalPosition:
		scale := h.monitors[0].ScaleFactor
		return geometry.PhysicalPosition{X: int(v.X * scale), Y: int(v.Y * scale)}
	default:
		return geometry.PhysicalPosition{}
	}
}

func (h *Host) toPhysicalSize(s geometry.Size) geometry.PhysicalSize {
	switch v := s.(type) {
	case geometry.PhysicalSize:
		return v
	case geometry.LogicalSize:
		scale := h.monitors[0].ScaleFactor
		return geometry.PhysicalSize{Width: int(v.Width * scale), Height: int(v.Height * scale)}
	default:
		return geometry.PhysicalSize{}
	}
}

// clampSize applies the window's min and max size constraints.
func (h *Host) clampSize(w *simWindow, size geometry.PhysicalSize) geometry.PhysicalSize {
	if w.minSize != nil {
		if size.Width < w.minSize.Width {
			size.Width = w.minSize.Width
		}
		if size.Height < w.minSize.Height {
			size.Height = w.minSize.Height
		}
	}
	if w.maxSize != nil {
		if size.Width > w.maxSize.Width {
			size.Width = w.maxSize.Width
		}
		if size.Height > w.maxSize.Height {
			size.Height = w.maxSize.Height
		}
	}
	return size
}

func mustMarshalPosition(p geometry.PhysicalPosition) []byte {
	data, _ := json.Marshal(p)
	return data
}

func mustMarshalSize(s geometry.PhysicalSize) []byte {
	data, _ := json.Marshal(s)
	return data
}
