package mcp

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	Label       string  `json:"label,omitempty" jsonschema:"Unique window label. Generated when omitted."`
	Title       string  `json:"title,omitempty" jsonschema:"Initial window title"`
	Width       float64 `json:"width,omitempty" jsonschema:"Initial width in pixels"`
	Height      float64 `json:"height,omitempty" jsonschema:"Initial height in pixels"`
	Resizable   *bool   `json:"resizable,omitempty" jsonschema:"Whether the user may resize the window (default: true)"`
	Decorations *bool   `json:"decorations,omitempty" jsonschema:"Whether the window has a native frame (default: true)"`
	AlwaysOnTop bool    `json:"always_on_top,omitempty" jsonschema:"Keep the window above others"`
	Visible     *bool   `json:"visible,omitempty" jsonschema:"Whether the window is shown immediately (default: true)"`
	Theme       string  `json:"theme,omitempty" jsonschema:"Window theme: light or dark"`
}

// CreateWindowOutput is the output for the create_window tool.
type CreateWindowOutput struct {
	Label string `json:"label"`
}

// SetTitleInput is the input for the set_window_title tool.
type SetTitleInput struct {
	Label string `json:"label" jsonschema:"required,Label of the target window"`
	Title string `json:"title" jsonschema:"required,New title"`
}

// SetTitleOutput is the output for the set_window_title tool.
type SetTitleOutput struct {
	Label string `json:"label"`
	Title string `json:"title"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Label   string  `json:"label" jsonschema:"required,Label of the target window"`
	X       float64 `json:"x" jsonschema:"required,Target x coordinate"`
	Y       float64 `json:"y" jsonschema:"required,Target y coordinate"`
	Logical bool    `json:"logical,omitempty" jsonschema:"Interpret coordinates as logical (scale-independent) instead of physical pixels"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	Label   string  `json:"label" jsonschema:"required,Label of the target window"`
	Width   float64 `json:"width" jsonschema:"required,Target width"`
	Height  float64 `json:"height" jsonschema:"required,Target height"`
	Logical bool    `json:"logical,omitempty" jsonschema:"Interpret dimensions as logical (scale-independent) instead of physical pixels"`
}

// GeometryOutput reports a window's position and size after a move or
// resize, in physical pixels.
type GeometryOutput struct {
	Label  string `json:"label"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WindowStateInput is the input for the get_window_state tool.
type WindowStateInput struct {
	Label string `json:"label" jsonschema:"required,Label of the target window"`
}

// WindowStateOutput is the output for the get_window_state tool.
type WindowStateOutput struct {
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

// CloseWindowInput is the input for the close_window tool.
type CloseWindowInput struct {
	Label string `json:"label" jsonschema:"required,Label of the target window"`
	Force bool   `json:"force,omitempty" jsonschema:"Destroy the window immediately, bypassing close-requested delivery"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	Label  string `json:"label"`
	Closed bool   `json:"closed"`
}

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	Label string `json:"label" jsonschema:"required,Label of the target window"`
}

// SetVisibleInput is the input for the set_window_visible tool.
type SetVisibleInput struct {
	Label   string `json:"label" jsonschema:"required,Label of the target window"`
	Visible bool   `json:"visible" jsonschema:"required,Show (true) or hide (false) the window"`
}

// MonitorsInput is the input for the get_monitors tool.
type MonitorsInput struct {
	Label string `json:"label,omitempty" jsonschema:"Window label used to address the query (default: main)"`
}

// MonitorInfo describes one monitor.
type MonitorInfo struct {
	Name        string  `json:"name"`
	ScaleFactor float64 `json:"scale_factor"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Primary     bool    `json:"primary"`
}

// MonitorsOutput is the output for the get_monitors tool.
type MonitorsOutput struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// EmitEventInput is the input for the emit_event tool.
type EmitEventInput struct {
	Event   string `json:"event" jsonschema:"required,Event name to emit"`
	Label   string `json:"label" jsonschema:"required,Window label scope for the event"`
	Payload string `json:"payload,omitempty" jsonschema:"Optional JSON payload"`
}

// WaitForEventInput is the input for the wait_for_event tool.
type WaitForEventInput struct {
	Event   string `json:"event" jsonschema:"required,Event name to wait for (e.g. resized, moved, theme-changed)"`
	Label   string `json:"label" jsonschema:"required,Window label scope"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"Timeout in seconds (default: 30)"`
}

// WaitForEventOutput is the output for the wait_for_event tool.
type WaitForEventOutput struct {
	Event   string `json:"event"`
	Label   string `json:"label"`
	ID      int64  `json:"id"`
	Payload string `json:"payload,omitempty"`
}
