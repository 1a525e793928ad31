// Package window provides a client-side handle to a window owned by a
// separate native host process. A handle is addressed only by its label;
// it holds no window state of its own, so every observation and mutation
// is a round trip over the command channel, and state changes arrive as
// events over the remote event channel.
package window

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Command action identifiers, of the form <namespace>|<verb>.
const (
	ActionCreate               = "window|create"
	ActionClose                = "window|close"
	ActionDestroy              = "window|destroy"
	ActionRequestClose         = "window|request_close"
	ActionSetTitle             = "window|set_title"
	ActionTitle                = "window|title"
	ActionShow                 = "window|show"
	ActionHide                 = "window|hide"
	ActionMaximize             = "window|maximize"
	ActionUnmaximize           = "window|unmaximize"
	ActionMinimize             = "window|minimize"
	ActionUnminimize           = "window|unminimize"
	ActionSetFullscreen        = "window|set_fullscreen"
	ActionSetDecorations       = "window|set_decorations"
	ActionSetResizable         = "window|set_resizable"
	ActionSetAlwaysOnTop       = "window|set_always_on_top"
	ActionSetSkipTaskbar       = "window|set_skip_taskbar"
	ActionInnerPosition        = "window|inner_position"
	ActionOuterPosition        = "window|outer_position"
	ActionInnerSize            = "window|inner_size"
	ActionOuterSize            = "window|outer_size"
	ActionSetPosition          = "window|set_position"
	ActionSetSize              = "window|set_size"
	ActionSetMinSize           = "window|set_min_size"
	ActionSetMaxSize           = "window|set_max_size"
	ActionScaleFactor          = "window|scale_factor"
	ActionTheme                = "window|theme"
	ActionIsVisible            = "window|is_visible"
	ActionIsFocused            = "window|is_focused"
	ActionIsMaximized          = "window|is_maximized"
	ActionIsMinimized          = "window|is_minimized"
	ActionIsDecorated          = "window|is_decorated"
	ActionSetFocus             = "window|set_focus"
	ActionCenter               = "window|center"
	ActionRequestUserAttention = "window|request_user_attention"
	ActionCurrentMonitor       = "window|current_monitor"
	ActionPrimaryMonitor       = "window|primary_monitor"
	ActionAvailableMonitors    = "window|available_monitors"
)

// Invoker performs a single command round trip to the host. Every call
// is at-most-once: no retries happen at this layer, and a rejection from
// the host surfaces as the returned error.
type Invoker interface {
	Invoke(ctx context.Context, action, label string, value any) (json.RawMessage, error)
}

// EventBus is the label-scoped remote event subsystem. Subscriptions
// registered through it deliver host events for one window label; the
// unlisten it returns must be idempotent.
type EventBus interface {
	Listen(ctx context.Context, event, label string, h Handler) (UnlistenFunc, error)
	Once(ctx context.Context, event, label string, h Handler) (UnlistenFunc, error)
	Emit(ctx context.Context, event, label string, payload any) error
}

// InvalidArgumentError reports a value rejected before any round trip,
// such as a geometry argument that is not Logical or Physical.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// Options describes the window configuration sent with a create command.
// Zero values leave the corresponding property to the host's default.
type Options struct {
	Title       string  `json:"title,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	X           *int    `json:"x,omitempty"`
	Y           *int    `json:"y,omitempty"`
	Resizable   *bool   `json:"resizable,omitempty"`
	Decorations *bool   `json:"decorations,omitempty"`
	AlwaysOnTop bool    `json:"always_on_top,omitempty"`
	Fullscreen  bool    `json:"fullscreen,omitempty"`
	Maximized   bool    `json:"maximized,omitempty"`
	Visible     *bool   `json:"visible,omitempty"`
	SkipTaskbar bool    `json:"skip_taskbar,omitempty"`
	Theme       string  `json:"theme,omitempty"`
}

// Window is a handle to one remote window, bound to a label. Two Window
// values constructed with the same label alias the same remote window
// but do not share local listener tables: bootstrap listeners must be
// registered on the exact instance that performed creation.
type Window struct {
	label string
	inv   Invoker
	bus   EventBus

	mu    sync.Mutex
	local map[string][]*localEntry
}

// New constructs a handle and asks the host to create its window. The
// creation command is fire-and-forget: New returns immediately and the
// outcome is delivered through the local bootstrap events. Callers must
// register EventCreated / EventCreateError listeners before the creation
// command settles, or they will silently miss the outcome. Use Create
// for a result-or-error factory.
func New(ctx context.Context, inv Invoker, bus EventBus, label string, opts *Options) *Window {
	w := newHandle(inv, bus, label)
	go w.runCreate(ctx, opts)
	return w
}

// Create constructs a handle and synchronously asks the host to create
// its window, returning the host's error if creation fails. The local
// bootstrap events fire as with New.
func Create(ctx context.Context, inv Invoker, bus EventBus, label string, opts *Options) (*Window, error) {
	w := newHandle(inv, bus, label)
	if err := w.create(ctx, opts); err != nil {
		return nil, err
	}
	return w, nil
}

// Get returns a handle for a window assumed to already exist on the
// host. No creation command is issued and no bootstrap events fire.
func Get(inv Invoker, bus EventBus, label string) *Window {
	return newHandle(inv, bus, label)
}

func newHandle(inv Invoker, bus EventBus, label string) *Window {
	return &Window{
		label: label,
		inv:   inv,
		bus:   bus,
		local: make(map[string][]*localEntry),
	}
}

func (w *Window) runCreate(ctx context.Context, opts *Options) {
	// Bootstrap emission is local-only; a handler error has no caller
	// to propagate to here and is intentionally dropped.
	_ = w.create(ctx, opts)
}

func (w *Window) create(ctx context.Context, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	_, err := w.inv.Invoke(ctx, ActionCreate, w.label, opts)
	if err != nil {
		_ = w.emitLocal(EventCreateError, err.Error())
		return err
	}
	_ = w.emitLocal(EventCreated, nil)
	return nil
}

// Label returns the unique label this handle is bound to.
func (w *Window) Label() string {
	return w.label
}

func (w *Window) invoke(ctx context.Context, action string, value any) (json.RawMessage, error) {
	return w.inv.Invoke(ctx, action, w.label, value)
}

func (w *Window) invokeUnit(ctx context.Context, action string, value any) error {
	_, err := w.invoke(ctx, action, value)
	return err
}

func (w *Window) invokeBool(ctx context.Context, action string) (bool, error) {
	raw, err := w.invoke(ctx, action, nil)
	if err != nil {
		return false, err
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("failed to parse %s reply: %w", action, err)
	}
	return v, nil
}

// Title returns the window's current title.
func (w *Window) Title(ctx context.Context) (string, error) {
	raw, err := w.invoke(ctx, ActionTitle, nil)
	if err != nil {
		return "", err
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return "", fmt.Errorf("failed to parse title reply: %w", err)
	}
	return title, nil
}

// SetTitle changes the window's title.
func (w *Window) SetTitle(ctx context.Context, title string) error {
	return w.invokeUnit(ctx, ActionSetTitle, title)
}

// Show makes the window visible.
func (w *Window) Show(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionShow, nil)
}

// Hide hides the window.
func (w *Window) Hide(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionHide, nil)
}

// Maximize maximizes the window.
func (w *Window) Maximize(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionMaximize, nil)
}

// Unmaximize restores a maximized window.
func (w *Window) Unmaximize(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionUnmaximize, nil)
}

// Minimize minimizes the window.
func (w *Window) Minimize(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionMinimize, nil)
}

// Unminimize restores a minimized window.
func (w *Window) Unminimize(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionUnminimize, nil)
}

// SetFullscreen toggles fullscreen mode.
func (w *Window) SetFullscreen(ctx context.Context, fullscreen bool) error {
	return w.invokeUnit(ctx, ActionSetFullscreen, fullscreen)
}

// SetDecorations toggles the window's native frame.
func (w *Window) SetDecorations(ctx context.Context, decorations bool) error {
	return w.invokeUnit(ctx, ActionSetDecorations, decorations)
}

// SetResizable toggles user resizing.
func (w *Window) SetResizable(ctx context.Context, resizable bool) error {
	return w.invokeUnit(ctx, ActionSetResizable, resizable)
}

// SetAlwaysOnTop toggles the always-on-top flag.
func (w *Window) SetAlwaysOnTop(ctx context.Context, onTop bool) error {
	return w.invokeUnit(ctx, ActionSetAlwaysOnTop, onTop)
}

// SetSkipTaskbar toggles taskbar visibility for the window.
func (w *Window) SetSkipTaskbar(ctx context.Context, skip bool) error {
	return w.invokeUnit(ctx, ActionSetSkipTaskbar, skip)
}

// SetFocus asks the host to focus the window.
func (w *Window) SetFocus(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionSetFocus, nil)
}

// Center centers the window on its current monitor.
func (w *Window) Center(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionCenter, nil)
}

// RequestUserAttention asks the host to draw attention to the window
// (e.g. by flashing its taskbar entry). An empty kind uses the host
// default.
func (w *Window) RequestUserAttention(ctx context.Context, kind string) error {
	return w.invokeUnit(ctx, ActionRequestUserAttention, kind)
}

// IsVisible reports whether the window is currently visible.
func (w *Window) IsVisible(ctx context.Context) (bool, error) {
	return w.invokeBool(ctx, ActionIsVisible)
}

// IsFocused reports whether the window currently has focus.
func (w *Window) IsFocused(ctx context.Context) (bool, error) {
	return w.invokeBool(ctx, ActionIsFocused)
}

// IsMaximized reports whether the window is maximized.
func (w *Window) IsMaximized(ctx context.Context) (bool, error) {
	return w.invokeBool(ctx, ActionIsMaximized)
}

// IsMinimized reports whether the window is minimized.
func (w *Window) IsMinimized(ctx context.Context) (bool, error) {
	return w.invokeBool(ctx, ActionIsMinimized)
}

// IsDecorated reports whether the window has its native frame.
func (w *Window) IsDecorated(ctx context.Context) (bool, error) {
	return w.invokeBool(ctx, ActionIsDecorated)
}

// ScaleFactor returns the scale factor of the monitor the window is on.
func (w *Window) ScaleFactor(ctx context.Context) (float64, error) {
	raw, err := w.invoke(ctx, ActionScaleFactor, nil)
	if err != nil {
		return 0, err
	}
	var scale float64
	if err := json.Unmarshal(raw, &scale); err != nil {
		return 0, fmt.Errorf("failed to parse scale factor reply: %w", err)
	}
	return scale, nil
}

// Theme returns the window's current theme ("light" or "dark").
func (w *Window) Theme(ctx context.Context) (string, error) {
	raw, err := w.invoke(ctx, ActionTheme, nil)
	if err != nil {
		return "", err
	}
	var theme string
	if err := json.Unmarshal(raw, &theme); err != nil {
		return "", fmt.Errorf("failed to parse theme reply: %w", err)
	}
	return theme, nil
}

// Close starts the host's close flow for the window without running
// close-requested negotiation on this client.
func (w *Window) Close(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionClose, nil)
}

// Destroy forcibly destroys the window, bypassing close-requested
// delivery entirely.
func (w *Window) Destroy(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionDestroy, nil)
}

// RequestClose asks the host to emit a close-requested event for the
// window, as if the user had clicked the close button.
func (w *Window) RequestClose(ctx context.Context) error {
	return w.invokeUnit(ctx, ActionRequestClose, nil)
}
