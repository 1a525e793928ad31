package window

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/winbridge/winbridge/geometry"
)

// Monitor describes one display as reported by the host. Descriptors
// are reconstructed fresh on every query; an empty Name means the host
// could not name the output.
type Monitor struct {
	Name        string                    `json:"name"`
	ScaleFactor float64                   `json:"scale_factor"`
	Position    geometry.PhysicalPosition `json:"position"`
	Size        geometry.PhysicalSize     `json:"size"`
}

var jsonNull = []byte("null")

func (w *Window) invokeMonitor(ctx context.Context, action string) (*Monitor, error) {
	raw, err := w.invoke(ctx, action, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		// No monitor could be resolved.
		return nil, nil
	}
	var m Monitor
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s reply: %w", action, err)
	}
	return &m, nil
}

// CurrentMonitor returns the monitor the window currently occupies, or
// nil if the host could not resolve one.
func (w *Window) CurrentMonitor(ctx context.Context) (*Monitor, error) {
	return w.invokeMonitor(ctx, ActionCurrentMonitor)
}

// PrimaryMonitor returns the host's primary monitor, or nil if there is
// none.
func (w *Window) PrimaryMonitor(ctx context.Context) (*Monitor, error) {
	return w.invokeMonitor(ctx, ActionPrimaryMonitor)
}

// AvailableMonitors returns all monitors known to the host.
func (w *Window) AvailableMonitors(ctx context.Context) ([]Monitor, error) {
	raw, err := w.invoke(ctx, ActionAvailableMonitors, nil)
	if err != nil {
		return nil, err
	}
	var monitors []Monitor
	if err := json.Unmarshal(raw, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse available monitors reply: %w", err)
	}
	return monitors, nil
}
