package window

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/winbridge/winbridge/geometry"
)

// Composite listeners subscribe to one or more underlying remote event
// kinds and surface a single semantic stream with a reshaped payload.
// Geometry payloads are surfaced as received from the host, always
// physical; callers convert with ToLogical themselves. The returned
// unlisten removes every underlying subscription and stays safe to call
// again after any of them has already been removed.

// ScaleFactorChanged is the payload of OnScaleChanged: the new scale
// factor and the window's new inner size in physical pixels.
type ScaleFactorChanged struct {
	ScaleFactor float64               `json:"scale_factor"`
	Size        geometry.PhysicalSize `json:"size"`
}

// Drag-drop payload kinds.
const (
	DragDropDrop      = "drop"
	DragDropHover     = "hover"
	DragDropCancelled = "cancelled"
)

// DragDropEvent is the tagged payload of OnFileDrop, collapsing the
// drop / hover / cancelled event triple into one variant type. Paths is
// empty for cancelled deliveries.
type DragDropEvent struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths,omitempty"`
}

type fileDropPayload struct {
	Paths []string `json:"paths"`
}

// decodePayload reshapes an event payload into T. Remote deliveries
// carry raw JSON; locally emitted payloads may already be typed.
func decodePayload[T any](ev Event) (T, error) {
	var out T
	switch p := ev.Payload.(type) {
	case nil:
		return out, nil
	case T:
		return p, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &out); err != nil {
			return out, fmt.Errorf("failed to parse %s payload: %w", ev.Name, err)
		}
		return out, nil
	case []byte:
		if err := json.Unmarshal(p, &out); err != nil {
			return out, fmt.Errorf("failed to parse %s payload: %w", ev.Name, err)
		}
		return out, nil
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return out, fmt.Errorf("failed to reshape %s payload: %w", ev.Name, err)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("failed to reshape %s payload: %w", ev.Name, err)
		}
		return out, nil
	}
}

// combineUnlisten returns an unlisten that calls every given unlisten
// and aggregates their failures. Idempotency of each underlying
// unlisten makes the combined one safe to call repeatedly.
func combineUnlisten(fns ...UnlistenFunc) UnlistenFunc {
	return func() error {
		var merr *multierror.Error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			merr = multierror.Append(merr, fn())
		}
		return merr.ErrorOrNil()
	}
}

// unlistenAll is the cleanup path for a partially established composite
// subscription.
func unlistenAll(fns []UnlistenFunc) {
	for _, fn := range fns {
		if fn != nil {
			_ = fn()
		}
	}
}

// OnResized delivers the window's new inner size whenever the host
// reports a resize.
func (w *Window) OnResized(ctx context.Context, fn func(geometry.PhysicalSize) error) (UnlistenFunc, error) {
	return w.Listen(ctx, EventResized, func(ev Event) error {
		size, err := decodePayload[geometry.PhysicalSize](ev)
		if err != nil {
			return err
		}
		return fn(size)
	})
}

// OnMoved delivers the window's new outer position whenever the host
// reports a move.
func (w *Window) OnMoved(ctx context.Context, fn func(geometry.PhysicalPosition) error) (UnlistenFunc, error) {
	return w.Listen(ctx, EventMoved, func(ev Event) error {
		pos, err := decodePayload[geometry.PhysicalPosition](ev)
		if err != nil {
			return err
		}
		return fn(pos)
	})
}

// OnFocusChanged collapses the focus-gained / focus-lost event pair
// into a single boolean stream.
func (w *Window) OnFocusChanged(ctx context.Context, fn func(focused bool) error) (UnlistenFunc, error) {
	gained, err := w.Listen(ctx, EventFocusGained, func(Event) error {
		return fn(true)
	})
	if err != nil {
		return nil, err
	}
	lost, err := w.Listen(ctx, EventFocusLost, func(Event) error {
		return fn(false)
	})
	if err != nil {
		unlistenAll([]UnlistenFunc{gained})
		return nil, err
	}
	return combineUnlisten(gained, lost), nil
}

// OnFileDrop aggregates the file-drop / file-drop-hover /
// file-drop-cancelled triple into one tagged stream.
func (w *Window) OnFileDrop(ctx context.Context, fn func(DragDropEvent) error) (UnlistenFunc, error) {
	var established []UnlistenFunc

	subscribe := func(event, kind string) error {
		unlisten, err := w.Listen(ctx, event, func(ev Event) error {
			payload, err := decodePayload[fileDropPayload](ev)
			if err != nil {
				return err
			}
			return fn(DragDropEvent{Type: kind, Paths: payload.Paths})
		})
		if err != nil {
			return err
		}
		established = append(established, unlisten)
		return nil
	}

	if err := subscribe(EventFileDrop, DragDropDrop); err != nil {
		return nil, err
	}
	if err := subscribe(EventFileDropHover, DragDropHover); err != nil {
		unlistenAll(established)
		return nil, err
	}
	if err := subscribe(EventFileDropCancelled, DragDropCancelled); err != nil {
		unlistenAll(established)
		return nil, err
	}
	return combineUnlisten(established...), nil
}

// OnScaleChanged delivers scale-factor changes together with the
// window's new physical inner size.
func (w *Window) OnScaleChanged(ctx context.Context, fn func(ScaleFactorChanged) error) (UnlistenFunc, error) {
	return w.Listen(ctx, EventScaleFactorChanged, func(ev Event) error {
		change, err := decodePayload[ScaleFactorChanged](ev)
		if err != nil {
			return err
		}
		return fn(change)
	})
}

// OnMenuClicked delivers the ID of a clicked native menu item.
func (w *Window) OnMenuClicked(ctx context.Context, fn func(menuID string) error) (UnlistenFunc, error) {
	return w.Listen(ctx, EventMenuItemClicked, func(ev Event) error {
		id, err := decodePayload[string](ev)
		if err != nil {
			return err
		}
		return fn(id)
	})
}

// OnThemeChanged delivers the new theme ("light" or "dark").
func (w *Window) OnThemeChanged(ctx context.Context, fn func(theme string) error) (UnlistenFunc, error) {
	return w.Listen(ctx, EventThemeChanged, func(ev Event) error {
		theme, err := decodePayload[string](ev)
		if err != nil {
			return err
		}
		return fn(theme)
	})
}
