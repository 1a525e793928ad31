package window

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/winbridge/winbridge/geometry"
)

// Geometry mutators validate the coordinate-space tag before issuing
// any command: a value that is neither Logical nor Physical fails fast
// with InvalidArgumentError and no round trip happens. Queries always
// return physical values; callers convert with ToLogical and a scale
// factor obtained separately.

func (w *Window) invokePosition(ctx context.Context, action string) (geometry.PhysicalPosition, error) {
	raw, err := w.invoke(ctx, action, nil)
	if err != nil {
		return geometry.PhysicalPosition{}, err
	}
	var pos geometry.PhysicalPosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return geometry.PhysicalPosition{}, fmt.Errorf("failed to parse %s reply: %w", action, err)
	}
	return pos, nil
}

func (w *Window) invokeSize(ctx context.Context, action string) (geometry.PhysicalSize, error) {
	raw, err := w.invoke(ctx, action, nil)
	if err != nil {
		return geometry.PhysicalSize{}, err
	}
	var size geometry.PhysicalSize
	if err := json.Unmarshal(raw, &size); err != nil {
		return geometry.PhysicalSize{}, fmt.Errorf("failed to parse %s reply: %w", action, err)
	}
	return size, nil
}

// InnerPosition returns the position of the window's content area in
// physical pixels.
func (w *Window) InnerPosition(ctx context.Context) (geometry.PhysicalPosition, error) {
	return w.invokePosition(ctx, ActionInnerPosition)
}

// OuterPosition returns the position of the window including
// decorations, in physical pixels.
func (w *Window) OuterPosition(ctx context.Context) (geometry.PhysicalPosition, error) {
	return w.invokePosition(ctx, ActionOuterPosition)
}

// InnerSize returns the size of the window's content area in physical
// pixels.
func (w *Window) InnerSize(ctx context.Context) (geometry.PhysicalSize, error) {
	return w.invokeSize(ctx, ActionInnerSize)
}

// OuterSize returns the size of the window including decorations, in
// physical pixels.
func (w *Window) OuterSize(ctx context.Context) (geometry.PhysicalSize, error) {
	return w.invokeSize(ctx, ActionOuterSize)
}

// SetPosition moves the window. The position may be Logical or
// Physical.
func (w *Window) SetPosition(ctx context.Context, pos geometry.Position) error {
	raw, err := geometry.MarshalPosition(pos)
	if err != nil {
		return &InvalidArgumentError{Reason: err.Error()}
	}
	return w.invokeUnit(ctx, ActionSetPosition, json.RawMessage(raw))
}

// SetSize resizes the window. The size may be Logical or Physical.
func (w *Window) SetSize(ctx context.Context, size geometry.Size) error {
	return w.setSizeAction(ctx, ActionSetSize, size)
}

// SetMinSize constrains the window's minimum size. A nil size would
// clear the constraint on some hosts, but this layer treats nil as
// invalid; pass a zero Physical size to clear.
func (w *Window) SetMinSize(ctx context.Context, size geometry.Size) error {
	return w.setSizeAction(ctx, ActionSetMinSize, size)
}

// SetMaxSize constrains the window's maximum size.
func (w *Window) SetMaxSize(ctx context.Context, size geometry.Size) error {
	return w.setSizeAction(ctx, ActionSetMaxSize, size)
}

func (w *Window) setSizeAction(ctx context.Context, action string, size geometry.Size) error {
	raw, err := geometry.MarshalSize(size)
	if err != nil {
		return &InvalidArgumentError{Reason: err.Error()}
	}
	return w.invokeUnit(ctx, action, json.RawMessage(raw))
}
