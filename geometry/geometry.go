// Package geometry defines the position and size value types exchanged
// with the window host. Values are tagged with one of two coordinate
// spaces: physical (device pixels) or logical (scale-independent).
// Conversion is one-way: physical values divide by a scale factor to
// produce logical ones. The reverse is intentionally not provided;
// callers that need it multiply themselves with a scale factor obtained
// from the host.
package geometry

import (
	"encoding/json"
	"fmt"
)

// Coordinate space tags as they appear on the wire.
const (
	KindLogical  = "Logical"
	KindPhysical = "Physical"
)

// Position is a tagged window position. Exactly two variants exist:
// LogicalPosition and PhysicalPosition.
type Position interface {
	positionKind() string
}

// Size is a tagged window size. Exactly two variants exist:
// LogicalSize and PhysicalSize.
type Size interface {
	sizeKind() string
}

// PhysicalPosition is a position in device pixels.
type PhysicalPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LogicalPosition is a position in scale-independent pixels.
type LogicalPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PhysicalSize is a size in device pixels.
type PhysicalSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LogicalSize is a size in scale-independent pixels.
type LogicalSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (PhysicalPosition) positionKind() string { return KindPhysical }
func (LogicalPosition) positionKind() string  { return KindLogical }
func (PhysicalSize) sizeKind() string         { return KindPhysical }
func (LogicalSize) sizeKind() string          { return KindLogical }

// ToLogical converts a physical position to a logical one by dividing
// each component by the scale factor.
func (p PhysicalPosition) ToLogical(scaleFactor float64) LogicalPosition {
	return LogicalPosition{
		X: float64(p.X) / scaleFactor,
		Y: float64(p.Y) / scaleFactor,
	}
}

// ToLogical converts a physical size to a logical one by dividing each
// component by the scale factor.
func (s PhysicalSize) ToLogical(scaleFactor float64) LogicalSize {
	return LogicalSize{
		Width:  float64(s.Width) / scaleFactor,
		Height: float64(s.Height) / scaleFactor,
	}
}

// taggedValue is the wire envelope for positions and sizes.
type taggedValue struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalPosition encodes a position with its coordinate-space tag.
// A nil position is invalid.
func MarshalPosition(p Position) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("position is nil")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedValue{Type: p.positionKind(), Data: data})
}

// MarshalSize encodes a size with its coordinate-space tag. A nil size
// is invalid.
func MarshalSize(s Size) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("size is nil")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedValue{Type: s.sizeKind(), Data: data})
}

// UnmarshalPosition decodes a tagged position. Tags other than Logical
// or Physical are rejected.
func UnmarshalPosition(raw []byte) (Position, error) {
	var tv taggedValue
	if err := json.Unmarshal(raw, &tv); err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}
	switch tv.Type {
	case KindPhysical:
		var p PhysicalPosition
		if err := json.Unmarshal(tv.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse physical position: %w", err)
		}
		return p, nil
	case KindLogical:
		var p LogicalPosition
		if err := json.Unmarshal(tv.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse logical position: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown position kind %q", tv.Type)
	}
}

// UnmarshalSize decodes a tagged size. Tags other than Logical or
// Physical are rejected.
func UnmarshalSize(raw []byte) (Size, error) {
	var tv taggedValue
	if err := json.Unmarshal(raw, &tv); err != nil {
		return nil, fmt.Errorf("failed to parse size: %w", err)
	}
	switch tv.Type {
	case KindPhysical:
		var s PhysicalSize
		if err := json.Unmarshal(tv.Data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse physical size: %w", err)
		}
		return s, nil
	case KindLogical:
		var s LogicalSize
		if err := json.Unmarshal(tv.Data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse logical size: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown size kind %q", tv.Type)
	}
}
