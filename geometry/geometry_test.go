package geometry

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestToLogical_Position(t *testing.T) {
	cases := []struct {
		name  string
		in    PhysicalPosition
		scale float64
		want  LogicalPosition
	}{
		{"unit scale", PhysicalPosition{X: 100, Y: 50}, 1.0, LogicalPosition{X: 100, Y: 50}},
		{"hidpi", PhysicalPosition{X: 100, Y: 50}, 2.0, LogicalPosition{X: 50, Y: 25}},
		{"fractional", PhysicalPosition{X: 300, Y: 150}, 1.5, LogicalPosition{X: 200, Y: 100}},
		{"negative coords", PhysicalPosition{X: -200, Y: -100}, 2.0, LogicalPosition{X: -100, Y: -50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.ToLogical(tc.scale)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestToLogical_Size(t *testing.T) {
	got := PhysicalSize{Width: 1920, Height: 1080}.ToLogical(2.0)
	want := LogicalSize{Width: 960, Height: 540}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestMarshalPosition_RoundTrip(t *testing.T) {
	raw, err := MarshalPosition(PhysicalPosition{X: 10, Y: 20})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"Physical"`) {
		t.Fatalf("expected Physical tag in %s", raw)
	}

	p, err := UnmarshalPosition(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	pp, ok := p.(PhysicalPosition)
	if !ok {
		t.Fatalf("expected PhysicalPosition, got %T", p)
	}
	if pp.X != 10 || pp.Y != 20 {
		t.Fatalf("expected (10,20), got %+v", pp)
	}
}

func TestMarshalPosition_NilRejected(t *testing.T) {
	if _, err := MarshalPosition(nil); err == nil {
		t.Fatal("expected error for nil position")
	}
	if _, err := MarshalSize(nil); err == nil {
		t.Fatal("expected error for nil size")
	}
}

func TestUnmarshal_UnknownKindRejected(t *testing.T) {
	bad, _ := json.Marshal(taggedValue{Type: "Virtual", Data: json.RawMessage(`{"x":1,"y":2}`)})
	if _, err := UnmarshalPosition(bad); err == nil {
		t.Fatal("expected error for unknown position kind")
	}
	if _, err := UnmarshalSize(bad); err == nil {
		t.Fatal("expected error for unknown size kind")
	}
}

func TestUnmarshalSize_Logical(t *testing.T) {
	raw, err := MarshalSize(LogicalSize{Width: 800.5, Height: 600.25})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s, err := UnmarshalSize(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ls, ok := s.(LogicalSize)
	if !ok {
		t.Fatalf("expected LogicalSize, got %T", s)
	}
	if ls.Width != 800.5 || ls.Height != 600.25 {
		t.Fatalf("unexpected size %+v", ls)
	}
}
