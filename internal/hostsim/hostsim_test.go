package hostsim

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/window"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	return New(t.TempDir()+"/host.sock", slog.Default())
}

func mustCreate(t *testing.T, h *Host, label string, opts *window.Options) {
	t.Helper()
	var value json.RawMessage
	if opts != nil {
		data, err := json.Marshal(opts)
		if err != nil {
			t.Fatalf("marshal options: %v", err)
		}
		value = data
	}
	resp := h.handleInvoke(window.ActionCreate, label, value)
	if resp.Status != "OK" {
		t.Fatalf("create %s failed: %s", label, resp.Error)
	}
}

func TestCreate_DefaultsAndDuplicateLabel(t *testing.T) {
	h := newTestHost(t)
	mustCreate(t, h, "main", &window.Options{Title: "Main"})

	resp := h.handleInvoke(window.ActionTitle, "main", nil)
	if resp.Status != "OK" {
		t.Fatalf("title failed: %s", resp.Error)
	}
	var title string
	if err := json.Unmarshal(resp.Data, &title); err != nil {
		t.Fatalf("parse title: %v", err)
	}
	if title != "Main" {
		t.Fatalf("expected title Main, got %q", title)
	}

	resp = h.handleInvoke(window.ActionIsVisible, "main", nil)
	var visible bool
	json.Unmarshal(resp.Data, &visible)
	if !visible {
		t.Fatal("expected new window to be visible by default")
	}

	if resp := h.handleInvoke(window.ActionCreate, "main", nil); resp.Status != "ERROR" {
		t.Fatal("expected duplicate label to be rejected")
	}
	if resp := h.handleInvoke(window.ActionCreate, "", nil); resp.Status != "ERROR" {
		t.Fatal("expected empty label to be rejected")
	}
}

func TestInvoke_UnknownLabelAndAction(t *testing.T) {
	h := newTestHost(t)

	if resp := h.handleInvoke(window.ActionTitle, "ghost", nil); resp.Status != "ERROR" {
		t.Fatal("expected unknown label to be rejected")
	}

	mustCreate(t, h, "main", nil)
	if resp := h.handleInvoke("window|levitate", "main", nil); resp.Status != "ERROR" {
		t.Fatal("expected unknown action to be rejected")
	}
}

func TestSetSize_LogicalConvertsAndClamps(t *testing.T) {
	h := newTestHost(t)
	h.SetMonitors([]window.Monitor{{
		Name:        "HIDPI",
		ScaleFactor: 2.0,
		Size:        geometry.PhysicalSize{Width: 3840, Height: 2160},
	}})
	mustCreate(t, h, "main", nil)

	minSize, _ := geometry.MarshalSize(geometry.PhysicalSize{Width: 400, Height: 300})
	if resp := h.handleInvoke(window.ActionSetMinSize, "main", minSize); resp.Status != "OK" {
		t.Fatalf("set min size failed: %s", resp.Error)
	}

	// Logical 100x100 at scale 2 is physical 200x200, clamped to the
	// 400x300 minimum.
	size, _ := geometry.MarshalSize(geometry.LogicalSize{Width: 100, Height: 100})
	if resp := h.handleInvoke(window.ActionSetSize, "main", size); resp.Status != "OK" {
		t.Fatalf("set size failed: %s", resp.Error)
	}

	resp := h.handleInvoke(window.ActionInnerSize, "main", nil)
	var got geometry.PhysicalSize
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("parse size: %v", err)
	}
	if got.Width != 400 || got.Height != 300 {
		t.Fatalf("expected clamped 400x300, got %+v", got)
	}
}

func TestMaximizeRestoresSavedSize(t *testing.T) {
	h := newTestHost(t)
	mustCreate(t, h, "main", &window.Options{Width: 640, Height: 480})

	h.handleInvoke(window.ActionMaximize, "main", nil)
	resp := h.handleInvoke(window.ActionIsMaximized, "main", nil)
	var maximized bool
	json.Unmarshal(resp.Data, &maximized)
	if !maximized {
		t.Fatal("expected window to be maximized")
	}

	h.handleInvoke(window.ActionUnmaximize, "main", nil)
	resp = h.handleInvoke(window.ActionInnerSize, "main", nil)
	var size geometry.PhysicalSize
	if err := json.Unmarshal(resp.Data, &size); err != nil {
		t.Fatalf("parse size: %v", err)
	}
	if size.Width != 640 || size.Height != 480 {
		t.Fatalf("expected restored 640x480, got %+v", size)
	}
}

func TestFocusMovesBetweenWindows(t *testing.T) {
	h := newTestHost(t)
	mustCreate(t, h, "a", nil)
	mustCreate(t, h, "b", nil)

	h.handleInvoke(window.ActionSetFocus, "a", nil)
	h.handleInvoke(window.ActionSetFocus, "b", nil)

	resp := h.handleInvoke(window.ActionIsFocused, "a", nil)
	var focused bool
	json.Unmarshal(resp.Data, &focused)
	if focused {
		t.Fatal("expected a to have lost focus")
	}

	resp = h.handleInvoke(window.ActionIsFocused, "b", nil)
	json.Unmarshal(resp.Data, &focused)
	if !focused {
		t.Fatal("expected b to be focused")
	}
}

func TestCloseRemovesWindow(t *testing.T) {
	h := newTestHost(t)
	mustCreate(t, h, "main", nil)

	if resp := h.handleInvoke(window.ActionClose, "main", nil); resp.Status != "OK" {
		t.Fatalf("close failed: %s", resp.Error)
	}
	if labels := h.Labels(); len(labels) != 0 {
		t.Fatalf("expected no windows after close, got %v", labels)
	}
	if resp := h.handleInvoke(window.ActionTitle, "main", nil); resp.Status != "ERROR" {
		t.Fatal("expected closed window to be gone")
	}
}
