package window

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeInvoker records invocations and serves canned replies keyed by
// action.
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []invokeCall
	replies map[string]json.RawMessage
	errs    map[string]error

	// gate, when set, blocks Invoke until released. Lets tests register
	// bootstrap listeners before the creation command settles.
	gate chan struct{}
}

type invokeCall struct {
	action string
	label  string
	value  any
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		replies: make(map[string]json.RawMessage),
		errs:    make(map[string]error),
	}
}

func (f *fakeInvoker) Invoke(_ context.Context, action, label string, value any) (json.RawMessage, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.calls = append(f.calls, invokeCall{action: action, label: label, value: value})
	reply := f.replies[action]
	err := f.errs[action]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (f *fakeInvoker) callCount(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.action == action {
			n++
		}
	}
	return n
}

// fakeBus is an in-memory remote event subsystem scoped by event+label.
type fakeBus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]*fakeSub
}

type fakeSub struct {
	handler Handler
	once    bool
	fired   bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{subs: make(map[string]map[int]*fakeSub)}
}

func busKey(event, label string) string { return event + "\x00" + label }

func (b *fakeBus) listen(event, label string, h Handler, once bool) (UnlistenFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := busKey(event, label)
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]*fakeSub)
	}
	id := b.next
	b.next++
	b.subs[key][id] = &fakeSub{handler: h, once: once}
	return func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], id)
		return nil
	}, nil
}

func (b *fakeBus) Listen(_ context.Context, event, label string, h Handler) (UnlistenFunc, error) {
	return b.listen(event, label, h, false)
}

func (b *fakeBus) Once(_ context.Context, event, label string, h Handler) (UnlistenFunc, error) {
	return b.listen(event, label, h, true)
}

func (b *fakeBus) Emit(_ context.Context, event, label string, payload any) error {
	key := busKey(event, label)
	b.mu.Lock()
	var targets []*fakeSub
	for id, sub := range b.subs[key] {
		if sub.once {
			if sub.fired {
				continue
			}
			sub.fired = true
			delete(b.subs[key], id)
		}
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	env := Event{Name: event, ID: 1, WindowLabel: label, Payload: payload}
	for _, sub := range targets {
		if err := sub.handler(env); err != nil {
			return err
		}
	}
	return nil
}

func (b *fakeBus) subCount(event, label string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[busKey(event, label)])
}

func newTestWindow(label string) (*Window, *fakeInvoker, *fakeBus) {
	inv := newFakeInvoker()
	bus := newFakeBus()
	return Get(inv, bus, label), inv, bus
}

func TestNew_CreatedEventCarriesLabel(t *testing.T) {
	inv := newFakeInvoker()
	inv.gate = make(chan struct{})
	bus := newFakeBus()

	w := New(context.Background(), inv, bus, "w1", &Options{Title: "main"})

	got := make(chan Event, 1)
	if _, err := w.Listen(context.Background(), EventCreated, func(ev Event) error {
		got <- ev
		return nil
	}); err != nil {
		t.Fatalf("listen: %v", err)
	}
	errored := make(chan struct{}, 1)
	if _, err := w.Listen(context.Background(), EventCreateError, func(Event) error {
		errored <- struct{}{}
		return nil
	}); err != nil {
		t.Fatalf("listen: %v", err)
	}

	close(inv.gate)

	select {
	case ev := <-got:
		if ev.WindowLabel != "w1" {
			t.Fatalf("expected windowLabel w1, got %q", ev.WindowLabel)
		}
		if ev.ID != LocalEventID {
			t.Fatalf("expected local sentinel ID, got %d", ev.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for handle-created")
	}
	select {
	case <-errored:
		t.Fatal("handle-create-error fired for a successful creation")
	default:
	}
}

func TestNew_CreateErrorFiresInsteadOfCreated(t *testing.T) {
	inv := newFakeInvoker()
	inv.gate = make(chan struct{})
	inv.errs[ActionCreate] = fmt.Errorf("host refused: duplicate label")
	bus := newFakeBus()

	w := New(context.Background(), inv, bus, "w1", nil)

	created := make(chan struct{}, 1)
	failed := make(chan Event, 1)
	w.Listen(context.Background(), EventCreated, func(Event) error {
		created <- struct{}{}
		return nil
	})
	w.Listen(context.Background(), EventCreateError, func(ev Event) error {
		failed <- ev
		return nil
	})

	close(inv.gate)

	select {
	case ev := <-failed:
		reason, ok := ev.Payload.(string)
		if !ok || reason == "" {
			t.Fatalf("expected failure reason payload, got %#v", ev.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for handle-create-error")
	}
	select {
	case <-created:
		t.Fatal("handle-created fired for a failed creation")
	default:
	}
}

func TestCreate_ReturnsHostError(t *testing.T) {
	inv := newFakeInvoker()
	inv.errs[ActionCreate] = fmt.Errorf("host refused")
	if _, err := Create(context.Background(), inv, newFakeBus(), "w1", nil); err == nil {
		t.Fatal("expected creation error")
	}
}

func TestSameLabelHandlesDoNotShareLocalListeners(t *testing.T) {
	inv := newFakeInvoker()
	bus := newFakeBus()
	a := Get(inv, bus, "w1")
	b := Get(inv, bus, "w1")

	fired := 0
	a.Listen(context.Background(), EventCreated, func(Event) error {
		fired++
		return nil
	})

	if err := b.Emit(context.Background(), EventCreated, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if fired != 0 {
		t.Fatal("local listener on one handle fired from another handle's emit")
	}

	if err := a.Emit(context.Background(), EventCreated, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected exactly one delivery, got %d", fired)
	}
}

func TestSetSize_NilFailsFastWithoutRoundTrip(t *testing.T) {
	w, inv, _ := newTestWindow("w1")

	err := w.SetSize(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil size")
	}
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidArgumentError, got %T: %v", err, err)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("expected no command to be issued, got %d", len(inv.calls))
	}
}

func TestSetPosition_NilFailsFastWithoutRoundTrip(t *testing.T) {
	w, inv, _ := newTestWindow("w1")
	if err := w.SetPosition(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil position")
	}
	if len(inv.calls) != 0 {
		t.Fatalf("expected no command to be issued, got %d", len(inv.calls))
	}
}

func TestForwardingOpsCarryLabel(t *testing.T) {
	w, inv, _ := newTestWindow("side-panel")
	inv.replies[ActionTitle] = json.RawMessage(`"Side Panel"`)
	inv.replies[ActionIsVisible] = json.RawMessage(`true`)
	inv.replies[ActionScaleFactor] = json.RawMessage(`2.0`)

	title, err := w.Title(context.Background())
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	if title != "Side Panel" {
		t.Fatalf("expected title reply, got %q", title)
	}

	visible, err := w.IsVisible(context.Background())
	if err != nil || !visible {
		t.Fatalf("expected visible=true, got %v err=%v", visible, err)
	}

	scale, err := w.ScaleFactor(context.Background())
	if err != nil || scale != 2.0 {
		t.Fatalf("expected scale 2.0, got %v err=%v", scale, err)
	}

	for _, c := range inv.calls {
		if c.label != "side-panel" {
			t.Fatalf("call %s carried label %q", c.action, c.label)
		}
	}
}

func TestMonitorQueries(t *testing.T) {
	w, inv, _ := newTestWindow("w1")
	inv.replies[ActionCurrentMonitor] = json.RawMessage(
		`{"name":"DP-1","scale_factor":2,"position":{"x":0,"y":0},"size":{"width":3840,"height":2160}}`)
	inv.replies[ActionPrimaryMonitor] = json.RawMessage(`null`)
	inv.replies[ActionAvailableMonitors] = json.RawMessage(`[]`)

	m, err := w.CurrentMonitor(context.Background())
	if err != nil {
		t.Fatalf("current monitor: %v", err)
	}
	if m == nil || m.Name != "DP-1" || m.ScaleFactor != 2 || m.Size.Width != 3840 {
		t.Fatalf("unexpected monitor %+v", m)
	}

	p, err := w.PrimaryMonitor(context.Background())
	if err != nil {
		t.Fatalf("primary monitor: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil monitor for null reply, got %+v", p)
	}

	all, err := w.AvailableMonitors(context.Background())
	if err != nil {
		t.Fatalf("available monitors: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no monitors, got %d", len(all))
	}
}
