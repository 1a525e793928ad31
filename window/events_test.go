package window

import (
	"context"
	"errors"
	"testing"
)

func TestEmitLocal_RegistrationOrder(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	var order []string
	w.Listen(context.Background(), EventCreated, func(Event) error {
		order = append(order, "h1")
		return nil
	})
	w.Listen(context.Background(), EventCreated, func(Event) error {
		order = append(order, "h2")
		return nil
	})

	if err := w.Emit(context.Background(), EventCreated, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(order) != 2 || order[0] != "h1" || order[1] != "h2" {
		t.Fatalf("expected [h1 h2], got %v", order)
	}
}

func TestUnlisten_RemovesFutureDispatch(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	fired := 0
	unlisten, err := w.Listen(context.Background(), EventCreated, func(Event) error {
		fired++
		return nil
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	if err := unlisten(); err != nil {
		t.Fatalf("unlisten: %v", err)
	}
	w.Emit(context.Background(), EventCreated, nil)
	if fired != 0 {
		t.Fatalf("handler fired after unlisten: %d", fired)
	}

	// Idempotent.
	if err := unlisten(); err != nil {
		t.Fatalf("second unlisten: %v", err)
	}
}

func TestUnlisten_DuplicateHandlerRemovesOneOccurrence(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	fired := 0
	h := func(Event) error {
		fired++
		return nil
	}
	first, _ := w.Listen(context.Background(), EventCreated, h)
	w.Listen(context.Background(), EventCreated, h)

	if err := first(); err != nil {
		t.Fatalf("unlisten: %v", err)
	}
	w.Emit(context.Background(), EventCreated, nil)
	if fired != 1 {
		t.Fatalf("expected one remaining registration to fire, got %d", fired)
	}
}

func TestOnceLocal_FiresExactlyOnce(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	fired := 0
	if _, err := w.Once(context.Background(), EventCreated, func(Event) error {
		fired++
		return nil
	}); err != nil {
		t.Fatalf("once: %v", err)
	}

	w.Emit(context.Background(), EventCreated, nil)
	w.Emit(context.Background(), EventCreated, nil)
	if fired != 1 {
		t.Fatalf("expected exactly one delivery, got %d", fired)
	}
	if n := w.localListenerCount(EventCreated); n != 0 {
		t.Fatalf("expected once entry to be removed, %d remain", n)
	}
}

func TestOnceLocal_ReemitInsideHandlerDoesNotDoubleFire(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	fired := 0
	w.Once(context.Background(), EventCreated, func(Event) error {
		fired++
		// Removal happens before invocation, so this nested emit must
		// not reach the handler again.
		return w.Emit(context.Background(), EventCreated, nil)
	})

	if err := w.Emit(context.Background(), EventCreated, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected exactly one delivery, got %d", fired)
	}
}

func TestOnceLocal_SiblingReemitDoesNotDoubleFire(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	reemitted := false
	w.Listen(context.Background(), EventCreated, func(Event) error {
		// A nested emit consumes the once entry before the outer pass
		// reaches its snapshot copy.
		if !reemitted {
			reemitted = true
			return w.Emit(context.Background(), EventCreated, nil)
		}
		return nil
	})

	fired := 0
	w.Once(context.Background(), EventCreated, func(Event) error {
		fired++
		return nil
	})

	if err := w.Emit(context.Background(), EventCreated, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected exactly one delivery, got %d", fired)
	}
	if n := w.localListenerCount(EventCreated); n != 1 {
		t.Fatalf("expected only the re-emitting listener to remain, got %d", n)
	}
}

func TestEmitLocal_SnapshotUnperturbedByMidDispatchUnlisten(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	var order []string
	var unlistenSecond UnlistenFunc
	w.Listen(context.Background(), EventCreated, func(Event) error {
		order = append(order, "h1")
		return unlistenSecond()
	})
	unlistenSecond, _ = w.Listen(context.Background(), EventCreated, func(Event) error {
		order = append(order, "h2")
		return nil
	})

	// h1 unregisters h2 mid-pass; the snapshot still runs h2 this pass.
	if err := w.Emit(context.Background(), EventCreated, nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(order) != 2 || order[1] != "h2" {
		t.Fatalf("expected snapshot dispatch [h1 h2], got %v", order)
	}

	// Future passes no longer include h2.
	order = nil
	w.Emit(context.Background(), EventCreated, nil)
	if len(order) != 1 || order[0] != "h1" {
		t.Fatalf("expected [h1] after removal, got %v", order)
	}
}

func TestEmitLocal_HandlerErrorAbortsPass(t *testing.T) {
	w, _, _ := newTestWindow("w1")

	boom := errors.New("boom")
	var after int
	w.Listen(context.Background(), EventCreated, func(Event) error {
		return boom
	})
	w.Listen(context.Background(), EventCreated, func(Event) error {
		after++
		return nil
	})

	err := w.Emit(context.Background(), EventCreated, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
	if after != 0 {
		t.Fatal("handlers after the failing one still ran")
	}
}

func TestListen_RemoteEventsDelegateToBus(t *testing.T) {
	w, _, bus := newTestWindow("w1")

	var got []string
	unlisten, err := w.Listen(context.Background(), EventThemeChanged, func(ev Event) error {
		got = append(got, ev.Payload.(string))
		return nil
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if n := bus.subCount(EventThemeChanged, "w1"); n != 1 {
		t.Fatalf("expected one remote subscription, got %d", n)
	}

	bus.Emit(context.Background(), EventThemeChanged, "w1", "dark")
	bus.Emit(context.Background(), EventThemeChanged, "w2", "light") // other label
	if len(got) != 1 || got[0] != "dark" {
		t.Fatalf("expected only w1 delivery, got %v", got)
	}

	if err := unlisten(); err != nil {
		t.Fatalf("unlisten: %v", err)
	}
	if n := bus.subCount(EventThemeChanged, "w1"); n != 0 {
		t.Fatalf("expected remote subscription removed, got %d", n)
	}
}

func TestOnce_RemoteDelegatesToBusOnce(t *testing.T) {
	w, _, bus := newTestWindow("w1")

	fired := 0
	if _, err := w.Once(context.Background(), EventResized, func(Event) error {
		fired++
		return nil
	}); err != nil {
		t.Fatalf("once: %v", err)
	}

	bus.Emit(context.Background(), EventResized, "w1", nil)
	bus.Emit(context.Background(), EventResized, "w1", nil)
	if fired != 1 {
		t.Fatalf("expected exactly one delivery, got %d", fired)
	}
}

func TestEmit_RemoteForwardsToBus(t *testing.T) {
	w, _, bus := newTestWindow("w1")

	var got any
	bus.Listen(context.Background(), "custom-event", "w1", func(ev Event) error {
		got = ev.Payload
		return nil
	})

	if err := w.Emit(context.Background(), "custom-event", 42); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected payload 42, got %v", got)
	}
}
