package window

import (
	"context"
	"errors"
	"testing"
)

func TestCloseNegotiation_ProceedIssuesOneCloseCommand(t *testing.T) {
	w, inv, bus := newTestWindow("w1")

	if _, err := w.OnCloseRequested(context.Background(), func(e *CloseRequestedEvent) error {
		if e.WindowLabel() != "w1" {
			t.Fatalf("expected label w1, got %q", e.WindowLabel())
		}
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Emit(context.Background(), EventCloseRequested, "w1", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if n := inv.callCount(ActionClose); n != 1 {
		t.Fatalf("expected exactly one close command, got %d", n)
	}
}

func TestCloseNegotiation_PreventDefaultIssuesNoCommand(t *testing.T) {
	w, inv, bus := newTestWindow("w1")

	w.OnCloseRequested(context.Background(), func(e *CloseRequestedEvent) error {
		e.PreventDefault()
		return nil
	})

	if err := bus.Emit(context.Background(), EventCloseRequested, "w1", nil); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if n := inv.callCount(ActionClose); n != 0 {
		t.Fatalf("expected zero close commands, got %d", n)
	}
}

func TestCloseNegotiation_HandlerErrorCancelsAndPropagates(t *testing.T) {
	w, inv, bus := newTestWindow("w1")

	boom := errors.New("veto failed")
	w.OnCloseRequested(context.Background(), func(*CloseRequestedEvent) error {
		return boom
	})

	err := bus.Emit(context.Background(), EventCloseRequested, "w1", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
	if n := inv.callCount(ActionClose); n != 0 {
		t.Fatalf("expected no close command after handler error, got %d", n)
	}
}

func TestCloseNegotiation_OverlappingDeliveriesAreIndependent(t *testing.T) {
	w, inv, bus := newTestWindow("w1")

	prevent := true
	w.OnCloseRequested(context.Background(), func(e *CloseRequestedEvent) error {
		if prevent {
			e.PreventDefault()
		}
		prevent = !prevent
		return nil
	})

	// First delivery prevented, second allowed: each gets a fresh
	// prevent-default cell.
	bus.Emit(context.Background(), EventCloseRequested, "w1", nil)
	bus.Emit(context.Background(), EventCloseRequested, "w1", nil)
	if n := inv.callCount(ActionClose); n != 1 {
		t.Fatalf("expected one close command across two negotiations, got %d", n)
	}
}

func TestResolveNegotiation(t *testing.T) {
	if got := resolveNegotiation(&CloseRequestedEvent{}); got != negotiationProceeding {
		t.Fatalf("expected proceeding, got %v", got)
	}
	e := &CloseRequestedEvent{}
	e.PreventDefault()
	if got := resolveNegotiation(e); got != negotiationCancelled {
		t.Fatalf("expected cancelled, got %v", got)
	}
	if !e.IsPrevented() {
		t.Fatal("expected IsPrevented to report true")
	}
}
