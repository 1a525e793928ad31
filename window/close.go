package window

import (
	"context"
)

// Close negotiation: each close-requested delivery from the host starts
// an independent negotiation that is Requested until the client handler
// returns, then resolves to either Cancelled (prevent-default was set;
// nothing further happens) or Proceeding (exactly one close command is
// issued). Overlapping deliveries are not coalesced; whether the host
// debounces repeated requests is its own concern.

type negotiationState int

const (
	negotiationRequested negotiationState = iota
	negotiationProceeding
	negotiationCancelled
)

// CloseRequestedEvent is handed to a close-requested handler. It is
// constructed fresh per delivery and discarded once the negotiation
// resolves; the prevent-default decision is read only after the handler
// returns.
type CloseRequestedEvent struct {
	env       Event
	prevented bool
}

// PreventDefault cancels the pending close: the window stays open and
// no close command is issued.
func (e *CloseRequestedEvent) PreventDefault() {
	e.prevented = true
}

// IsPrevented reports whether PreventDefault has been called.
func (e *CloseRequestedEvent) IsPrevented() bool {
	return e.prevented
}

// WindowLabel returns the label of the window being closed.
func (e *CloseRequestedEvent) WindowLabel() string {
	return e.env.WindowLabel
}

// ID returns the host-assigned delivery ID of the underlying event.
func (e *CloseRequestedEvent) ID() int64 {
	return e.env.ID
}

func resolveNegotiation(e *CloseRequestedEvent) negotiationState {
	if e.prevented {
		return negotiationCancelled
	}
	return negotiationProceeding
}

// OnCloseRequested subscribes to the host's close-requested event and
// runs handler for every delivery. If the handler returns without
// calling PreventDefault, one close command is issued; if it calls
// PreventDefault, none is. A handler error cancels that negotiation
// (no close command) and propagates to the event dispatcher.
func (w *Window) OnCloseRequested(ctx context.Context, handler func(*CloseRequestedEvent) error) (UnlistenFunc, error) {
	return w.Listen(ctx, EventCloseRequested, func(ev Event) error {
		cre := &CloseRequestedEvent{env: ev}
		if err := handler(cre); err != nil {
			return err
		}
		if resolveNegotiation(cre) == negotiationCancelled {
			return nil
		}
		return w.Close(ctx)
	})
}
