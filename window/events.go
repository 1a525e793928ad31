package window

import (
	"context"
)

// Remote event names recognized by the host's event subsystem.
const (
	EventResized            = "resized"
	EventMoved              = "moved"
	EventCloseRequested     = "close-requested"
	EventFocusGained        = "focus-gained"
	EventFocusLost          = "focus-lost"
	EventScaleFactorChanged = "scale-factor-changed"
	EventMenuItemClicked    = "menu-item-clicked"
	EventFileDrop           = "file-drop"
	EventFileDropHover      = "file-drop-hover"
	EventFileDropCancelled  = "file-drop-cancelled"
	EventThemeChanged       = "theme-changed"
)

// Local bootstrap event names. These two names are dispatched entirely
// in-process on the handle that performed creation and never touch the
// host; exactly one of them fires, once, after the creation command
// settles.
const (
	EventCreated     = "handle-created"
	EventCreateError = "handle-create-error"
)

// LocalEventID is the sentinel ID carried by envelopes synthesized for
// local dispatch, where no host-assigned delivery ID exists.
const LocalEventID int64 = -1

// Event is the envelope delivered to handlers. For remote events the
// payload is the raw JSON pushed by the host (json.RawMessage); for
// local events it is whatever was passed to Emit.
type Event struct {
	Name        string
	ID          int64
	WindowLabel string
	Payload     any
}

// Handler consumes one event delivery. A non-nil error from a local
// handler aborts the remaining handlers of that emit pass and
// propagates to the emitter.
type Handler func(Event) error

// UnlistenFunc removes a listener registration. It only affects future
// dispatch (a pass already in progress still runs the handler) and is
// idempotent: calling it again is a no-op and never double-removes
// another registration.
type UnlistenFunc func() error

type localEntry struct {
	handler Handler
	once    bool
}

func isLocalEvent(name string) bool {
	return name == EventCreated || name == EventCreateError
}

// Listen registers a handler for an event on this window. The two
// bootstrap names are handled by this handle's private listener table;
// every other name is delegated to the remote event subsystem scoped to
// this window's label.
func (w *Window) Listen(ctx context.Context, event string, h Handler) (UnlistenFunc, error) {
	if isLocalEvent(event) {
		return w.listenLocal(event, h, false), nil
	}
	return w.bus.Listen(ctx, event, w.label, h)
}

// Once registers a handler that fires at most once and is removed after
// its first delivery, on either path.
func (w *Window) Once(ctx context.Context, event string, h Handler) (UnlistenFunc, error) {
	if isLocalEvent(event) {
		return w.listenLocal(event, h, true), nil
	}
	return w.bus.Once(ctx, event, w.label, h)
}

// Emit delivers an event. For the local bootstrap names, handlers
// registered on this handle run synchronously in registration order
// over a snapshot taken at the start of the pass, each receiving a
// synthesized envelope; the first handler error aborts the pass and is
// returned. For all other names the emit is forwarded to the remote
// subsystem scoped to this window's label.
func (w *Window) Emit(ctx context.Context, event string, payload any) error {
	if isLocalEvent(event) {
		return w.emitLocal(event, payload)
	}
	return w.bus.Emit(ctx, event, w.label, payload)
}

func (w *Window) listenLocal(event string, h Handler, once bool) UnlistenFunc {
	entry := &localEntry{handler: h, once: once}

	w.mu.Lock()
	w.local[event] = append(w.local[event], entry)
	w.mu.Unlock()

	return func() error {
		w.removeLocal(event, entry)
		return nil
	}
}

// removeLocal drops one specific registration and reports whether it
// was still registered. Matching by entry identity means registering
// the same handler function twice and unlistening once removes exactly
// one occurrence.
func (w *Window) removeLocal(event string, entry *localEntry) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries := w.local[event]
	for i, e := range entries {
		if e == entry {
			w.local[event] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

func (w *Window) emitLocal(event string, payload any) error {
	w.mu.Lock()
	snapshot := make([]*localEntry, len(w.local[event]))
	copy(snapshot, w.local[event])
	w.mu.Unlock()

	env := Event{
		Name:        event,
		ID:          LocalEventID,
		WindowLabel: w.label,
		Payload:     payload,
	}

	for _, entry := range snapshot {
		if entry.once {
			// Check-and-remove under the mutex decides which pass may
			// invoke a once entry: a nested emit from an earlier handler
			// can have consumed it already, in which case this pass's
			// snapshot copy must be skipped.
			if !w.removeLocal(event, entry) {
				continue
			}
		}
		if err := entry.handler(env); err != nil {
			return err
		}
	}
	return nil
}

// localListenerCount reports the live registrations for a local event.
// Used by tests.
func (w *Window) localListenerCount(event string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.local[event])
}
