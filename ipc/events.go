package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/winbridge/winbridge/internal/runtimepath"
	"github.com/winbridge/winbridge/window"
)

// Bus maintains one persistent event connection to the host and fans
// pushed events out to local subscribers. Subscriptions are keyed by a
// client-generated ID so the host can route pushes precisely; the
// connection is dialed lazily on the first subscription.
//
// Emits go out on short-lived command-style connections so they never
// interleave with the push stream.
type Bus struct {
	socketPath string
	timeout    time.Duration
	log        *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	subs   map[string]*busSub
	closed bool
}

type busSub struct {
	id      string
	event   string
	label   string
	handler window.Handler
	once    bool
}

// NewBus creates an event bus for the default host socket.
func NewBus(logger *slog.Logger) (*Bus, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, err
	}
	return NewBusWithPath(socketPath, 5*time.Second, logger), nil
}

// NewBusWithPath creates an event bus for a specific socket path.
func NewBusWithPath(socketPath string, timeout time.Duration, logger *slog.Logger) *Bus {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		socketPath: socketPath,
		timeout:    timeout,
		log:        logger,
		subs:       make(map[string]*busSub),
	}
}

// Listen subscribes handler to event deliveries scoped to label. The
// returned unlisten drops the subscription on both sides and is safe to
// call more than once.
func (b *Bus) Listen(ctx context.Context, event, label string, h window.Handler) (window.UnlistenFunc, error) {
	return b.subscribe(ctx, event, label, h, false)
}

// Once subscribes handler for at most one delivery. The subscription is
// dropped before the handler runs.
func (b *Bus) Once(ctx context.Context, event, label string, h window.Handler) (window.UnlistenFunc, error) {
	return b.subscribe(ctx, event, label, h, true)
}

func (b *Bus) subscribe(ctx context.Context, event, label string, h window.Handler, once bool) (window.UnlistenFunc, error) {
	sub := &busSub{
		id:      uuid.NewString(),
		event:   event,
		label:   label,
		handler: h,
		once:    once,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("event bus is closed")
	}
	if err := b.ensureConnLocked(ctx); err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.subs[sub.id] = sub
	err := b.writeLocked(&Request{
		Op:    OpSubscribe,
		Sub:   sub.id,
		Event: event,
		Label: label,
	})
	if err != nil {
		delete(b.subs, sub.id)
		b.mu.Unlock()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", event, err)
	}
	b.mu.Unlock()

	return func() error {
		return b.unsubscribe(sub.id)
	}, nil
}

// unsubscribe drops one subscription. Removal by ID makes repeated
// calls no-ops.
func (b *Bus) unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[id]; !ok {
		return nil
	}
	delete(b.subs, id)
	if b.closed || b.conn == nil {
		return nil
	}
	if err := b.writeLocked(&Request{Op: OpUnsubscribe, Sub: id}); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// Emit forwards a client-originated event to the host for routing. It
// uses its own connection so replies never race the push stream.
func (b *Bus) Emit(ctx context.Context, event, label string, payload any) error {
	raw, err := marshalValue(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	c := &Client{socketPath: b.socketPath, timeout: b.timeout}
	resp, err := c.sendRequest(ctx, &Request{
		Op:    OpEmit,
		Event: event,
		Label: label,
		Value: raw,
	})
	if err != nil {
		return err
	}
	if resp.Status == "ERROR" {
		return fmt.Errorf("host rejected emit of %s: %s", event, resp.Error)
	}
	return nil
}

// Close tears down the event connection and forgets all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.subs = make(map[string]*busSub)
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		return err
	}
	return nil
}

// ensureConnLocked dials the event connection on first use and starts
// the read loop. Caller holds b.mu.
func (b *Bus) ensureConnLocked(ctx context.Context) error {
	if b.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: b.timeout}
	conn, err := dialer.DialContext(ctx, "unix", b.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to host: %w (is the host running?)", err)
	}

	// Hello line switches this connection into push mode.
	hello, err := json.Marshal(&Request{Op: OpEvents})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to marshal hello: %w", err)
	}
	hello = append(hello, '\n')
	if _, err := conn.Write(hello); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send hello: %w", err)
	}

	b.conn = conn
	go b.readLoop(conn)
	return nil
}

// writeLocked sends one request line on the event connection. Caller
// holds b.mu.
func (b *Bus) writeLocked(req *Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = b.conn.Write(data)
	return err
}

// readLoop dispatches pushed events until the connection drops.
func (b *Bus) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var push EventPush
		if err := json.Unmarshal(scanner.Bytes(), &push); err != nil {
			b.log.Warn("dropping malformed event push", "error", err)
			continue
		}
		if push.Op != OpEvent {
			continue
		}
		b.dispatch(&push)
	}

	b.mu.Lock()
	wasClosed := b.closed
	if b.conn == conn {
		b.conn = nil
	}
	b.mu.Unlock()
	if !wasClosed {
		if err := scanner.Err(); err != nil {
			b.log.Error("event connection lost", "error", err)
		} else {
			b.log.Info("event connection closed by host")
		}
	}
}

func (b *Bus) dispatch(push *EventPush) {
	b.mu.Lock()
	sub, ok := b.subs[push.Sub]
	if ok && sub.once {
		// Dropped before invocation so a late duplicate push cannot
		// fire it again.
		delete(b.subs, push.Sub)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	if sub.once {
		_ = b.unsubscribeRemote(sub.id)
	}

	ev := window.Event{
		Name:        push.Event,
		ID:          push.ID,
		WindowLabel: push.WindowLabel,
	}
	if len(push.Payload) > 0 {
		ev.Payload = push.Payload
	}
	if err := sub.handler(ev); err != nil {
		b.log.Warn("event handler failed",
			"event", push.Event, "label", push.WindowLabel, "error", err)
	}
}

// unsubscribeRemote tells the host to stop pushing for an ID the local
// table no longer holds.
func (b *Bus) unsubscribeRemote(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.conn == nil {
		return nil
	}
	return b.writeLocked(&Request{Op: OpUnsubscribe, Sub: id})
}
