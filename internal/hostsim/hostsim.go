// Package hostsim is an in-memory window host. It answers the same
// control socket protocol a native host would: command connections get
// one request and one response, event connections get a push stream.
// Window state lives in process memory; mutations publish the matching
// events to every subscriber.
package hostsim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sort"
	"sync"

	"github.com/winbridge/winbridge/geometry"
	"github.com/winbridge/winbridge/ipc"
	"github.com/winbridge/winbridge/window"
)

// Host simulates a native window host on a unix socket.
type Host struct {
	socketPath string
	listener   net.Listener
	log        *slog.Logger

	mu          sync.Mutex
	windows     map[string]*simWindow
	focused     string
	monitors    []window.Monitor
	nextEventID int64
	eventConns  map[*eventConn]struct{}

	shuttingDown bool
	shutdownMu   sync.Mutex
}

type simWindow struct {
	label       string
	title       string
	position    geometry.PhysicalPosition
	size        geometry.PhysicalSize
	savedSize   geometry.PhysicalSize
	minSize     *geometry.PhysicalSize
	maxSize     *geometry.PhysicalSize
	visible     bool
	maximized   bool
	minimized   bool
	fullscreen  bool
	resizable   bool
	decorations bool
	alwaysOnTop bool
	skipTaskbar bool
	theme       string
}

// eventConn is one push-mode connection with its subscription table.
type eventConn struct {
	conn net.Conn

	mu   sync.Mutex
	subs map[string]subscription
}

type subscription struct {
	event string
	label string
}

type pendingPush struct {
	event   string
	label   string
	payload any
}

// New creates a host simulator bound to socketPath. It starts with one
// 1920x1080 monitor at scale factor 1 and no windows.
func New(socketPath string, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		socketPath: socketPath,
		log:        logger,
		windows:    make(map[string]*simWindow),
		eventConns: make(map[*eventConn]struct{}),
		monitors: []window.Monitor{
			{
				Name:        "SIM-1",
				ScaleFactor: 1.0,
				Position:    geometry.PhysicalPosition{X: 0, Y: 0},
				Size:        geometry.PhysicalSize{Width: 1920, Height: 1080},
			},
		},
	}
}

// SetMonitors replaces the simulated monitor list. The first entry is
// the primary.
func (h *Host) SetMonitors(monitors []window.Monitor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.monitors = monitors
}

// Start begins listening for connections.
func (h *Host) Start() error {
	os.Remove(h.socketPath)

	listener, err := net.Listen("unix", h.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create control socket: %w", err)
	}
	h.listener = listener

	if err := os.Chmod(h.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	h.log.Info("host simulator listening", "socket", h.socketPath)

	go h.acceptLoop()
	return nil
}

// Stop shuts the simulator down and removes its socket.
func (h *Host) Stop() {
	h.shutdownMu.Lock()
	h.shuttingDown = true
	h.shutdownMu.Unlock()

	if h.listener != nil {
		h.listener.Close()
	}

	h.mu.Lock()
	for ec := range h.eventConns {
		ec.conn.Close()
	}
	h.eventConns = make(map[*eventConn]struct{})
	h.mu.Unlock()

	os.Remove(h.socketPath)
}

func (h *Host) acceptLoop() {
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			h.shutdownMu.Lock()
			if h.shuttingDown {
				h.shutdownMu.Unlock()
				return
			}
			h.shutdownMu.Unlock()
			h.log.Error("accept failed", "error", err)
			continue
		}

		go h.handleConnection(conn)
	}
}

// handleConnection reads the first request line and decides the mode:
// an events hello turns the connection into a push stream, anything
// else is a one-shot command.
func (h *Host) handleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		h.log.Warn("read failed", "error", err)
		conn.Close()
		return
	}

	req, err := ipc.ParseRequest(data)
	if err != nil {
		h.sendError(conn, fmt.Sprintf("invalid request: %v", err))
		conn.Close()
		return
	}

	if req.Op == ipc.OpEvents {
		h.eventLoop(conn, reader)
		return
	}

	defer conn.Close()
	resp := h.handleRequest(req)
	respData, err := resp.Marshal()
	if err != nil {
		h.log.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		h.log.Warn("failed to send response", "error", err)
	}
}

func (h *Host) handleRequest(req *ipc.Request) *ipc.Response {
	switch req.Op {
	case ipc.OpInvoke:
		return h.handleInvoke(req.Action, req.Label, req.Value)
	case ipc.OpEmit:
		h.deliver([]pendingPush{{event: req.Event, label: req.Label, payload: req.Value}})
		resp, _ := ipc.NewOKResponse(nil)
		return resp
	default:
		return ipc.NewErrorResponse(fmt.Sprintf("unknown op: %s", req.Op))
	}
}

// eventLoop serves one push-mode connection: subscribe and unsubscribe
// lines come in, event pushes go out, until the peer hangs up.
func (h *Host) eventLoop(conn net.Conn, reader *bufio.Reader) {
	ec := &eventConn{conn: conn, subs: make(map[string]subscription)}

	h.mu.Lock()
	h.eventConns[ec] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.eventConns, ec)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		data, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		req, err := ipc.ParseRequest(data)
		if err != nil {
			h.log.Warn("dropping malformed event request", "error", err)
			continue
		}

		switch req.Op {
		case ipc.OpSubscribe:
			ec.mu.Lock()
			ec.subs[req.Sub] = subscription{event: req.Event, label: req.Label}
			ec.mu.Unlock()
		case ipc.OpUnsubscribe:
			ec.mu.Lock()
			delete(ec.subs, req.Sub)
			ec.mu.Unlock()
		default:
			h.log.Warn("unexpected op on event connection", "op", req.Op)
		}
	}
}

// deliver pushes an event to every matching subscription on every
// event connection.
func (h *Host) deliver(pushes []pendingPush) {
	if len(pushes) == 0 {
		return
	}

	h.mu.Lock()
	conns := make([]*eventConn, 0, len(h.eventConns))
	for ec := range h.eventConns {
		conns = append(conns, ec)
	}
	ids := make([]int64, len(pushes))
	for i := range pushes {
		h.nextEventID++
		ids[i] = h.nextEventID
	}
	h.mu.Unlock()

	for i, p := range pushes {
		var payload json.RawMessage
		switch v := p.payload.(type) {
		case nil:
		case json.RawMessage:
			payload = v
		default:
			data, err := json.Marshal(v)
			if err != nil {
				h.log.Error("failed to marshal event payload", "event", p.event, "error", err)
				continue
			}
			payload = data
		}

		for _, ec := range conns {
			ec.push(h.log, p.event, p.label, ids[i], payload)
		}
	}
}

func (ec *eventConn) push(log *slog.Logger, event, label string, id int64, payload json.RawMessage) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	for sub, s := range ec.subs {
		if s.event != event || s.label != label {
			continue
		}
		data, err := json.Marshal(&ipc.EventPush{
			Op:          ipc.OpEvent,
			Sub:         sub,
			Event:       event,
			ID:          id,
			WindowLabel: label,
			Payload:     payload,
		})
		if err != nil {
			log.Error("failed to marshal event push", "event", event, "error", err)
			continue
		}
		data = append(data, '\n')
		if _, err := ec.conn.Write(data); err != nil {
			log.Warn("failed to push event", "event", event, "error", err)
		}
	}
}

func (h *Host) sendError(conn net.Conn, errMsg string) {
	resp := ipc.NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Labels returns the labels of all live windows, sorted.
func (h *Host) Labels() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	labels := make([]string, 0, len(h.windows))
	for label := range h.windows {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
