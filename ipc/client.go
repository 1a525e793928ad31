package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/winbridge/winbridge/internal/runtimepath"
)

// Client issues window commands to the host over its control socket.
// Each command is one short-lived connection: one request line, one
// response line. Client is safe for concurrent use.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default host socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; Invoke surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// NewClientWithPath creates a client for a specific socket path.
func NewClientWithPath(socketPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Invoke sends one command addressed to label and returns the host's
// data reply. A rejection from the host is returned as *HostError;
// anything else that goes wrong is a transport failure.
func (c *Client) Invoke(ctx context.Context, action, label string, value any) (json.RawMessage, error) {
	raw, err := marshalValue(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s value: %w", action, err)
	}

	resp, err := c.sendRequest(ctx, &Request{
		Op:     OpInvoke,
		Action: action,
		Label:  label,
		Value:  raw,
	})
	if err != nil {
		return nil, err
	}
	if resp.Status == "ERROR" {
		return nil, &HostError{Action: action, Message: resp.Error}
	}
	return resp.Data, nil
}

func marshalValue(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// sendRequest sends a request and waits for a response.
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w (is the host running?)", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// Ping checks whether the host is answering commands.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Invoke(ctx, "host|ping", "", nil)
	return err
}
