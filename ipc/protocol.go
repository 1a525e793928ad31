package ipc

import (
	"encoding/json"
	"fmt"
)

// Op identifies the kind of a wire message. Every message is one JSON
// object on one line.
type Op string

const (
	// Client to host.
	OpInvoke      Op = "invoke"
	OpEvents      Op = "events"
	OpSubscribe   Op = "subscribe"
	OpUnsubscribe Op = "unsubscribe"
	OpEmit        Op = "emit"

	// Host to client.
	OpEvent Op = "event"
)

// Request is a client-to-host message. Invoke requests carry Action and
// Value; subscription management carries Sub, Event and Label; emits
// carry Event, Label and Value.
type Request struct {
	Op     Op              `json:"op"`
	Action string          `json:"action,omitempty"`
	Label  string          `json:"label,omitempty"`
	Sub    string          `json:"sub,omitempty"`
	Event  string          `json:"event,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// Response answers exactly one request on a command connection.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// EventPush is a host-to-client message on an event connection: one
// delivery of one subscribed event.
type EventPush struct {
	Op          Op              `json:"op"`
	Sub         string          `json:"sub"`
	Event       string          `json:"event"`
	ID          int64           `json:"id"`
	WindowLabel string          `json:"window_label"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// HostError is a command the host received, understood and rejected.
// Transport failures are returned as ordinary errors instead.
type HostError struct {
	Action  string
	Message string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host rejected %s: %s", e.Action, e.Message)
}

// NewOKResponse builds a successful response carrying data, which may
// be nil for unit replies.
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse builds an error response with a message.
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses one request line.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
