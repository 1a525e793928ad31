// Package mcp exposes window control as MCP tools over stdio, so an
// agent can create, move, query and close windows through the host
// connection.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/winbridge/winbridge/window"
)

const (
	ServerName    = "winbridge"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for window control.
type Server struct {
	mcpServer *mcpsdk.Server
	inv       window.Invoker
	bus       window.EventBus
}

// NewServer creates an MCP server backed by the given command and
// event channels.
func NewServer(inv window.Invoker, bus window.EventBus) *Server {
	s := &Server{
		inv: inv,
		bus: bus,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Create a new window on the host. Returns the window's label, which every other tool uses to address it. Creation fails if a window with the same label already exists.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_title",
		Description: "Change the title of a window.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window to a new position. Coordinates are physical pixels unless logical is true, in which case the host scales them by the monitor's scale factor. Returns the resulting geometry in physical pixels.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window. Dimensions are physical pixels unless logical is true. The host clamps the result to the window's min/max size constraints. Returns the resulting geometry in physical pixels.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_state",
		Description: "Query a window's full state: title, geometry, visibility, focus, maximize/minimize flags, decorations, scale factor and theme.",
	}, s.handleWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. By default the host's close flow runs; with force the window is destroyed immediately, bypassing close-requested delivery.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Give a window keyboard focus.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_visible",
		Description: "Show or hide a window.",
	}, s.handleSetVisible)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_monitors",
		Description: "List the host's monitors with their geometry and scale factors. The first entry marked primary is the host's primary monitor.",
	}, s.handleMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "emit_event",
		Description: "Emit a custom event through the host's event subsystem, scoped to a window label. Other clients subscribed to that event and label receive it.",
	}, s.handleEmitEvent)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait_for_event",
		Description: "Block until the host delivers a named event for a window label, or until timeout. Returns the event's delivery ID and raw JSON payload.",
	}, s.handleWaitForEvent)
}
