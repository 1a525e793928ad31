package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/winbridge/winbridge/internal/config"
	"github.com/winbridge/winbridge/internal/runtimepath"
	"github.com/winbridge/winbridge/ipc"
	"github.com/winbridge/winbridge/window"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "create":
		os.Exit(runCreate(os.Args[2:]))
	case "title":
		os.Exit(runTitle(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "state":
		os.Exit(runState(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "show":
		os.Exit(runVisibility(os.Args[2:], true))
	case "hide":
		os.Exit(runVisibility(os.Args[2:], false))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "emit":
		os.Exit(runEmit(os.Args[2:]))
	case "listen":
		os.Exit(runListen(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "simhost":
		os.Exit(runSimhost(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winbridge <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  create              Create a window on the host")
	fmt.Fprintln(w, "  title               Get or set a window's title")
	fmt.Fprintln(w, "  move                Move a window")
	fmt.Fprintln(w, "  resize              Resize a window")
	fmt.Fprintln(w, "  state               Print a window's full state")
	fmt.Fprintln(w, "  monitors            List the host's monitors")
	fmt.Fprintln(w, "  show                Show a window")
	fmt.Fprintln(w, "  hide                Hide a window")
	fmt.Fprintln(w, "  focus               Give a window keyboard focus")
	fmt.Fprintln(w, "  close               Close a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  emit                Emit a custom event for a window label")
	fmt.Fprintln(w, "  listen              Print a window's events as they arrive")
	fmt.Fprintln(w, "  watch               Open the live window inspector")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  simhost             Run the in-memory host simulator (foreground)")
	fmt.Fprintln(w, "  mcp serve           Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winbridge <command> --help' for command-specific options.")
}

// connFlags are the flags shared by every command that talks to the
// host.
type connFlags struct {
	socket string
	config string
}

func (c *connFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.socket, "socket", "", "host socket path (default: config, then runtime dir)")
	fs.StringVar(&c.config, "config", "", "config file path (default: ~/.config/winbridge/config.yaml)")
}

func (c *connFlags) load() (*config.Config, error) {
	if c.config != "" {
		return config.LoadFromPath(c.config)
	}
	return config.Load()
}

// connect resolves config and socket path into a command client and an
// event bus.
func (c *connFlags) connect() (*config.Config, *ipc.Client, *ipc.Bus, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, nil, nil, err
	}
	setupLogging(cfg.LogLevel)

	socketPath := c.socket
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	if socketPath == "" {
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, nil, nil, err
		}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	client := ipc.NewClientWithPath(socketPath, timeout)
	bus := ipc.NewBusWithPath(socketPath, timeout, slog.Default())
	return cfg, client, bus, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func runTitle(args []string) int {
	fs := flag.NewFlagSet("title", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	set := fs.String("set", "", "new title; omit to print the current title")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge title [--set TITLE] <label>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "title requires exactly one window label")
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, fs.Arg(0))

	ctx := context.Background()
	if *set != "" {
		if err := w.SetTitle(ctx, *set); err != nil {
			return fail(err)
		}
		return 0
	}
	title, err := w.Title(ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Println(title)
	return 0
}

func runVisibility(args []string, show bool) int {
	name := "hide"
	if show {
		name = "show"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winbridge %s <label>\n\n", name)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one window label\n", name)
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, fs.Arg(0))

	if show {
		err = w.Show(context.Background())
	} else {
		err = w.Hide(context.Background())
	}
	if err != nil {
		return fail(err)
	}
	return 0
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge focus <label>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "focus requires exactly one window label")
		fs.Usage()
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	if err := window.Get(client, bus, fs.Arg(0)).SetFocus(context.Background()); err != nil {
		return fail(err)
	}
	return 0
}

func runClose(args []string) int {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var conn connFlags
	conn.register(fs)
	force := fs.Bool("force", false, "destroy the window immediately, bypassing close-requested delivery")
	request := fs.Bool("request", false, "only ask the host to emit close-requested, as if the user clicked close")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winbridge close [--force | --request] <label>")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "close requires exactly one window label")
		fs.Usage()
		return 2
	}
	if *force && *request {
		fmt.Fprintln(os.Stderr, "--force and --request are mutually exclusive")
		return 2
	}

	_, client, bus, err := conn.connect()
	if err != nil {
		return fail(err)
	}
	defer bus.Close()
	w := window.Get(client, bus, fs.Arg(0))

	ctx := context.Background()
	switch {
	case *force:
		err = w.Destroy(ctx)
	case *request:
		err = w.RequestClose(ctx)
	default:
		err = w.Close(ctx)
	}
	if err != nil {
		return fail(err)
	}
	return 0
}
