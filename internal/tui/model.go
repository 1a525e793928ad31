package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/winbridge/winbridge/window"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(13)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

const refreshInterval = 2 * time.Second

// snapshot is one full state read of the inspected window.
type snapshot struct {
	title     string
	x, y      int
	width     int
	height    int
	visible   bool
	focused   bool
	maximized bool
	minimized bool
	theme     string
	scale     float64
}

type snapshotMsg struct {
	state snapshot
	err   error
}

type eventLogMsg logLine

type refreshTickMsg struct{}

type model struct {
	w      *window.Window
	events <-chan logLine

	state    snapshot
	stateErr error
	log      []string
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

func newModel(w *window.Window, events <-chan logLine) model {
	return model{
		w:      w,
		events: events,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.readState(), m.waitForEvent(), refreshTick())
}

// readState queries the window off the UI goroutine.
func (m model) readState() tea.Cmd {
	w := m.w
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
		defer cancel()

		var s snapshot
		var err error
		if s.title, err = w.Title(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		pos, err := w.OuterPosition(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		s.x, s.y = pos.X, pos.Y
		size, err := w.OuterSize(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		s.width, s.height = size.Width, size.Height
		if s.visible, err = w.IsVisible(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		if s.focused, err = w.IsFocused(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		if s.maximized, err = w.IsMaximized(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		if s.minimized, err = w.IsMinimized(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		if s.theme, err = w.Theme(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		if s.scale, err = w.ScaleFactor(ctx); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{state: s}
	}
}

func (m model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		line, ok := <-events
		if !ok {
			return nil
		}
		return eventLogMsg(line)
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.readState()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 4
		if logHeight < 3 {
			logHeight = 3
		}
		logWidth := m.width - statePaneWidth - 6
		if logWidth < 20 {
			logWidth = 20
		}
		if !m.ready {
			m.viewport = viewport.New(logWidth, logHeight)
			m.ready = true
		} else {
			m.viewport.Width = logWidth
			m.viewport.Height = logHeight
		}
		m.syncLog()

	case snapshotMsg:
		m.state = msg.state
		m.stateErr = msg.err

	case eventLogMsg:
		stamp := timeStyle.Render(msg.at.Format("15:04:05"))
		m.log = append(m.log, stamp+" "+msg.text)
		if len(m.log) > 500 {
			m.log = m.log[len(m.log)-500:]
		}
		m.syncLog()
		// Events can change state; refresh alongside the next wait.
		return m, tea.Batch(m.waitForEvent(), m.readState())

	case refreshTickMsg:
		return m, tea.Batch(m.readState(), refreshTick())
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) syncLog() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

const statePaneWidth = 30

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := titleStyle.Render(fmt.Sprintf(" winbridge watch: %s ", m.w.Label()))

	var state string
	if m.stateErr != nil {
		state = errStyle.Render(wordwrap(m.stateErr.Error(), statePaneWidth-2))
	} else {
		row := func(name, value string) string {
			return labelStyle.Render(name) + valueStyle.Render(value)
		}
		state = strings.Join([]string{
			row("title", m.state.title),
			row("position", fmt.Sprintf("%d,%d", m.state.x, m.state.y)),
			row("size", fmt.Sprintf("%dx%d", m.state.width, m.state.height)),
			row("visible", fmt.Sprintf("%t", m.state.visible)),
			row("focused", fmt.Sprintf("%t", m.state.focused)),
			row("maximized", fmt.Sprintf("%t", m.state.maximized)),
			row("minimized", fmt.Sprintf("%t", m.state.minimized)),
			row("theme", m.state.theme),
			row("scale", fmt.Sprintf("%.2f", m.state.scale)),
		}, "\n")
	}

	left := paneStyle.Width(statePaneWidth).Render(state)
	right := paneStyle.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	help := helpStyle.Render("r refresh · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

func wordwrap(s string, width int) string {
	if width < 1 {
		return s
	}
	var sb strings.Builder
	line := 0
	for _, word := range strings.Fields(s) {
		if line > 0 && line+len(word)+1 > width {
			sb.WriteString("\n")
			line = 0
		} else if line > 0 {
			sb.WriteString(" ")
			line++
		}
		sb.WriteString(word)
		line += len(word)
	}
	return sb.String()
}
