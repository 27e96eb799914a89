// Package ui renders the live watch screen for a monitoring session with
// Bubble Tea. The monitor loop runs in its own goroutine and feeds the
// model through a progress event channel.
package ui

import (
	"fmt"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"buildwatch/internal/progress"
)

// maxLogLines is how many recent activity lines the watch screen keeps.
const maxLogLines = 8

// eventsClosedMsg is sent when the event channel closes without a done event.
type eventsClosedMsg struct{}

// Model is the watch screen. It is a pure consumer: all build state arrives
// as progress events, so the model never blocks on the monitor.
type Model struct {
	events  <-chan progress.Event
	spinner spinner.Model
	bar     bprogress.Model

	phase    string
	percent  int
	activity string
	built    []string
	errors   int
	warnings int
	elapsed  time.Duration
	log      []string
	done     bool
	width    int
}

// NewModel creates a watch screen fed by events.
func NewModel(events <-chan progress.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = Styles.Success
	bar := bprogress.New(bprogress.WithDefaultGradient())
	return Model{
		events:  events,
		spinner: sp,
		bar:     bar,
		phase:   "starting",
		width:   60,
	}
}

// waitForEvent blocks on the channel as a command, keeping Update non-blocking.
func waitForEvent(ch <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return ev
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progress.Event:
		m.apply(msg)
		if m.done {
			return m, tea.Quit
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 12
		if w < 20 {
			w = 20
		}
		m.bar.Width = w
	}
	return m, nil
}

// apply folds one event into the model.
func (m *Model) apply(ev progress.Event) {
	switch ev.Kind {
	case progress.KindProgress:
		m.percent = ev.Percent
		m.activity = ev.Message
		m.appendLog(fmt.Sprintf("[%3d%%] %s", ev.Percent, ev.Message))
	case progress.KindTarget:
		m.appendLog(Styles.Success.Render(fmt.Sprintf("✓ %s package built", strings.ToUpper(ev.Message))))
	case progress.KindError:
		m.appendLog(Styles.Danger.Render("✗ " + ev.Message))
	case progress.KindCycle, progress.KindDone:
		m.phase = ev.Phase
		m.percent = ev.Percent
		m.activity = ev.Message
		m.built = ev.Built
		m.errors = ev.Errors
		m.warnings = ev.Warnings
		m.elapsed = ev.Elapsed
		if ev.Kind == progress.KindDone {
			m.done = true
		}
	}
}

func (m *Model) appendLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var lines []string

	header := Styles.Title.Render("buildwatch") + "  " + m.phaseLine()
	lines = append(lines, header, "")

	lines = append(lines, m.bar.ViewAs(float64(m.percent)/100))

	act := m.activity
	if act == "" {
		act = "Waiting for build output..."
	}
	if m.done {
		lines = append(lines, Styles.Normal.Render(act))
	} else {
		lines = append(lines, m.spinner.View()+" "+Styles.Normal.Render(act))
	}

	if len(m.built) > 0 {
		lines = append(lines, Styles.Success.Render("built: "+strings.Join(m.built, ", ")))
	}
	counts := fmt.Sprintf("%d errors, %d warnings", m.errors, m.warnings)
	switch {
	case m.errors > 0:
		lines = append(lines, Styles.Danger.Render(counts))
	case m.warnings > 0:
		lines = append(lines, Styles.Warning.Render(counts))
	}
	lines = append(lines, Styles.Muted.Render("elapsed: "+formatDuration(m.elapsed)))

	if len(m.log) > 0 {
		lines = append(lines, "")
		lines = append(lines, m.log...)
	}

	lines = append(lines, "", Styles.Muted.Render("q: quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return Styles.Box.Render(content)
}

// phaseLine renders the current phase with an icon.
func (m Model) phaseLine() string {
	switch m.phase {
	case "completed":
		return Styles.Success.Render("✓ " + m.phase)
	case "failed":
		return Styles.Danger.Render("✗ " + m.phase)
	case "timeout":
		return Styles.Warning.Render("⏱ " + m.phase)
	default:
		return Styles.Normal.Render("● " + m.phase)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
