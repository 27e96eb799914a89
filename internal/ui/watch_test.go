package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"buildwatch/internal/progress"
)

func TestModel_CycleEventUpdatesState(t *testing.T) {
	ch := make(chan progress.Event, 1)
	m := NewModel(ch)

	next, cmd := m.Update(progress.Event{
		Kind:     progress.KindCycle,
		Phase:    "compiling_core",
		Percent:  42,
		Message:  "Compiling json.cc",
		Built:    nil,
		Warnings: 2,
		Elapsed:  90 * time.Second,
	})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected a wait command after a cycle event")
	}
	if m.phase != "compiling_core" || m.percent != 42 {
		t.Errorf("got phase=%q percent=%d", m.phase, m.percent)
	}

	view := m.View()
	if !strings.Contains(view, "Compiling json.cc") {
		t.Errorf("view missing activity:\n%s", view)
	}
	if !strings.Contains(view, "0 errors, 2 warnings") {
		t.Errorf("view missing counts:\n%s", view)
	}
	if !strings.Contains(view, "1m30s") {
		t.Errorf("view missing elapsed:\n%s", view)
	}
}

func TestModel_DoneEventQuits(t *testing.T) {
	ch := make(chan progress.Event, 1)
	m := NewModel(ch)

	next, cmd := m.Update(progress.Event{
		Kind:    progress.KindDone,
		Phase:   "completed",
		Percent: 100,
		Built:   []string{"http", "rest", "openapi"},
	})
	m = next.(Model)

	if !m.done {
		t.Error("expected model to be done")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected tea.Quit, got %T", msg)
	}
	if view := m.View(); !strings.Contains(view, "built: http, rest, openapi") {
		t.Errorf("view missing built targets:\n%s", view)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		ch := make(chan progress.Event)
		m := NewModel(ch)

		var msg tea.Msg
		switch key {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("key %q: expected quit command", key)
		}
	}
}

func TestModel_ClosedChannelQuits(t *testing.T) {
	ch := make(chan progress.Event)
	close(ch)
	m := NewModel(ch)

	msg := waitForEvent(ch)()
	if _, ok := msg.(eventsClosedMsg); !ok {
		t.Fatalf("expected eventsClosedMsg, got %T", msg)
	}
	next, cmd := m.Update(msg)
	if !next.(Model).done {
		t.Error("expected model to be done")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestModel_LogTailBounded(t *testing.T) {
	ch := make(chan progress.Event)
	m := NewModel(ch)

	for i := 0; i < maxLogLines*2; i++ {
		m.apply(progress.Event{Kind: progress.KindProgress, Percent: i, Message: "Compiling"})
	}
	if len(m.log) != maxLogLines {
		t.Errorf("expected %d log lines, got %d", maxLogLines, len(m.log))
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Hour, "2h0m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
