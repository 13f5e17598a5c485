package harness

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/artpar/hostdeck/internal/app"
	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/tui/views"
)

// settle bounds how long a returned tea.Cmd may take before it is dropped.
// Timers such as the notification clear never finish within it.
const settle = 100 * time.Millisecond

// TUIRunner provides TUI testing capabilities.
type TUIRunner struct {
	harness *E2EHarness
}

// TUISession drives a MainView backed by the harness data directory.
type TUISession struct {
	runner    *TUIRunner
	app       *app.App
	model     *views.MainView
	t         *testing.T
	clipboard []string
	quit      bool
}

// Start opens the app and starts a new TUI session.
func (r *TUIRunner) Start(t *testing.T) *TUISession {
	t.Helper()
	return r.StartWithSize(t, 120, 40)
}

// StartWithSize starts a TUI session with custom dimensions.
func (r *TUIRunner) StartWithSize(t *testing.T, width, height int) *TUISession {
	t.Helper()

	cfg := app.DefaultConfig()
	cfg.DataDir = r.harness.dataDir
	cfg.Storage = r.harness.storage

	a, err := app.New(context.Background(),
		app.WithConfig(cfg),
		app.WithLogger(app.NewLogger(io.Discard, "error")),
		app.WithConfirmer(hosttree.AlwaysConfirm),
	)
	if err != nil {
		t.Fatalf("failed to open app: %v", err)
	}

	s := &TUISession{runner: r, app: a, t: t}
	s.model = views.NewMainView(context.Background(), a.Dispatcher(), views.WithClipboard(func(text string) error {
		s.clipboard = append(s.clipboard, text)
		return nil
	}))
	s.model.SetSize(width, height)

	t.Cleanup(s.Quit)
	return s
}

// SendKey sends a key press.
func (s *TUISession) SendKey(key string) *TUISession {
	s.update(parseKeyMsg(key))
	return s
}

// SendKeys sends multiple key presses.
func (s *TUISession) SendKeys(keys ...string) *TUISession {
	for _, key := range keys {
		s.SendKey(key)
	}
	return s
}

func (s *TUISession) update(msg tea.Msg) {
	if _, ok := msg.(tea.QuitMsg); ok {
		s.quit = true
		return
	}
	updated, cmd := s.model.Update(msg)
	s.model = updated.(*views.MainView)
	s.executeCmd(cmd)
}

// executeCmd runs cmd and feeds its message back into Update.
func (s *TUISession) executeCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if msg != nil {
			s.update(msg)
		}
	case <-time.After(settle):
	}
}

// Output returns the current TUI output.
func (s *TUISession) Output() string {
	return s.model.View()
}

// Status returns the tree status line.
func (s *TUISession) Status() string {
	return s.model.HostTree().Status()
}

// RowLabels returns the visible rows as names indented two spaces per level.
func (s *TUISession) RowLabels() []string {
	t := s.app.Tree()
	rows := s.model.HostTree().Rows()
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = strings.Repeat("  ", row.Depth) + t.Host(row.Node).Name
	}
	return labels
}

// CursorLabel returns the name of the host under the cursor.
func (s *TUISession) CursorLabel() string {
	n := s.model.HostTree().Current()
	if n == hosttree.NoNode {
		return ""
	}
	return s.app.Tree().Host(n).Name
}

// Clipboard returns everything written to the clipboard, oldest first.
func (s *TUISession) Clipboard() []string {
	return s.clipboard
}

// Quitted reports whether the view asked the program to quit.
func (s *TUISession) Quitted() bool {
	return s.quit
}

// App returns the backing application.
func (s *TUISession) App() *app.App {
	return s.app
}

// Model returns the underlying MainView for direct assertions.
func (s *TUISession) Model() *views.MainView {
	return s.model
}

// Quit closes the view and the app. It is safe to call more than once.
func (s *TUISession) Quit() {
	if s.app == nil {
		return
	}
	s.model.Close()
	s.app.Close()
	s.app = nil
}

// parseKeyMsg converts key string to tea.KeyMsg.
func parseKeyMsg(key string) tea.KeyMsg {
	switch strings.ToLower(key) {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc", "escape":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}
