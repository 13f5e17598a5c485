package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/tui"
	"github.com/artpar/hostdeck/internal/tui/components"
)

// clearNotificationMsg is sent to clear the notification.
type clearNotificationMsg struct{}

// MainView is the main application view.
type MainView struct {
	width        int
	height       int
	tree         *components.HostTree
	showHelp     bool
	notification string

	writeClipboard func(string) error
}

var _ tui.Component = (*MainView)(nil)

// Option configures a MainView.
type Option func(*MainView)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(v *MainView) {
		v.writeClipboard = write
	}
}

// NewMainView creates a new main view editing the dispatcher's tree.
func NewMainView(ctx context.Context, d *hosttree.Dispatcher, opts ...Option) *MainView {
	v := &MainView{
		tree:           components.NewHostTree(ctx, d),
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Init initializes the view.
func (v *MainView) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	if v.showHelp {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if keyMsg.Type == tea.KeyEsc || string(keyMsg.Runes) == "?" {
				v.showHelp = false
			}
		}
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.updatePaneSizes()
		return v, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		if msg.Type == tea.KeyRunes {
			switch string(msg.Runes) {
			case "q":
				return v, tea.Quit
			case "?":
				v.showHelp = true
				return v, nil
			}
		}

	case components.CopyMsg:
		return v.handleCopy(msg.Content)

	case components.OpenHostsMsg:
		verb := "Open"
		if msg.SFTP {
			verb = "SFTP"
		}
		return v.notify(fmt.Sprintf("%s: %s", verb, strings.Join(msg.Targets, ", ")))

	case clearNotificationMsg:
		v.notification = ""
		return v, nil
	}

	updated, cmd := v.tree.Update(msg)
	v.tree = updated.(*components.HostTree)
	return v, cmd
}

func (v *MainView) handleCopy(content string) (tui.Component, tea.Cmd) {
	if err := v.writeClipboard(content); err != nil {
		return v.notify("✗ Copy failed")
	}
	return v.notify("✓ Copied " + content)
}

func (v *MainView) notify(text string) (tui.Component, tea.Cmd) {
	v.notification = text
	return v, tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearNotificationMsg{}
	})
}

func (v *MainView) updatePaneSizes() {
	// Help bar and status bar take one line each.
	v.tree.SetSize(v.width, max(v.height-2, 0))
}

// View renders the view.
func (v *MainView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}
	if v.showHelp {
		return v.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.tree.View(), v.renderHelpBar(), v.renderStatusBar())
}

// renderHelpBar renders the keyboard shortcuts.
func (v *MainView) renderHelpBar() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))
	sepStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	hints := []string{
		keyStyle.Render("j/k") + descStyle.Render(" Navigate"),
		keyStyle.Render("x/p") + descStyle.Render(" Move"),
		keyStyle.Render("c") + descStyle.Render(" Copy"),
		keyStyle.Render("d") + descStyle.Render(" Delete"),
		keyStyle.Render("?") + descStyle.Render(" Help"),
		keyStyle.Render("q") + descStyle.Render(" Quit"),
	}

	barStyle := lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	return barStyle.Render(strings.Join(hints, sepStyle.Render(" │ ")))
}

// renderStatusBar renders the bottom status bar.
func (v *MainView) renderStatusBar() string {
	var items []string

	countStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("255")).
		Padding(0, 1)
	items = append(items, countStyle.Render(fmt.Sprintf("%d rows", len(v.tree.Rows()))))

	if p := v.tree.Payload(); p != nil {
		payloadStyle := lipgloss.NewStyle().
			Background(lipgloss.Color("214")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)
		items = append(items, payloadStyle.Render(fmt.Sprintf("MOVING %d", len(p.Nodes()))))
	}

	if v.notification != "" {
		notifyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Padding(0, 1)
		items = append(items, notifyStyle.Render(v.notification))
	}

	barStyle := lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("236"))
	return barStyle.Render(strings.Join(items, ""))
}

func (v *MainView) renderHelp() string {
	helpText := `
  Host Tree Keys

  Navigation
    j/k, ↓/↑     Move cursor
    g/G          First / last row
    l, Enter     Expand folder
    h            Collapse folder or go to parent

  Editing
    Space        Toggle selection
    x            Pick up selection for moving
    p            Drop into folder under cursor
    P            Drop before cursor row
    c            Copy selection
    d then y     Delete selection
    r            Refresh folder

  View
    E / C        Expand / collapse all below selection
    Y            Copy host address
    o / s        Open / SFTP selection
    Esc          Clear selection and pick up

  ?              Toggle help
  q, Ctrl+C      Quit
`
	style := lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Padding(1, 2)
	return style.Render(helpText)
}

// Title returns the view title.
func (v *MainView) Title() string {
	return "hostdeck"
}

// Focused returns true (main view is always focused).
func (v *MainView) Focused() bool {
	return true
}

// Focus is a no-op for main view.
func (v *MainView) Focus() {}

// Blur is a no-op for main view.
func (v *MainView) Blur() {}

// SetSize sets the view dimensions.
func (v *MainView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updatePaneSizes()
}

// Width returns the view width.
func (v *MainView) Width() int {
	return v.width
}

// Height returns the view height.
func (v *MainView) Height() int {
	return v.height
}

// HostTree returns the host tree component.
func (v *MainView) HostTree() *components.HostTree {
	return v.tree
}

// ShowingHelp returns true if help is displayed.
func (v *MainView) ShowingHelp() bool {
	return v.showHelp
}

// Notification returns the current notification text.
func (v *MainView) Notification() string {
	return v.notification
}

// Close releases the tree subscription.
func (v *MainView) Close() {
	v.tree.Close()
}
