package components

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/tui"
)

// HostTree is a navigable view of the host tree. Edits go through the
// dispatcher; the rows are rebuilt whenever the tree reports a change.
type HostTree struct {
	dispatcher *hosttree.Dispatcher
	tree       *hosttree.Tree
	expander   hosttree.Expander
	// Rows marked with space. The dispatcher keeps its own selection that
	// follows whatever was last created or moved.
	selection  *hosttree.Selection
	ctx        context.Context

	rows   []hosttree.Row
	cursor int
	offset int
	dirty  bool

	payload       *hosttree.DragPayload
	pendingRemove []hosttree.NodeID
	status        string
	statusErr     bool

	focused     bool
	width       int
	height      int
	unsubscribe func()
}

var _ tui.Component = (*HostTree)(nil)

// NewHostTree creates a host tree view bound to d.
func NewHostTree(ctx context.Context, d *hosttree.Dispatcher) *HostTree {
	h := &HostTree{
		dispatcher: d,
		tree:       d.Tree(),
		expander:   d.Expander(),
		selection:  &hosttree.Selection{},
		ctx:        ctx,
		focused:    true,
	}
	h.unsubscribe = h.tree.Subscribe(func(hosttree.Event) { h.dirty = true })
	h.rebuild()
	return h
}

// Close stops listening to tree changes.
func (h *HostTree) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

// Init initializes the component.
func (h *HostTree) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (h *HostTree) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
	case tui.FocusMsg:
		h.focused = true
	case tui.BlurMsg:
		h.focused = false
	case tui.RefreshMsg:
		h.dirty = true
	case tea.KeyMsg:
		if !h.focused {
			return h, nil
		}
		cmd := h.handleKeyMsg(msg)
		if h.dirty {
			h.rebuild()
		}
		return h, cmd
	}
	if h.dirty {
		h.rebuild()
	}
	return h, nil
}

func (h *HostTree) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if h.pendingRemove != nil {
		h.confirmRemove(msg)
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		h.payload = nil
		h.selection.Clear()
		h.setStatus("")
		return nil
	case tea.KeyEnter, tea.KeyRight:
		h.expandCurrent()
		return nil
	case tea.KeyLeft:
		h.collapseCurrent()
		return nil
	case tea.KeyDown:
		h.moveCursor(1)
		return nil
	case tea.KeyUp:
		h.moveCursor(-1)
		return nil
	case tea.KeySpace:
		h.toggleSelection()
		return nil
	case tea.KeyRunes:
	default:
		return nil
	}

	switch string(msg.Runes) {
	case "j":
		h.moveCursor(1)
	case "k":
		h.moveCursor(-1)
	case "g":
		h.moveCursor(-len(h.rows))
	case "G":
		h.moveCursor(len(h.rows))
	case "l":
		h.expandCurrent()
	case "h":
		h.collapseCurrent()
	case "x":
		h.pickUp()
	case "p":
		h.drop(false)
	case "P":
		h.drop(true)
	case "c":
		h.apply(hosttree.Copy{Nodes: h.actionNodes()})
	case "d":
		h.askRemove()
	case "r":
		n := h.Current()
		if !h.tree.IsFolder(n) {
			n = h.tree.Root()
		}
		h.apply(hosttree.Refresh{Node: n})
	case "E":
		h.apply(hosttree.ExpandAll{Nodes: h.actionNodes()})
	case "C":
		h.apply(hosttree.CollapseAll{Nodes: h.actionNodes()})
	case "o":
		return h.open(false)
	case "s":
		return h.open(true)
	case "Y":
		return h.yank()
	}
	return nil
}

// Current returns the node under the cursor, or NoNode when the tree is empty.
func (h *HostTree) Current() hosttree.NodeID {
	if h.cursor < 0 || h.cursor >= len(h.rows) {
		return hosttree.NoNode
	}
	return h.rows[h.cursor].Node
}

func (h *HostTree) actionNodes() []hosttree.NodeID {
	return ActionNodes(h.selection.Nodes(), h.Current())
}

func (h *HostTree) moveCursor(delta int) {
	h.cursor = MoveCursor(h.cursor, delta, len(h.rows))
	h.offset = AdjustOffset(h.cursor, h.offset, h.visibleHeight())
}

func (h *HostTree) expandCurrent() {
	n := h.Current()
	if h.tree.IsFolder(n) {
		h.expander.Expand(h.tree.PathToRoot(n))
		h.dirty = true
	}
}

func (h *HostTree) collapseCurrent() {
	n := h.Current()
	if n == hosttree.NoNode {
		return
	}
	path := h.tree.PathToRoot(n)
	if h.tree.IsFolder(n) && h.expander.IsExpanded(path) {
		h.expander.Collapse(path)
		h.dirty = true
		return
	}
	if p := ParentRow(h.rows, h.cursor); p >= 0 {
		h.cursor = p
		h.offset = AdjustOffset(h.cursor, h.offset, h.visibleHeight())
	}
}

func (h *HostTree) toggleSelection() {
	if n := h.Current(); n != hosttree.NoNode {
		h.selection.Toggle(n)
	}
}

func (h *HostTree) pickUp() {
	h.payload = hosttree.NewDragPayload(h.tree, h.actionNodes())
	if h.payload == nil {
		h.setError("nothing to move")
		return
	}
	h.setStatus(fmt.Sprintf("%d item(s) picked up, p to drop into, P to drop before", len(h.payload.Nodes())))
}

func (h *HostTree) drop(before bool) {
	if h.payload == nil {
		h.setError("nothing picked up")
		return
	}
	target := DropTargetFor(h.tree, h.Current(), before)
	res, ok := h.apply(hosttree.Move{Payload: h.payload, Target: target})
	if !ok {
		return
	}
	if !res.Applied {
		h.setError("cannot drop here")
		return
	}
	h.payload = nil
}

func (h *HostTree) askRemove() {
	nodes := h.actionNodes()
	if len(nodes) == 0 {
		return
	}
	h.pendingRemove = nodes
	if len(nodes) == 1 {
		h.setStatus(fmt.Sprintf("Delete %q? (y/n)", h.tree.Host(nodes[0]).Name))
	} else {
		h.setStatus(fmt.Sprintf("Delete %d selected item(s)? (y/n)", len(nodes)))
	}
}

func (h *HostTree) confirmRemove(msg tea.KeyMsg) {
	nodes := h.pendingRemove
	h.pendingRemove = nil
	if msg.Type != tea.KeyRunes || string(msg.Runes) != "y" {
		h.setStatus("")
		return
	}
	if res, ok := h.apply(hosttree.Remove{Nodes: nodes}); ok && res.Applied {
		h.setStatus(fmt.Sprintf("deleted %d item(s)", len(res.Nodes)))
	}
}

func (h *HostTree) open(sftp bool) tea.Cmd {
	paths := hosttree.PathsOf(h.tree, h.actionNodes()...)
	var hosts []string
	if sftp {
		for _, host := range hosttree.SFTPTargets(h.tree, paths, false) {
			hosts = append(hosts, host.Target())
		}
	} else {
		for _, host := range hosttree.OpenTargets(h.tree, paths) {
			hosts = append(hosts, host.Target())
		}
	}
	if len(hosts) == 0 {
		h.setError("no hosts to open")
		return nil
	}
	return func() tea.Msg { return OpenHostsMsg{Targets: hosts, SFTP: sftp} }
}

func (h *HostTree) yank() tea.Cmd {
	target := h.tree.Host(h.Current()).Target()
	if target == "" {
		return nil
	}
	return func() tea.Msg { return CopyMsg{Content: target} }
}

// apply runs cmd and reports failures in the status line. ok is false when
// the dispatcher returned an error.
func (h *HostTree) apply(cmd hosttree.Command) (hosttree.Result, bool) {
	res, err := h.dispatcher.Apply(h.ctx, cmd)
	if err != nil {
		h.setError(err.Error())
		h.dirty = true
		return res, false
	}
	if !res.Applied {
		return res, true
	}
	h.setStatus("")
	h.dirty = true
	switch cmd.(type) {
	case hosttree.Move, hosttree.Copy:
		h.selection.Clear()
		if len(res.Nodes) > 0 {
			h.focusNode(res.Nodes[len(res.Nodes)-1])
		}
	case hosttree.Remove:
		h.selection.Clear()
	}
	return res, true
}

// focusNode moves the cursor onto n once rows are rebuilt.
func (h *HostTree) focusNode(n hosttree.NodeID) {
	h.rebuild()
	if i := RowIndex(h.rows, n); i >= 0 {
		h.cursor = i
		h.offset = AdjustOffset(h.cursor, h.offset, h.visibleHeight())
	}
}

// rebuild recomputes the visible rows and keeps the cursor on the same node
// when it is still visible.
func (h *HostTree) rebuild() {
	current := h.Current()
	h.rows = hosttree.VisibleRows(h.tree, h.expander)
	h.dirty = false

	if i := RowIndex(h.rows, current); i >= 0 {
		h.cursor = i
	} else {
		h.cursor = MoveCursor(h.cursor, 0, len(h.rows))
	}
	h.offset = AdjustOffset(h.cursor, h.offset, h.visibleHeight())
}

func (h *HostTree) setStatus(s string) {
	h.status = s
	h.statusErr = false
}

func (h *HostTree) setError(s string) {
	h.status = s
	h.statusErr = true
}

func (h *HostTree) visibleHeight() int {
	// Border (2), title (1) and status line (1).
	return h.height - 4
}

// View renders the component.
func (h *HostTree) View() string {
	if h.width == 0 || h.height == 0 {
		return ""
	}

	innerWidth := max(h.width-2, 1)
	contentHeight := max(h.visibleHeight(), 1)

	var lines []string
	for i := h.offset; i < len(h.rows) && len(lines) < contentHeight; i++ {
		lines = append(lines, h.renderRow(h.rows[i], i == h.cursor, innerWidth))
	}
	if len(h.rows) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(innerWidth).
			Align(lipgloss.Center)
		lines = append(lines, empty.Render("No hosts"))
	}
	emptyLine := strings.Repeat(" ", innerWidth)
	for len(lines) < contentHeight {
		lines = append(lines, emptyLine)
	}

	statusStyle := lipgloss.NewStyle().Width(innerWidth).Foreground(lipgloss.Color("243"))
	if h.statusErr {
		statusStyle = statusStyle.Foreground(lipgloss.Color("196"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		tui.RenderTitle(h.Title(), innerWidth, h.focused),
		strings.Join(lines, "\n"),
		statusStyle.Render(tui.Truncate(h.status, innerWidth)),
	)
	return tui.RenderBorder(content, innerWidth, h.height-2, h.focused)
}

func (h *HostTree) renderRow(row hosttree.Row, isCursor bool, width int) string {
	t := h.tree
	host := t.Host(row.Node)

	marker := "  "
	switch {
	case h.payloadContains(row.Node):
		marker = "✂ "
	case h.selection.Contains(row.Node):
		marker = "● "
	}

	icon := "  "
	if host.IsFolder() {
		icon = "▸ "
		if h.expander.IsExpanded(t.PathToRoot(row.Node)) {
			icon = "▾ "
		}
	}

	label := strings.Repeat("  ", row.Depth) + marker + icon + host.Name
	if target := host.Target(); target != "" {
		label += "  " + target
	}
	label = tui.PadRight(tui.Truncate(label, width), width)

	style := lipgloss.NewStyle()
	if host.IsFolder() {
		style = style.Bold(true).Foreground(lipgloss.Color("75"))
	}
	if isCursor {
		if h.focused {
			style = style.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
		} else {
			style = style.Background(lipgloss.Color("238"))
		}
	}
	return style.Render(label)
}

func (h *HostTree) payloadContains(n hosttree.NodeID) bool {
	for _, p := range h.payload.Nodes() {
		if p == n {
			return true
		}
	}
	return false
}

// Rows returns the visible rows.
func (h *HostTree) Rows() []hosttree.Row { return h.rows }

// Cursor returns the cursor row.
func (h *HostTree) Cursor() int { return h.cursor }

// Status returns the status line text.
func (h *HostTree) Status() string { return h.status }

// Payload returns the picked up nodes, if any.
func (h *HostTree) Payload() *hosttree.DragPayload { return h.payload }

// Title returns the component title.
func (h *HostTree) Title() string { return "Hosts" }

// Focused returns true if focused.
func (h *HostTree) Focused() bool { return h.focused }

// Focus sets the component as focused.
func (h *HostTree) Focus() { h.focused = true }

// Blur removes focus.
func (h *HostTree) Blur() { h.focused = false }

// SetSize sets dimensions.
func (h *HostTree) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.offset = AdjustOffset(h.cursor, h.offset, h.visibleHeight())
}

// Width returns the width.
func (h *HostTree) Width() int { return h.width }

// Height returns the height.
func (h *HostTree) Height() int { return h.height }
