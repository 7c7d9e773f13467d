// Package tui drives the editor from a bubbletea program.
//
// The model is single-threaded: editor state changes only inside Update.
// Effects returned by the editor run as tea.Cmds and come back as messages.
package tui

import (
	"context"
	"delivery-map-client/internal/domain"
	"delivery-map-client/internal/editor"
	"delivery-map-client/internal/render"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Rows above the canvas: title and caption.
const canvasTop = 2

type Options struct {
	Mapper     render.Mapper
	EdgeOffset float64
}

// Model is the bubbletea model of the interactive client.
type Model struct {
	ctx  context.Context
	ed   *editor.Editor
	opts Options

	// Latest editor view, kept current by a subscription.
	view editor.View

	cursor  domain.Node
	edgeIdx int

	// Form state for the open dialog; formKey identifies which dialog it was built for.
	inputs  []textinput.Model
	focus   int
	blocked bool
	formKey string

	scene    render.Scene
	width    int
	height   int
	quitting bool
}

func NewModel(ctx context.Context, ed *editor.Editor, opts Options) *Model {
	if opts.Mapper.Validate() != nil {
		opts.Mapper = render.DefaultTerminalMapper
	}

	m := &Model{ctx: ctx, ed: ed, opts: opts}
	m.view = ed.View()
	m.cursor = m.view.Start
	ed.Subscribe(func(v editor.View) { m.view = v })
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.run(m.ed.Init())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case editor.Event:
		return m, m.dispatch(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.view.Dialog != nil {
			return m, m.handleDialogKey(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

// dispatch forwards ev to the editor and turns its effects into commands.
func (m *Model) dispatch(ev editor.Event) tea.Cmd {
	cmd := m.run(m.ed.Dispatch(ev))
	m.syncForm()
	return cmd
}

func (m *Model) run(effects []editor.Effect) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		cmds = append(cmds, func() tea.Msg { return eff(m.ctx) })
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "tab":
		m.edgeIdx++
	case "enter", " ":
		return m.activate()
	case "d":
		return m.dispatch(editor.ModeSelected{Mode: editor.ModeDelivery})
	case "e":
		return m.dispatch(editor.ModeSelected{Mode: editor.ModeEdge})
	case "p":
		return m.dispatch(editor.PlanRequested{})
	case "s":
		return m.dispatch(editor.ScheduleRequested{})
	case "c":
		return m.dispatch(editor.ClearRequested{})
	case "r":
		return m.dispatch(editor.ReloadRequested{})
	case "b":
		return m.dispatch(editor.BaseTimeRequested{})
	case "?":
		return m.dispatch(editor.AboutRequested{})
	case "x", "esc":
		return m.dispatch(editor.NoticeDismissed{})
	}
	return nil
}

// activate clicks whatever the cursor designates in the current mode.
func (m *Model) activate() tea.Cmd {
	if m.view.Mode == editor.ModeEdge {
		e, ok := m.selectedEdge()
		if !ok {
			return nil
		}
		return m.dispatch(editor.EdgeClicked{Edge: e.Key()})
	}
	return m.dispatch(editor.NodeClicked{Node: m.cursor})
}

// moveCursor steps to the neighbouring node, skipping coordinates the graph lacks.
func (m *Model) moveCursor(dx, dy int) {
	nodes := m.view.Snapshot.Nodes
	for step := 1; step <= 64; step++ {
		next := domain.Node{X: m.cursor.X + dx*step, Y: m.cursor.Y + dy*step}
		if slices.Contains(nodes, next) {
			m.cursor = next
			m.edgeIdx = 0
			return
		}
	}
}

// selectedEdge is the outgoing edge of the cursor node picked with tab.
func (m *Model) selectedEdge() (domain.Edge, bool) {
	out := m.view.Snapshot.Outgoing(m.cursor)
	if len(out) == 0 {
		return domain.Edge{}, false
	}
	return out[m.edgeIdx%len(out)], true
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	p := render.Point{X: float64(msg.X), Y: float64(msg.Y - canvasTop)}
	hit := m.scene.HitTest(p, 1)

	switch hit.Kind {
	case render.TargetNode:
		m.cursor = hit.Node
		m.edgeIdx = 0
		return m.dispatch(editor.NodeClicked{Node: hit.Node})
	case render.TargetEdge:
		m.cursor = hit.Edge.From
		if i := slices.Index(m.view.Snapshot.Outgoing(hit.Edge.From), hit.Edge); i >= 0 {
			m.edgeIdx = i
		}
		return m.dispatch(editor.EdgeClicked{Edge: hit.Edge.Key()})
	}
	return nil
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	switch m.view.Dialog.(type) {
	case editor.ScheduleDialog, editor.AboutDialog:
		switch msg.String() {
		case "esc", "enter", "q", " ":
			return m.dispatch(editor.DialogClosed{})
		}
		return nil

	case editor.DeliveryDialog:
		switch msg.String() {
		case "esc":
			return m.dispatch(editor.DialogClosed{})
		case "ctrl+d":
			return m.dispatch(editor.DeliveryDeleted{})
		case "enter":
			return m.dispatch(editor.DeliverySubmitted{Earliest: m.value(0), Latest: m.value(1)})
		}

	case editor.EdgeDialog:
		switch msg.String() {
		case "esc":
			return m.dispatch(editor.DialogClosed{})
		case "ctrl+b":
			m.blocked = !m.blocked
			return nil
		case "enter":
			return m.dispatch(editor.EdgeSubmitted{Weight: m.value(0), Blocked: m.blocked})
		}

	case editor.BaseTimeDialog:
		switch msg.String() {
		case "esc":
			return m.dispatch(editor.DialogClosed{})
		case "enter":
			return m.dispatch(editor.BaseTimeSubmitted{Clock: m.value(0)})
		}
	}

	return m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.KeyMsg) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}

	switch msg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % len(m.inputs))
		return nil
	case "shift+tab", "up":
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) value(i int) string {
	if i >= len(m.inputs) {
		return ""
	}
	return m.inputs[i].Value()
}

func (m *Model) setFocus(i int) {
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.focus = i
}

// syncForm rebuilds the inputs when a different dialog opens; an error shown
// on the same dialog keeps what the user typed.
func (m *Model) syncForm() {
	key := ""
	var values []string
	var labels []string

	switch d := m.view.Dialog.(type) {
	case editor.DeliveryDialog:
		key = "delivery:" + d.Node.Key()
		values, labels = []string{d.Earliest, d.Latest}, []string{"earliest ", "latest   "}
	case editor.EdgeDialog:
		key = "edge:" + d.Edge.From.Key() + ">" + d.Edge.To.Key()
		values, labels = []string{d.Weight}, []string{"minutes "}
		if key != m.formKey {
			m.blocked = d.Blocked
		}
	case editor.BaseTimeDialog:
		key = "base-time"
		values, labels = []string{d.Clock}, []string{"depart "}
	}

	if key == m.formKey {
		return
	}
	m.formKey = key

	m.inputs = m.inputs[:0]
	for i, v := range values {
		ti := textinput.New()
		ti.Prompt = labels[i]
		ti.CharLimit = 16
		ti.Width = 10
		ti.SetValue(v)
		ti.CursorEnd()
		m.inputs = append(m.inputs, ti)
	}
	if len(m.inputs) > 0 {
		m.setFocus(0)
	}
}
