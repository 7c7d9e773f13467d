package tui

import (
	"delivery-map-client/internal/editor"
	"delivery-map-client/internal/render"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// buildScene refreshes m.scene from the current view and cursor.
func (m *Model) buildScene() render.Scene {
	in := render.SceneInput{
		Nodes:      m.view.Snapshot.Nodes,
		Edges:      m.view.Snapshot.Edges,
		Deliveries: m.view.Snapshot.Deliveries,
		Start:      m.view.Start,
		Plan:       m.view.Plan,
		FullPath:   m.view.FullPath,
		Order:      m.view.Order,
		Mode:       m.view.Mode.String(),
		BaseTime:   m.view.Snapshot.BaseTime,
		Mapper:     m.opts.Mapper,
		EdgeOffset: m.opts.EdgeOffset,
	}

	cursor := m.cursor
	in.Cursor = &cursor
	if m.view.Mode == editor.ModeEdge {
		if e, ok := m.selectedEdge(); ok {
			k := e.Key()
			in.SelectedEdge = &k
		}
	}

	m.scene = render.BuildScene(in)
	return m.scene
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")

	if !m.view.Loaded {
		b.WriteString(dimStyle.Render("loading graph..."))
		b.WriteString("\n")
		return b.String()
	}

	scene := m.buildScene()
	canvas := render.CanvasFor(scene)
	canvas.Draw(scene)
	b.WriteString(canvas.Render())
	b.WriteString(dimStyle.Render(scene.Caption))
	b.WriteString("\n")

	if panel := m.dialogView(); panel != "" {
		b.WriteString(panelStyle.Render(panel))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *Model) header() string {
	mode := deliveryModeStyle.Render(" DELIVERY ")
	if m.view.Mode == editor.ModeEdge {
		mode = edgeModeStyle.Render(" EDGE ")
	}
	return titleStyle.Render("Delivery Map") + " " + mode + " " + dimStyle.Render("cursor "+m.cursor.String())
}

func (m *Model) status() string {
	var busy []string
	if m.view.Loading {
		busy = append(busy, "loading")
	}
	if m.view.Computing {
		busy = append(busy, "computing")
	}
	if m.view.Mutating {
		busy = append(busy, "saving")
	}

	switch {
	case m.view.Notice != "":
		return noticeStyle.Render(m.view.Notice) + dimStyle.Render("  (x to dismiss)")
	case len(busy) > 0:
		return dimStyle.Render(strings.Join(busy, ", ") + "...")
	}
	return ""
}

func (m *Model) help() string {
	if m.view.Dialog != nil {
		switch m.view.Dialog.(type) {
		case editor.DeliveryDialog:
			return "tab next field  enter save  ctrl+d delete  esc cancel"
		case editor.EdgeDialog:
			return "enter save  ctrl+b toggle blocked  esc cancel"
		case editor.BaseTimeDialog:
			return "enter save  esc cancel"
		}
		return "esc close"
	}
	if m.view.Mode == editor.ModeEdge {
		return "arrows move  tab next edge  enter edit  d delivery mode  p plan  s schedule  c clear  b depart  r reload  ? help  q quit"
	}
	return "arrows move  enter edit  e edge mode  p plan  s schedule  c clear  b depart  r reload  ? help  q quit"
}

func (m *Model) dialogView() string {
	var b strings.Builder

	switch d := m.view.Dialog.(type) {
	case editor.DeliveryDialog:
		title := "Add delivery at " + d.Node.String()
		if d.Existing {
			title = "Edit delivery at " + d.Node.String()
		}
		b.WriteString(dialogTitleStyle.Render(title) + "\n")
		m.writeInputs(&b)
		writeErr(&b, d.Err)

	case editor.EdgeDialog:
		b.WriteString(dialogTitleStyle.Render("Edge "+d.Edge.Key().String()) + "\n")
		m.writeInputs(&b)
		box := "[ ]"
		if m.blocked {
			box = "[x]"
		}
		b.WriteString(box + " blocked\n")
		writeErr(&b, d.Err)

	case editor.BaseTimeDialog:
		b.WriteString(dialogTitleStyle.Render("Departure time") + "\n")
		m.writeInputs(&b)
		writeErr(&b, d.Err)

	case editor.ScheduleDialog:
		b.WriteString(dialogTitleStyle.Render("Schedule") + "\n")
		b.WriteString(render.ScheduleTable(d.Schedule))

	case editor.AboutDialog:
		b.WriteString(dialogTitleStyle.Render("About") + "\n")
		b.WriteString(editor.AboutText)

	default:
		return ""
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) writeInputs(b *strings.Builder) {
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
}

func writeErr(b *strings.Builder, msg string) {
	if msg == "" {
		return
	}
	fmt.Fprintln(b, errorStyle.Render(msg))
}

var (
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	deliveryModeStyle = lipgloss.NewStyle().Background(lipgloss.Color("214")).Foreground(lipgloss.Color("0"))
	edgeModeStyle     = lipgloss.NewStyle().Background(lipgloss.Color("39")).Foreground(lipgloss.Color("0"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dialogTitleStyle  = lipgloss.NewStyle().Bold(true)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
