package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/crewview/internal/agent"
	"github.com/Iron-Ham/crewview/internal/monitor"
	"github.com/Iron-Ham/crewview/internal/tui/styles"
)

// boxWidth is the width of an agent box inside its border.
const boxWidth = 36

// connectorGap is the horizontal link between boxes on the same row.
const connectorGap = " ──▶ "

// renderDiagram draws the agents as boxes laid out by their grid position,
// with edges colored by whether their source agent has completed. When the
// grid does not fit in width, a compact list is drawn instead.
func renderDiagram(st monitor.State, s *styles.Styles, width int) string {
	if len(st.Agents) == 0 {
		return ""
	}
	rows := gridRows(st.Agents)

	boxes := make(map[string]string, len(st.Agents))
	for _, a := range st.Agents {
		boxes[a.ID] = renderBox(a, s)
	}
	outer := lipgloss.Width(boxes[st.Agents[0].ID])

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if width > 0 && cols*outer+(cols-1)*lipgloss.Width(connectorGap) > width {
		return renderCompact(st, s)
	}

	edges := make(map[[2]string]bool, len(st.Connections))
	for _, c := range st.Connections {
		edges[[2]string{c.From, c.To}] = c.Completed
	}
	// center returns the x offset of a column's box center.
	center := func(col int) int {
		return col*(outer+lipgloss.Width(connectorGap)) + outer/2
	}

	var out []string
	for r, row := range rows {
		parts := make([]string, 0, 2*len(row))
		for i, a := range row {
			if i > 0 {
				completed, linked := edges[[2]string{row[i-1].ID, a.ID}]
				gap := strings.Repeat(" ", lipgloss.Width(connectorGap))
				if linked {
					gap = s.Connector(completed).Render(connectorGap)
				}
				parts = append(parts, gap)
			}
			parts = append(parts, boxes[a.ID])
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Center, parts...))

		if r+1 < len(rows) {
			if links := renderLinks(row, rows[r+1], edges, center, s); links != "" {
				out = append(out, links)
			}
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// gridRows groups agents by row, each row ordered by column.
func gridRows(agents []agent.Agent) [][]agent.Agent {
	byRow := make(map[int][]agent.Agent)
	maxRow := 0
	for _, a := range agents {
		byRow[a.Position.Row] = append(byRow[a.Position.Row], a)
		maxRow = max(maxRow, a.Position.Row)
	}
	var rows [][]agent.Agent
	for r := 0; r <= maxRow; r++ {
		row := byRow[r]
		if len(row) == 0 {
			continue
		}
		sort.Slice(row, func(i, j int) bool { return row[i].Position.Col < row[j].Position.Col })
		rows = append(rows, row)
	}
	return rows
}

func renderBox(a agent.Agent, s *styles.Styles) string {
	icon := lipgloss.NewStyle().Foreground(s.StatusColor(a.Status)).Render(styles.StatusIcon(a.Status))
	inner := boxWidth - 2 // horizontal padding
	name := s.AgentName.Render(ansi.Truncate(a.Name, inner-2, "…"))
	role := s.AgentRole.Render(ansi.Truncate(a.Role, inner, "…"))
	return s.Box(a.Status).Width(boxWidth).Render(icon + " " + name + "\n" + role)
}

// renderLinks draws the two connector lines between a row and the next:
// straight down for same-column edges, and a return arrow for edges that
// come from a column to the right of their target.
func renderLinks(upper, lower []agent.Agent, edges map[[2]string]bool, center func(int) int, s *styles.Styles) string {
	type link struct {
		from, to  int
		completed bool
	}
	var links []link
	for _, u := range upper {
		for _, l := range lower {
			if completed, ok := edges[[2]string{u.ID, l.ID}]; ok {
				links = append(links, link{from: u.Position.Col, to: l.Position.Col, completed: completed})
			}
		}
	}
	if len(links) == 0 {
		return ""
	}
	sort.Slice(links, func(i, j int) bool { return links[i].from < links[j].from })

	var stem, head strings.Builder
	stemX, headX := 0, 0
	pad := func(b *strings.Builder, x *int, to int) {
		if to > *x {
			b.WriteString(strings.Repeat(" ", to-*x))
			*x = to
		}
	}
	for _, l := range links {
		style := s.Connector(l.completed)
		from := center(l.from)
		pad(&stem, &stemX, from)
		stem.WriteString(style.Render("│"))
		stemX++

		if l.from == l.to {
			pad(&head, &headX, from)
			head.WriteString(style.Render("▼"))
			headX++
			continue
		}
		to := center(l.to)
		start := max(to+2, headX)
		pad(&head, &headX, start)
		if from > start {
			head.WriteString(style.Render("◀" + strings.Repeat("─", from-start-1) + "┘"))
			headX = from + 1
		}
	}
	return stem.String() + "\n" + head.String()
}

func renderCompact(st monitor.State, s *styles.Styles) string {
	var b strings.Builder
	for i, a := range st.Agents {
		if i > 0 {
			b.WriteString("\n")
		}
		icon := lipgloss.NewStyle().Foreground(s.StatusColor(a.Status)).Render(styles.StatusIcon(a.Status))
		b.WriteString(icon + " " + s.AgentName.Render(a.Name) + s.Muted.Render(" ("+string(a.Status)+")"))
	}
	return b.String()
}
