package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fleetdeck/fleetdeck/internal/metrics"
)

// gaugeCells is the character width of utilization bars.
const gaugeCells = 20

// render renders the complete panel view.
func (m Model) render() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.snap.Stale {
		b.WriteString(StaleStyle.Render("⚠ backend unreachable; showing last known state"))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderVMs())
	b.WriteString("\n")
	b.WriteString(m.renderNodes())

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(StatusErrStyle.Render("✗ " + m.status))
		} else {
			b.WriteString(StatusOKStyle.Render("✓ " + m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	content := b.String()

	if m.confirm != nil {
		return m.renderModal(m.confirm.message)
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return content
}

// renderHeader renders the title bar with cluster and fleet summary.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("fleetdeck")

	cluster := "no cluster"
	if m.snap.Cluster != "" {
		cluster = m.cfg.Label(m.snap.Cluster)
	}

	stats := metrics.Stats(m.snap.VMs)

	var updateText string
	switch {
	case m.lastUpdate.IsZero():
		updateText = "loading"
	default:
		updateText = fmt.Sprintf("updated %s", m.lastUpdate.Format("15:04:05"))
	}

	info := LabelStyle.Render(fmt.Sprintf(" | %s | %d VMs | %d running | %d stopped | %s",
		cluster, stats.Total, stats.Running, stats.Stopped, updateText))

	return HeaderStyle.Render(title + info)
}

// renderVMs renders the VM table with the cursor row highlighted.
func (m Model) renderVMs() string {
	if len(m.snap.VMs) == 0 {
		return LabelStyle.Render("No VMs in this cluster")
	}

	var rows []string
	rows = append(rows, MutedStyle.Render(fmt.Sprintf(
		"   %-6s %-20s %-10s %-12s %-*s %-*s",
		"ID", "NAME", "STATUS", "NODE", gaugeCells, "CPU", gaugeCells, "RAM")))

	for i, vm := range m.snap.VMs {
		ram := metrics.RAMUsage(vm.Mem, vm.MaxMem)

		glyph := GlyphStopped
		statusStyle := StoppedStyle
		if m.ctrl.InFlight(vm.VMID) {
			glyph = m.spin.View()
			statusStyle = PendingStyle
		} else if vm.Running() {
			glyph = GlyphRunning
			statusStyle = RunningStyle
		}

		row := fmt.Sprintf(" %s %-6d %-20s %-10s %-12s %s %s",
			statusStyle.Render(glyph),
			vm.VMID,
			truncate(vm.Name, 20),
			vm.Status,
			vm.Node,
			gauge(vm.CPU, gaugeCells),
			gauge(float64(ram.Percent), gaugeCells))

		if i == m.selected {
			row = SelectedRowStyle.Render("▸") + row[1:]
		}
		rows = append(rows, row)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderNodes renders cluster nodes ranked by stress score, least
// stressed first.
func (m Model) renderNodes() string {
	if len(m.snap.Nodes) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, MutedStyle.Render("NODES"))

	for _, n := range metrics.RankNodes(m.snap.Nodes) {
		rows = append(rows, fmt.Sprintf("   %-12s %-10s cpu %s  mem %s  %d VMs  score %.1f",
			n.Name,
			n.Status,
			gauge(n.CPU, gaugeCells/2),
			gauge(n.MemUsage, gaugeCells/2),
			n.VMCount,
			metrics.StressScore(n)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard hints.
func (m Model) renderFooter() string {
	hints := []string{
		"↑↓ select",
		"s start",
		"x shutdown",
		"d delete",
		"r refresh",
	}
	if len(m.clusters) > 1 {
		hints = append(hints, "tab cluster")
	}
	hints = append(hints, "? help", "q quit")

	return FooterStyle.Render(strings.Join(hints, " | "))
}

// renderModal renders the centered confirmation modal.
func (m Model) renderModal(message string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		message,
		"",
		LabelStyle.Render("y confirm | n cancel"))

	box := ModalStyle.Render(body)
	return placeCentered(m.width, m.height, box)
}

// gauge renders a fixed-width utilization bar colored by level. The
// width mapping keeps a sliver visible even at 0%.
func gauge(percent float64, cells int) string {
	filled := int(metrics.GaugeWidth(percent) / 100 * float64(cells))
	if filled > cells {
		filled = cells
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	return levelStyle(metrics.Classify(percent)).Render(bar)
}

func placeCentered(width, height int, box string) string {
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
