package view

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/errors"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
	"github.com/fleetdeck/fleetdeck/internal/guard"
	"github.com/fleetdeck/fleetdeck/internal/metrics"
)

const termGaugeWidth = 20

var (
	termHeaderStyle = lipgloss.NewStyle().Bold(true)
	termStaleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	termDimStyle    = lipgloss.NewStyle().Faint(true)

	termLevelStyles = map[metrics.Level]lipgloss.Style{
		metrics.LevelLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		metrics.LevelModerate: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		metrics.LevelHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

// Term renders the fleet to a terminal and collects input with huh forms.
type Term struct {
	out io.Writer
}

// NewTerm creates a terminal view writing to stdout.
func NewTerm() *Term {
	return &Term{out: os.Stdout}
}

// NewTermWriter creates a terminal view writing to w.
func NewTermWriter(w io.Writer) *Term {
	return &Term{out: w}
}

// Render prints the snapshot as a table with CPU/RAM gauges.
func (t *Term) Render(snap fleet.Snapshot) {
	stats := metrics.Stats(snap.VMs)

	header := fmt.Sprintf("Cluster %s | %d VMs (%d running, %d stopped)",
		snap.Cluster, stats.Total, stats.Running, stats.Stopped)
	fmt.Fprintln(t.out, termHeaderStyle.Render(header))
	if snap.Stale {
		fmt.Fprintln(t.out, termStaleStyle.Render("⚠ showing stale data: last refresh failed"))
	}

	if len(snap.VMs) == 0 {
		fmt.Fprintln(t.out, termDimStyle.Render("  no VMs in this cluster"))
		return
	}

	fmt.Fprintf(t.out, "  %-6s %-20s %-9s %-12s %-26s %s\n",
		"VMID", "NAME", "STATUS", "NODE", "CPU", "RAM")
	for _, vm := range snap.VMs {
		ram := metrics.RAMUsage(vm.Mem, vm.MaxMem)
		fmt.Fprintf(t.out, "  %-6d %-20s %-9s %-12s %-26s %s %d/%dMB\n",
			vm.VMID,
			vm.Name,
			vm.Status,
			vm.Node,
			Gauge(vm.CPU, termGaugeWidth),
			Gauge(float64(ram.Percent), termGaugeWidth),
			ram.UsedMB, ram.MaxMB)
	}
}

// RenderNodes prints the node list ranked by stress score.
func (t *Term) RenderNodes(nodes []api.Node) {
	ranked := metrics.RankNodes(nodes)
	fmt.Fprintf(t.out, "  %-12s %-9s %-26s %-8s %-6s %s\n",
		"NODE", "STATUS", "CPU", "MEM", "VMs", "SCORE")
	for _, n := range ranked {
		fmt.Fprintf(t.out, "  %-12s %-9s %-26s %5.1f%%  %-6d %.1f\n",
			n.Name, n.Status, Gauge(n.CPU, termGaugeWidth), n.MemUsage, n.VMCount,
			metrics.StressScore(n))
	}
}

// Gauge renders a fixed-width utilization bar. The width mapping keeps a
// sliver visible at 0% so an idle VM doesn't look like missing data.
func Gauge(percent float64, cells int) string {
	filled := int(metrics.GaugeWidth(percent) / 100 * float64(cells))
	if filled > cells {
		filled = cells
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	style := termLevelStyles[metrics.Classify(percent)]
	return style.Render(bar) + fmt.Sprintf(" %3.0f%%", percent)
}

// PromptConfirm asks a yes/no question via huh.
func (t *Term) PromptConfirm(message string) bool {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return confirmed
}

// ReadCreateForm collects a create payload interactively.
func (t *Term) ReadCreateForm(cluster string, nodes []api.Node) (api.CreateRequest, error) {
	req := api.CreateRequest{Cluster: cluster}

	options := make([]huh.Option[string], 0, len(nodes))
	for _, n := range metrics.RankNodes(nodes) {
		label := n.Label
		if label == "" {
			label = n.Name
		}
		options = append(options, huh.NewOption(label, n.Name))
	}

	vcpu := "2"
	memory := "2048"
	disk := "20"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target node").
				Description("Candidates are ranked by stress score (lower is better)").
				Options(options...).
				Value(&req.Node),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("VM name (optional)").
				Placeholder("leave empty for a generated name").
				Value(&req.Name),
			huh.NewInput().
				Title("vCPU count").
				Value(&vcpu).
				Validate(validateIntRange(guard.MinVCPU, guard.MaxVCPU)),
			huh.NewInput().
				Title("Memory (MB)").
				Value(&memory).
				Validate(validateIntRange(guard.MinMemoryMB, guard.MaxMemoryMB)),
			huh.NewInput().
				Title("Disk size (GB)").
				Value(&disk).
				Validate(validateIntRange(guard.MinDiskGB, guard.MaxDiskGB)),
		),
	)

	if err := form.Run(); err != nil {
		return api.CreateRequest{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or pass values as flags")
	}

	req.VCPU, _ = strconv.Atoi(strings.TrimSpace(vcpu))
	req.MemoryMB, _ = strconv.Atoi(strings.TrimSpace(memory))
	req.DiskGB, _ = strconv.Atoi(strings.TrimSpace(disk))
	return req, nil
}

// ReadConfigForm collects a reconfigure payload, pre-filled with the
// VM's current values.
func (t *Term) ReadConfigForm(vmid int, current api.VMConfig) (api.ConfigRequest, error) {
	vcpu := strconv.Itoa(current.VCPU)
	memory := strconv.Itoa(current.MemoryMB)
	disk := strconv.Itoa(current.DiskGB)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("vCPU count (current %d)", current.VCPU)).
				Value(&vcpu).
				Validate(validateIntRange(guard.MinVCPU, guard.MaxVCPU)),
			huh.NewInput().
				Title(fmt.Sprintf("Memory MB (current %d)", current.MemoryMB)).
				Value(&memory).
				Validate(validateIntRange(guard.MinMemoryMB, guard.MaxMemoryMB)),
			huh.NewInput().
				Title(fmt.Sprintf("Disk GB (current %s, shrinking is not allowed)", current.DiskSizeRaw)).
				Value(&disk).
				Validate(validateIntRange(guard.MinDiskGB, guard.MaxDiskGB)),
		),
	)

	if err := form.Run(); err != nil {
		return api.ConfigRequest{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or pass values as flags")
	}

	req := api.ConfigRequest{VMID: vmid}
	req.VCPU, _ = strconv.Atoi(strings.TrimSpace(vcpu))
	req.MemoryMB, _ = strconv.Atoi(strings.TrimSpace(memory))
	req.DiskGB, _ = strconv.Atoi(strings.TrimSpace(disk))
	return req, nil
}

// ShowResult prints a success line.
func (t *Term) ShowResult(message string) {
	fmt.Fprintf(t.out, "✓ %s\n", message)
}

// ShowError prints a failure.
func (t *Term) ShowError(err error) {
	fmt.Fprintln(t.out, err.Error())
}

func validateIntRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be %d-%d", lo, hi)
		}
		return nil
	}
}
