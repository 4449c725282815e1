// Package metrics derives display-ready values from raw VM and node
// readings: severity classification for gauge coloring, gauge width
// scaling, RAM unit conversion, and the node stress score used to rank
// placement candidates.
package metrics

import (
	"math"
	"sort"

	"github.com/fleetdeck/fleetdeck/internal/api"
)

// Level classifies a utilization percentage for display.
type Level int

const (
	LevelLow      Level = iota // < 50%
	LevelModerate              // < 80%
	LevelHigh                  // >= 80%
)

// String returns the display label for a level.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Classify maps a utilization percent to its severity level.
// Callers are responsible for clamping out-of-range input.
func Classify(percent float64) Level {
	switch {
	case percent < 50:
		return LevelLow
	case percent < 80:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// GaugeWidth remaps a 0-100 percentage onto a 5-100 display width.
// A zero-width bar is indistinguishable from "no data"; the 5% floor
// keeps the bar visible.
func GaugeWidth(percent float64) float64 {
	return clamp(percent, 0, 100)/100*95 + 5
}

// RAMDisplay is a memory reading converted for display.
type RAMDisplay struct {
	UsedMB  int64
	MaxMB   int64
	Percent int
}

// RAMUsage converts raw byte counts into whole megabytes and a rounded
// usage percent. A zero or negative max yields 0% rather than dividing
// by zero.
func RAMUsage(usedBytes, maxBytes int64) RAMDisplay {
	d := RAMDisplay{
		UsedMB: roundToMB(usedBytes),
		MaxMB:  roundToMB(maxBytes),
	}
	if maxBytes > 0 {
		d.Percent = int(math.Round(float64(usedBytes) / float64(maxBytes) * 100))
	}
	return d
}

// StressScore combines CPU%, memory%, and running-VM count into a single
// ranking value. Lower is better. It drives display ordering only; actual
// placement is the backend's decision.
func StressScore(n api.Node) float64 {
	return n.CPU + n.MemUsage + float64(n.VMCount)/10
}

// RankNodes returns the nodes sorted by ascending stress score, ties
// broken by node name so the ordering is reproducible.
func RankNodes(nodes []api.Node) []api.Node {
	ranked := append([]api.Node(nil), nodes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := StressScore(ranked[i]), StressScore(ranked[j])
		if si != sj {
			return si < sj
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

func roundToMB(bytes int64) int64 {
	return int64(math.Round(float64(bytes) / (1024 * 1024)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
