package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/api"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		percent float64
		want    Level
	}{
		{0, LevelLow},
		{49, LevelLow},
		{50, LevelModerate},
		{79, LevelModerate},
		{80, LevelHigh},
		{100, LevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.percent), "Classify(%v)", tt.percent)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "low", LevelLow.String())
	assert.Equal(t, "moderate", LevelModerate.String())
	assert.Equal(t, "high", LevelHigh.String())
}

func TestGaugeWidth_Endpoints(t *testing.T) {
	assert.InDelta(t, 5, GaugeWidth(0), 0.0001)
	assert.InDelta(t, 100, GaugeWidth(100), 0.0001)
	assert.InDelta(t, 52.5, GaugeWidth(50), 0.0001)

	// Out-of-range input is clamped
	assert.InDelta(t, 5, GaugeWidth(-20), 0.0001)
	assert.InDelta(t, 100, GaugeWidth(150), 0.0001)
}

func TestGaugeWidth_BoundedAndMonotonic(t *testing.T) {
	prev := 0.0
	for p := 0; p <= 100; p++ {
		w := GaugeWidth(float64(p))
		assert.GreaterOrEqual(t, w, 5.0, "GaugeWidth(%d)", p)
		assert.LessOrEqual(t, w, 100.0, "GaugeWidth(%d)", p)
		if p > 0 {
			assert.GreaterOrEqual(t, w, prev, "GaugeWidth must be non-decreasing at %d", p)
		}
		prev = w
	}
}

func TestRAMUsage(t *testing.T) {
	d := RAMUsage(536870912, 1073741824)
	assert.Equal(t, int64(512), d.UsedMB)
	assert.Equal(t, int64(1024), d.MaxMB)
	assert.Equal(t, 50, d.Percent)
}

func TestRAMUsage_ZeroMax(t *testing.T) {
	for _, used := range []int64{0, 1, 536870912} {
		d := RAMUsage(used, 0)
		assert.Equal(t, 0, d.Percent, "RAMUsage(%d, 0)", used)
	}
}

func TestStressScore(t *testing.T) {
	n := api.Node{Name: "node-a", CPU: 25, MemUsage: 40, VMCount: 8}
	assert.InDelta(t, 65.8, StressScore(n), 0.0001)
}

func TestRankNodes(t *testing.T) {
	nodes := []api.Node{
		{Name: "node-c", CPU: 50, MemUsage: 40, VMCount: 2},
		{Name: "node-a", CPU: 10, MemUsage: 20, VMCount: 1},
		{Name: "node-b", CPU: 10, MemUsage: 20, VMCount: 1}, // tied with node-a
	}

	ranked := RankNodes(nodes)
	require.Len(t, ranked, 3)
	assert.Equal(t, "node-a", ranked[0].Name) // tie broken by name
	assert.Equal(t, "node-b", ranked[1].Name)
	assert.Equal(t, "node-c", ranked[2].Name)

	// Input is not mutated
	assert.Equal(t, "node-c", nodes[0].Name)
}

func TestStats(t *testing.T) {
	vms := []api.VM{
		{VMID: 101, Status: api.StatusRunning},
		{VMID: 102, Status: api.StatusRunning},
		{VMID: 103, Status: api.StatusStopped},
		{VMID: 104, Status: "paused"},
	}

	s := Stats(vms)
	assert.Equal(t, FleetStats{Total: 4, Running: 2, Stopped: 1, Other: 1}, s)
}

func TestStats_EmptyFleet(t *testing.T) {
	s := Stats(nil)
	assert.Equal(t, FleetStats{}, s)
}
