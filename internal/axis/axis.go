// Package axis holds the per-metric and per-sweep presentation tables used
// by the chart renderer.
package axis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/signalnine/mapfbench/internal/metric"
)

// MaxDenseTicks is the number of per-instance ticks shown before the axis
// is resampled.
const MaxDenseTicks = 5

// Policy describes how one metric is drawn on the y axis.
type Policy struct {
	Label string
	// Ticks pins the tick positions. Empty means derive from data.
	Ticks []float64
	// Step spaces data-derived ticks; zero leaves tick placement to the plot.
	Step float64
	// Divisor scales tick labels, e.g. 1000 to show thousands.
	Divisor float64
}

type Policies map[string]Policy

func seq(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to+step/2; v += step {
		out = append(out, math.Round(v*1e6)/1e6)
	}
	return out
}

// Default returns the y-axis table.
func Default() Policies {
	return Policies{
		metric.Succ:       {Label: "Success rate", Ticks: seq(0, 1, 0.2)},
		metric.ColRuntime: {Label: "Runtime (sec)", Ticks: seq(0, 60, 10)},
		metric.ColMinF:    {Label: "Lower bound"},
		metric.ColCost:    {Label: "Cost"},
		metric.ColSinglePlans: {
			Label:   "Number of v-t nodes (K)",
			Step:    1000,
			Divisor: 1000,
		},
		metric.ColHLGenerated: {Label: "# CT nodes"},
		metric.ColHLExpanded:  {Label: "# expanded CT nodes"},
		metric.ColMVCRuntime:  {Label: "runtime (sec)"},
		metric.ColMaxMASize:   {Label: "Max MA size"},
		metric.InConfRatio:    {Label: "Internal conflict ratio"},
		metric.FocalRatio:     {Label: "Ratio"},
		"flex":                {Label: "Δ"},
		"Ratio":               {Label: "Ratio"},
	}
}

// Lookup returns the policy for a metric; unknown metrics are labelled with
// their id.
func (p Policies) Lookup(name string) Policy {
	if pol, ok := p[name]; ok {
		return pol
	}
	return Policy{Label: name}
}

// TickLabel formats a tick value under the policy's divisor.
func (p Policy) TickLabel(v float64) string {
	if p.Divisor > 0 {
		return strconv.FormatInt(int64(math.Floor(v/p.Divisor)), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StepTicks returns multiples of step strictly above lo and at most hi.
func StepTicks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	var out []float64
	for v := (math.Floor(lo/step) + 1) * step; v <= hi; v += step {
		out = append(out, v)
	}
	return out
}

var xLabels = map[string]string{
	"num": "Number of agents",
	"ins": "Instance",
	"w":   "Suboptimality factor",
}

// XLabel names a sweep axis.
func XLabel(sweep string) string {
	if l, ok := xLabels[sweep]; ok {
		return l
	}
	return sweep
}

type shape struct{ rows, cols int }

var grids = map[int]shape{
	1: {1, 1},
	2: {1, 2},
	3: {1, 3},
	4: {2, 2},
	5: {1, 5},
	6: {2, 3},
	8: {2, 4},
	9: {3, 3},
}

// Grid returns the subplot layout for a number of maps.
func Grid(maps int) (rows, cols int, err error) {
	g, ok := grids[maps]
	if !ok {
		return 0, 0, fmt.Errorf("no subplot layout for %d maps (supported: 1-6, 8, 9)", maps)
	}
	return g.rows, g.cols, nil
}

// Cell maps a subplot index to its grid position.
func Cell(idx, cols int) (row, col int) {
	return idx / cols, idx % cols
}

// InstanceTicks returns the 1-based tick positions for a per-instance axis
// of n points: every position when n <= MaxDenseTicks, otherwise 1 followed
// by multiples of n/MaxDenseTicks.
func InstanceTicks(n int) []int {
	if n <= MaxDenseTicks {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	step := n / MaxDenseTicks
	out := []int{1}
	for v := step; v <= n; v += step {
		out = append(out, v)
	}
	return out
}
