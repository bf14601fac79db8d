package cmd

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/result"
)

func TestFilterMaps(t *testing.T) {
	maps := []config.Map{
		{Name: "random-32-32-20", Label: "Random"},
		{Name: "den520d", Label: "Game"},
		{Name: "warehouse-10-20-10-2-1", Label: "Warehouse"},
	}

	tests := []struct {
		name  string
		names []string
		want  int
	}{
		{"by name", []string{"den520d"}, 1},
		{"by label", []string{"Random", "Warehouse"}, 2},
		{"no match", []string{"empty-8-8"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterMaps(maps, tt.names)
			if len(got) != tt.want {
				t.Errorf("filterMaps(%v) returned %d, want %d", tt.names, len(got), tt.want)
			}
		})
	}
}

func TestFilterSolvers(t *testing.T) {
	solvers := []config.Solver{
		{Name: "PBS", Label: "PBS"},
		{Name: "GPBS_w{w}", Label: "GPBS(w)"},
	}
	got := filterSolvers(solvers, []string{"GPBS(w)"})
	if len(got) != 1 || got[0].Name != "GPBS_w{w}" {
		t.Errorf("filterSolvers by label: %v", got)
	}
}

func TestSweepParams(t *testing.T) {
	tests := []struct {
		name    string
		solver  config.Solver
		weights []float64
		want    int
	}{
		{"plain solver", config.Solver{Name: "PBS"}, []float64{1.1, 1.2}, 1},
		{"templated name", config.Solver{Name: "GPBS_w{w}"}, []float64{1.1, 1.2}, 2},
		{"templated dir", config.Solver{Name: "GPBS", Dir: "GPBS_{w}"}, []float64{1.1}, 1},
		{"no weights", config.Solver{Name: "GPBS_w{w}"}, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sweepParams(tt.solver, tt.weights); len(got) != tt.want {
				t.Errorf("sweepParams returned %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMergeSources(t *testing.T) {
	w := 1.05
	solvers := []config.Solver{{Name: "GPBS_w{w}", Label: "GPBS", Dir: "GPBS", W: &w}}
	got := mergeSources(solvers, []string{"GPBS", "ECBS"})
	if got[0] != (result.Source{Name: "GPBS_w1.05", Dir: "GPBS"}) {
		t.Errorf("configured solver: %+v", got[0])
	}
	if got[1] != (result.Source{Name: "ECBS", Dir: "ECBS"}) {
		t.Errorf("unknown solver: %+v", got[1])
	}
}

var csvHeader = []string{"runtime", "#high-level generated", "#low-level expanded", "solution cost"}

// setup writes a two-map config and one result file per map, scenario and
// agent count for each solver in withFiles.
func setup(t *testing.T, withFiles ...string) string {
	t.Helper()
	return setupRows(t, func(_ string, agents int) [][]string {
		return [][]string{
			{"1.5", "3", fmt.Sprint(10 * agents), "20"},
			{"2.5", "5", fmt.Sprint(10 * agents), "22"},
		}
	}, withFiles...)
}

// setupRows is setup with the rows of each file chosen per map and agent count.
func setupRows(t *testing.T, rows func(mapName string, agents int) [][]string, withFiles ...string) string {
	t.Helper()
	dir := t.TempDir()
	exp := filepath.Join(dir, "exp")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`exp_path: %s
time_limit: 60
ins_num: 2
out_dir: %s
maps:
  - name: empty-8-8
    label: Empty
    num_of_agents: [4, 8]
    scens: [even]
  - name: random-32-32-20
    label: Random
    num_of_agents: [4, 8]
    scens: [even]
solvers:
  - name: PBS
  - name: ECBS
`, exp, filepath.Join(dir, "plots"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, solver := range withFiles {
		for _, m := range []string{"empty-8-8", "random-32-32-20"} {
			for _, agents := range []int{4, 8} {
				path := result.Path(exp, m, "even", agents, solver, solver)
				if err := result.Write(path, csvHeader, rows(m, agents)); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	out, err := execute(t, "--config", cfgPath, "summary", "--metric", "#low-level expanded", "--x", "num", "--format", "markdown")
	if err != nil {
		t.Fatalf("summary: %v\n%s", err, out)
	}
	// Per map the average is 10*agents; the two maps are summed.
	if !strings.Contains(out, "| PBS | 80 | 160 | 240 |") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestSummaryMinus(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	out, err := execute(t, "--config", cfgPath, "--solver", "ECBS", "summary",
		"--metric", "#low-level expanded", "--minus", "#low-level expanded", "--x", "num", "--format", "markdown")
	if err != nil {
		t.Fatalf("summary: %v\n%s", err, out)
	}
	if !strings.Contains(out, "| ECBS | 0 | 0 | 0 |") || strings.Contains(out, "| PBS |") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestPlotCommand(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	outDir := filepath.Join(t.TempDir(), "charts")
	if out, err := execute(t, "--config", cfgPath, "--out-dir", outDir, "plot", "--x", "num", "--y", "runtime"); err != nil {
		t.Fatalf("plot: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "num_runtime_plot.png")); err != nil {
		t.Errorf("chart not written: %v", err)
	}
}

func TestRootRendersConfiguredPlots(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	outDir := t.TempDir()
	if out, err := execute(t, "--config", cfgPath, "--out-dir", outDir, "--parallel", "2"); err != nil {
		t.Fatalf("root: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "num_succ_plot.png")); err != nil {
		t.Errorf("default chart not written: %v", err)
	}
}

func TestRatioAcrossMaps(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	outDir := t.TempDir()
	out, err := execute(t, "--config", cfgPath, "--out-dir", outDir, "ratio",
		"--num", "#low-level expanded", "--den", "solution cost", "--across-maps")
	if err != nil {
		t.Fatalf("ratio: %v\n%s", err, out)
	}
	if !strings.Contains(out, "num_Ratio_plot.png") {
		t.Errorf("expected chart path in output, got %q", out)
	}
}

func TestRatioSumsPerMapRatios(t *testing.T) {
	// empty-8-8 has num/den = 1/1 and random-32-32-20 has 1/3.
	cfgPath := setupRows(t, func(m string, _ int) [][]string {
		den := "1"
		if m == "random-32-32-20" {
			den = "3"
		}
		return [][]string{{"1", "1", "1", den}, {"1", "1", "1", den}}
	}, "PBS", "ECBS")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		acrossMaps bool
		want       map[string]float64
	}{
		{"per map", false, map[string]float64{"empty-8-8": 1, "random-32-32-20": 1.0 / 3}},
		{"across maps", true, map[string]float64{"all": 1 + 1.0/3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, maps, err := ratioResults(cfg, aggregate.Agents, "#low-level expanded", "solution cost", "div", tt.acrossMaps)
			if err != nil {
				t.Fatalf("ratioResults: %v", err)
			}
			if len(maps) != len(tt.want) {
				t.Fatalf("got %d maps, want %d", len(maps), len(tt.want))
			}
			for name, want := range tt.want {
				s, ok := res["PBS"][name]
				if !ok {
					t.Fatalf("no series for map %q", name)
				}
				for i, v := range s.Val {
					if !v.Valid || math.Abs(v.V-want) > 1e-12 {
						t.Errorf("map %q point %d: got %v, want %v", name, i, v, want)
					}
				}
			}
		})
	}
}

func TestRatioInvalidOperator(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	_, err := execute(t, "--config", cfgPath, "ratio", "--num", "runtime", "--den", "runtime", "--op", "pow")
	if err == nil || !strings.Contains(err.Error(), "add, div, mul, sub") {
		t.Errorf("expected operator error naming valid set, got %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	out, err := execute(t, "--config", cfgPath, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "OK 8 files, 0 short") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCheckMissing(t *testing.T) {
	cfgPath := setup(t, "PBS")
	out, err := execute(t, "--config", cfgPath, "check")
	if err == nil {
		t.Fatal("expected error for missing files")
	}
	if !strings.Contains(out, "4 of 8 files missing") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPlotMissingFile(t *testing.T) {
	cfgPath := setup(t, "PBS")
	if _, err := execute(t, "--config", cfgPath, "--out-dir", t.TempDir(), "plot"); err == nil {
		t.Error("expected error when result files are missing")
	}
}

func TestMergeCommand(t *testing.T) {
	cfgPath := setup(t, "PBS", "ECBS")
	out, err := execute(t, "--config", cfgPath, "merge", "--mode", "min", "--family", "best", "PBS", "ECBS")
	if err != nil {
		t.Fatalf("merge: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Wrote 4 merged files") {
		t.Errorf("unexpected output %q", out)
	}
	exp := filepath.Join(filepath.Dir(cfgPath), "exp")
	if _, err := os.Stat(result.Path(exp, "empty-8-8", "even", 4, "best_min_runtime", "best_min_runtime")); err != nil {
		t.Errorf("merged file not written: %v", err)
	}
}

func TestListCommand(t *testing.T) {
	cfgPath := setup(t)
	out, err := execute(t, "--config", cfgPath, "--map", "Random", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "random-32-32-20 (Random)") || strings.Contains(out, "empty-8-8") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "ECBS") {
		t.Errorf("expected solvers in output:\n%s", out)
	}
}

func TestUnknownMapFilter(t *testing.T) {
	cfgPath := setup(t)
	if _, err := execute(t, "--config", cfgPath, "--map", "nowhere", "list"); err == nil {
		t.Error("expected error for unmatched --map")
	}
}
