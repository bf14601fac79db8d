package chart_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/chart"
	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/metric"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Solvers: []config.Solver{
			{Name: "PBS", Label: "PBS", Color: "grey", Marker: "o"},
			{Name: "GPBS", Label: "GPBS", Color: "#2ca02c", Marker: "s"},
		},
		OutDir: filepath.Join(t.TempDir(), "plots"),
		Figure: config.Figure{Width: 4, Height: 3, DPI: 50},
	}
}

func series(vals ...float64) *aggregate.Series {
	s := &aggregate.Series{}
	for i, v := range vals {
		s.X = append(s.X, float64(10*(i+1)))
		s.Val = append(s.Val, metric.Some(v))
		s.CI = append(s.CI, 0.05)
	}
	return s
}

func results(maps []config.Map) aggregate.Results {
	res := aggregate.Results{"PBS": {}, "GPBS": {}}
	for _, m := range maps {
		res["PBS"][m.Name] = series(1, 0.8, 0.4)
		res["GPBS"][m.Name] = series(1, 0.9, 0.7)
	}
	return res
}

func TestRenderWritesPNG(t *testing.T) {
	tests := []struct {
		name  string
		style string
		maps  int
	}{
		{"single band", "band", 1},
		{"grid bars", "bar", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.CIStyle = tt.style
			var maps []config.Map
			for i := 0; i < tt.maps; i++ {
				name := string(rune('A' + i))
				maps = append(maps, config.Map{Name: name, Label: name})
			}

			path, err := chart.New(cfg).Render(aggregate.Agents, "succ", results(maps), maps)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if filepath.Base(path) != "num_succ_plot.png" {
				t.Errorf("unexpected file name %s", path)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			img, err := png.Decode(f)
			if err != nil {
				t.Fatalf("decoding png: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
				t.Errorf("image size %dx%d, want 200x150", b.Dx(), b.Dy())
			}
		})
	}
}

func TestRenderSkipsAbsentPoints(t *testing.T) {
	cfg := testConfig(t)
	maps := []config.Map{{Name: "A", Label: "A"}}
	res := results(maps)
	res["PBS"]["A"].Val[1] = metric.None
	res["GPBS"]["A"] = &aggregate.Series{X: []float64{10, 20, 30}, Val: []metric.Value{metric.None, metric.None, metric.None}}

	if _, err := chart.New(cfg).Render(aggregate.Agents, "runtime", res, maps); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestRenderUnsupportedGrid(t *testing.T) {
	cfg := testConfig(t)
	var maps []config.Map
	for i := 0; i < 7; i++ {
		maps = append(maps, config.Map{Name: string(rune('A' + i))})
	}
	if _, err := chart.New(cfg).Render(aggregate.Agents, "succ", results(maps), maps); err == nil {
		t.Error("expected error for 7 maps")
	}
	if _, err := os.Stat(cfg.OutDir); !os.IsNotExist(err) {
		t.Error("no output should be written on layout error")
	}
}

func TestRenderMissingSeries(t *testing.T) {
	cfg := testConfig(t)
	maps := []config.Map{{Name: "A", Label: "A"}}
	res := results(maps)
	delete(res["GPBS"], "A")
	if _, err := chart.New(cfg).Render(aggregate.Agents, "succ", res, maps); err == nil {
		t.Error("expected error for missing series")
	}
}

func TestFileName(t *testing.T) {
	maps := []config.Map{{Label: "Random"}, {Label: "Game"}}
	tests := []struct {
		prefix bool
		want   string
	}{
		{false, "w_runtime_plot.png"},
		{true, "RandomGame_w_runtime_plot.png"},
	}
	for _, tt := range tests {
		if got := chart.FileName(aggregate.Weight, "runtime", maps, tt.prefix); got != tt.want {
			t.Errorf("FileName(prefix=%v) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
	if got := chart.FileName(aggregate.Agents, "a/b", nil, false); got != "num_a-b_plot.png" {
		t.Errorf("separator not replaced: %q", got)
	}
}
