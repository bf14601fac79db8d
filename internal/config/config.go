package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRuntimeCap is the runtime, in seconds, at which plotted runtimes are clamped.
	DefaultRuntimeCap = 60.0
	weightToken       = "{w}"
)

type Config struct {
	ExpPath         string             `yaml:"exp_path"`
	Maps            []Map              `yaml:"maps"`
	Solvers         []Solver           `yaml:"solvers"`
	TimeLimit       float64            `yaml:"time_limit"`
	InsNum          int                `yaml:"ins_num"`
	FWeights        []float64          `yaml:"f_weights"`
	PlotCI          bool               `yaml:"plot_ci"`
	PlotStd         bool               `yaml:"plot_std"`
	StdDDOF         int                `yaml:"std_ddof"`
	ShowLegend      *bool              `yaml:"show_legend"`
	ShowTitle       *bool              `yaml:"show_title"`
	RuntimeCap      float64            `yaml:"runtime_cap"`
	OutDir          string             `yaml:"out_dir"`
	PrefixMapLabels bool               `yaml:"prefix_map_labels"`
	CIStyle         string             `yaml:"ci_style"`
	Plots           []Plot             `yaml:"plots"`
	MetricOffsets   map[string]float64 `yaml:"metric_offsets"`
	Figure          Figure             `yaml:"figure"`
}

type Map struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	NumOfAgents []int    `yaml:"num_of_agents"`
	Scens       []string `yaml:"scens"`
}

type Solver struct {
	Name   string   `yaml:"name"`
	Label  string   `yaml:"label"`
	Color  string   `yaml:"color"`
	Marker string   `yaml:"marker"`
	W      *float64 `yaml:"w"`
	Dir    string   `yaml:"dir"`
}

// Plot names one chart rendered by the default entry point.
type Plot struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

type Figure struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DPI    int     `yaml:"dpi"`
}

// Params carries the per-iteration overrides of a sweep down to the
// file locator. A nil Weight means the solver's own default.
type Params struct {
	Weight *float64
}

// WithWeight returns a copy of p with the weight override set.
func (p Params) WithWeight(w float64) Params {
	p.Weight = &w
	return p
}

// FileName is the solver name as it appears in result file names, with
// the sweep weight substituted.
func (s Solver) FileName(p Params) string {
	return substituteWeight(s.Name, s.weight(p))
}

// DirName is the directory holding the solver's result files.
func (s Solver) DirName(p Params) string {
	if s.Dir == "" {
		return s.FileName(p)
	}
	return substituteWeight(s.Dir, s.weight(p))
}

func (s Solver) weight(p Params) *float64 {
	if p.Weight != nil {
		return p.Weight
	}
	return s.W
}

func substituteWeight(name string, w *float64) string {
	if w == nil || !strings.Contains(name, weightToken) {
		return name
	}
	return strings.ReplaceAll(name, weightToken, strconv.FormatFloat(*w, 'f', -1, 64))
}

func (c *Config) Legend() bool { return c.ShowLegend == nil || *c.ShowLegend }
func (c *Config) Titles() bool { return c.ShowTitle == nil || *c.ShowTitle }

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := checkSchema(data); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ExpPath == "" {
		return fmt.Errorf("exp_path is required")
	}
	if len(cfg.Maps) == 0 {
		return fmt.Errorf("no maps defined")
	}
	for i := range cfg.Maps {
		m := &cfg.Maps[i]
		if m.Name == "" {
			return fmt.Errorf("map %d: name is required", i)
		}
		if len(m.NumOfAgents) == 0 {
			return fmt.Errorf("map %q: num_of_agents is required", m.Name)
		}
		if len(m.Scens) == 0 {
			return fmt.Errorf("map %q: scens is required", m.Name)
		}
		if m.Label == "" {
			m.Label = m.Name
		}
	}
	if len(cfg.Solvers) == 0 {
		return fmt.Errorf("no solvers defined")
	}
	seen := make(map[string]bool)
	for i := range cfg.Solvers {
		s := &cfg.Solvers[i]
		if s.Name == "" {
			return fmt.Errorf("solver %d: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("solver %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.Label == "" {
			s.Label = s.Name
		}
		if s.Marker == "" {
			s.Marker = "o"
		}
		if s.W == nil && strings.Contains(s.Name+s.Dir, weightToken) {
			return fmt.Errorf("solver %q: name or dir uses %s but w is not set", s.Name, weightToken)
		}
	}
	if cfg.InsNum < 1 {
		return fmt.Errorf("ins_num must be at least 1")
	}
	if cfg.TimeLimit <= 0 {
		return fmt.Errorf("time_limit must be positive")
	}
	if cfg.PlotCI && cfg.PlotStd {
		return fmt.Errorf("plot_ci and plot_std are mutually exclusive")
	}
	if cfg.StdDDOF != 0 && cfg.StdDDOF != 1 {
		return fmt.Errorf("std_ddof %d: must be 0 (population) or 1 (sample)", cfg.StdDDOF)
	}
	if cfg.RuntimeCap <= 0 {
		cfg.RuntimeCap = DefaultRuntimeCap
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	switch cfg.CIStyle {
	case "":
		cfg.CIStyle = "band"
	case "band", "bar":
	default:
		return fmt.Errorf("ci_style %q: must be band or bar", cfg.CIStyle)
	}
	if len(cfg.Plots) == 0 {
		cfg.Plots = []Plot{{X: "num", Y: "succ"}}
	}
	for i, p := range cfg.Plots {
		if p.X == "" || p.Y == "" {
			return fmt.Errorf("plot %d: x and y are required", i)
		}
		if p.X == "w" && len(cfg.FWeights) == 0 {
			return fmt.Errorf("plot %d: sweeping w requires f_weights", i)
		}
	}
	if cfg.Figure.Width <= 0 {
		cfg.Figure.Width = 12
	}
	if cfg.Figure.Height <= 0 {
		cfg.Figure.Height = 9
	}
	if cfg.Figure.DPI <= 0 {
		cfg.Figure.DPI = 80
	}
	return nil
}
