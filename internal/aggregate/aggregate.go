package aggregate

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/metric"
	"github.com/signalnine/mapfbench/internal/result"
)

// Axis is the independent variable of a chart.
type Axis string

const (
	Agents   Axis = "num"
	Weight   Axis = "w"
	Instance Axis = "ins"
)

func ParseAxis(s string) (Axis, error) {
	switch a := Axis(s); a {
	case Agents, Weight, Instance:
		return a, nil
	}
	return "", fmt.Errorf("unknown sweep axis %q (valid: num, w, ins)", s)
}

// Interval selects the spread reported next to each aggregated value.
type Interval int

const (
	NoInterval Interval = iota
	// Wald is the 95% half-width 1.96*stddev/sqrt(n).
	Wald
	StdDev
)

// Options controls one aggregation pass.
type Options struct {
	// Average divides the total by the instance count; otherwise the raw
	// total is reported so two sums can be combined later.
	Average  bool
	Interval Interval
	// DDOF is the delta degrees of freedom of the standard deviation:
	// 0 divides by n, 1 by n-1.
	DDOF int
}

// Series is one solver's line on one map.
type Series struct {
	X   []float64      `json:"x"`
	Val []metric.Value `json:"val"`
	CI  []float64      `json:"ci,omitempty"`
}

// Results maps solver name -> map name -> series.
type Results map[string]map[string]*Series

type Loader func(path string) (*result.Table, error)

type Aggregator struct {
	cfg     *config.Config
	metrics metric.Table
	load    Loader
}

func New(cfg *config.Config) *Aggregator {
	return &Aggregator{
		cfg:     cfg,
		metrics: metric.Default().WithOffsets(cfg.MetricOffsets),
		load:    result.Load,
	}
}

// WithLoader replaces the file loader.
func (a *Aggregator) WithLoader(l Loader) *Aggregator {
	a.load = l
	return a
}

// Options returns the aggregation options implied by the config toggles.
func (a *Aggregator) Options(average bool) Options {
	opts := Options{Average: average, DDOF: a.cfg.StdDDOF}
	switch {
	case a.cfg.PlotCI:
		opts.Interval = Wald
	case a.cfg.PlotStd:
		opts.Interval = StdDev
	}
	return opts
}

// Collect aggregates metric y along sweep axis x.
func (a *Aggregator) Collect(x Axis, y string, opts Options) (Results, error) {
	switch x {
	case Agents:
		return a.ByAgents(y, opts)
	case Weight:
		return a.ByWeight(y, opts)
	case Instance:
		return a.ByInstance(y)
	}
	return nil, fmt.Errorf("unknown sweep axis %q", x)
}

// ByAgents aggregates every scenario file at each agent count.
func (a *Aggregator) ByAgents(y string, opts Options) (Results, error) {
	spec := a.metrics.Lookup(y)
	ctx := a.context(metric.Bucket)
	res := make(Results, len(a.cfg.Solvers))
	for _, s := range a.cfg.Solvers {
		res[s.Name] = make(map[string]*Series, len(a.cfg.Maps))
		for _, m := range a.cfg.Maps {
			series := &Series{}
			for _, agents := range m.NumOfAgents {
				var b bucket
				for _, scen := range m.Scens {
					if err := a.accumulate(&b, s, m, scen, agents, config.Params{}, spec, ctx); err != nil {
						return nil, err
					}
				}
				series.add(float64(agents), &b, opts, spec.Sampled)
			}
			res[s.Name][m.Name] = series
		}
	}
	return res, nil
}

// ByWeight aggregates every agent count and scenario for each sweep weight.
// The weight reaches the file locator through Params; the solver
// descriptor is never modified.
func (a *Aggregator) ByWeight(y string, opts Options) (Results, error) {
	if len(a.cfg.FWeights) == 0 {
		return nil, fmt.Errorf("weight sweep requires f_weights")
	}
	spec := a.metrics.Lookup(y)
	ctx := a.context(metric.Bucket)
	res := make(Results, len(a.cfg.Solvers))
	for _, s := range a.cfg.Solvers {
		res[s.Name] = make(map[string]*Series, len(a.cfg.Maps))
		for _, m := range a.cfg.Maps {
			series := &Series{}
			for _, w := range a.cfg.FWeights {
				p := config.Params{}.WithWeight(w)
				var b bucket
				for _, agents := range m.NumOfAgents {
					for _, scen := range m.Scens {
						if err := a.accumulate(&b, s, m, scen, agents, p, spec, ctx); err != nil {
							return nil, err
						}
					}
				}
				series.add(w, &b, opts, spec.Sampled)
			}
			res[s.Name][m.Name] = series
		}
	}
	return res, nil
}

// ByInstance lists the metric of every instance, indexed from 1 across all
// agent counts and scenarios of a map.
func (a *Aggregator) ByInstance(y string) (Results, error) {
	spec := a.metrics.Lookup(y)
	ctx := a.context(metric.Instance)
	res := make(Results, len(a.cfg.Solvers))
	for _, s := range a.cfg.Solvers {
		res[s.Name] = make(map[string]*Series, len(a.cfg.Maps))
		for _, m := range a.cfg.Maps {
			series := &Series{}
			idx := 1
			for _, agents := range m.NumOfAgents {
				for _, scen := range m.Scens {
					tbl, err := a.read(s, m, scen, agents, config.Params{})
					if err != nil {
						return nil, err
					}
					for _, row := range tbl.Rows {
						v, err := spec.Transform(row, ctx)
						if err != nil {
							return nil, err
						}
						series.X = append(series.X, float64(idx))
						series.Val = append(series.Val, v)
						idx++
					}
				}
			}
			res[s.Name][m.Name] = series
		}
	}
	return res, nil
}

func (a *Aggregator) context(mode metric.Mode) metric.Context {
	return metric.Context{TimeLimit: a.cfg.TimeLimit, RuntimeCap: a.cfg.RuntimeCap, Mode: mode}
}

func (a *Aggregator) read(s config.Solver, m config.Map, scen string, agents int, p config.Params) (*result.Table, error) {
	path := result.Path(a.cfg.ExpPath, m.Name, scen, agents, s.FileName(p), s.DirName(p))
	tbl, err := a.load(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Int("rows", len(tbl.Rows)).Msg("loaded results")
	if len(tbl.Rows) != a.cfg.InsNum {
		log.Warn().
			Str("map", m.Name).
			Str("scen", scen).
			Int("agents", agents).
			Str("solver", s.FileName(p)).
			Int("rows", len(tbl.Rows)).
			Int("expected", a.cfg.InsNum).
			Msg("unexpected number of instances")
	}
	return tbl, nil
}

func (a *Aggregator) accumulate(b *bucket, s config.Solver, m config.Map, scen string, agents int, p config.Params, spec metric.Spec, ctx metric.Context) error {
	tbl, err := a.read(s, m, scen, agents, p)
	if err != nil {
		return err
	}
	for _, row := range tbl.Rows {
		v, err := spec.Transform(row, ctx)
		if err != nil {
			return err
		}
		if !v.Valid {
			continue
		}
		b.total += v.V
		if spec.Sampled {
			b.samples = append(b.samples, v.V)
		}
	}
	b.count += float64(a.cfg.InsNum)
	return nil
}

type bucket struct {
	total   float64
	count   float64
	samples []float64
}

func (b *bucket) value(average bool) float64 {
	if !average {
		return b.total
	}
	if b.count == 0 {
		return 0
	}
	return b.total / b.count
}

func (b *bucket) interval(opts Options) float64 {
	sd := StdDevOf(b.samples, opts.DDOF)
	if opts.Interval == StdDev {
		return sd
	}
	if b.count == 0 {
		return 0
	}
	return WaldHalfWidth(sd, b.count)
}

// StdDevOf is the standard deviation of samples with ddof delta degrees of
// freedom. It is 0 when there are no more samples than ddof.
func StdDevOf(samples []float64, ddof int) float64 {
	if len(samples) <= ddof {
		return 0
	}
	if ddof == 0 {
		return math.Sqrt(stat.PopVariance(samples, nil))
	}
	return stat.StdDev(samples, nil)
}

// WaldHalfWidth is the 95% confidence half-width of a sampled mean.
func WaldHalfWidth(stddev, n float64) float64 {
	return 1.96 * stddev / math.Sqrt(n)
}

func (s *Series) add(x float64, b *bucket, opts Options, sampled bool) {
	s.X = append(s.X, x)
	s.Val = append(s.Val, metric.Some(b.value(opts.Average)))
	if opts.Interval != NoInterval && sampled {
		s.CI = append(s.CI, b.interval(opts))
	}
}
