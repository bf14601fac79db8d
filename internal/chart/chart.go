package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/axis"
	"github.com/signalnine/mapfbench/internal/config"
)

const (
	lineWidth  = 1.8
	markerSize = 5
	textSize   = 14
	bandAlpha  = 51
)

// Renderer draws aggregated results as PNG charts.
type Renderer struct {
	cfg      *config.Config
	policies axis.Policies
}

// New returns a Renderer using the default axis policies.
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg, policies: axis.Default()}
}

// FileName is the image name for one chart. With prefix set, the map
// labels are prepended.
func FileName(x aggregate.Axis, y string, maps []config.Map, prefix bool) string {
	name := string(x) + "_" + y + "_plot.png"
	if prefix {
		var labels strings.Builder
		for _, m := range maps {
			labels.WriteString(m.Label)
		}
		name = labels.String() + "_" + name
	}
	return strings.NewReplacer("/", "-", string(filepath.Separator), "-").Replace(name)
}

// Render draws one subplot per map and writes a PNG into the output
// directory. It returns the written path.
func (r *Renderer) Render(x aggregate.Axis, y string, res aggregate.Results, maps []config.Map) (string, error) {
	rows, cols, err := axis.Grid(len(maps))
	if err != nil {
		return "", err
	}

	plots := make([][]*plot.Plot, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
	}
	for idx, m := range maps {
		p, err := r.subplot(x, y, m, idx == 0, res)
		if err != nil {
			return "", err
		}
		row, col := axis.Cell(idx, cols)
		plots[row][col] = p
	}

	fig := r.cfg.Figure
	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(fig.Width)*vg.Inch, vg.Length(fig.Height)*vg.Inch),
		vgimg.UseDPI(fig.DPI),
	)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 3,
		PadBottom: vg.Millimeter * 3,
		PadLeft:   vg.Millimeter * 3,
		PadRight:  vg.Millimeter * 3,
	}
	canvases := plot.Align(plots, tiles, draw.New(img))
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	if err := os.MkdirAll(r.cfg.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(r.cfg.OutDir, FileName(x, y, maps, r.cfg.PrefixMapLabels))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart file: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	log.Info().Str("file", path).Msg("chart written")
	return path, nil
}

func (r *Renderer) subplot(x aggregate.Axis, y string, m config.Map, legend bool, res aggregate.Results) (*plot.Plot, error) {
	p := plot.New()
	if r.cfg.Titles() {
		p.Title.Text = m.Label
	}
	p.Title.TextStyle.Font.Size = vg.Points(textSize + 2)
	p.X.Label.Text = axis.XLabel(string(x))
	p.X.Label.TextStyle.Font.Size = vg.Points(textSize)
	p.X.Tick.Label.Font.Size = vg.Points(textSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(textSize)
	p.Y.Tick.Label.Font.Size = vg.Points(textSize)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	var xs []float64
	for i, s := range r.cfg.Solvers {
		series, ok := res[s.Name][m.Name]
		if !ok {
			return nil, fmt.Errorf("no results for solver %q on map %q", s.Name, m.Name)
		}
		if xs == nil {
			xs = series.X
		}
		c := solverColor(s.Color, i)

		pts, errs := points(series)
		if len(pts) == 0 {
			log.Debug().Str("solver", s.Name).Str("map", m.Name).Msg("no plottable points")
			continue
		}
		if len(errs) == len(pts) {
			if err := r.addInterval(p, pts, errs, c); err != nil {
				return nil, err
			}
		}

		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("solver %q map %q: %w", s.Name, m.Name, err)
		}
		line.Color = c
		line.Width = vg.Points(lineWidth)
		scatter.Color = c
		scatter.Shape = glyph(s.Marker)
		scatter.Radius = vg.Points(markerSize)
		p.Add(line, scatter)
		if legend && r.cfg.Legend() {
			p.Legend.Add(s.Label, line, scatter)
		}
	}
	p.Legend.TextStyle.Font.Size = vg.Points(textSize)

	p.X.Tick.Marker = plot.ConstantTicks(xTicks(x, xs))
	p.X.Min = 0.5
	p.X.Max = float64(len(xs)) + 0.5

	pol := r.policies.Lookup(y)
	p.Y.Label.Text = pol.Label
	switch {
	case len(pol.Ticks) > 0:
		ticks := make([]plot.Tick, len(pol.Ticks))
		for i, v := range pol.Ticks {
			ticks[i] = plot.Tick{Value: v, Label: pol.TickLabel(v)}
		}
		p.Y.Tick.Marker = plot.ConstantTicks(ticks)
		p.Y.Min = pol.Ticks[0]
		p.Y.Max = pol.Ticks[len(pol.Ticks)-1]
	case pol.Step > 0:
		p.Y.Tick.Marker = stepTicker{policy: pol}
	}
	return p, nil
}

// points places the i-th value at x = i+1 and drops absent values.
func points(s *aggregate.Series) (plotter.XYs, plotter.YErrors) {
	var pts plotter.XYs
	var errs plotter.YErrors
	for i, v := range s.Val {
		if !v.Valid {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: v.V})
		if len(s.CI) == len(s.Val) {
			errs = append(errs, struct{ Low, High float64 }{s.CI[i], s.CI[i]})
		}
	}
	return pts, errs
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func (r *Renderer) addInterval(p *plot.Plot, pts plotter.XYs, errs plotter.YErrors, c color.Color) error {
	if r.cfg.CIStyle == "bar" {
		bars, err := plotter.NewYErrorBars(errorPoints{XYs: pts, YErrors: errs})
		if err != nil {
			return err
		}
		bars.LineStyle.Color = c
		bars.LineStyle.Width = vg.Points(lineWidth / 2)
		p.Add(bars)
		return nil
	}

	band := make(plotter.XYs, 0, 2*len(pts))
	for i, pt := range pts {
		band = append(band, plotter.XY{X: pt.X, Y: pt.Y + errs[i].High})
	}
	for i := len(pts) - 1; i >= 0; i-- {
		band = append(band, plotter.XY{X: pts[i].X, Y: pts[i].Y - errs[i].Low})
	}
	poly, err := plotter.NewPolygon(band)
	if err != nil {
		return err
	}
	fill := color.NRGBAModel.Convert(c).(color.NRGBA)
	fill.A = bandAlpha
	poly.Color = fill
	poly.LineStyle.Width = 0
	p.Add(poly)
	return nil
}

func xTicks(x aggregate.Axis, xs []float64) []plot.Tick {
	if x == aggregate.Instance && len(xs) > axis.MaxDenseTicks {
		pos := axis.InstanceTicks(len(xs))
		ticks := make([]plot.Tick, len(pos))
		for i, v := range pos {
			ticks[i] = plot.Tick{Value: float64(v), Label: strconv.Itoa(v)}
		}
		return ticks
	}
	ticks := make([]plot.Tick, len(xs))
	for i, v := range xs {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return ticks
}

// stepTicker places y ticks every policy.Step and labels them through the
// policy divisor.
type stepTicker struct {
	policy axis.Policy
}

func (t stepTicker) Ticks(min, max float64) []plot.Tick {
	values := axis.StepTicks(min, max, t.policy.Step)
	if len(values) < 2 {
		return plot.DefaultTicks{}.Ticks(min, max)
	}
	ticks := make([]plot.Tick, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: t.policy.TickLabel(v)}
	}
	return ticks
}
