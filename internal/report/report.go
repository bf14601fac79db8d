package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"

	"github.com/signalnine/mapfbench/internal/aggregate"
	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/metric"
)

var heading = color.New(color.FgCyan, color.Bold).SprintFunc()

type SolverSummary struct {
	Solver string         `json:"solver"`
	Label  string         `json:"label"`
	X      []float64      `json:"x"`
	Values []metric.Value `json:"values"`
	Total  metric.Value   `json:"total"`
}

// Build orders per-solver series the way the solvers are configured and
// totals each one. Solvers without a series are skipped.
func Build(sums map[string]*aggregate.Series, solvers []config.Solver) []SolverSummary {
	var out []SolverSummary
	for _, s := range solvers {
		series, ok := sums[s.Name]
		if !ok {
			continue
		}
		total := metric.None
		for _, v := range series.Val {
			if v.Valid {
				total = metric.Some(total.V + v.V)
			}
		}
		out = append(out, SolverSummary{
			Solver: s.Name,
			Label:  s.Label,
			X:      series.X,
			Values: series.Val,
			Total:  total,
		})
	}
	return out
}

// Generate writes summaries in the given format. title heads the table and
// markdown outputs.
func Generate(summaries []SolverSummary, title, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(summaries, title, w)
	case "json":
		return writeJSON(summaries, w)
	case "pretty":
		_, err := pp.Fprintln(w, summaries)
		return err
	case "table", "":
		return writeTable(summaries, title, w)
	default:
		return fmt.Errorf("unknown format %q (valid: table, markdown, json, pretty)", format)
	}
}

func columns(summaries []SolverSummary) []string {
	if len(summaries) == 0 {
		return nil
	}
	cols := make([]string, len(summaries[0].X))
	for i, x := range summaries[0].X {
		cols[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return cols
}

func writeTable(summaries []SolverSummary, title string, w io.Writer) error {
	if title != "" {
		fmt.Fprintln(w, heading(title))
	}
	cols := columns(summaries)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SOLVER\t%s\tTOTAL\n", strings.Join(cols, "\t"))
	fmt.Fprintln(tw, strings.Repeat("-", 16+10*len(cols)))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Label, joinValues(s.Values, "\t"), s.Total)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []SolverSummary, title string, w io.Writer) error {
	if title != "" {
		fmt.Fprintf(w, "### %s\n\n", title)
	}
	cols := columns(summaries)
	fmt.Fprintf(w, "| Solver | %s | Total |\n", strings.Join(cols, " | "))
	fmt.Fprintf(w, "|---|%s---|\n", strings.Repeat("---|", len(cols)))
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %s | %s |\n", s.Label, joinValues(s.Values, " | "), s.Total)
	}
	return nil
}

func writeJSON(summaries []SolverSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func joinValues(vals []metric.Value, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}
