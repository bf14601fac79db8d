package result

import (
	"fmt"
	"sort"
	"strings"
)

// Source names one solver feeding a merge.
type Source struct {
	Name string
	Dir  string
}

// MergeOpts selects, per instance, the solver ranked at Mode when ordered by
// Objective and writes those rows as a new virtual solver.
type MergeOpts struct {
	Root      string
	Map       string
	Scen      string
	Agents    int
	InsNum    int
	Sources   []Source
	Mode      string
	Objective string
	Family    string
}

// VirtualName is the solver name given to merged files.
func (o *MergeOpts) VirtualName() string {
	family := o.Family
	if family == "" && len(o.Sources) > 0 {
		family, _, _ = strings.Cut(o.Sources[0].Name, "_")
	}
	return family + "_" + o.Mode + "_" + o.Objective
}

// PickIndex maps a mode to a rank among n sorted candidates.
func PickIndex(mode string, n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("no candidates")
	}
	switch mode {
	case "min":
		return 0, nil
	case "mid":
		if idx := n/2 - 1; idx > 0 {
			return idx, nil
		}
		return 0, nil
	case "max":
		return n - 1, nil
	default:
		return 0, fmt.Errorf("unknown merge mode %q (valid: min, mid, max)", mode)
	}
}

// Merge builds the virtual solver file and returns its path.
func Merge(opts *MergeOpts) (string, error) {
	if len(opts.Sources) == 0 {
		return "", fmt.Errorf("merge needs at least one solver")
	}
	target, err := PickIndex(opts.Mode, len(opts.Sources))
	if err != nil {
		return "", err
	}

	tables := make([]*Table, len(opts.Sources))
	for i, src := range opts.Sources {
		t, err := Load(Path(opts.Root, opts.Map, opts.Scen, opts.Agents, src.Name, src.Dir))
		if err != nil {
			return "", err
		}
		if len(t.Rows) < opts.InsNum {
			return "", fmt.Errorf("%s: %d rows, need %d", t.Path, len(t.Rows), opts.InsNum)
		}
		if !t.Has(opts.Objective) {
			return "", fmt.Errorf("%s: no column %q", t.Path, opts.Objective)
		}
		tables[i] = t
	}

	header := tables[0].Header
	rows := make([][]string, 0, opts.InsNum)
	for idx := 0; idx < opts.InsNum; idx++ {
		order := make([]int, len(tables))
		objs := make([]float64, len(tables))
		for i, t := range tables {
			order[i] = i
			v, err := t.Rows[idx].Float(opts.Objective)
			if err != nil {
				return "", err
			}
			objs[i] = v
		}
		sort.SliceStable(order, func(a, b int) bool { return objs[order[a]] < objs[order[b]] })

		picked := tables[order[target]].Rows[idx]
		out := make([]string, len(header))
		for c, col := range header {
			v, err := picked.Text(col)
			if err != nil {
				return "", err
			}
			out[c] = v
		}
		rows = append(rows, out)
	}

	name := opts.VirtualName()
	path := Path(opts.Root, opts.Map, opts.Scen, opts.Agents, name, name)
	if err := Write(path, header, rows); err != nil {
		return "", err
	}
	return path, nil
}
