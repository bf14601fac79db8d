package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/signalnine/mapfbench/internal/config"
	"github.com/signalnine/mapfbench/internal/metric"
)

type operator func(x, y float64) metric.Value

var operators = map[string]operator{
	"add": func(x, y float64) metric.Value { return metric.Some(x + y) },
	"sub": func(x, y float64) metric.Value { return metric.Some(x - y) },
	"mul": func(x, y float64) metric.Value { return metric.Some(x * y) },
	"div": func(x, y float64) metric.Value {
		if y == 0 {
			return metric.None
		}
		return metric.Some(x / y)
	},
}

// Operators lists the names accepted by Combine.
func Operators() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Combine applies op point-wise to two results of the same sweep. Intervals
// are dropped. An absent operand yields an absent point.
func Combine(a, b Results, op string) (Results, error) {
	fn, ok := operators[op]
	if !ok {
		return nil, fmt.Errorf("invalid operator %q (valid: %s)", op, strings.Join(Operators(), ", "))
	}
	out := make(Results, len(a))
	for solver, maps := range a {
		out[solver] = make(map[string]*Series, len(maps))
		for name, sa := range maps {
			sb, ok := b[solver][name]
			if !ok {
				return nil, fmt.Errorf("solver %q map %q missing from second operand", solver, name)
			}
			if len(sa.Val) != len(sb.Val) {
				return nil, fmt.Errorf("solver %q map %q: %d points vs %d", solver, name, len(sa.Val), len(sb.Val))
			}
			s := &Series{X: append([]float64(nil), sa.X...)}
			for i := range sa.Val {
				if !sa.Val[i].Valid || !sb.Val[i].Valid {
					s.Val = append(s.Val, metric.None)
					continue
				}
				s.Val = append(s.Val, fn(sa.Val[i].V, sb.Val[i].V))
			}
			out[solver][name] = s
		}
	}
	return out, nil
}

// SumAcrossMaps adds each solver's series over the given maps, point by
// point. Absent points are skipped; a point absent on every map stays absent.
func SumAcrossMaps(r Results, maps []config.Map) (map[string]*Series, error) {
	out := make(map[string]*Series, len(r))
	for solver, byMap := range r {
		var sum *Series
		for _, m := range maps {
			s, ok := byMap[m.Name]
			if !ok {
				return nil, fmt.Errorf("solver %q: no series for map %q", solver, m.Name)
			}
			if sum == nil {
				sum = &Series{X: append([]float64(nil), s.X...), Val: make([]metric.Value, len(s.Val))}
			}
			if len(s.Val) != len(sum.Val) {
				return nil, fmt.Errorf("solver %q map %q: %d points vs %d", solver, m.Name, len(s.Val), len(sum.Val))
			}
			for i, v := range s.Val {
				if !v.Valid {
					continue
				}
				sum.Val[i] = metric.Some(sum.Val[i].V + v.V)
			}
		}
		if sum != nil {
			out[solver] = sum
		}
	}
	return out, nil
}

// AcrossMaps wraps SumAcrossMaps so the sum can be rendered as a single map.
func AcrossMaps(r Results, maps []config.Map, name string) (Results, error) {
	sums, err := SumAcrossMaps(r, maps)
	if err != nil {
		return nil, err
	}
	out := make(Results, len(sums))
	for solver, s := range sums {
		out[solver] = map[string]*Series{name: s}
	}
	return out, nil
}
