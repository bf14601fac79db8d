// Package metric turns result rows into plotted scalars. Each metric id maps
// to a transform; ids without an entry use the generic counter transform.
package metric

import (
	"encoding/json"
	"fmt"

	"github.com/signalnine/mapfbench/internal/result"
)

// Column names written by the solver driver.
const (
	ColRuntime     = "runtime"
	ColCost        = "solution cost"
	ColHLGenerated = "#high-level generated"
	ColInConf      = "num_in_conf"
	ColTotalConf   = "num_total_conf"
	ColFocalLL     = "#low-level in focal"
	ColSinglePlans = "#findPathForSingleAgent"
	ColMinF        = "min f value"
	ColRootG       = "root g value"
	ColMaxMASize   = "max_ma_size"
	ColMVCRuntime  = "runtime of solving MVC"
	ColHLExpanded  = "#high-level expanded"
)

// Metric ids that are not plain columns.
const (
	Succ        = "succ"
	InConfRatio = "in_conf_ratio"
	FocalRatio  = "focal_ratio"
)

// Value is a scalar that may be absent. Absent values are left out of sums
// and charts.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// None is the absent value.
var None = Value{}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v Value) String() string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%g", v.V)
}

// Mode selects how a transform treats out-of-range data.
type Mode int

const (
	// Bucket is used when values are summed per sweep coordinate. Negative
	// counters are data bugs there.
	Bucket Mode = iota
	// Instance is used for per-instance series, where negative values mean
	// "not computed" and become absent.
	Instance
)

// Context carries the run-wide limits a transform needs.
type Context struct {
	TimeLimit  float64
	RuntimeCap float64
	Mode       Mode
}

// Transform computes one metric value from a result row.
type Transform func(row result.Row, ctx Context) (Value, error)

// Spec describes how a metric is computed.
type Spec struct {
	Transform Transform
	// Sampled metrics feed the confidence interval.
	Sampled bool
}

// Table maps metric ids to their Spec.
type Table map[string]Spec

// DefaultOffsets are baseline corrections applied to raw counters.
// The root CT node is counted as generated by the driver.
var DefaultOffsets = map[string]float64{
	ColHLGenerated: -1,
}

// Default returns the metric table with DefaultOffsets applied.
func Default() Table {
	t := Table{
		Succ:        {Transform: success},
		ColRuntime:  {Transform: runtime, Sampled: true},
		InConfRatio: {Transform: ratio(ColInConf, ColTotalConf), Sampled: true},
		FocalRatio:  {Transform: ratio(ColFocalLL, ColSinglePlans), Sampled: true},
	}
	return t.WithOffsets(DefaultOffsets)
}

// WithOffsets returns a copy of t where the named counters use the generic
// transform shifted by the given offset.
func (t Table) WithOffsets(offsets map[string]float64) Table {
	out := make(Table, len(t)+len(offsets))
	for k, v := range t {
		out[k] = v
	}
	for name, off := range offsets {
		out[name] = Spec{Transform: counter(name, off), Sampled: true}
	}
	return out
}

// Lookup returns how a metric is computed, falling back to the raw counter.
func (t Table) Lookup(name string) Spec {
	if s, ok := t[name]; ok {
		return s
	}
	return Spec{Transform: counter(name, 0), Sampled: true}
}

// Apply transforms one row.
func (t Table) Apply(name string, row result.Row, ctx Context) (Value, error) {
	return t.Lookup(name).Transform(row, ctx)
}

func success(row result.Row, ctx Context) (Value, error) {
	cost, err := row.Float(ColCost)
	if err != nil {
		return None, err
	}
	rt, err := row.Float(ColRuntime)
	if err != nil {
		return None, err
	}
	if cost >= 0 && rt <= ctx.TimeLimit {
		return Some(1), nil
	}
	return Some(0), nil
}

func runtime(row result.Row, ctx Context) (Value, error) {
	rt, err := row.Float(ColRuntime)
	if err != nil {
		return None, err
	}
	return Some(min(rt, ctx.RuntimeCap)), nil
}

func ratio(num, den string) Transform {
	return func(row result.Row, _ Context) (Value, error) {
		n, err := row.Float(num)
		if err != nil {
			return None, err
		}
		d, err := row.Float(den)
		if err != nil {
			return None, err
		}
		if n == 0 || d == 0 {
			return None, nil
		}
		return Some(n / d), nil
	}
}

func counter(name string, offset float64) Transform {
	return func(row result.Row, ctx Context) (Value, error) {
		v, err := row.Float(name)
		if err != nil {
			return None, err
		}
		if v < 0 {
			if ctx.Mode == Instance {
				return None, nil
			}
			panic(fmt.Sprintf("metric %q: negative value %v in %s", name, v, rowSource(row)))
		}
		return Some(v + offset), nil
	}
}

func rowSource(row result.Row) string {
	if inst, err := row.Text("instance name"); err == nil {
		return inst
	}
	return "result row"
}
