package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var numberList = map[string]any{"type": "array", "items": map[string]any{"type": "number"}}

// schema describes the document shape; semantic rules live in validate.
var schema = map[string]any{
	"type":     "object",
	"required": []any{"exp_path", "maps", "solvers", "time_limit", "ins_num"},
	"properties": map[string]any{
		"exp_path":    map[string]any{"type": "string"},
		"time_limit":  map[string]any{"type": "number"},
		"ins_num":     map[string]any{"type": "integer"},
		"f_weights":   numberList,
		"plot_ci":     map[string]any{"type": "boolean"},
		"plot_std":    map[string]any{"type": "boolean"},
		"std_ddof":    map[string]any{"type": "integer", "enum": []any{0, 1}},
		"show_legend": map[string]any{"type": "boolean"},
		"show_title":  map[string]any{"type": "boolean"},
		"runtime_cap": map[string]any{"type": "number"},
		"out_dir":     map[string]any{"type": "string"},
		"ci_style":    map[string]any{"type": "string", "enum": []any{"band", "bar"}},
		"metric_offsets": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "number"},
		},
		"maps": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "num_of_agents", "scens"},
				"properties": map[string]any{
					"name":          map[string]any{"type": "string"},
					"label":         map[string]any{"type": "string"},
					"num_of_agents": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
					"scens":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		"solvers": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name"},
				"properties": map[string]any{
					"name":   map[string]any{"type": "string"},
					"label":  map[string]any{"type": "string"},
					"color":  map[string]any{"type": "string"},
					"marker": map[string]any{"type": "string"},
					"w":      map[string]any{"type": "number"},
					"dir":    map[string]any{"type": "string"},
				},
			},
		},
		"plots": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"x", "y"},
				"properties": map[string]any{
					"x": map[string]any{"type": "string", "enum": []any{"num", "w", "ins"}},
					"y": map[string]any{"type": "string"},
				},
			},
		},
	},
}

func checkSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if res.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range res.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema: %s", strings.Join(errs, ", "))
}
