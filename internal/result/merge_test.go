package result_test

import (
	"testing"

	"github.com/signalnine/mapfbench/internal/result"
)

func TestPickIndex(t *testing.T) {
	tests := []struct {
		mode    string
		n       int
		want    int
		wantErr bool
	}{
		{"min", 4, 0, false},
		{"mid", 4, 1, false},
		{"mid", 5, 1, false},
		{"mid", 1, 0, false},
		{"max", 4, 3, false},
		{"median", 4, 0, true},
		{"min", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := result.PickIndex(tt.mode, tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("PickIndex(%q, %d) error = %v, wantErr %v", tt.mode, tt.n, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("PickIndex(%q, %d) = %d, want %d", tt.mode, tt.n, got, tt.want)
		}
	}
}

func TestMerge(t *testing.T) {
	root := t.TempDir()
	header := []string{"runtime", "solution cost"}
	runtimes := map[string][]string{
		"EECBS_a": {"5", "1", "9"},
		"EECBS_b": {"3", "2", "7"},
		"EECBS_c": {"4", "8", "1"},
	}
	var sources []result.Source
	for _, name := range []string{"EECBS_a", "EECBS_b", "EECBS_c"} {
		var rows [][]string
		for _, rt := range runtimes[name] {
			rows = append(rows, []string{rt, name})
		}
		path := result.Path(root, "m", "even", 10, name, "")
		if err := result.Write(path, header, rows); err != nil {
			t.Fatal(err)
		}
		sources = append(sources, result.Source{Name: name})
	}

	tests := []struct {
		mode string
		want []string
	}{
		{"min", []string{"EECBS_b", "EECBS_a", "EECBS_c"}},
		{"max", []string{"EECBS_a", "EECBS_c", "EECBS_a"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			opts := &result.MergeOpts{
				Root: root, Map: "m", Scen: "even", Agents: 10, InsNum: 3,
				Sources: sources, Mode: tt.mode, Objective: "runtime",
			}
			path, err := result.Merge(opts)
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			want := result.Path(root, "m", "even", 10, "EECBS_"+tt.mode+"_runtime", "")
			if path != want {
				t.Errorf("path: got %q, want %q", path, want)
			}
			tbl, err := result.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			for i, row := range tbl.Rows {
				got, _ := row.Text("solution cost")
				if got != tt.want[i] {
					t.Errorf("instance %d: picked %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestMergeShortFile(t *testing.T) {
	root := t.TempDir()
	path := result.Path(root, "m", "even", 10, "X", "")
	if err := result.Write(path, []string{"runtime"}, [][]string{{"1"}}); err != nil {
		t.Fatal(err)
	}
	_, err := result.Merge(&result.MergeOpts{
		Root: root, Map: "m", Scen: "even", Agents: 10, InsNum: 2,
		Sources: []result.Source{{Name: "X"}}, Mode: "min", Objective: "runtime",
	})
	if err == nil {
		t.Error("expected error for short file")
	}
}
