package result

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ErrMissing marks a result file absent from the experiment tree.
var ErrMissing = errors.New("result file does not exist")

// Dir is the directory holding one solver's files for a map.
func Dir(root, mapName, solverDir string) string {
	return filepath.Join(root, mapName, solverDir)
}

// FileName is the per-bucket file name written by the solver driver.
func FileName(mapName, scen string, agents int, solverName string) string {
	return mapName + "-" + scen + "-" + strconv.Itoa(agents) + "-" + solverName + ".csv"
}

// Path locates the result file of one (map, scenario, agent count, solver)
// bucket. An empty solverDir means the solver name.
func Path(root, mapName, scen string, agents int, solverName, solverDir string) string {
	if solverDir == "" {
		solverDir = solverName
	}
	return filepath.Join(Dir(root, mapName, solverDir), FileName(mapName, scen, agents, solverName))
}

// Load reads a result file. A missing file yields an error wrapping ErrMissing.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return nil, fmt.Errorf("opening results: %w", err)
	}
	defer f.Close()
	return Read(path, f)
}

// Read parses CSV rows with a header line. path is used in error messages.
func Read(path string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: empty result file", path)
		}
		return nil, fmt.Errorf("%s: reading header: %w", path, err)
	}
	t := newTable(path, header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		t.append(rec)
	}
	return t, nil
}

// Write stores a table as CSV, creating parent directories.
func Write(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating result dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing rows: %w", err)
	}
	return f.Close()
}
