package result

import (
	"fmt"
	"strconv"
)

// Row is one line of a per-instance result file.
type Row struct {
	table  *Table
	values []string
}

// Table is a loaded result file: a header and the rows beneath it.
type Table struct {
	Path    string
	Header  []string
	Rows    []Row
	columns map[string]int
}

func newTable(path string, header []string) *Table {
	t := &Table{Path: path, Header: header, columns: make(map[string]int, len(header))}
	for i, h := range header {
		t.columns[h] = i
	}
	return t
}

// Has reports whether the file carries the named column.
func (t *Table) Has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

func (t *Table) append(values []string) {
	t.Rows = append(t.Rows, Row{table: t, values: values})
}

// Text returns the raw field value.
func (r Row) Text(column string) (string, error) {
	idx, ok := r.table.columns[column]
	if !ok {
		return "", fmt.Errorf("%s: no column %q", r.table.Path, column)
	}
	return r.values[idx], nil
}

// Float returns the field parsed as a number.
func (r Row) Float(column string) (float64, error) {
	s, err := r.Text(column)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: column %q: %w", r.table.Path, column, err)
	}
	return v, nil
}
