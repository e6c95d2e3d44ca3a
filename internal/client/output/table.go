package output

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Table collects rows and renders them as aligned columns
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable starts a table with the given column headers
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// Row appends a row. Empty cells are rendered as "-".
func (t *Table) Row(values ...string) {
	row := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			v = "-"
		}
		row[i] = v
	}
	t.rows = append(t.rows, row)
}

// Render writes the header and all rows to Stdout
func (t *Table) Render() error {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.headers, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// Success reports a positive outcome on Stdout
func Success(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// Failure reports a negative outcome on Stderr
func Failure(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "✗ "+format+"\n", args...)
}

// Warning reports something worth attention on Stderr
func Warning(format string, args ...interface{}) {
	fmt.Fprintf(Stderr, "⚠ "+format+"\n", args...)
}
