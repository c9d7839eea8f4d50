// Package table holds tabular data in memory and moves it between CSV,
// Parquet, and warehouse loads.
package table

// Type is the inferred storage type of a column.
type Type string

const (
	TypeInt64  Type = "INT64"
	TypeDouble Type = "DOUBLE"
	TypeBool   Type = "BOOLEAN"
	TypeString Type = "UTF8"
)

// Column describes one column: its label as supplied by the source and its
// inferred type. Labels are preserved verbatim; sanitization happens only at
// warehouse load time.
type Column struct {
	Name string
	Type Type
}

// Table is an ordered set of columns plus row data. Row values are indexed
// positionally to match Columns; a nil cell is a null.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the labels in column order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// SetColumnNames replaces the labels in place, preserving order and types.
// The slice must have one entry per column.
func (t *Table) SetColumnNames(names []string) {
	for i := range t.Columns {
		if i < len(names) {
			t.Columns[i].Name = names[i]
		}
	}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.Rows)
}
