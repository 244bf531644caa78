// Package dataset contains the immutable tabular structure query results are
// materialized into.
package dataset

import (
	"github.com/cockroachdb/errors"
)

// Column is a named, typed sequence of nullable values. A nil value is NULL.
type Column struct {
	name   string
	typ    Type
	values []any
}

// NewColumn creates a column. The column takes ownership of values, which
// must not be modified afterwards.
func NewColumn(name string, typ Type, values ...any) Column {
	return Column{name: name, typ: typ, values: values}
}

func (c Column) Name() string {
	return c.name
}

// Type is the type tag mapped from the column's declared database type.
func (c Column) Type() Type {
	return c.typ
}

func (c Column) Len() int {
	return len(c.values)
}

func (c Column) Value(i int) any {
	return c.values[i]
}

// NullCount returns the number of NULL values in the column.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v == nil {
			n++
		}
	}
	return n
}

// Dataset is an ordered set of uniquely named columns of equal length.
type Dataset struct {
	columns []Column
	byName  map[string]int
	numRows int
}

// New validates and creates a Dataset from the given columns.
func New(columns ...Column) (*Dataset, error) {
	d := &Dataset{
		columns: make([]Column, len(columns)),
		byName:  make(map[string]int, len(columns)),
	}
	copy(d.columns, columns)
	for i, col := range d.columns {
		if _, ok := d.byName[col.name]; ok {
			return nil, errors.Newf("duplicate column name %q", col.name)
		}
		if _, err := ParseType(string(col.typ)); err != nil {
			return nil, errors.Wrapf(err, "column %q", col.name)
		}
		d.byName[col.name] = i
		if i == 0 {
			d.numRows = col.Len()
		} else if col.Len() != d.numRows {
			return nil, errors.Newf(
				"column %q has %d rows, expected %d",
				col.name,
				col.Len(),
				d.numRows,
			)
		}
	}
	return d, nil
}

// MustNew is New, panicking on error. Intended for tests and fixtures.
func MustNew(columns ...Column) *Dataset {
	d, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dataset) NumRows() int {
	return d.numRows
}

func (d *Dataset) NumColumns() int {
	return len(d.columns)
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	ret := make([]string, len(d.columns))
	for i, col := range d.columns {
		ret[i] = col.name
	}
	return ret
}

func (d *Dataset) Column(name string) (Column, bool) {
	idx, ok := d.byName[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[idx], true
}

func (d *Dataset) ColumnAt(i int) Column {
	return d.columns[i]
}

// Row returns a copy of the values of row i.
func (d *Dataset) Row(i int) []any {
	ret := make([]any, len(d.columns))
	for colIdx, col := range d.columns {
		ret[colIdx] = col.values[i]
	}
	return ret
}
