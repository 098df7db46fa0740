// Package dataset loads tab-separated housing data into a columnar table and
// prepares feature matrices for the estimators. Columns are typed at load
// time: a column whose every non-missing cell parses as a float becomes
// numeric, everything else stays text.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/pkg/errors"
)

// ColumnKind distinguishes numeric columns from text columns.
type ColumnKind int

const (
	// Numeric columns hold float64 values; NaN marks a missing cell.
	Numeric ColumnKind = iota
	// Text columns hold strings; the empty string marks a missing cell.
	Text
)

// Column is a single named column. Exactly one of Floats or Strings is
// populated, according to Kind.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64
	Strings []string
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Missing returns the number of missing cells in the column.
func (c *Column) Missing() int {
	count := 0
	if c.Kind == Numeric {
		for _, v := range c.Floats {
			if math.IsNaN(v) {
				count++
			}
		}
	} else {
		for _, s := range c.Strings {
			if s == "" {
				count++
			}
		}
	}
	return count
}

// Table is a rectangular collection of uniquely named, equally long columns.
// Tables are immutable: every operation returns a derived table and leaves
// the receiver untouched, sharing the columns it does not modify.
type Table struct {
	columns []Column
	index   map[string]int
}

// NewTable builds a table from columns, validating that names are unique and
// lengths agree.
func NewTable(columns ...Column) (*Table, error) {
	index := make(map[string]int, len(columns))
	rows := -1

	for i, col := range columns {
		if col.Name == "" {
			return nil, errors.NewValueError("NewTable", "column with empty name")
		}
		if _, dup := index[col.Name]; dup {
			return nil, errors.NewValueError("NewTable", "duplicate column name "+col.Name)
		}
		index[col.Name] = i

		if rows == -1 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, errors.NewDimensionError("NewTable", rows, col.Len(), 0)
		}
	}

	return &Table{columns: columns, index: index}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or a KeyError when it does not exist.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewKeyError("Table.Column", name)
	}
	return &t.columns[i], nil
}

// MissingCells returns the total number of missing cells across all columns.
func (t *Table) MissingCells() int {
	count := 0
	for i := range t.columns {
		count += t.columns[i].Missing()
	}
	return count
}

// Select returns a table holding exactly the named columns, in the requested
// order. Selecting is composable: selecting a subset of an earlier selection
// equals selecting that subset directly. A KeyError names the first column
// that does not exist.
func (t *Table) Select(names ...string) (*Table, error) {
	if len(names) == 0 {
		return nil, errors.NewValueError("Table.Select", "no columns requested")
	}

	columns := make([]Column, 0, len(names))
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return nil, errors.NewKeyError("Table.Select", name)
		}
		columns = append(columns, t.columns[i])
	}

	return NewTable(columns...)
}

// SumColumns appends a numeric column holding the row-wise sum of the named
// source columns. A missing cell in any source makes that row's sum NaN, so
// missingness propagates instead of silently undercounting. The new name
// must not collide with an existing column.
func (t *Table) SumColumns(name string, sources ...string) (*Table, error) {
	if len(sources) == 0 {
		return nil, errors.NewValueError("Table.SumColumns", "no source columns")
	}
	if _, exists := t.index[name]; exists {
		return nil, errors.NewValueError("Table.SumColumns", "column "+name+" already exists")
	}

	cols := make([]*Column, len(sources))
	for i, src := range sources {
		col, err := t.Column(src)
		if err != nil {
			return nil, err
		}
		if col.Kind != Numeric {
			return nil, errors.NewValueError("Table.SumColumns", "column "+src+" is not numeric")
		}
		cols[i] = col
	}

	rows := t.NumRows()
	sums := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for _, col := range cols {
			sum += col.Floats[i]
		}
		sums[i] = sum // NaN in any source carries through the addition
	}

	columns := make([]Column, len(t.columns), len(t.columns)+1)
	copy(columns, t.columns)
	columns = append(columns, Column{Name: name, Kind: Numeric, Floats: sums})

	return NewTable(columns...)
}

// FillMissing returns a table with every NaN in the numeric columns replaced
// by v. Text columns pass through unchanged.
func (t *Table) FillMissing(v float64) *Table {
	columns := make([]Column, len(t.columns))
	for i, col := range t.columns {
		if col.Kind != Numeric || col.Missing() == 0 {
			columns[i] = col
			continue
		}

		filled := make([]float64, len(col.Floats))
		for j, x := range col.Floats {
			if math.IsNaN(x) {
				filled[j] = v
			} else {
				filled[j] = x
			}
		}
		columns[i] = Column{Name: col.Name, Kind: Numeric, Floats: filled}
	}

	// Validation cannot fail here: names and lengths come from a valid table.
	out, _ := NewTable(columns...)
	return out
}

// Matrix assembles the named numeric columns into an n×k dense matrix, one
// column per name in the requested order. Text columns are a ValueError,
// absent ones a KeyError.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, errors.NewValueError("Table.Matrix", "no columns requested")
	}

	rows := t.NumRows()
	if rows == 0 {
		return nil, errors.NewModelError("Table.Matrix", "empty table", errors.ErrEmptyData)
	}

	out := mat.NewDense(rows, len(names), nil)
	for j, name := range names {
		idx, ok := t.index[name]
		if !ok {
			return nil, errors.NewKeyError("Table.Matrix", name)
		}
		col := &t.columns[idx]
		if col.Kind != Numeric {
			return nil, errors.NewValueError("Table.Matrix", "column "+name+" is not numeric")
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, col.Floats[i])
		}
	}

	return out, nil
}

// Vector extracts a single numeric column as a vector, the shape the label
// takes on its way to the estimators.
func (t *Table) Vector(name string) (*mat.VecDense, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if col.Kind != Numeric {
		return nil, errors.NewValueError("Table.Vector", "column "+name+" is not numeric")
	}
	if len(col.Floats) == 0 {
		return nil, errors.NewModelError("Table.Vector", "empty table", errors.ErrEmptyData)
	}

	out := mat.NewVecDense(len(col.Floats), nil)
	for i, v := range col.Floats {
		out.SetVec(i, v)
	}
	return out, nil
}
