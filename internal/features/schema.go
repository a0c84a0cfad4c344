package features

import (
	"fmt"
	"slices"

	"github.com/wonny/salescast/internal/contracts"
)

// Columns returns the full feature column list: categorical then numeric, in wire order
func Columns() []string {
	cols := make([]string, 0, len(contracts.CategoricalColumns)+len(contracts.NumericColumns))
	cols = append(cols, contracts.CategoricalColumns...)
	cols = append(cols, contracts.NumericColumns...)
	return cols
}

// ValidateColumns fails with ErrSchemaMismatch unless cols equals Columns() exactly
func ValidateColumns(cols []string) error {
	want := Columns()
	if slices.Equal(cols, want) {
		return nil
	}
	var missing []string
	for _, c := range want {
		if !slices.Contains(cols, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %v", contracts.ErrSchemaMismatch, missing)
	}
	return fmt.Errorf("%w: got columns %v, want %v", contracts.ErrSchemaMismatch, cols, want)
}

// Table 피처 테이블 (학습 시 Target 포함, 추론 시 nil)
type Table struct {
	Columns []string
	Rows    []contracts.FeatureRow
	Target  []float64
}

// NewTable wraps rows with the current schema
func NewTable(rows []contracts.FeatureRow, target []float64) Table {
	return Table{Columns: Columns(), Rows: rows, Target: target}
}

// Validate checks the column contract and target alignment
func (t Table) Validate() error {
	if err := ValidateColumns(t.Columns); err != nil {
		return err
	}
	if t.Target != nil && len(t.Target) != len(t.Rows) {
		return fmt.Errorf("%w: %d rows but %d targets", contracts.ErrSchemaMismatch, len(t.Rows), len(t.Target))
	}
	return nil
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// Matrix returns the numeric block in NumericColumns order
func (t Table) Matrix() [][]float64 {
	out := make([][]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Numeric()
	}
	return out
}

// Products returns the categorical column
func (t Table) Products() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.ProductName
	}
	return out
}
