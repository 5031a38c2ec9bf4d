package consumption

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ja7ad/joulewatch/pkg/types"
)

// Table is an immutable comparison table sorted by strictly increasing threshold.
type Table struct {
	entries []Comparison
}

// NewTable validates and copies entries into a Table.
func NewTable(entries []Comparison) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Threshold <= entries[i-1].Threshold {
			return nil, fmt.Errorf("%w: entry %d (%g) after %g",
				ErrUnsortedTable, i, float64(entries[i].Threshold), float64(entries[i-1].Threshold))
		}
	}
	return &Table{entries: append([]Comparison(nil), entries...)}, nil
}

// DefaultTable returns the built-in comparison table.
func DefaultTable() *Table {
	t, err := NewTable(_defaultComparisons)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTable reads a YAML list of {threshold, symbol, description} entries.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("consumption: read table: %w", err)
	}
	var entries []Comparison
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("consumption: parse table %s: %w", path, err)
	}
	return NewTable(entries)
}

// Lookup returns the entry with the largest threshold <= total.
// The scan runs from the top down; the table has only a few dozen entries.
func (t *Table) Lookup(total types.Joules) (Comparison, bool) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if total >= t.entries[i].Threshold {
			return t.entries[i], true
		}
	}
	return Comparison{}, false
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }
