// Package table holds the normalized tabular form every report parser emits.
package table

import "strings"

// Record is one entity instance (search query, ASIN, keyword, SKU).
// Coerced columns live in nums; every other column passes through as text.
type Record struct {
	text map[string]string
	nums map[string]float64
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{text: map[string]string{}, nums: map[string]float64{}}
}

// SetText stores a pass-through value.
func (r Record) SetText(col, v string) {
	delete(r.nums, col)
	r.text[col] = v
}

// SetFloat stores a coerced numeric value.
func (r Record) SetFloat(col string, v float64) {
	delete(r.text, col)
	r.nums[col] = v
}

// Str returns the text value of col, or "" when absent or numeric.
func (r Record) Str(col string) string {
	return r.text[col]
}

// Float returns the numeric value of col, or 0 when absent or not coerced.
func (r Record) Float(col string) float64 {
	return r.nums[col]
}

// IsNumeric reports whether col was coerced to a number.
func (r Record) IsNumeric(col string) bool {
	_, ok := r.nums[col]
	return ok
}

// Has reports whether the record carries col in either form.
func (r Record) Has(col string) bool {
	if _, ok := r.nums[col]; ok {
		return true
	}
	_, ok := r.text[col]
	return ok
}

// Table is an ordered set of columns plus records.
type Table struct {
	Columns []string
	Records []Record
}

// New creates a table over the given header.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Append adds a record.
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records; nil tables are empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Empty reports whether the table is nil or has no records.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// HasColumn reports whether col is part of the header.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// ColumnsMatching returns header names containing any of the substrings.
func (t *Table) ColumnsMatching(substrings ...string) []string {
	if t == nil {
		return nil
	}
	var out []string
	for _, c := range t.Columns {
		for _, s := range substrings {
			if strings.Contains(c, s) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Sum totals a numeric column over every record.
func (t *Table) Sum(col string) float64 {
	if t == nil {
		return 0
	}
	var s float64
	for _, r := range t.Records {
		s += r.Float(col)
	}
	return s
}

// Mean averages a numeric column; empty tables yield 0.
func (t *Table) Mean(col string) float64 {
	n := t.Len()
	if n == 0 {
		return 0
	}
	return t.Sum(col) / float64(n)
}

// CleanHeader strips stray whitespace and quote characters from a column name.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, `"`, "")
	return strings.TrimSpace(h)
}
