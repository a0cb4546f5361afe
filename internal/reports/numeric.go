package reports

import (
	"strings"

	"github.com/shopspring/decimal"
)

var numericStripper = strings.NewReplacer("$", "", "£", "", "€", "", ",", "", "%", "")

// CleanNumeric converts a report cell to a float. Empty cells, dash
// placeholders, and anything unparseable become 0.
func CleanNumeric(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || s == "--" {
		return 0
	}
	s = strings.TrimSpace(numericStripper.Replace(s))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// CleanPercentage parses a percentage cell. Reports store percentages as
// plain numbers (15.5 means 15.5%), so the value is kept on that scale.
func CleanPercentage(raw string) float64 {
	return CleanNumeric(raw)
}
