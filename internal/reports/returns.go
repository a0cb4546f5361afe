package reports

import (
	"io"
	"strings"
	"time"

	"github.com/vinodismyname/sellerscope/internal/table"
)

var returnsNumeric = []string{"Return quantity", "Order quantity", "Refunded amount", "Order amount"}

var returnsDateColumns = []string{"Order date", "Return request date", "Return delivery date"}

var returnDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseReturns parses the tab-delimited returns export. Date columns are
// normalised to YYYY-MM-DD; unparseable dates become empty.
func ParseReturns(r io.Reader) (*table.Table, error) {
	content, err := readText(r)
	if err != nil {
		return nil, parseErr(KindReturns, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, parseErr(KindReturns, ErrEmptyInput)
	}
	t, err := parseDelimited(content, '\t', columnSpec{numeric: returnsNumeric})
	if err != nil {
		return nil, parseErr(KindReturns, err)
	}
	for _, col := range returnsDateColumns {
		if !t.HasColumn(col) {
			continue
		}
		for _, rec := range t.Records {
			rec.SetText(col, normalizeDate(rec.Str(col)))
		}
	}
	return t, nil
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range returnDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return ""
}
