package reports

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vinodismyname/sellerscope/internal/table"
)

// readText decodes the whole stream as UTF-8, dropping a leading BOM.
func readText(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return "", ErrBinaryInput
	}
	return string(b), nil
}

// splitMetadataLine returns the first line and the remainder of a report that
// carries a metadata header before its CSV body.
func splitMetadataLine(content string) (string, string, error) {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return "", "", ErrEmptyInput
	}
	first, rest, _ := strings.Cut(content, "\n")
	return first, rest, nil
}

// columnSpec decides which columns get coerced to numbers.
type columnSpec struct {
	numeric  []string
	contains []string
}

func (s columnSpec) isNumeric(col string) bool {
	for _, c := range s.numeric {
		if c == col {
			return true
		}
	}
	for _, sub := range s.contains {
		if strings.Contains(col, sub) {
			return true
		}
	}
	return false
}

// parseDelimited reads header + rows and coerces columns named by spec.
// Columns named in spec but absent from the file are skipped silently.
func parseDelimited(body string, comma rune, spec columnSpec) (*table.Table, error) {
	cr := csv.NewReader(strings.NewReader(body))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = table.CleanHeader(h)
	}
	numeric := make([]bool, len(cols))
	for i, c := range cols {
		numeric[i] = spec.isNumeric(c)
	}

	t := table.New(cols)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRow(row) {
			continue
		}
		t.Append(buildRecord(cols, numeric, row))
	}
	return t, nil
}

// buildRecord maps one raw row onto the header. Missing trailing cells are
// treated as empty.
func buildRecord(cols []string, numeric []bool, row []string) table.Record {
	rec := table.NewRecord()
	for i, c := range cols {
		if c == "" {
			continue
		}
		var v string
		if i < len(row) {
			v = row[i]
		}
		if numeric[i] {
			rec.SetFloat(c, CleanNumeric(v))
		} else {
			rec.SetText(c, strings.TrimSpace(v))
		}
	}
	return rec
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCSV decodes a plain comma-delimited report.
func parseCSV(r io.Reader, spec columnSpec) (*table.Table, error) {
	content, err := readText(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}
	return parseDelimited(content, ',', spec)
}

// parseWithMetadata decodes a report whose first line is a metadata header.
func parseWithMetadata(r io.Reader, spec columnSpec) (*table.Table, Metadata, error) {
	content, err := readText(r)
	if err != nil {
		return nil, nil, err
	}
	first, body, err := splitMetadataLine(content)
	if err != nil {
		return nil, nil, err
	}
	md := ParseMetadata(first)
	t, err := parseDelimited(body, ',', spec)
	if err != nil {
		return nil, nil, err
	}
	return t, md, nil
}
