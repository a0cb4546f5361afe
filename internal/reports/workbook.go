package reports

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vinodismyname/sellerscope/config"
	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/table"
	"github.com/vinodismyname/sellerscope/internal/workbooks"
)

// ParsePPCBulk reads the allow-listed sheets of an advertising bulk workbook.
// Row 1 is the header; sheets that are absent or hold no data rows are skipped.
func ParsePPCBulk(ctx context.Context, mgr *workbooks.Manager, name string, r io.Reader) (*ppc.Bulk, error) {
	bulk := ppc.NewBulk()
	err := orDefault(mgr).With(ctx, name, r, func(wb *workbooks.Workbook) error {
		for _, sheet := range wb.Sheets() {
			kind, ok := ppc.SheetKindFromName(sheet)
			if !ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := wb.Rows(sheet)
			if err != nil {
				return err
			}
			if len(rows) <= 1 {
				continue
			}
			bulk.Set(ppc.NewSheet(kind, sheetTable(rows, columnSpec{numeric: ppc.NumericColumns})))
		}
		return nil
	})
	if err != nil {
		return nil, &ParseError{Kind: KindPPCBulk, Name: name, Err: err}
	}
	return bulk, nil
}

// orDefault lets callers without capacity limits pass a nil manager.
func orDefault(mgr *workbooks.Manager) *workbooks.Manager {
	if mgr == nil {
		return workbooks.NewManager(nil)
	}
	return mgr
}

func sheetTable(rows [][]string, spec columnSpec) *table.Table {
	header := rows[0]
	cols := make([]string, len(header))
	numeric := make([]bool, len(header))
	for i, h := range header {
		cols[i] = table.CleanHeader(h)
		numeric[i] = spec.isNumeric(cols[i])
	}
	t := table.New(cols)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		t.Append(buildRecord(cols, numeric, row))
	}
	return t
}

// LayoutColumn binds a fixed column position to a semantic field name.
type LayoutColumn struct {
	Name  string
	Index int
}

// CategoryListingLayout describes where data sits in a Category Listing
// Report. A new report template only needs a new layout value.
type CategoryListingLayout struct {
	Sheet     string
	HeaderRow int
	DataRow   int
	Columns   []LayoutColumn
	KeyColumn string
	// KeyTitle must appear in the header cell above KeyColumn.
	KeyTitle  string
}

func (l CategoryListingLayout) keyIndex() int {
	for _, c := range l.Columns {
		if c.Name == l.KeyColumn {
			return c.Index
		}
	}
	return -1
}

// checkHeader confirms the header row labels the key column as expected.
// Sheets that stop before the header row are left to the row scan.
func (l CategoryListingLayout) checkHeader(rows [][]string) error {
	idx := l.keyIndex()
	if l.KeyTitle == "" || idx < 0 || len(rows) <= l.HeaderRow {
		return nil
	}
	header := rows[l.HeaderRow]
	got := ""
	if idx < len(header) {
		got = strings.TrimSpace(header[idx])
	}
	if !strings.Contains(strings.ToLower(got), strings.ToLower(l.KeyTitle)) {
		return fmt.Errorf("%w: header row %d column %d is %q, want %q", ErrLayoutMismatch, l.HeaderRow+1, idx+1, got, l.KeyTitle)
	}
	return nil
}

// MinWidth is the narrowest row that can carry every mapped column.
func (l CategoryListingLayout) MinWidth() int {
	w := 0
	for _, c := range l.Columns {
		if c.Index+1 > w {
			w = c.Index + 1
		}
	}
	return w
}

// DefaultCategoryListingLayout matches the current Category Listing template.
var DefaultCategoryListingLayout = CategoryListingLayout{
	Sheet:     config.CategoryListingSheet,
	HeaderRow: config.CategoryListingHeaderRow,
	DataRow:   config.CategoryListingDataRow,
	KeyColumn: ColCLRSKU,
	KeyTitle:  "SKU",
	Columns: []LayoutColumn{
		{ColCLRStatus, 0},
		{ColCLRSKU, 2},
		{ColCLRItemName, 5},
		{ColCLRBrandName, 6},
		{ColCLRProductID, 8},
		{ColCLRColour, 100},
		{ColCLRSize, 101},
		{ColCLRParentageLevel, 287},
		{ColCLRParentSKU, 288},
		{ColCLRVariationTheme, 289},
	},
}

// ParseCategoryListing extracts the mapped columns from a Category Listing
// Report. A header row that does not title the key column fails with
// ErrLayoutMismatch. Rows narrower than the layout or without a key value
// are dropped.
func ParseCategoryListing(ctx context.Context, mgr *workbooks.Manager, name string, r io.Reader, layout CategoryListingLayout) (*table.Table, error) {
	cols := make([]string, len(layout.Columns))
	for i, c := range layout.Columns {
		cols[i] = c.Name
	}
	out := table.New(cols)
	minWidth := layout.MinWidth()

	err := orDefault(mgr).With(ctx, name, r, func(wb *workbooks.Workbook) error {
		rows, err := wb.Rows(layout.Sheet)
		if err != nil {
			return err
		}
		if err := layout.checkHeader(rows); err != nil {
			return err
		}
		if len(rows) <= layout.DataRow {
			return nil
		}
		for _, row := range rows[layout.DataRow:] {
			if len(row) < minWidth {
				continue
			}
			rec := table.NewRecord()
			for _, c := range layout.Columns {
				rec.SetText(c.Name, strings.TrimSpace(row[c.Index]))
			}
			if rec.Str(layout.KeyColumn) == "" {
				continue
			}
			out.Append(rec)
		}
		return nil
	})
	if err != nil {
		return nil, &ParseError{Kind: KindCategoryListing, Name: name, Err: err}
	}
	return out, nil
}
