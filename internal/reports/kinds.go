package reports

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a supported report export.
type Kind string

const (
	KindSQPBrand        Kind = "sqp_brand"
	KindSQPASIN         Kind = "sqp_asin"
	KindBusinessReport  Kind = "business_report"
	KindPPCBulk         Kind = "ppc_bulk"
	KindInventory       Kind = "inventory"
	KindCOGS            Kind = "cogs"
	KindFeeReport       Kind = "fee_report"
	KindCategoryListing Kind = "category_listing"
	KindReturns         Kind = "returns"
	KindTopSearchTerms  Kind = "top_search_terms"
	KindSearchCatalog   Kind = "search_catalog"
)

// Kinds lists every supported report kind.
var Kinds = []Kind{
	KindSQPBrand, KindSQPASIN, KindBusinessReport, KindPPCBulk, KindInventory,
	KindCOGS, KindFeeReport, KindCategoryListing, KindReturns,
	KindTopSearchTerms, KindSearchCatalog,
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsWorkbook reports whether the kind is a spreadsheet rather than text.
func (k Kind) IsWorkbook() bool {
	return k == KindPPCBulk || k == KindCategoryListing
}

// Extensions lists the file extensions accepted for the kind.
func (k Kind) Extensions() []string {
	switch k {
	case KindPPCBulk:
		return []string{".xlsx", ".xlsm"}
	case KindCategoryListing:
		return []string{".xlsm", ".xlsx"}
	case KindReturns:
		return []string{".tsv", ".txt", ".csv"}
	default:
		return []string{".csv", ".txt"}
	}
}

// ErrEmptyInput indicates a file with no readable content.
var ErrEmptyInput = errors.New("reports: empty input")

// ErrBinaryInput indicates a text report that is actually binary (for
// example a workbook uploaded in place of a CSV export).
var ErrBinaryInput = errors.New("reports: binary content in text report")

// ErrLayoutMismatch indicates a fixed-position workbook whose header row does
// not carry the expected column title, usually an older or foreign template.
var ErrLayoutMismatch = errors.New("reports: workbook layout does not match template")

// ErrUnknownKind indicates a report kind outside the supported set.
var ErrUnknownKind = errors.New("reports: unknown report kind")

// ParseError is the single, file-scoped failure a parser surfaces.
type ParseError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("reports: parse %s %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("reports: parse %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Kind: kind, Err: err}
}
