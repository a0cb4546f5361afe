package reports

import (
	"io"

	"github.com/vinodismyname/sellerscope/internal/table"
)

// MarketReport is a Brand Analytics export with a metadata header line.
type MarketReport struct {
	Table    *table.Table
	Metadata Metadata
}

// ParseTopSearchTerms parses the Top Search Terms market report.
func ParseTopSearchTerms(r io.Reader) (*MarketReport, error) {
	spec := columnSpec{numeric: []string{"Search Frequency Rank"}, contains: []string{"Share"}}
	t, md, err := parseWithMetadata(r, spec)
	if err != nil {
		return nil, parseErr(KindTopSearchTerms, err)
	}
	return &MarketReport{Table: t, Metadata: md}, nil
}

// ParseSearchCatalogPerformance parses the Search Catalog Performance funnel report.
func ParseSearchCatalogPerformance(r io.Reader) (*MarketReport, error) {
	spec := columnSpec{contains: []string{"Impressions", "Clicks", "Basket", "Purchases", "Sales", "Rate", "Speed"}}
	t, md, err := parseWithMetadata(r, spec)
	if err != nil {
		return nil, parseErr(KindSearchCatalog, err)
	}
	return &MarketReport{Table: t, Metadata: md}, nil
}
