package reports

import (
	"io"

	"github.com/vinodismyname/sellerscope/internal/table"
)

// SQPReport is a Search Query Performance export with its header metadata.
type SQPReport struct {
	Table    *table.Table
	Metadata Metadata
}

// View distinguishes the brand and ASIN flavours of the SQP report.
type View string

const (
	ViewBrand View = "Brand"
	ViewASIN  View = "ASIN"
)

func sqpNumericColumns(prefix string) []string {
	cols := []string{ColSearchQueryScore, ColSearchQueryVolume}
	for _, stage := range []struct{ name, rate string }{
		{"Impressions", ""},
		{"Clicks", "Clicks: Click Rate %"},
		{"Cart Adds", "Cart Adds: Cart Add Rate %"},
		{"Purchases", "Purchases: Purchase Rate %"},
	} {
		cols = append(cols, SQPTotalColumn(stage.name))
		if stage.rate != "" {
			cols = append(cols, stage.rate)
		}
		cols = append(cols, SQPCountColumn(stage.name, prefix), SQPShareColumn(stage.name, prefix))
	}
	return cols
}

// ParseSQPBrandView parses the SQP Brand View export. Price columns are
// coerced alongside the funnel counts; unknown columns pass through.
func ParseSQPBrandView(r io.Reader) (*SQPReport, error) {
	spec := columnSpec{numeric: sqpNumericColumns(string(ViewBrand)), contains: []string{"Price"}}
	t, md, err := parseWithMetadata(r, spec)
	if err != nil {
		return nil, parseErr(KindSQPBrand, err)
	}
	return &SQPReport{Table: t, Metadata: md}, nil
}

// ParseSQPASINView parses the SQP ASIN View export. The ASIN under report is
// exposed as Metadata["asin"].
func ParseSQPASINView(r io.Reader) (*SQPReport, error) {
	spec := columnSpec{numeric: sqpNumericColumns(string(ViewASIN))}
	t, md, err := parseWithMetadata(r, spec)
	if err != nil {
		return nil, parseErr(KindSQPASIN, err)
	}
	// Keys are at most two words, so "ASIN or Product" lands as or_product.
	for _, k := range []string{"asin_or_product", "or_product"} {
		if v, ok := md[k]; ok {
			md["asin"] = v
			break
		}
	}
	return &SQPReport{Table: t, Metadata: md}, nil
}
