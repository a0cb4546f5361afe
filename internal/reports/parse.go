package reports

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vinodismyname/sellerscope/internal/ppc"
	"github.com/vinodismyname/sellerscope/internal/table"
	"github.com/vinodismyname/sellerscope/internal/workbooks"
)

// Parsed is the normalized output of one report file. PPC is set only for
// bulk workbooks; Metadata only for reports with a metadata header.
type Parsed struct {
	Kind     Kind
	Name     string
	Table    *table.Table
	Metadata Metadata
	PPC      *ppc.Bulk
}

// Rows returns the number of normalized records (all sheets for PPC).
func (p *Parsed) Rows() int {
	if p == nil {
		return 0
	}
	if p.PPC != nil {
		n := 0
		for _, k := range p.PPC.Kinds() {
			s, _ := p.PPC.Sheet(k)
			n += len(s.Rows)
		}
		return n
	}
	return p.Table.Len()
}

// Parse dispatches to the parser for kind. Failures are returned as a single
// *ParseError naming the file.
func Parse(ctx context.Context, mgr *workbooks.Manager, kind Kind, name string, r io.Reader) (*Parsed, error) {
	p, err := parse(ctx, mgr, kind, name, r)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			if pe.Name == "" {
				pe.Name = name
			}
			return nil, pe
		}
		return nil, &ParseError{Kind: kind, Name: name, Err: err}
	}
	p.Kind, p.Name = kind, name
	return p, nil
}

func parse(ctx context.Context, mgr *workbooks.Manager, kind Kind, name string, r io.Reader) (*Parsed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch kind {
	case KindSQPBrand:
		rep, err := ParseSQPBrandView(r)
		if err != nil {
			return nil, err
		}
		return &Parsed{Table: rep.Table, Metadata: rep.Metadata}, nil
	case KindSQPASIN:
		rep, err := ParseSQPASINView(r)
		if err != nil {
			return nil, err
		}
		return &Parsed{Table: rep.Table, Metadata: rep.Metadata}, nil
	case KindTopSearchTerms:
		rep, err := ParseTopSearchTerms(r)
		if err != nil {
			return nil, err
		}
		return &Parsed{Table: rep.Table, Metadata: rep.Metadata}, nil
	case KindSearchCatalog:
		rep, err := ParseSearchCatalogPerformance(r)
		if err != nil {
			return nil, err
		}
		return &Parsed{Table: rep.Table, Metadata: rep.Metadata}, nil
	case KindBusinessReport:
		return tableResult(ParseBusinessReport(r))
	case KindInventory:
		return tableResult(ParseInventory(r))
	case KindCOGS:
		return tableResult(ParseCOGS(r))
	case KindFeeReport:
		return tableResult(ParseFeeReport(r))
	case KindReturns:
		return tableResult(ParseReturns(r))
	case KindPPCBulk:
		bulk, err := ParsePPCBulk(ctx, mgr, name, r)
		if err != nil {
			return nil, err
		}
		return &Parsed{PPC: bulk}, nil
	case KindCategoryListing:
		return tableResult(ParseCategoryListing(ctx, mgr, name, r, DefaultCategoryListingLayout))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func tableResult(t *table.Table, err error) (*Parsed, error) {
	if err != nil {
		return nil, err
	}
	return &Parsed{Table: t}, nil
}
