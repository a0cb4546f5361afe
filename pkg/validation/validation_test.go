package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/sellerscope/pkg/pagination"
)

type loadInput struct {
	Kind        string `validate:"required,report_kind"`
	Path        string `validate:"required,report_ext"`
	Marketplace string `validate:"omitempty,marketplace"`
}

type sourceInput struct {
	Kind    string `validate:"required,report_kind"`
	Path    string `validate:"omitempty,report_ext"`
	Content string `validate:"required_without=Path"`
}

type pageInput struct {
	Action string `validate:"omitempty,portfolio_action"`
	Cursor string `validate:"omitempty,cursor"`
	Limit  int    `validate:"omitempty,min=1,max=500"`
}

func TestReportRules(t *testing.T) {
	require.Empty(t, ValidateStruct(loadInput{Kind: "business_report", Path: "/r/br.csv"}))
	require.Empty(t, ValidateStruct(loadInput{Kind: "ppc_bulk", Path: "/r/bulk.XLSX", Marketplace: "de"}))

	require.Contains(t, ValidateStruct(loadInput{Kind: "nope", Path: "/r/x.csv"}), "unknown report kind")
	require.Contains(t, ValidateStruct(loadInput{Kind: "ppc_bulk", Path: "/r/bulk.csv"}), "UNSUPPORTED_FORMAT")
	require.Contains(t, ValidateStruct(loadInput{Kind: "cogs", Path: "/r/c.csv", Marketplace: "ZZ"}), "marketplace")
	require.Equal(t, "VALIDATION: kind is required", ValidateStruct(loadInput{Path: "/r/x.csv"}))
}

func TestPathOrContent(t *testing.T) {
	require.Empty(t, ValidateStruct(sourceInput{Kind: "cogs", Content: "ASIN,Cost\nA1,2\n"}))
	require.Empty(t, ValidateStruct(sourceInput{Kind: "cogs", Path: "/r/c.csv"}))
	require.Equal(t, "VALIDATION: content is required when path is empty", ValidateStruct(sourceInput{Kind: "cogs"}))
}

func TestPageRules(t *testing.T) {
	require.Empty(t, ValidateStruct(pageInput{Action: "exit"}))
	require.Contains(t, ValidateStruct(pageInput{Action: "KEEP"}), "action must be one of")
	require.Contains(t, ValidateStruct(pageInput{Cursor: "!!!"}), "CURSOR_INVALID")
	require.Contains(t, ValidateStruct(pageInput{Limit: 900}), "limit must satisfy max=500")

	tok, err := pagination.EncodeCursor(pagination.Cursor{Sid: "s", Vw: pagination.ViewKeepKill, Ps: 10})
	require.NoError(t, err)
	require.Empty(t, ValidateStruct(pageInput{Cursor: tok}))
}
