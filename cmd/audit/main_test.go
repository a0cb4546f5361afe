package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const businessCSV = "(Parent) ASIN,(Child) ASIN,Title,SKU,Sessions - Total,Unit Session Percentage,Featured Offer (Buy Box) Percentage,Units Ordered,Ordered Product Sales\n" +
	"P1,A1,Widget A,SKU-A,100,20%,98%,10,$200.00\n" +
	"P1,A2,Widget B,SKU-B,50,2%,60%,1,$10.00\n" +
	"P2,A3,Gadget C,SKU-C,10,0%,50%,0,$0.00\n"

func writeReport(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunJSON(t *testing.T) {
	br := writeReport(t, "br.csv", businessCSV)
	var stdout, stderr bytes.Buffer

	err := newApp(&stdout, &stderr).Run([]string{"sellerscope-audit", "run", "--business", br, "--format", "json", "--marketplace", "uk"})
	require.NoError(t, err, stderr.String())

	var out struct {
		Marketplace string   `json:"marketplace"`
		Missing     []string `json:"missing_reports"`
		Scores      []struct {
			ASIN   string `json:"asin"`
			Action string `json:"action"`
		} `json:"scores"`
		Parents []struct {
			Key string `json:"parent_key"`
		} `json:"parents"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Equal(t, "UK", out.Marketplace)
	require.Len(t, out.Scores, 3)
	require.Len(t, out.Parents, 2)
	require.Contains(t, out.Missing, "ppc_bulk")
	require.NotContains(t, out.Missing, "business_report")
}

func TestRunTable(t *testing.T) {
	br := writeReport(t, "br.csv", businessCSV)
	var stdout, stderr bytes.Buffer

	err := newApp(&stdout, &stderr).Run([]string{"sellerscope-audit", "run", "--business", br, "--top", "1"})
	require.NoError(t, err, stderr.String())
	require.Contains(t, stdout.String(), "KEEP/KILL MATRIX")
	require.Contains(t, stdout.String(), "... 2 more")
	require.Contains(t, stdout.String(), "Missing reports")
	require.NotContains(t, stdout.String(), "SEARCH QUERY PERFORMANCE")
}

func TestRunRejectsBadInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	run := func(args ...string) error {
		return newApp(&stdout, &stderr).Run(append([]string{"sellerscope-audit", "run"}, args...))
	}

	require.ErrorContains(t, run(), "no reports given")
	require.ErrorContains(t, run("--format", "xml"), "unknown format")
	require.ErrorContains(t, run("--cogs", filepath.Join(t.TempDir(), "nope.csv")), "--cogs")

	bad := writeReport(t, "bin.csv", "a\x00b\n")
	require.ErrorContains(t, run("--cogs", bad), "no report could be parsed")
	require.Contains(t, stderr.String(), "skipped bin.csv")
}
