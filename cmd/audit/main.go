// sellerscope-audit runs the seller audit pipeline over report files on disk.
//
// Usage:
//
//	sellerscope-audit run --business br.csv --ppc bulk.xlsx [options]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/vinodismyname/sellerscope/config"
	"github.com/vinodismyname/sellerscope/internal/audit"
	"github.com/vinodismyname/sellerscope/internal/portfolio"
	"github.com/vinodismyname/sellerscope/internal/reports"
	"github.com/vinodismyname/sellerscope/internal/runtime"
	"github.com/vinodismyname/sellerscope/internal/telemetry"
	"github.com/vinodismyname/sellerscope/internal/workbooks"
	"github.com/vinodismyname/sellerscope/pkg/version"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// reportFlag binds one CLI flag to a report kind.
type reportFlag struct {
	name     string
	kind     reports.Kind
	previous bool
	multi    bool
	usage    string
}

var reportFlags = []reportFlag{
	{name: "business", kind: reports.KindBusinessReport, usage: "Business Report (child ASIN detail) CSV"},
	{name: "business-previous", kind: reports.KindBusinessReport, previous: true, usage: "Business Report for the previous period"},
	{name: "ppc", kind: reports.KindPPCBulk, usage: "Sponsored ads bulk operations workbook"},
	{name: "sqp-brand", kind: reports.KindSQPBrand, usage: "Search Query Performance brand view CSV"},
	{name: "sqp-brand-previous", kind: reports.KindSQPBrand, previous: true, usage: "SQP brand view for the previous period"},
	{name: "sqp-asin", kind: reports.KindSQPASIN, multi: true, usage: "SQP ASIN view CSV (repeatable, one per ASIN)"},
	{name: "sqp-asin-previous", kind: reports.KindSQPASIN, previous: true, multi: true, usage: "SQP ASIN view for the previous period (repeatable)"},
	{name: "inventory", kind: reports.KindInventory, usage: "FBA inventory health report"},
	{name: "cogs", kind: reports.KindCOGS, usage: "Cost of goods CSV"},
	{name: "fees", kind: reports.KindFeeReport, usage: "FBA fee preview report"},
	{name: "listing", kind: reports.KindCategoryListing, usage: "Category Listing Report workbook"},
	{name: "returns", kind: reports.KindReturns, usage: "FBA customer returns report"},
	{name: "top-search-terms", kind: reports.KindTopSearchTerms, usage: "Top Search Terms report"},
	{name: "search-catalog", kind: reports.KindSearchCatalog, usage: "Search Catalog Performance report"},
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "sellerscope-audit",
		Usage:     "Audit Amazon seller reports: hierarchy, PPC waste, SQP funnel and keep/kill scoring",
		Version:   version.Version(),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Optional YAML config file",
				EnvVars: []string{"SELLERSCOPE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SELLERSCOPE_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			runCommand(),
		},
	}
}

func runCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "table",
			Usage:   "Output format (table, json)",
		},
		&cli.StringFlag{
			Name:  "marketplace",
			Usage: "Marketplace code, overrides config",
		},
		&cli.Float64Flag{
			Name:  "breakeven",
			Usage: "Breakeven ACoS percentage, overrides config",
		},
		&cli.IntFlag{
			Name:  "top",
			Value: 10,
			Usage: "Rows per section in table output",
		},
	}
	for _, rf := range reportFlags {
		if rf.multi {
			flags = append(flags, &cli.StringSliceFlag{Name: rf.name, Usage: rf.usage})
			continue
		}
		flags = append(flags, &cli.StringFlag{Name: rf.name, Usage: rf.usage})
	}
	return &cli.Command{
		Name:   "run",
		Usage:  "Load report files and run the full audit",
		Flags:  flags,
		Action: runAudit,
	}
}

func runAudit(c *cli.Context) error {
	format := strings.ToLower(c.String("format"))
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q (table, json)", format)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if m := c.String("marketplace"); m != "" {
		cfg.Marketplace = strings.ToUpper(m)
	}
	if b := c.Float64("breakeven"); b > 0 {
		cfg.BreakevenACoS = b
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(c.String("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(c.App.ErrWriter).Level(level).With().Timestamp().Str("service", "sellerscope-audit").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	uploads, closeAll, err := openUploads(c)
	defer closeAll()
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return errors.New("no reports given; pass at least --business")
	}

	controller := runtime.NewController(runtime.LimitsFromConfig(cfg))
	opts := audit.OptionsFromConfig(cfg, workbooks.NewManager(controller), telemetry.NewHooks(logger))
	sess := audit.NewSession(opts)

	failed := 0
	for _, res := range sess.LoadBatch(ctx, uploads) {
		if !res.OK() {
			failed++
			fmt.Fprintf(c.App.ErrWriter, "skipped %s (%s): %v\n", res.Name, res.Kind, res.Err)
		}
	}
	if failed == len(uploads) {
		return errors.New("no report could be parsed")
	}

	res, err := sess.Run(ctx, audit.RunOptions{})
	if err != nil {
		return fmt.Errorf("audit run: %w", err)
	}

	if format == "json" {
		return outputJSON(c.App.Writer, res)
	}
	return outputTable(c.App.Writer, res, c.Int("top"))
}

// openUploads opens every report file named on the command line. The returned
// close function is always safe to call.
func openUploads(c *cli.Context) ([]audit.Upload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	var uploads []audit.Upload
	for _, rf := range reportFlags {
		paths := c.StringSlice(rf.name)
		if !rf.multi {
			paths = nil
			if p := c.String(rf.name); p != "" {
				paths = []string{p}
			}
		}
		for _, p := range paths {
			f, err := os.Open(p)
			if err != nil {
				return nil, closeAll, fmt.Errorf("--%s: %w", rf.name, err)
			}
			files = append(files, f)
			uploads = append(uploads, audit.Upload{Kind: rf.kind, Name: filepath.Base(p), Previous: rf.previous, Reader: f})
		}
	}
	return uploads, closeAll, nil
}

func outputJSON(w io.Writer, res *audit.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func outputTable(w io.Writer, res *audit.Result, top int) error {
	if top <= 0 {
		top = 10
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "SELLERSCOPE AUDIT\t%s\trun %d\n", res.Marketplace, res.Run)
	fmt.Fprintf(tw, "Brand health\t%.1f (%s)\n", res.BrandHealth.Score, res.BrandHealth.Grade)
	if len(res.Missing) > 0 {
		missing := make([]string, len(res.Missing))
		for i, k := range res.Missing {
			missing[i] = string(k)
		}
		fmt.Fprintf(tw, "Missing reports\t%s\n", strings.Join(missing, ", "))
	}
	fmt.Fprintln(tw)

	if len(res.Scores) > 0 {
		fmt.Fprintln(tw, "KEEP/KILL MATRIX")
		for _, a := range portfolio.Actions {
			fmt.Fprintf(tw, "%s\t%d\n", a, res.Actions[a])
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "ASIN\tSALES\tPROFIT\tGROWTH\tMARKET\tEFFIC\tTOTAL\tACTION")
		for i, s := range res.Scores {
			if i == top {
				fmt.Fprintf(tw, "... %d more\n", len(res.Scores)-top)
				break
			}
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
				s.ASIN, money(s.SalesRevenue), s.Profitability, s.Growth, s.Market, s.Efficiency, s.Total, s.Action)
		}
		fmt.Fprintln(tw)
	}

	if len(res.Parents) > 0 {
		fmt.Fprintln(tw, "PARENT\tCHILDREN\tSALES\tHEROES")
		for i, p := range res.Parents {
			if i == top {
				fmt.Fprintf(tw, "... %d more\n", len(res.Parents)-top)
				break
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.Key, p.ChildCount, money(p.TotalSales), strings.Join(p.HeroASINs, ","))
		}
		fmt.Fprintln(tw)
	}

	if res.PPC != nil {
		sum := res.PPC.Summary
		fmt.Fprintln(tw, "PPC")
		fmt.Fprintf(tw, "Spend\t%s\n", money(sum.TotalSpend))
		fmt.Fprintf(tw, "Sales\t%s\n", money(sum.TotalSales))
		fmt.Fprintf(tw, "ACoS\t%.2f%%\n", sum.OverallACoS)
		fmt.Fprintf(tw, "ROAS\t%.2f\n", sum.OverallROAS)
		fmt.Fprintf(tw, "Estimated waste\t%s\n", money(res.PPC.Waste.TotalEstimatedWaste))
		recs := make([]string, 0, len(res.PPC.Recommendations))
		for rec, n := range res.PPC.Recommendations {
			if n > 0 {
				recs = append(recs, fmt.Sprintf("%s=%d", rec, n))
			}
		}
		sort.Strings(recs)
		fmt.Fprintf(tw, "Search terms\t%s\n", strings.Join(recs, " "))
		fmt.Fprintln(tw)
	}

	if res.SQP != nil {
		fmt.Fprintln(tw, "SEARCH QUERY PERFORMANCE")
		fmt.Fprintf(tw, "Brand share\t%.2f%%\n", res.SQP.BrandShare)
		fmt.Fprintf(tw, "Bottleneck\t%s\n", res.SQP.Bottleneck)
		if res.SQP.HasPrevious {
			fmt.Fprintf(tw, "Share change\t%+.2f pts\n", res.SQP.ShareChange)
			fmt.Fprintf(tw, "Brand growth\t%+.1f%%\n", res.SQP.BrandGrowth)
			fmt.Fprintf(tw, "Market growth\t%+.1f%%\n", res.SQP.MarketGrowth)
			fmt.Fprintf(tw, "Position\t%s\n", res.SQP.Position)
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
