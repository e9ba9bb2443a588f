// almcore runs a toy portfolio through the base scenario and all six
// regulatory shock templates, printing an EVE/NII summary to stdout. It
// exercises the core end to end without any I/O layer, following
// cmd/npv/main.go's run(args, stdin, stdout, stderr) int dispatch shape
// (here reduced to one command, since the core has one entry point rather
// than npv's per-instrument subcommands).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bankalm/irrbb-core/almconfig"
	"github.com/bankalm/irrbb-core/almlog"
	"github.com/bankalm/irrbb-core/cashflow"
	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
	"github.com/bankalm/irrbb-core/nmd"
	"github.com/bankalm/irrbb-core/scenario"
	"github.com/bankalm/irrbb-core/shock"
)

// Output is almcore's top-level report: the scenario summary plus the
// input curve pillars, for reconciling a reported EVE/NII figure back to
// the curve inputs that produced it.
type Output struct {
	Summary          *scenario.Summary            `json:"summary"`
	CurveDiagnostics map[string][]curve.CurvePoint `json:"curve_diagnostics"`
}

// curveDiagnostics reports each index's pillar set (curve.ForwardCurve's
// diagnostics accessor), logging a one-line summary of each curve's pillar
// count and longest tenor as it goes.
func curveDiagnostics(curves *curve.ForwardCurveSet, log *almlog.Logger) (map[string][]curve.CurvePoint, error) {
	out := make(map[string][]curve.CurvePoint, len(curves.IndexNames()))
	for _, name := range curves.IndexNames() {
		c, err := curves.Get(name)
		if err != nil {
			return nil, err
		}
		pillars := c.Pillars()
		out[name] = pillars
		if len(pillars) > 0 {
			log.Info("curve loaded",
				slog.String("index", name),
				slog.Int("pillar_count", len(pillars)),
				slog.Float64("longest_tenor_years", pillars[len(pillars)-1].YearFrac),
			)
		}
	}
	return out, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		usage(stdout)
		return 0
	}

	log := almlog.New(stderr)
	cfg := almconfig.Default()
	analysisDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	baseCurves, err := buildToyCurves(analysisDate)
	if err != nil {
		fmt.Fprintf(stderr, "almcore: building curves: %v\n", err)
		return 1
	}
	diagnostics, err := curveDiagnostics(baseCurves, log)
	if err != nil {
		fmt.Fprintf(stderr, "almcore: curve diagnostics: %v\n", err)
		return 1
	}

	positions, nmdParams := toyPortfolio(analysisDate)

	flowsFn := func(curves *curve.ForwardCurveSet) ([]cashflow.Cashflow, error) {
		flows, nmdPositions, err := cashflow.GeneratePortfolio(positions, nil, curves, analysisDate, cashflow.Options{})
		if err != nil {
			return nil, err
		}
		if len(nmdPositions) > 0 {
			nmdFlows, err := nmd.Expand(nmdPositions, analysisDate, cfg.NMDBuckets, nmdParams)
			if err != nil {
				return nil, err
			}
			flows = append(flows, nmdFlows...)
			cashflow.SortFlows(flows)
		}
		return flows, nil
	}

	names := make([]string, 0, len(shock.AllStressed)+1)
	names = append(names, string(shock.Base))
	for _, s := range shock.AllStressed {
		names = append(names, string(s))
	}

	summary, err := scenario.Run(positions, baseCurves, names, cfg, scenario.Options{
		Currency:             "EUR",
		RiskFreeIndex:        "EUR_ESTR_OIS",
		PreserveBasis:        true,
		DiscountIndex:        "EUR_ESTR_OIS",
		DiscountBase:         daycount.Act365,
		NIIHorizonMonths:     12,
		MarginLookbackMonths: 12,
		IncludeBuckets:       true,
		EVEBuckets:           cfg.EVEBuckets,
		Logger:               log,
	}, flowsFn)
	if err != nil {
		fmt.Fprintf(stderr, "almcore: running scenarios: %v\n", err)
		return 1
	}

	out, _ := json.MarshalIndent(Output{Summary: summary, CurveDiagnostics: diagnostics}, "", "  ")
	fmt.Fprintln(stdout, string(out))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: almcore")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Runs a built-in demonstration portfolio through the base scenario")
	fmt.Fprintln(w, "and all six BCBS-368/EBA-GL-2022/14 shock templates, printing an")
	fmt.Fprintln(w, "EVE/NII summary as JSON to stdout.")
}

func buildToyCurves(analysisDate time.Time) (*curve.ForwardCurveSet, error) {
	rows := []curve.PointRow{
		{IndexName: "EUR_ESTR_OIS", Tenor: "3M", FwdRate: 0.019, YearFrac: 0.25},
		{IndexName: "EUR_ESTR_OIS", Tenor: "1Y", FwdRate: 0.020, YearFrac: 1.0},
		{IndexName: "EUR_ESTR_OIS", Tenor: "5Y", FwdRate: 0.024, YearFrac: 5.0},
		{IndexName: "EUR_ESTR_OIS", Tenor: "10Y", FwdRate: 0.027, YearFrac: 10.0},
		{IndexName: "EUR_ESTR_OIS", Tenor: "30Y", FwdRate: 0.030, YearFrac: 30.0},
		{IndexName: "EUR_EURIBOR_3M", Tenor: "3M", FwdRate: 0.022, YearFrac: 0.25},
		{IndexName: "EUR_EURIBOR_3M", Tenor: "1Y", FwdRate: 0.023, YearFrac: 1.0},
		{IndexName: "EUR_EURIBOR_3M", Tenor: "5Y", FwdRate: 0.026, YearFrac: 5.0},
		{IndexName: "EUR_EURIBOR_3M", Tenor: "10Y", FwdRate: 0.028, YearFrac: 10.0},
		{IndexName: "EUR_EURIBOR_3M", Tenor: "30Y", FwdRate: 0.031, YearFrac: 30.0},
	}
	return curve.BuildSet(analysisDate, daycount.Act365, rows)
}

func toyPortfolio(analysisDate time.Time) ([]cashflow.Position, map[cashflow.Side]nmd.BehaviorParams) {
	mat5y := analysisDate.AddDate(5, 0, 0)
	mat2y := analysisDate.AddDate(2, 0, 0)
	nextReprice := analysisDate.AddDate(0, 3, 0)

	fixedRate := 0.04
	spread := 0.01
	indexName := "EUR_EURIBOR_3M"
	repricingFreq := "3M"
	paymentFreq := "3M"
	floatStubRate := 0.021
	nmdRate := 0.005

	positions := []cashflow.Position{
		{
			ContractID: "LOAN-FIX-5Y", StartDate: analysisDate, MaturityDate: &mat5y,
			Notional: 10_000_000, Side: cashflow.Asset, RateType: cashflow.RateFixed,
			DaycountBase: daycount.Act360, SourceContractType: cashflow.FixedBullet,
			FixedRate: &fixedRate, PaymentFreq: &paymentFreq,
		},
		{
			ContractID: "MORT-FLOAT-2Y", StartDate: analysisDate, MaturityDate: &mat2y,
			Notional: 5_000_000, Side: cashflow.Asset, RateType: cashflow.RateFloat,
			DaycountBase: daycount.Act360, SourceContractType: cashflow.VariableBullet,
			IndexName: &indexName, Spread: &spread, RepricingFreq: &repricingFreq,
			PaymentFreq: &paymentFreq, NextRepriceDate: &nextReprice, FixedRate: &floatStubRate,
		},
		{
			ContractID: "TD-NMD-RETAIL", StartDate: analysisDate,
			Notional: 8_000_000, Side: cashflow.Liability, RateType: cashflow.RateFixed,
			DaycountBase: daycount.Act365, SourceContractType: cashflow.FixedNonMaturity,
			FixedRate: &nmdRate,
		},
	}

	nmdParams := map[cashflow.Side]nmd.BehaviorParams{
		cashflow.Liability: {
			CoreProportionPct: 70,
			DistributionPct: map[int]float64{
				3: 30, // >1M-3M
				6: 40, // >9M-1Y
				9: 30, // >2Y-3Y
			},
		},
	}

	return positions, nmdParams
}
