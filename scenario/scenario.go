// Package scenario runs a portfolio's generated cashflows through the base
// curve set plus a named set of regulatory shock templates, reporting EVE
// and NII impact per scenario and the worst-case (spec.md §4.8). It is
// grounded on swap's projection-curve pattern: projection.go's
// BuildProjectionCurve lazily derives a second curve keyed off the first,
// built once and reused; here each stressed ForwardCurveSet is built at
// most once, lazily, and reused by both the EVE and NII passes for that
// scenario.
package scenario

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bankalm/irrbb-core/almconfig"
	"github.com/bankalm/irrbb-core/almerrors"
	"github.com/bankalm/irrbb-core/almlog"
	"github.com/bankalm/irrbb-core/cashflow"
	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
	"github.com/bankalm/irrbb-core/eve"
	"github.com/bankalm/irrbb-core/nii"
	"github.com/bankalm/irrbb-core/shock"
)

// Result is one scenario's EVE and NII impact.
type Result struct {
	Name       string
	EVE        float64
	DeltaEVE   float64
	NII        float64
	DeltaNII   float64
	EVEBuckets []eve.BucketRow
	NIIMonthly []nii.MonthlyRow
}

// Summary is the full base+stressed run (spec.md §6 "scenario summary").
type Summary struct {
	BaseEVE       float64
	BaseNII       float64
	Scenarios     []Result
	WorstScenario string
	WorstDeltaEVE float64
}

// Options configures one orchestrator run.
type Options struct {
	Currency             string
	RiskFreeIndex        string
	PreserveBasis        bool
	DiscountIndex        string
	DiscountBase         daycount.Base
	EVEBuckets           []almconfig.EVEBucketConfig
	NIIHorizonMonths     int
	MarginLookbackMonths int
	IncludeBuckets       bool

	// Logger is the optional progress hook (spec.md §2.1): if set, Run logs
	// each scenario's start/finish and unwraps any *almerrors.ContractError
	// propagating out of flowsFn into contract_id/source_contract_type
	// fields before returning it. Nil is equivalent to almlog.Nop().
	Logger *almlog.Logger
}

// Run evaluates base plus every scenario in names (case-insensitively
// normalised, duplicates rejected) against the given positions. Run obtains
// every scenario's flows, base included, by calling the caller's flowsFn
// with that scenario's curve set, since a stressed curve set changes every
// projected coupon (spec.md §4.8 "Per-scenario cashflow regeneration").
func Run(
	positions []cashflow.Position,
	baseCurves *curve.ForwardCurveSet,
	names []string,
	cfg *almconfig.Config,
	opts Options,
	flowsFn func(curves *curve.ForwardCurveSet) ([]cashflow.Cashflow, error),
) (*Summary, error) {
	seen := make(map[shock.Scenario]bool, len(names))
	scenarios := make([]shock.Scenario, 0, len(names))
	for _, raw := range names {
		s, err := shock.Normalise(raw)
		if err != nil {
			return nil, &almerrors.InvalidScenario{Name: raw, Reason: err.Error()}
		}
		if seen[s] {
			return nil, &almerrors.InvalidScenario{Name: raw, Reason: "duplicate scenario name"}
		}
		seen[s] = true
		scenarios = append(scenarios, s)
	}

	log := opts.Logger
	if log == nil {
		log = almlog.Nop()
	}

	margins, err := nii.CalibrateMarginSet(positions, baseCurves, opts.RiskFreeIndex, baseCurves.AnalysisDate(), opts.MarginLookbackMonths)
	if err != nil {
		return nil, fmt.Errorf("scenario: margin calibration: %w", err)
	}

	log.Info("scenario started", slog.String("scenario", string(shock.Base)))
	baseFlows, err := flowsFn(baseCurves)
	if err != nil {
		logContractError(log, shock.Base, err)
		return nil, fmt.Errorf("scenario: base flows: %w", err)
	}
	baseEVE, err := eve.Exact(baseFlows, baseCurves.AnalysisDate(), opts.DiscountBase, opts.DiscountIndex, baseCurves)
	if err != nil {
		return nil, fmt.Errorf("scenario: base EVE: %w", err)
	}
	baseNII, _, err := aggregateWithRenewal(positions, baseFlows, baseCurves, opts, margins)
	if err != nil {
		return nil, fmt.Errorf("scenario: base NII: %w", err)
	}
	log.Info("scenario finished", slog.String("scenario", string(shock.Base)), slog.Float64("eve", baseEVE), slog.Float64("nii", baseNII))

	engine := shock.NewEngine(cfg)
	summary := &Summary{BaseEVE: baseEVE, BaseNII: baseNII}

	for _, s := range scenarios {
		if s == shock.Base {
			continue
		}
		log.Info("scenario started", slog.String("scenario", string(s)))
		stressedCurves, err := engine.Apply(baseCurves, s, shock.Options{
			Currency:      opts.Currency,
			RiskFreeIndex: opts.RiskFreeIndex,
			PreserveBasis: opts.PreserveBasis,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s, err)
		}

		flows, err := flowsFn(stressedCurves)
		if err != nil {
			logContractError(log, s, err)
			return nil, fmt.Errorf("scenario %q: flows: %w", s, err)
		}

		stressedEVE, err := eve.Exact(flows, stressedCurves.AnalysisDate(), opts.DiscountBase, opts.DiscountIndex, stressedCurves)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: EVE: %w", s, err)
		}
		stressedNII, monthly, err := aggregateWithRenewal(positions, flows, stressedCurves, opts, margins)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: NII: %w", s, err)
		}

		result := Result{
			Name:     string(s),
			EVE:      stressedEVE,
			DeltaEVE: stressedEVE - baseEVE,
			NII:      stressedNII,
			DeltaNII: stressedNII - baseNII,
		}
		if opts.IncludeBuckets {
			rows, err := eve.Bucketed(flows, stressedCurves.AnalysisDate(), opts.DiscountBase, opts.DiscountIndex, stressedCurves, opts.EVEBuckets, cfg.OpenEndedYears)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: bucketed EVE: %w", s, err)
			}
			for i := range rows {
				rows[i].Scenario = string(s)
			}
			result.EVEBuckets = rows
			for i := range monthly {
				monthly[i].Scenario = string(s)
			}
			result.NIIMonthly = monthly
		}

		summary.Scenarios = append(summary.Scenarios, result)
		if summary.WorstScenario == "" || result.DeltaEVE < summary.WorstDeltaEVE {
			summary.WorstScenario = result.Name
			summary.WorstDeltaEVE = result.DeltaEVE
		}
		log.Info("scenario finished", slog.String("scenario", string(s)), slog.Float64("eve", stressedEVE), slog.Float64("nii", stressedNII), slog.Float64("delta_eve", result.DeltaEVE))
	}

	return summary, nil
}

// logContractError unwraps a *almerrors.ContractError propagating out of
// flowsFn, logging the offending contract before the caller wraps and
// returns it (spec.md §2.1).
func logContractError(log *almlog.Logger, s shock.Scenario, err error) {
	var ce *almerrors.ContractError
	if errors.As(err, &ce) {
		log.Error("contract generation failed",
			slog.String("scenario", string(s)),
			slog.String("contract_id", ce.ContractID),
			slog.String("source_contract_type", ce.SourceContractType),
			slog.Any("error", ce.Err),
		)
		return
	}
	log.Error("flow generation failed", slog.String("scenario", string(s)), slog.Any("error", err))
}

// aggregateWithRenewal computes the horizon profile via nii.Aggregate, then
// folds in balance-constant renewal of principal repaid or maturing inside
// the horizon (spec.md §4.4 "Balance-constant renewal"), using the margin
// set calibrated once against the base book. The renewal's single
// reinvestment period runs to horizon_end, so its interest lands in the
// final monthly bucket alongside the scalar total.
func aggregateWithRenewal(positions []cashflow.Position, flows []cashflow.Cashflow, curves *curve.ForwardCurveSet, opts Options, margins nii.MarginSet) (float64, []nii.MonthlyRow, error) {
	total, rows := nii.Aggregate(flows, curves.AnalysisDate(), opts.NIIHorizonMonths)

	_, additional, err := nii.ApplyRenewal(positions, flows, curves.AnalysisDate(), opts.NIIHorizonMonths, curves, opts.RiskFreeIndex, margins)
	if err != nil {
		return 0, nil, err
	}
	total += additional
	if len(rows) > 0 {
		rows[len(rows)-1].NetNII += additional
	}
	return total, rows, nil
}
