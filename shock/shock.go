// Package shock implements the regulatory shock engine (spec.md §4.3):
// the six BCBS-368/EBA-GL-2022/14 scenario templates, the maturity-
// dependent post-shock floor, and basis-preserving stress. It is
// generalised from molib's swap/basis package, which kept a second curve
// (credit/OIS basis) alongside a discount curve purely for valuation —
// here the "second curve" relationship becomes the basis-preservation
// rule between a risk-free curve and every other indexed curve in a
// ForwardCurveSet, and the curve transform is a full scenario family
// rather than a single fixed spread.
package shock

import (
	"fmt"
	"math"
	"strings"

	"github.com/bankalm/irrbb-core/almconfig"
	"github.com/bankalm/irrbb-core/curve"
)

// Scenario is one of the seven closed scenario identifiers (spec.md §6).
type Scenario string

const (
	Base          Scenario = "base"
	ParallelUp    Scenario = "parallel-up"
	ParallelDown  Scenario = "parallel-down"
	ShortUp       Scenario = "short-up"
	ShortDown     Scenario = "short-down"
	Steepener     Scenario = "steepener"
	Flattener     Scenario = "flattener"
)

// AllStressed lists the six stressed scenarios in a fixed, deterministic
// order (spec.md §8 property 5 relies on this kind of ordering for
// reproducible iteration).
var AllStressed = []Scenario{ParallelUp, ParallelDown, ShortUp, ShortDown, Steepener, Flattener}

// Normalise case-insensitively matches s against the closed scenario set,
// failing with an error for anything else (duplicate detection is the
// caller's responsibility — see scenario.Run).
func Normalise(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base":
		return Base, nil
	case "parallel-up", "paralleup", "parallelup":
		return ParallelUp, nil
	case "parallel-down", "paralleldown":
		return ParallelDown, nil
	case "short-up", "shortup":
		return ShortUp, nil
	case "short-down", "shortdown":
		return ShortDown, nil
	case "steepener":
		return Steepener, nil
	case "flattener":
		return Flattener, nil
	default:
		return "", fmt.Errorf("invalid scenario %q: not in {base, parallel-up, parallel-down, short-up, short-down, steepener, flattener}", s)
	}
}

// shortDecay is s(t) = exp(-t/tau_short); longDecay is l(t) = 1-exp(-t/tau_long).
func shortDecay(t, tau float64) float64 {
	return math.Exp(-t / tau)
}

func longDecay(t, tau float64) float64 {
	return 1 - math.Exp(-t/tau)
}

// Delta returns the scenario shock Δ(t) for one currency's shock
// parameters at year-fraction t (spec.md §4.3 table).
func Delta(scenario Scenario, params almconfig.ShockParameters, t, shortTau, longTau float64) float64 {
	s := shortDecay(t, shortTau)
	l := longDecay(t, longTau)
	switch scenario {
	case ParallelUp:
		return params.Parallel
	case ParallelDown:
		return -params.Parallel
	case ShortUp:
		return params.Short * s
	case ShortDown:
		return -params.Short * s
	case Steepener:
		return -0.65*params.Short*s + 0.9*params.Long*l
	case Flattener:
		return 0.8*params.Short*s - 0.6*params.Long*l
	default:
		return 0
	}
}

// applyFloor implements the "observed lower" post-shock floor rule
// (spec.md §4.3): a base rate already below the floor is preserved rather
// than lifted.
func applyFloor(rBase, delta, floor float64) float64 {
	shocked := rBase + delta
	observedLower := rBase
	if floor < observedLower {
		observedLower = floor
	}
	if shocked > observedLower {
		return shocked
	}
	return observedLower
}

// Engine applies scenarios to a ForwardCurveSet using compiled-in or
// loaded config constants.
type Engine struct {
	cfg *almconfig.Config
}

// NewEngine constructs a shock Engine bound to cfg (never nil; callers use
// almconfig.Default() for the compiled-in constants).
func NewEngine(cfg *almconfig.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Options controls a single Apply call.
type Options struct {
	Currency      string
	RiskFreeIndex string
	// PreserveBasis, when true (the default expressed by callers passing
	// true explicitly), shocks the risk-free curve and derives every
	// other curve as rf_stressed(t) + (idx_base(t) - rf_base(t)). When
	// false, every curve is shocked independently using its own rate as
	// the floor's "observed lower" reference (spec.md §4.3).
	PreserveBasis bool
}

// Apply transforms base into the stressed ForwardCurveSet for scenario,
// operating on the flat points table row-by-row and rebuilding the curve
// map (spec.md §4.3 "Shock application").
func (e *Engine) Apply(base *curve.ForwardCurveSet, scenario Scenario, opts Options) (*curve.ForwardCurveSet, error) {
	if scenario == Base {
		return base, nil
	}
	params, ok := e.cfg.ShockParametersFor(opts.Currency)
	if !ok {
		return nil, fmt.Errorf("shock: no shock parameters configured for currency %q", opts.Currency)
	}

	var rfCurve *curve.ForwardCurve
	if opts.PreserveBasis {
		c, err := base.Get(opts.RiskFreeIndex)
		if err != nil {
			return nil, err
		}
		rfCurve = c
	}

	rows := base.Rows()
	stressed := make([]curve.PointRow, len(rows))
	for i, r := range rows {
		delta := Delta(scenario, params, r.YearFrac, e.cfg.ShortTau, e.cfg.LongTau)
		floor := e.cfg.FloorAt(r.YearFrac)

		var newRate float64
		if !opts.PreserveBasis || r.IndexName == opts.RiskFreeIndex {
			newRate = applyFloor(r.FwdRate, delta, floor)
		} else {
			rfBaseAtT := rfCurve.ZeroRate(r.YearFrac)
			rfStressed := applyFloor(rfBaseAtT, delta, floor)
			basis := r.FwdRate - rfBaseAtT
			newRate = rfStressed + basis
		}

		newRow := r
		newRow.FwdRate = newRate
		stressed[i] = newRow
	}

	return curve.Rebuild(base.AnalysisDate(), base.Base(), stressed)
}
