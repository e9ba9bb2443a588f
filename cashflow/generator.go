package cashflow

import (
	"fmt"
	"sort"
	"time"

	"github.com/bankalm/irrbb-core/almerrors"
	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
	"github.com/bankalm/irrbb-core/tenor"
)

// Generate dispatches pos to its product-type state machine and returns its
// ordered cashflows. fixed_non_maturity is not a per-position operation
// (spec.md §4.5 aggregates across all NMD positions of a side); callers
// must route fixed_non_maturity positions through the nmd package instead
// and call Generate only for the remaining contract types.
func Generate(pos Position, sched []ScheduledPrincipalFlow, curves *curve.ForwardCurveSet, analysisDate time.Time, opts Options) ([]Cashflow, error) {
	flows, err := generate(pos, sched, curves, analysisDate, opts)
	if err != nil {
		return nil, &almerrors.ContractError{ContractID: pos.ContractID, SourceContractType: string(pos.SourceContractType), Err: err}
	}
	return flows, nil
}

func generate(pos Position, sched []ScheduledPrincipalFlow, curves *curve.ForwardCurveSet, analysisDate time.Time, opts Options) ([]Cashflow, error) {
	switch pos.SourceContractType {
	case FixedBullet, VariableBullet, VariableNonMaturity:
		return genBullet(pos, curves, analysisDate)
	case FixedLinear, VariableLinear:
		return genLinear(pos, curves, analysisDate)
	case FixedAnnuity, VariableAnnuity:
		return genAnnuity(pos, curves, analysisDate, opts)
	case FixedScheduled, VariableScheduled:
		return genScheduled(pos, sched, curves, analysisDate)
	case FixedNonMaturity:
		return nil, fmt.Errorf("fixed_non_maturity positions must be expanded by the nmd package, not generated directly")
	default:
		return nil, fmt.Errorf("unknown source_contract_type %q", pos.SourceContractType)
	}
}

func paymentFreq(pos Position) (tenor.Tenor, error) {
	if pos.PaymentFreq == nil {
		return tenor.Tenor{}, &almerrors.UnsupportedTenor{Tenor: ""}
	}
	return tenor.Parse(*pos.PaymentFreq)
}

func requireMaturity(pos Position) (time.Time, error) {
	if pos.MaturityDate == nil {
		return time.Time{}, fmt.Errorf("contract %q: source_contract_type %q requires maturity_date", pos.ContractID, pos.SourceContractType)
	}
	return *pos.MaturityDate, nil
}

// genBullet: interest on each period, full principal at maturity.
func genBullet(pos Position, curves *curve.ForwardCurveSet, analysisDate time.Time) ([]Cashflow, error) {
	maturity, err := requireMaturity(pos)
	if err != nil {
		return nil, err
	}
	freq, err := paymentFreq(pos)
	if err != nil {
		return nil, err
	}
	periods := periodsFrom(fullScheduleGrid(pos.StartDate, maturity, freq), pos.DaycountBase)

	out := make([]Cashflow, 0, len(periods))
	for i, p := range periods {
		if !p.emitted(analysisDate, pos.StartDate) {
			continue
		}
		rate, err := resolveCoupon(pos, p, curves, analysisDate)
		if err != nil {
			return nil, err
		}
		principal := 0.0
		if i == len(periods)-1 {
			principal = pos.Notional
		}
		out = append(out, newFlow(pos, p.end, pos.Notional*rate*p.yf, principal))
	}
	return out, nil
}

// genLinear: equal principal slice per period, outstanding decays linearly.
func genLinear(pos Position, curves *curve.ForwardCurveSet, analysisDate time.Time) ([]Cashflow, error) {
	maturity, err := requireMaturity(pos)
	if err != nil {
		return nil, err
	}
	freq, err := paymentFreq(pos)
	if err != nil {
		return nil, err
	}
	periods := periodsFrom(fullScheduleGrid(pos.StartDate, maturity, freq), pos.DaycountBase)
	n := len(periods)
	if n == 0 {
		return nil, nil
	}
	slice := pos.Notional / float64(n)

	out := make([]Cashflow, 0, n)
	for i, p := range periods {
		outstandingBefore := pos.Notional - slice*float64(i)
		rate, err := resolveCoupon(pos, p, curves, analysisDate)
		if err != nil {
			return nil, err
		}
		principal := slice
		if i == n-1 {
			principal = outstandingBefore // true-up: absorb rounding, payoff exactly
		}
		if !p.emitted(analysisDate, pos.StartDate) {
			continue
		}
		out = append(out, newFlow(pos, p.end, outstandingBefore*rate*p.yf, principal))
	}
	return out, nil
}

// genAnnuity solves the constant-payment French amortisation formula
// P = N0 / Σᵢ(1/∏ⱼ≤ᵢ fⱼ) per spec.md §4.4. For fixed_annuity (a single flat
// rate across the life), recomputing P from the remaining sub-schedule at
// every period reduces to the same constant P the classic formula gives at
// inception — so reprice_on_reset's "recompute at each reset" and the
// plain fixed_annuity case share one code path. fixed_payment instead
// solves P once, at inception, and holds it fixed while composition drifts.
func genAnnuity(pos Position, curves *curve.ForwardCurveSet, analysisDate time.Time, opts Options) ([]Cashflow, error) {
	maturity, err := requireMaturity(pos)
	if err != nil {
		return nil, err
	}
	freq, err := paymentFreq(pos)
	if err != nil {
		return nil, err
	}
	periods := periodsFrom(fullScheduleGrid(pos.StartDate, maturity, freq), pos.DaycountBase)
	n := len(periods)
	if n == 0 {
		return nil, nil
	}

	rates := make([]float64, n)
	yfs := make([]float64, n)
	for i, p := range periods {
		rate, err := resolveCoupon(pos, p, curves, analysisDate)
		if err != nil {
			return nil, err
		}
		rates[i] = rate
		yfs[i] = p.yf
	}

	mode := opts.annuityMode()
	if pos.AnnuityPaymentMode != "" {
		mode = pos.AnnuityPaymentMode
	}
	recompute := pos.RateType == RateFixed || mode == RepriceOnReset

	out := make([]Cashflow, 0, n)
	outstanding := pos.Notional
	var fixedP float64
	havefixedP := false
	for i, p := range periods {
		var pay float64
		if recompute {
			pay = annuityPayment(outstanding, rates[i:], yfs[i:])
		} else {
			if !havefixedP {
				fixedP = annuityPayment(outstanding, rates[i:], yfs[i:])
				havefixedP = true
			}
			pay = fixedP
		}
		interest := outstanding * rates[i] * yfs[i]
		principal := pay - interest
		if i == n-1 {
			principal = outstanding // true-up final period to zero out the balance exactly
		}
		if p.emitted(analysisDate, pos.StartDate) {
			out = append(out, newFlow(pos, p.end, interest, principal))
		}
		outstanding -= principal
	}
	return out, nil
}

// annuityPayment implements P = N0 / Σᵢ(1/∏ⱼ≤ᵢ fⱼ), fⱼ = 1 + rateⱼ·yfⱼ.
func annuityPayment(outstanding float64, rates, yfs []float64) float64 {
	var denom float64
	prod := 1.0
	for i := range rates {
		prod *= 1 + rates[i]*yfs[i]
		denom += 1.0 / prod
	}
	if denom == 0 {
		return outstanding
	}
	return outstanding / denom
}

// genScheduled: interest per period between consecutive externally supplied
// principal-flow dates, using the then-current outstanding.
func genScheduled(pos Position, sched []ScheduledPrincipalFlow, curves *curve.ForwardCurveSet, analysisDate time.Time) ([]Cashflow, error) {
	var own []ScheduledPrincipalFlow
	for _, s := range sched {
		if s.ContractID == pos.ContractID {
			own = append(own, s)
		}
	}
	if len(own) == 0 {
		return nil, &almerrors.MissingPrincipalSchedule{ContractID: pos.ContractID}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].FlowDate.Before(own[j].FlowDate) })

	out := make([]Cashflow, 0, len(own))
	outstanding := pos.Notional
	prev := pos.StartDate
	for _, flow := range own {
		yf := daycount.YearFraction(prev, flow.FlowDate, pos.DaycountBase)
		p := period{start: prev, end: flow.FlowDate, yf: yf}
		rate, err := resolveCoupon(pos, p, curves, analysisDate)
		if err != nil {
			return nil, err
		}
		interest := outstanding * rate * yf
		if p.emitted(analysisDate, pos.StartDate) {
			out = append(out, newFlow(pos, flow.FlowDate, interest, flow.PrincipalAmount))
		}
		outstanding -= flow.PrincipalAmount
		prev = flow.FlowDate
	}
	return out, nil
}

func newFlow(pos Position, flowDate time.Time, interest, principal float64) Cashflow {
	idx := ""
	if pos.IndexName != nil {
		idx = *pos.IndexName
	}
	return Cashflow{
		ContractID:         pos.ContractID,
		SourceContractType: pos.SourceContractType,
		RateType:           pos.RateType,
		Side:               pos.Side,
		FlowDate:           flowDate,
		InterestAmount:     interest,
		PrincipalAmount:    principal,
		IndexName:          idx,
	}
}

// SortFlows sorts in (contract_id, flow_date) order, the canonical
// aggregation ordering required for deterministic summation (spec.md §5).
func SortFlows(flows []Cashflow) {
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].ContractID != flows[j].ContractID {
			return flows[i].ContractID < flows[j].ContractID
		}
		return flows[i].FlowDate.Before(flows[j].FlowDate)
	})
}
