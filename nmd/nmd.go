// Package nmd behaviouralises fixed non-maturity deposit positions into
// synthetic cashflows (spec.md §4.5). It has no direct teacher analogue —
// molib's swap/bond domain has no notion of a non-maturity contract — so
// the bucket table is modelled the way nhbchain's config package keys a
// read-only policy table (almconfig.NMDBucketConfig), and the weighted-
// average/aggregate pattern follows nhbchain's notional-weighted staking
// reward accrual (core/state/staking_rewards.go).
package nmd

import (
	"fmt"
	"time"

	"github.com/bankalm/irrbb-core/almconfig"
	"github.com/bankalm/irrbb-core/cashflow"
	"github.com/bankalm/irrbb-core/daycount"
)

// BehaviorParams are the externally supplied behavioural assumptions for
// one side's book of NMDs: the core/non-core split and the distribution of
// the core balance across EBA buckets (spec.md §4.5). Distribution is
// keyed by NMDBucketConfig.ID; the specification does not require weights
// to sum exactly to CoreProportionPct and this package does not renormalise
// (spec.md §9 Open Question).
type BehaviorParams struct {
	CoreProportionPct float64
	DistributionPct   map[int]float64
}

// Expand converts a set of fixed_non_maturity positions into synthetic
// cashflows, aggregated per side. params must have an entry for every side
// present in positions.
func Expand(positions []cashflow.Position, analysisDate time.Time, buckets []almconfig.NMDBucketConfig, params map[cashflow.Side]BehaviorParams) ([]cashflow.Cashflow, error) {
	totals := map[cashflow.Side]float64{}
	weightedRate := map[cashflow.Side]float64{}
	for _, pos := range positions {
		if pos.SourceContractType != cashflow.FixedNonMaturity {
			return nil, fmt.Errorf("nmd.Expand: position %q is not fixed_non_maturity", pos.ContractID)
		}
		if pos.FixedRate == nil {
			return nil, fmt.Errorf("nmd.Expand: position %q has no fixed_rate", pos.ContractID)
		}
		totals[pos.Side] += pos.Notional
		weightedRate[pos.Side] += pos.Notional * *pos.FixedRate
	}

	var out []cashflow.Cashflow
	for side, total := range totals {
		if total == 0 {
			continue
		}
		avgRate := weightedRate[side] / total

		p, ok := params[side]
		if !ok {
			return nil, fmt.Errorf("nmd.Expand: no BehaviorParams configured for side %q", side)
		}

		nonCore := (1 - p.CoreProportionPct/100) * total
		out = append(out, cashflow.Cashflow{
			ContractID:         fmt.Sprintf("NMD:%s:NONCORE", side),
			SourceContractType: cashflow.FixedNonMaturity,
			RateType:           cashflow.RateFixed,
			Side:               side,
			FlowDate:           analysisDate.AddDate(0, 0, 1),
			InterestAmount:     0,
			PrincipalAmount:    nonCore,
		})

		for _, b := range buckets {
			if b.Label == "ON" {
				continue
			}
			w, ok := p.DistributionPct[b.ID]
			if !ok || w == 0 {
				continue
			}
			flowDate := analysisDate.Add(time.Duration(b.MidpointYears * 365.25 * 24 * float64(time.Hour)))
			principal := total * w / 100
			yf := daycount.YearFraction(analysisDate, flowDate, daycount.Act365)
			interest := principal * avgRate * yf
			out = append(out, cashflow.Cashflow{
				ContractID:         fmt.Sprintf("NMD:%s:%s", side, b.Label),
				SourceContractType: cashflow.FixedNonMaturity,
				RateType:           cashflow.RateFixed,
				Side:               side,
				FlowDate:           flowDate,
				InterestAmount:     interest,
				PrincipalAmount:    principal,
			})
		}
	}

	cashflow.SortFlows(out)
	return out, nil
}
