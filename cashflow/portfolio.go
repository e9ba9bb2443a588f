package cashflow

import (
	"time"

	"github.com/bankalm/irrbb-core/curve"
)

// GeneratePortfolio generates cashflows for every position except
// fixed_non_maturity ones, which it returns separately for the caller to
// route through nmd.Expand (spec.md §4.5). The returned flows are sorted by
// (contract_id, flow_date).
func GeneratePortfolio(positions []Position, sched []ScheduledPrincipalFlow, curves *curve.ForwardCurveSet, analysisDate time.Time, opts Options) (flows []Cashflow, nmdPositions []Position, err error) {
	for _, pos := range positions {
		if pos.SourceContractType == FixedNonMaturity {
			nmdPositions = append(nmdPositions, pos)
			continue
		}
		f, genErr := Generate(pos, sched, curves, analysisDate, opts)
		if genErr != nil {
			return nil, nil, genErr
		}
		flows = append(flows, f...)
	}
	SortFlows(flows)
	return flows, nmdPositions, nil
}
