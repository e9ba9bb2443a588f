package cashflow

import (
	"time"

	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
	"github.com/bankalm/irrbb-core/tenor"
)

// period is one accrual interval (d_prev, d_next] with its outstanding
// notional already known to the caller.
type period struct {
	start, end time.Time
	yf         float64
}

// fullScheduleGrid rolls backward from maturity by freq, stopping once it
// reaches or passes start, then prepends start — the Bloomberg-style
// front-stub convention generalised from swap.generateScheduleBackward, but
// with no business-day adjustment (spec.md §4.4: tenor arithmetic is pure
// calendar arithmetic here, unlike the legacy swap/bond schedule code).
func fullScheduleGrid(start, maturity time.Time, freq tenor.Tenor) []time.Time {
	var backward []time.Time
	current := maturity
	for current.After(start) {
		backward = append([]time.Time{current}, backward...)
		current = freq.SubFrom(current)
	}
	return append([]time.Time{start}, backward...)
}

// periodsFrom turns a schedule grid into accrual periods, each tagged with
// its year fraction under base.
func periodsFrom(dates []time.Time, base daycount.Base) []period {
	out := make([]period, 0, len(dates)-1)
	for i := 0; i < len(dates)-1; i++ {
		d0, d1 := dates[i], dates[i+1]
		out = append(out, period{start: d0, end: d1, yf: daycount.YearFraction(d0, d1, base)})
	}
	return out
}

// emitted reports whether a period's flow should appear in the output
// (spec.md §4.4: "clipped to > analysis_date and > start_date").
func (p period) emitted(analysisDate, start time.Time) bool {
	return p.end.After(analysisDate) && p.end.After(start)
}

func midDate(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

// resolveCoupon determines the coupon rate applied over one accrual period
// (spec.md §4.4 "Rate resolution").
func resolveCoupon(pos Position, p period, curves *curve.ForwardCurveSet, analysisDate time.Time) (float64, error) {
	if pos.RateType == RateFixed {
		return *pos.FixedRate, nil
	}

	// Float: frozen stub until the first future reset, then projected.
	if pos.NextRepriceDate != nil && pos.NextRepriceDate.After(analysisDate) && !p.end.After(*pos.NextRepriceDate) {
		return *pos.FixedRate, nil
	}

	rate, err := curves.RateOnDate(*pos.IndexName, midDate(p.start, p.end))
	if err != nil {
		return 0, err
	}
	if pos.Spread != nil {
		rate += *pos.Spread
	}
	if pos.FloorRate != nil && rate < *pos.FloorRate {
		rate = *pos.FloorRate
	}
	if pos.CapRate != nil && rate > *pos.CapRate {
		rate = *pos.CapRate
	}
	return rate, nil
}
