// Package curve implements the forward-curve model: pillars, log-linear
// interpolation of discount factors, zero-rate queries and tail
// extrapolation (spec.md §4.1), generalising molib's swap/curve.Curve
// (which interpolated discount factors keyed by time.Time pillar dates
// bootstrapped from par swap quotes) into a curve keyed by year-fraction
// pillars supplied directly as zero rates, with no bootstrap step — the
// IRRBB core consumes already-zero-rate curves (spec.md §6, "Curve
// input").
package curve

import (
	"math"
	"sort"
	"time"

	"github.com/bankalm/irrbb-core/almerrors"
	"github.com/bankalm/irrbb-core/daycount"
)

// CurvePoint is one pillar: a year-fraction, its continuously compounded
// zero rate, and the tenor label/date it was derived from (kept for
// reporting, not used in interpolation).
type CurvePoint struct {
	YearFrac   float64
	ZeroRate   float64
	TenorLabel string
	TenorDate  time.Time
}

// ExtrapolationMode selects the tail behaviour beyond the last pillar.
type ExtrapolationMode int

const (
	// ConstantForward extends the log-discount-factor line using the
	// slope of the last pillar segment (spec.md §4.1 default): constant
	// instantaneous forward in the tail.
	ConstantForward ExtrapolationMode = iota
	// UFR converges the instantaneous forward toward a configured
	// "ultimate forward rate" over a convergence horizon, instead of
	// holding it flat forever (spec.md §9 Open Question: offered as an
	// explicit mode, never a silent default).
	UFR
)

// UFRParams configures the UFR extrapolation mode.
type UFRParams struct {
	Rate               float64 // ultimate forward rate, decimal
	ConvergenceYears    float64 // speed of convergence (smaller = faster)
}

// ForwardCurve is a single named, immutable curve: a sorted set of
// pillars, log-linearly interpolated in discount-factor space.
type ForwardCurve struct {
	indexName     string
	points        []CurvePoint
	mode          ExtrapolationMode
	ufr           UFRParams
	lastSegFwd    float64 // instantaneous forward rate of the last pillar segment
}

// New constructs a ForwardCurve from pillars, sorting a copy of them by
// increasing year-fraction first (input order is not checked). Fails with
// CurveConstructionError on an empty point set, duplicate year-fractions, or
// a non-positive year-fraction.
func New(indexName string, points []CurvePoint) (*ForwardCurve, error) {
	return NewWithExtrapolation(indexName, points, ConstantForward, UFRParams{})
}

// NewWithExtrapolation is New with an explicit tail extrapolation mode.
func NewWithExtrapolation(indexName string, points []CurvePoint, mode ExtrapolationMode, ufr UFRParams) (*ForwardCurve, error) {
	if len(points) == 0 {
		return nil, &almerrors.CurveConstructionError{IndexName: indexName, Reason: "no points supplied"}
	}
	sorted := make([]CurvePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].YearFrac < sorted[j].YearFrac })

	for i, p := range sorted {
		if p.YearFrac <= 0 {
			return nil, &almerrors.CurveConstructionError{IndexName: indexName, Reason: "year_frac must be > 0"}
		}
		if i > 0 && sorted[i-1].YearFrac >= p.YearFrac {
			return nil, &almerrors.CurveConstructionError{IndexName: indexName, Reason: "year_frac must be strictly increasing (duplicate or decreasing pillar)"}
		}
	}

	c := &ForwardCurve{indexName: indexName, points: sorted, mode: mode, ufr: ufr}
	c.lastSegFwd = c.segmentForward(len(sorted) - 1)
	return c, nil
}

// segmentForward returns the (constant) instantaneous forward rate implied
// by the log-discount-factor segment ending at pillar index i, i.e. the
// slope of L(t) between the previous node (0 if i==0) and pillar i.
func (c *ForwardCurve) segmentForward(i int) float64 {
	x1, l1 := 0.0, 0.0
	if i > 0 {
		x1 = c.points[i-1].YearFrac
		l1 = -c.points[i-1].ZeroRate * x1
	}
	x2 := c.points[i].YearFrac
	l2 := -c.points[i].ZeroRate * x2
	if x2 == x1 {
		return 0
	}
	return -(l2 - l1) / (x2 - x1)
}

// IndexName returns the curve's index identifier.
func (c *ForwardCurve) IndexName() string { return c.indexName }

// Pillars returns a copy of the curve's sorted pillar set (diagnostics).
func (c *ForwardCurve) Pillars() []CurvePoint {
	out := make([]CurvePoint, len(c.points))
	copy(out, c.points)
	return out
}

// logDF returns L(t) = ln(discount_factor(t)).
func (c *ForwardCurve) logDF(t float64) float64 {
	if t <= 0 {
		return 0
	}
	n := len(c.points)
	lastX := c.points[n-1].YearFrac

	if t > lastX {
		lastL := -c.points[n-1].ZeroRate * lastX
		return c.extrapolateLogDF(t, lastX, lastL)
	}

	// Find bracketing nodes among (0, x0, x1, ..., xn).
	idx := sort.Search(n, func(i int) bool { return c.points[i].YearFrac >= t })
	if idx == 0 {
		// Between (0,0) and (x0, l0).
		x0 := c.points[0].YearFrac
		l0 := -c.points[0].ZeroRate * x0
		if t == x0 {
			return l0
		}
		return l0 * (t / x0)
	}
	if c.points[idx].YearFrac == t {
		return -c.points[idx].ZeroRate * t
	}
	xLo := 0.0
	lLo := 0.0
	if idx > 0 {
		xLo = c.points[idx-1].YearFrac
		lLo = -c.points[idx-1].ZeroRate * xLo
	}
	xHi := c.points[idx].YearFrac
	lHi := -c.points[idx].ZeroRate * xHi
	frac := (t - xLo) / (xHi - xLo)
	return lLo + frac*(lHi-lLo)
}

func (c *ForwardCurve) extrapolateLogDF(t, lastX, lastL float64) float64 {
	switch c.mode {
	case UFR:
		return c.ufrLogDF(t, lastX, lastL)
	default:
		// Constant instantaneous forward: L(t) = L(lastX) - fwd*(t-lastX).
		return lastL - c.lastSegFwd*(t-lastX)
	}
}

// ufrLogDF converges the instantaneous forward rate exponentially toward
// ufr.Rate beyond the last pillar, with a convergence speed controlled by
// ufr.ConvergenceYears. At t = lastX the forward equals lastSegFwd
// (continuity); as t - lastX grows, it approaches ufr.Rate.
func (c *ForwardCurve) ufrLogDF(t, lastX, lastL float64) float64 {
	if c.ufr.ConvergenceYears <= 0 {
		return lastL - c.lastSegFwd*(t-lastX)
	}
	// Integral of instantaneous forward f(s) = ufr + (lastSegFwd-ufr)*exp(-(s-lastX)/tau)
	// from lastX to t gives the extra log-discount-factor decrement.
	tau := c.ufr.ConvergenceYears
	delta := t - lastX
	extra := c.ufr.Rate*delta + (c.lastSegFwd-c.ufr.Rate)*tau*(1-math.Exp(-delta/tau))
	return lastL - extra
}

// DiscountFactor returns discount_factor(t) for t >= 0 in years.
func (c *ForwardCurve) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return math.Exp(c.logDF(t))
}

// ZeroRate returns zero_rate(t): -ln(DF(t))/t for t>0, or the first
// pillar's rate at t=0 by convention.
func (c *ForwardCurve) ZeroRate(t float64) float64 {
	if t <= 0 {
		return c.points[0].ZeroRate
	}
	df := c.DiscountFactor(t)
	return -math.Log(df) / t
}

// DiscountFactorOnDate returns the date-keyed discount factor for an analysis date +
// target date pair, using the supplied day count base to convert to a
// year-fraction first.
func (c *ForwardCurve) DiscountFactorOnDate(analysisDate, target time.Time, base daycount.Base) float64 {
	t := daycount.YearFraction(analysisDate, target, base)
	return c.DiscountFactor(t)
}
