package curve

import (
	"math"
	"testing"
)

func approxEqual(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func twoPillarCurve(t *testing.T) *ForwardCurve {
	t.Helper()
	c, err := New("TEST", []CurvePoint{
		{YearFrac: 1.0, ZeroRate: 0.02},
		{YearFrac: 2.0, ZeroRate: 0.03},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestDiscountFactorAtZero(t *testing.T) {
	c := twoPillarCurve(t)
	approxEqual(t, c.DiscountFactor(0), 1.0, 1e-15, "DF(0)")
}

func TestDiscountFactorRangeNonNegativeRates(t *testing.T) {
	c := twoPillarCurve(t)
	for _, tt := range []float64{0, 0.5, 1, 1.5, 2, 3, 10} {
		df := c.DiscountFactor(tt)
		if df <= 0 || df > 1 {
			t.Errorf("DF(%v) = %v, want in (0,1]", tt, df)
		}
	}
}

func TestExactnessOnPillars(t *testing.T) {
	c := twoPillarCurve(t)
	approxEqual(t, c.DiscountFactor(1.0), math.Exp(-0.02*1.0), 1e-12, "DF(1y)")
	approxEqual(t, c.DiscountFactor(2.0), math.Exp(-0.03*2.0), 1e-12, "DF(2y)")
}

func TestLogLinearMidpoint(t *testing.T) {
	c := twoPillarCurve(t)
	approxEqual(t, c.DiscountFactor(1.5), math.Exp(-0.04), 1e-12, "DF(1.5y)")
}

func TestTailExtrapolation(t *testing.T) {
	c := twoPillarCurve(t)
	approxEqual(t, c.DiscountFactor(3.0), math.Exp(-0.10), 1e-12, "DF(3y)")
}

func TestSinglePillarCurve(t *testing.T) {
	c, err := New("TEST", []CurvePoint{{YearFrac: 1.0, ZeroRate: 0.02}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	approxEqual(t, c.DiscountFactor(0.5), math.Exp(-0.02*0.5), 1e-12, "DF(0.5y) single pillar interior")
	approxEqual(t, c.DiscountFactor(2.0), math.Exp(-0.02*2.0), 1e-12, "DF(2y) single pillar extrapolated (flat zero)")
}

func TestZeroRateAtZeroIsFirstPillar(t *testing.T) {
	c := twoPillarCurve(t)
	approxEqual(t, c.ZeroRate(0), 0.02, 1e-12, "ZeroRate(0)")
}

func TestZeroRateRoundTrip(t *testing.T) {
	c := twoPillarCurve(t)
	z := c.ZeroRate(1.0)
	approxEqual(t, z, 0.02, 1e-12, "ZeroRate(1y)")
}

func TestConstructionFailsOnEmptyPoints(t *testing.T) {
	if _, err := New("TEST", nil); err == nil {
		t.Fatal("expected CurveConstructionError on empty points")
	}
}

func TestConstructionFailsOnDuplicateYearFrac(t *testing.T) {
	_, err := New("TEST", []CurvePoint{
		{YearFrac: 1.0, ZeroRate: 0.02},
		{YearFrac: 1.0, ZeroRate: 0.03},
	})
	if err == nil {
		t.Fatal("expected CurveConstructionError on duplicate year_frac")
	}
}

func TestConstructionFailsOnNonPositiveYearFrac(t *testing.T) {
	_, err := New("TEST", []CurvePoint{{YearFrac: 0, ZeroRate: 0.02}})
	if err == nil {
		t.Fatal("expected CurveConstructionError on non-positive year_frac")
	}
}

func TestUFRExtrapolationConvergesTowardRate(t *testing.T) {
	c, err := NewWithExtrapolation("TEST", []CurvePoint{
		{YearFrac: 1.0, ZeroRate: 0.02},
		{YearFrac: 2.0, ZeroRate: 0.03},
	}, UFR, UFRParams{Rate: 0.05, ConvergenceYears: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Far beyond the last pillar, the zero rate should approach the UFR.
	z := c.ZeroRate(200.0)
	approxEqual(t, z, 0.05, 1e-3, "ZeroRate(200y) under UFR")
}
