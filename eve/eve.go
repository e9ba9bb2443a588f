// Package eve aggregates generated cashflows into the Economic Value of
// Equity scalar and its bucketed breakdown (spec.md §4.6), grounded on
// bond.ComputeASWSpread's PV-then-sum pattern (each flow discounted once,
// summed in a fixed order) generalised from a single bond's cashflows to a
// signed, multi-contract portfolio.
package eve

import (
	"time"

	"github.com/bankalm/irrbb-core/almconfig"
	"github.com/bankalm/irrbb-core/almerrors"
	"github.com/bankalm/irrbb-core/cashflow"
	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
)

// Exact computes the scalar EVE by discounting every flow individually
// (spec.md §4.6 "Exact mode"). Flows must already be sorted by
// (contract_id, flow_date) for deterministic summation (spec.md §5).
func Exact(flows []cashflow.Cashflow, analysisDate time.Time, discountBase daycount.Base, discountIndex string, curves *curve.ForwardCurveSet) (float64, error) {
	discCurve, err := curves.Get(discountIndex)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, f := range flows {
		df := discCurve.DiscountFactorOnDate(analysisDate, f.FlowDate, discountBase)
		total += f.Side.Sign() * f.Total() * df
	}
	return total, nil
}

// BucketRow is one row of the bucket breakdown table (spec.md §6).
type BucketRow struct {
	Scenario           string
	BucketName         string
	StartYears         float64
	EndYears           *float64
	RepresentativeDate time.Time
	DiscountFactor     float64
	AssetPV            float64
	LiabilityPV        float64
	NetPV              float64
}

// validateBuckets fails fast on a malformed bucket grid (spec.md §7
// InvalidBucket).
func validateBuckets(buckets []almconfig.EVEBucketConfig) error {
	for _, b := range buckets {
		if b.EndYears != nil && *b.EndYears <= b.StartYears {
			return &almerrors.InvalidBucket{Name: b.Name, StartYears: b.StartYears, EndYears: *b.EndYears}
		}
	}
	return nil
}

func representativeT(b almconfig.EVEBucketConfig, openEndedYears float64) float64 {
	if b.EndYears != nil {
		return (b.StartYears + *b.EndYears) / 2
	}
	return b.StartYears + openEndedYears/2
}

// representativeDate converts representativeT's year offset into a
// calendar date for the bucket table's reporting columns (spec.md §6); the
// PV discounting itself stays on the precise year-fraction path to avoid a
// 365.25-day-year round-trip error creeping into the bucketed/exact parity
// invariant (spec.md §8 property 6).
func representativeDate(analysisDate time.Time, b almconfig.EVEBucketConfig, openEndedYears float64) time.Time {
	years := representativeT(b, openEndedYears)
	return analysisDate.Add(time.Duration(years*365.25*24) * time.Hour)
}

func findBucket(buckets []almconfig.EVEBucketConfig, t float64) (almconfig.EVEBucketConfig, bool) {
	for _, b := range buckets {
		if b.EndYears == nil {
			if t >= b.StartYears {
				return b, true
			}
			continue
		}
		if t >= b.StartYears && t <= *b.EndYears {
			return b, true
		}
	}
	return almconfig.EVEBucketConfig{}, false
}

// Bucketed groups flows into almconfig.EVEBucketConfig ranges and discounts
// each bucket's aggregate cashflow at its representative year-fraction
// (spec.md §4.6 "Bucketed mode" — a coarser approximation used for
// reporting, not regulatory reporting).
func Bucketed(flows []cashflow.Cashflow, analysisDate time.Time, discountBase daycount.Base, discountIndex string, curves *curve.ForwardCurveSet, buckets []almconfig.EVEBucketConfig, openEndedYears float64) ([]BucketRow, error) {
	if err := validateBuckets(buckets); err != nil {
		return nil, err
	}
	discCurve, err := curves.Get(discountIndex)
	if err != nil {
		return nil, err
	}

	type agg struct{ assetTotal, liabilityTotal float64 }
	totals := make(map[string]*agg, len(buckets))
	for _, b := range buckets {
		totals[b.Name] = &agg{}
	}

	for _, f := range flows {
		t := daycount.YearFraction(analysisDate, f.FlowDate, discountBase)
		b, ok := findBucket(buckets, t)
		if !ok {
			continue
		}
		a := totals[b.Name]
		if f.Side == cashflow.Asset {
			a.assetTotal += f.Total()
		} else {
			a.liabilityTotal += f.Total()
		}
	}

	rows := make([]BucketRow, 0, len(buckets))
	for _, b := range buckets {
		a := totals[b.Name]
		repDate := representativeDate(analysisDate, b, openEndedYears)
		df := discCurve.DiscountFactor(representativeT(b, openEndedYears))
		assetPV := a.assetTotal * df
		liabilityPV := a.liabilityTotal * df
		rows = append(rows, BucketRow{
			BucketName:         b.Name,
			StartYears:         b.StartYears,
			EndYears:           b.EndYears,
			RepresentativeDate: repDate,
			DiscountFactor:     df,
			AssetPV:            assetPV,
			LiabilityPV:        liabilityPV,
			NetPV:              assetPV - liabilityPV,
		})
	}
	return rows, nil
}

// NetTotal sums every row's NetPV — equal to Exact's scalar when buckets
// partition [0, ∞) without gap and each bucket's representative point is the
// time of the flows it holds (spec.md §8 property 6); otherwise it is the
// bucketed approximation.
func NetTotal(rows []BucketRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.NetPV
	}
	return total
}
