package curve

import (
	"fmt"
	"time"

	"github.com/bankalm/irrbb-core/almerrors"
	"github.com/bankalm/irrbb-core/daycount"
)

// PointRow is one row of the flat curve input table (spec.md §6):
// {IndexName, Tenor, FwdRate, TenorDate, YearFrac}.
type PointRow struct {
	IndexName  string
	Tenor      string
	FwdRate    float64 // zero rate, decimal, continuously compounded
	TenorDate  time.Time
	YearFrac   float64
}

// RawRow is an untyped table row as it would arrive from an external
// loader (CSV/DB/etc. — out of scope for this core, spec.md §1). ParseRows
// validates column presence before the core ever sees a typed PointRow.
type RawRow map[string]any

var requiredColumns = []string{"IndexName", "Tenor", "FwdRate", "TenorDate", "YearFrac"}

// ParseRows validates that every required column is present across the
// row set and converts to typed PointRow values. Fails with
// CurveTableMissingColumns listing every column missing from ANY row.
func ParseRows(rows []RawRow) ([]PointRow, error) {
	missingSet := map[string]bool{}
	for _, r := range rows {
		for _, col := range requiredColumns {
			if _, ok := r[col]; !ok {
				missingSet[col] = true
			}
		}
	}
	if len(missingSet) > 0 {
		missing := make([]string, 0, len(missingSet))
		for _, col := range requiredColumns {
			if missingSet[col] {
				missing = append(missing, col)
			}
		}
		return nil, &almerrors.CurveTableMissingColumns{Missing: missing}
	}

	out := make([]PointRow, 0, len(rows))
	for _, r := range rows {
		row := PointRow{
			IndexName: fmt.Sprint(r["IndexName"]),
			Tenor:     fmt.Sprint(r["Tenor"]),
		}
		if v, ok := r["FwdRate"].(float64); ok {
			row.FwdRate = v
		}
		if v, ok := r["TenorDate"].(time.Time); ok {
			row.TenorDate = v
		}
		if v, ok := r["YearFrac"].(float64); ok {
			row.YearFrac = v
		}
		out = append(out, row)
	}
	return out, nil
}

// ForwardCurveSet holds many indexed curves sharing one analysis date and
// day count base (spec.md §4.2), plus the flat points table they were
// built from so a shock can be applied row-wise and the set rebuilt.
type ForwardCurveSet struct {
	analysisDate time.Time
	base         daycount.Base
	rows         []PointRow
	curves       map[string]*ForwardCurve
}

// BuildSet groups rows by IndexName and constructs one ForwardCurve per
// index.
func BuildSet(analysisDate time.Time, base daycount.Base, rows []PointRow) (*ForwardCurveSet, error) {
	byIndex := map[string][]PointRow{}
	order := []string{}
	for _, r := range rows {
		if _, ok := byIndex[r.IndexName]; !ok {
			order = append(order, r.IndexName)
		}
		byIndex[r.IndexName] = append(byIndex[r.IndexName], r)
	}

	curves := make(map[string]*ForwardCurve, len(order))
	for _, name := range order {
		points := make([]CurvePoint, 0, len(byIndex[name]))
		for _, r := range byIndex[name] {
			points = append(points, CurvePoint{
				YearFrac:   r.YearFrac,
				ZeroRate:   r.FwdRate,
				TenorLabel: r.Tenor,
				TenorDate:  r.TenorDate,
			})
		}
		c, err := New(name, points)
		if err != nil {
			return nil, err
		}
		curves[name] = c
	}

	return &ForwardCurveSet{
		analysisDate: analysisDate,
		base:         base,
		rows:         rows,
		curves:       curves,
	}, nil
}

// AnalysisDate returns the set's shared analysis date.
func (s *ForwardCurveSet) AnalysisDate() time.Time { return s.analysisDate }

// Base returns the set's shared day count base.
func (s *ForwardCurveSet) Base() daycount.Base { return s.base }

// Rows returns the flat points table the set was built from.
func (s *ForwardCurveSet) Rows() []PointRow {
	out := make([]PointRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// IndexNames returns the set's index names.
func (s *ForwardCurveSet) IndexNames() []string {
	names := make([]string, 0, len(s.curves))
	for n := range s.curves {
		names = append(names, n)
	}
	return names
}

// Get returns the named curve, failing with UnknownIndex listing every
// available index name.
func (s *ForwardCurveSet) Get(indexName string) (*ForwardCurve, error) {
	c, ok := s.curves[indexName]
	if !ok {
		return nil, &almerrors.UnknownIndex{Requested: indexName, Available: s.IndexNames()}
	}
	return c, nil
}

// RequireIndices fails listing every name in names that isn't present in
// the set.
func (s *ForwardCurveSet) RequireIndices(names []string) error {
	var missing []string
	for _, n := range names {
		if _, ok := s.curves[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &almerrors.UnknownIndex{Requested: fmt.Sprintf("%v", missing), Available: s.IndexNames()}
	}
	return nil
}

// FloatIndexRef names the minimal information about a floating-rate
// position needed to check curve coverage, decoupling curve from the
// cashflow package's richer Position type.
type FloatIndexRef struct {
	ContractID string
	IsFloating bool
	IndexName  string
}

// RequireFloatIndexCoverage fails with MissingFloatIndex for the first
// floating position whose index_name is empty or not present in the set.
func (s *ForwardCurveSet) RequireFloatIndexCoverage(refs []FloatIndexRef) error {
	for _, r := range refs {
		if !r.IsFloating {
			continue
		}
		if r.IndexName == "" {
			return &almerrors.MissingFloatIndex{ContractID: r.ContractID}
		}
		if _, ok := s.curves[r.IndexName]; !ok {
			return &almerrors.MissingFloatIndex{ContractID: r.ContractID, IndexName: r.IndexName}
		}
	}
	return nil
}

// RateOnDate converts date to a year-fraction using the set's day count
// base, then returns the index curve's zero rate at that year-fraction.
func (s *ForwardCurveSet) RateOnDate(index string, date time.Time) (float64, error) {
	c, err := s.Get(index)
	if err != nil {
		return 0, err
	}
	t := daycount.YearFraction(s.analysisDate, date, s.base)
	return c.ZeroRate(t), nil
}

// DFOnDate is RateOnDate's discount-factor counterpart.
func (s *ForwardCurveSet) DFOnDate(index string, date time.Time) (float64, error) {
	c, err := s.Get(index)
	if err != nil {
		return 0, err
	}
	t := daycount.YearFraction(s.analysisDate, date, s.base)
	return c.DiscountFactor(t), nil
}

// Rebuild reconstructs the curve map from a (possibly shocked) points
// table, keeping the same analysis date, base and pillar ordering — only
// the rate column changes (spec.md §4.2 "Rebuild from points").
func Rebuild(analysisDate time.Time, base daycount.Base, rows []PointRow) (*ForwardCurveSet, error) {
	return BuildSet(analysisDate, base, rows)
}
