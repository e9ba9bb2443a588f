// Package tenor resolves symbolic tenors (ON, 1D, 3M, 5Y, ...) to date
// offsets, generalising molib's swap/curve.tenorToYears (which only
// produced a year-fraction for curve pillar parsing) into a full
// Add(date, tenor) -> date operation with no business-day adjustment, as
// required by the spec (tenor arithmetic is pure calendar-day arithmetic;
// no business-day adjustment is performed anywhere in this module).
package tenor

import (
	"strconv"
	"strings"
	"time"

	"github.com/bankalm/irrbb-core/almerrors"
)

// Unit identifies the symbolic unit of a tenor.
type Unit int

const (
	UnitDay Unit = iota
	UnitWeek
	UnitMonth
	UnitYear
)

// Tenor is a parsed symbolic tenor: a count of Unit.
type Tenor struct {
	Count int
	Unit  Unit
}

// Parse converts a tenor string to a Tenor, failing with UnsupportedTenor
// for anything outside the grammar { ON, 1D, nW, nM, nY }.
func Parse(s string) (Tenor, error) {
	raw := strings.TrimSpace(strings.ToUpper(s))
	if raw == "ON" {
		return Tenor{Count: 1, Unit: UnitDay}, nil
	}
	if raw == "" {
		return Tenor{}, &almerrors.UnsupportedTenor{Tenor: s}
	}

	unitChar := raw[len(raw)-1]
	numPart := raw[:len(raw)-1]
	n, err := strconv.Atoi(numPart)
	if err != nil || n <= 0 {
		return Tenor{}, &almerrors.UnsupportedTenor{Tenor: s}
	}

	switch unitChar {
	case 'D':
		if n != 1 {
			return Tenor{}, &almerrors.UnsupportedTenor{Tenor: s}
		}
		return Tenor{Count: n, Unit: UnitDay}, nil
	case 'W':
		return Tenor{Count: n, Unit: UnitWeek}, nil
	case 'M':
		return Tenor{Count: n, Unit: UnitMonth}, nil
	case 'Y':
		return Tenor{Count: n, Unit: UnitYear}, nil
	default:
		return Tenor{}, &almerrors.UnsupportedTenor{Tenor: s}
	}
}

// MustParse panics on a malformed tenor; reserved for compiled-in constant
// tenors (e.g. config defaults), never for untrusted input.
func MustParse(s string) Tenor {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// AddTo adds the tenor to a date with no business-day adjustment.
func (t Tenor) AddTo(d time.Time) time.Time {
	switch t.Unit {
	case UnitDay:
		return d.AddDate(0, 0, t.Count)
	case UnitWeek:
		return d.AddDate(0, 0, 7*t.Count)
	case UnitMonth:
		return addMonths(d, t.Count)
	case UnitYear:
		return d.AddDate(t.Count, 0, 0)
	default:
		return d
	}
}

// SubFrom subtracts the tenor from a date (used to walk a payment schedule
// backward from maturity), equivalent to AddTo with a negated count.
func (t Tenor) SubFrom(d time.Time) time.Time {
	neg := Tenor{Count: -t.Count, Unit: t.Unit}
	return neg.AddTo(d)
}

// Add is a convenience wrapper combining Parse and AddTo.
func Add(d time.Time, tenorStr string) (time.Time, error) {
	t, err := Parse(tenorStr)
	if err != nil {
		return time.Time{}, err
	}
	return t.AddTo(d), nil
}

// addMonths adds calendar months the way molib's utils.AddMonth does
// (Excel EDATE semantics): clamp to the last day of the target month
// rather than let Go's AddDate roll an overflowing day into the next
// month (e.g. Jan 31 + 1M should land on Feb 28/29, not Mar 2/3).
func addMonths(t time.Time, months int) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := firstOfMonth.AddDate(0, months, 0)
	naive := t.AddDate(0, months, 0)
	if naive.Month() == target.Month() {
		return naive
	}
	d := naive
	origMonth := int(d.Month())
	for int(d.Month()) == origMonth {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// YearFraction approximates the tenor's length in years: days and weeks
// over 365, months over 12, years as their count, matching molib's
// tenorToYears used for curve pillar ordering.
func (t Tenor) YearFraction() float64 {
	switch t.Unit {
	case UnitDay:
		return float64(t.Count) / 365.0
	case UnitWeek:
		return float64(t.Count) * 7.0 / 365.0
	case UnitMonth:
		return float64(t.Count) / 12.0
	case UnitYear:
		return float64(t.Count)
	default:
		return 0
	}
}

func (t Tenor) String() string {
	switch t.Unit {
	case UnitDay:
		if t.Count == 1 {
			return "ON"
		}
		return strconv.Itoa(t.Count) + "D"
	case UnitWeek:
		return strconv.Itoa(t.Count) + "W"
	case UnitMonth:
		return strconv.Itoa(t.Count) + "M"
	case UnitYear:
		return strconv.Itoa(t.Count) + "Y"
	default:
		return ""
	}
}
