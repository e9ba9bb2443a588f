package nii

import (
	"fmt"
	"time"

	"github.com/bankalm/irrbb-core/cashflow"
	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
)

// MonthlyRow is one month's interest income/expense (spec.md §6).
type MonthlyRow struct {
	Scenario        string
	MonthIndex      int
	MonthLabel      string
	InterestIncome  float64
	InterestExpense float64
	NetNII          float64
}

func midDate(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

// monthlyBuckets builds the 12 (or horizonMonths) empty monthly rows
// covering [analysisDate+k*month, analysisDate+(k+1)*month) — the last
// bucket's upper bound is closed so the partition exactly covers
// (analysis_date, horizon_end] with no gap (spec.md §8 property 7 requires
// the monthly sum to equal the scalar NII exactly).
func monthlyBuckets(analysisDate time.Time, horizonMonths int) []MonthlyRow {
	rows := make([]MonthlyRow, horizonMonths)
	for k := 0; k < horizonMonths; k++ {
		start := analysisDate.AddDate(0, k, 0)
		rows[k] = MonthlyRow{
			MonthIndex: k,
			MonthLabel: fmt.Sprintf("%s", start.Format("2006-01")),
		}
	}
	return rows
}

func bucketIndex(flowDate, analysisDate time.Time, horizonMonths int) (int, bool) {
	for k := 0; k < horizonMonths; k++ {
		start := analysisDate.AddDate(0, k, 0)
		end := analysisDate.AddDate(0, k+1, 0)
		if !flowDate.Before(start) && (flowDate.Before(end) || (k == horizonMonths-1 && !flowDate.After(end))) {
			return k, true
		}
	}
	return 0, false
}

// Aggregate computes the scalar NII-12M and its monthly profile from
// already-generated flows (spec.md §4.7 "Horizon" / "Per-contract
// contribution" / "Monthly profile"). Only interest amounts contribute;
// principal repayments do not.
func Aggregate(flows []cashflow.Cashflow, analysisDate time.Time, horizonMonths int) (float64, []MonthlyRow) {
	horizonEnd := analysisDate.AddDate(0, horizonMonths, 0)
	rows := monthlyBuckets(analysisDate, horizonMonths)

	var total float64
	for _, f := range flows {
		if !f.FlowDate.After(analysisDate) || f.FlowDate.After(horizonEnd) {
			continue
		}
		k, ok := bucketIndex(f.FlowDate, analysisDate, horizonMonths)
		if !ok {
			continue
		}
		signed := f.Side.Sign() * f.InterestAmount
		total += signed
		if f.Side == cashflow.Asset {
			rows[k].InterestIncome += f.InterestAmount
		} else {
			rows[k].InterestExpense += f.InterestAmount
		}
	}
	for k := range rows {
		rows[k].NetNII = rows[k].InterestIncome - rows[k].InterestExpense
	}
	return total, rows
}

// Renewal is one synthetic balance-constant reinvestment triggered by a
// principal repayment or maturity within the horizon (spec.md §4.4
// "Balance-constant renewal").
type Renewal struct {
	ContractID string
	Side       cashflow.Side
	Rate       float64
	Interest   float64
}

// ApplyRenewal scans positions' own flows for principal repayments or
// maturities inside (analysisDate, horizonEnd], and for each one synthesises
// a reinvestment at the risk-free curve plus the calibrated margin for the
// remaining horizon (a single reinvestment period spanning to horizon_end).
// It returns the renewals and the side-signed sum of their interest; folding
// that sum into a scalar NII or a monthly profile is left to the caller.
func ApplyRenewal(positions []cashflow.Position, flows []cashflow.Cashflow, analysisDate time.Time, horizonMonths int, curves *curve.ForwardCurveSet, riskFreeIndex string, margins MarginSet) (renewals []Renewal, additionalNII float64, err error) {
	horizonEnd := analysisDate.AddDate(0, horizonMonths, 0)

	posByID := make(map[string]cashflow.Position, len(positions))
	for _, p := range positions {
		posByID[p.ContractID] = p
	}

	for _, f := range flows {
		if f.PrincipalAmount == 0 {
			continue
		}
		if !f.FlowDate.After(analysisDate) || f.FlowDate.After(horizonEnd) {
			continue
		}
		pos, ok := posByID[f.ContractID]
		if !ok {
			continue
		}
		remainingYF := daycount.YearFraction(f.FlowDate, horizonEnd, pos.DaycountBase)
		if remainingYF <= 0 {
			continue
		}
		margin := margins.Lookup(keyFor(pos))
		rfRate, rateErr := curves.RateOnDate(riskFreeIndex, midDate(f.FlowDate, horizonEnd))
		if rateErr != nil {
			return nil, 0, rateErr
		}
		rate := rfRate + margin
		interest := f.PrincipalAmount * rate * remainingYF

		renewals = append(renewals, Renewal{ContractID: f.ContractID, Side: f.Side, Rate: rate, Interest: interest})
		additionalNII += f.Side.Sign() * interest
	}
	return renewals, additionalNII, nil
}
