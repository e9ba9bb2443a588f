// Package cashflow turns one Position plus a set of projection curves into
// an ordered sequence of Cashflow records. Each source_contract_type is a
// small deterministic state machine (spec.md §4.4); the package matches
// the variant once per position and loops, mirroring molib's
// swap.InterestRateSwap.legCashflows / bond.ComputeASWSpread schedule-then-PV
// shape, generalised from a fixed pair of legs to ten product-type variants.
package cashflow

import (
	"time"

	"github.com/bankalm/irrbb-core/daycount"
)

// Side is the banking-book side a position sits on.
type Side string

const (
	Asset     Side = "A"
	Liability Side = "L"
)

// Sign returns the aggregation sign convention: assets positive, liabilities
// negative (spec.md §3).
func (s Side) Sign() float64 {
	if s == Liability {
		return -1
	}
	return 1
}

// RateType distinguishes fixed-coupon from index-linked positions.
type RateType string

const (
	RateFixed RateType = "fixed"
	RateFloat RateType = "float"
)

// ContractType is the closed set of source_contract_type tags driving
// cashflow generation (spec.md §4.4).
type ContractType string

const (
	FixedBullet          ContractType = "fixed_bullet"
	FixedAnnuity         ContractType = "fixed_annuity"
	FixedLinear          ContractType = "fixed_linear"
	FixedScheduled       ContractType = "fixed_scheduled"
	FixedNonMaturity     ContractType = "fixed_non_maturity"
	VariableBullet       ContractType = "variable_bullet"
	VariableAnnuity      ContractType = "variable_annuity"
	VariableLinear       ContractType = "variable_linear"
	VariableScheduled    ContractType = "variable_scheduled"
	VariableNonMaturity  ContractType = "variable_non_maturity"
)

// AnnuityPaymentMode selects how a variable_annuity position's constant
// payment behaves across resets (spec.md §9 Open Question).
type AnnuityPaymentMode string

const (
	RepriceOnReset AnnuityPaymentMode = "reprice_on_reset"
	FixedPayment   AnnuityPaymentMode = "fixed_payment"
)

// Position is one contract. Pure data; no internal state (spec.md §3).
type Position struct {
	ContractID         string
	StartDate          time.Time
	MaturityDate       *time.Time
	Notional           float64
	Side               Side
	RateType           RateType
	DaycountBase       daycount.Base
	SourceContractType ContractType

	FixedRate         *float64 // fixed coupon, or the frozen last-reset rate for a float stub
	IndexName         *string
	Spread            *float64
	RepricingFreq     *string // tenor symbol, e.g. "3M"
	PaymentFreq       *string
	NextRepriceDate   *time.Time
	FloorRate         *float64
	CapRate           *float64
	AnnuityPaymentMode AnnuityPaymentMode // "" means: use the generator Options default
}

// ScheduledPrincipalFlow is one externally supplied amortisation flow for a
// *_scheduled position (spec.md §3).
type ScheduledPrincipalFlow struct {
	ContractID      string
	FlowDate        time.Time
	PrincipalAmount float64
}

// Cashflow is one generated flow. Amounts carry unsigned magnitude with an
// explicit Side tag; aggregators apply the sign (spec.md §3).
type Cashflow struct {
	ContractID         string
	SourceContractType ContractType
	RateType           RateType
	Side               Side
	FlowDate           time.Time
	InterestAmount     float64
	PrincipalAmount    float64
	IndexName          string
}

// Total is the unsigned sum of interest and principal in one flow.
func (c Cashflow) Total() float64 { return c.InterestAmount + c.PrincipalAmount }

// Signed applies the side sign convention to Total.
func (c Cashflow) Signed() float64 { return c.Side.Sign() * c.Total() }

// Options controls generator behaviour that the spec leaves as an explicit,
// documented choice rather than inferred from data (spec.md §9).
type Options struct {
	VariableAnnuityPaymentMode AnnuityPaymentMode
}

func (o Options) annuityMode() AnnuityPaymentMode {
	if o.VariableAnnuityPaymentMode == "" {
		return RepriceOnReset
	}
	return o.VariableAnnuityPaymentMode
}
