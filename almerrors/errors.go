// Package almerrors defines the typed error kinds returned by the IRRBB
// core. Every error carries the values needed to identify the offending
// input rather than just a formatted message, following the
// EmissionCapHitError pattern: a struct that implements error and exposes
// its fields for callers that want to branch on them with errors.As.
package almerrors

import "fmt"

// ErrMissingSchedule is the sentinel wrapped by MissingPrincipalSchedule,
// so callers that only care about the error class can use errors.Is.
var ErrMissingSchedule = fmt.Errorf("missing principal schedule")

// ErrUnknownIndex is the sentinel wrapped by UnknownIndex.
var ErrUnknownIndex = fmt.Errorf("unknown index")

// CurveConstructionError reports an invalid pillar set.
type CurveConstructionError struct {
	IndexName string
	Reason    string
}

func (e *CurveConstructionError) Error() string {
	return fmt.Sprintf("curve construction error for %q: %s", e.IndexName, e.Reason)
}

// UnknownIndex reports a curve lookup miss, naming what was requested and
// what was available.
type UnknownIndex struct {
	Requested string
	Available []string
}

func (e *UnknownIndex) Error() string {
	return fmt.Sprintf("unknown index %q (available: %v)", e.Requested, e.Available)
}

func (e *UnknownIndex) Unwrap() error { return ErrUnknownIndex }

// CurveTableMissingColumns reports an input table lacking required columns.
type CurveTableMissingColumns struct {
	Missing []string
}

func (e *CurveTableMissingColumns) Error() string {
	return fmt.Sprintf("curve table missing columns: %v", e.Missing)
}

// UnsupportedTenor reports a tenor symbol outside the supported grammar.
type UnsupportedTenor struct {
	Tenor string
}

func (e *UnsupportedTenor) Error() string {
	return fmt.Sprintf("unsupported tenor %q", e.Tenor)
}

// UnrecognisedDaycountBase reports a day count base string that could not
// be normalised.
type UnrecognisedDaycountBase struct {
	Base string
}

func (e *UnrecognisedDaycountBase) Error() string {
	return fmt.Sprintf("unrecognised daycount base %q", e.Base)
}

// MissingPrincipalSchedule reports a *_scheduled position with no matching
// externally supplied principal flows.
type MissingPrincipalSchedule struct {
	ContractID string
}

func (e *MissingPrincipalSchedule) Error() string {
	return fmt.Sprintf("contract %q: no principal schedule supplied", e.ContractID)
}

func (e *MissingPrincipalSchedule) Unwrap() error { return ErrMissingSchedule }

// MissingFloatIndex reports a floating-rate position lacking an index name
// or curve.
type MissingFloatIndex struct {
	ContractID string
	IndexName  string
}

func (e *MissingFloatIndex) Error() string {
	if e.IndexName == "" {
		return fmt.Sprintf("contract %q: floating position has no index_name", e.ContractID)
	}
	return fmt.Sprintf("contract %q: floating index %q not present in curve set", e.ContractID, e.IndexName)
}

// InvalidScenario reports a duplicate or unrecognised scenario identifier.
type InvalidScenario struct {
	Name   string
	Reason string
}

func (e *InvalidScenario) Error() string {
	return fmt.Sprintf("invalid scenario %q: %s", e.Name, e.Reason)
}

// InvalidBucket reports a bucket with end_years <= start_years.
type InvalidBucket struct {
	Name       string
	StartYears float64
	EndYears   float64
}

func (e *InvalidBucket) Error() string {
	return fmt.Sprintf("invalid bucket %q: end_years (%.4f) <= start_years (%.4f)", e.Name, e.EndYears, e.StartYears)
}

// NumericOverflow reports a discount factor or related quantity reaching
// the limits of representable range.
type NumericOverflow struct {
	Context string
}

func (e *NumericOverflow) Error() string {
	return fmt.Sprintf("numeric overflow: %s", e.Context)
}

// ContractError augments any of the above with per-contract context, for
// propagation out of the cashflow generator (spec §7: "enough context
// (contract_id, source_contract_type) to identify the offending row").
type ContractError struct {
	ContractID         string
	SourceContractType string
	Err                error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("contract %q (%s): %v", e.ContractID, e.SourceContractType, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }
