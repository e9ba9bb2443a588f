package cashflow

import (
	"math"
	"testing"
	"time"

	"github.com/bankalm/irrbb-core/curve"
	"github.com/bankalm/irrbb-core/daycount"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func flatEURCurves(t *testing.T, indexName string, rate float64) *curve.ForwardCurveSet {
	t.Helper()
	analysis := d(2026, 1, 1)
	rows := []curve.PointRow{
		{IndexName: indexName, Tenor: "1Y", FwdRate: rate, YearFrac: 1.0},
		{IndexName: indexName, Tenor: "5Y", FwdRate: rate, YearFrac: 5.0},
	}
	set, err := curve.BuildSet(analysis, daycount.Act365, rows)
	if err != nil {
		t.Fatalf("BuildSet: %v", err)
	}
	return set
}

func ptr(f float64) *float64   { return &f }
func sptr(s string) *string    { return &s }
func tptr(t time.Time) *time.Time { return &t }

// S1: fixed bullet, 1y, 5%, 100 notional, asset, ACT/360.
func TestScenarioS1FixedBulletNII(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2027, 1, 1)
	pos := Position{
		ContractID:         "S1",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           100,
		Side:               Asset,
		RateType:           RateFixed,
		DaycountBase:       daycount.Act360,
		SourceContractType: FixedBullet,
		FixedRate:          ptr(0.05),
		PaymentFreq:        sptr("1Y"),
	}
	curves := flatEURCurves(t, "EUR_ESTR_OIS", 0.02)
	flows, err := Generate(pos, nil, curves, analysis, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var nii float64
	for _, f := range flows {
		nii += f.InterestAmount
	}
	want := 100 * 0.05 * daycount.YearFraction(analysis, maturity, daycount.Act360)
	if math.Abs(nii-want) > 1e-9 {
		t.Errorf("NII-12M = %v, want %v (spec ~5.0694)", nii, want)
	}
	if len(flows) != 1 || flows[0].PrincipalAmount != 100 {
		t.Fatalf("expected single bullet flow with full principal, got %+v", flows)
	}
}

// S3: variable bullet with next_reprice in 3 months, pre-reset 6% stub,
// 9-month tail at index(mid)+spread.
func TestScenarioS3VariableBulletStubThenFloat(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2027, 1, 1)
	reprice := d(2026, 4, 1)
	pos := Position{
		ContractID:         "S3",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           100,
		Side:               Asset,
		RateType:           RateFloat,
		DaycountBase:       daycount.Act360,
		SourceContractType: VariableBullet,
		FixedRate:          ptr(0.06),
		IndexName:          sptr("EUR_EURIBOR_3M"),
		Spread:             ptr(0.01),
		PaymentFreq:        sptr("3M"),
		NextRepriceDate:    &reprice,
	}
	curves := flatEURCurves(t, "EUR_EURIBOR_3M", 0.02)
	flows, err := Generate(pos, nil, curves, analysis, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(flows) != 4 {
		t.Fatalf("expected 4 quarterly flows, got %d", len(flows))
	}
	stubYF := daycount.YearFraction(analysis, reprice, daycount.Act360)
	wantStub := 100 * 0.06 * stubYF
	if math.Abs(flows[0].InterestAmount-wantStub) > 1e-9 {
		t.Errorf("stub interest = %v, want %v", flows[0].InterestAmount, wantStub)
	}
	periodStart := reprice
	periodEnd := d(2026, 7, 1)
	yf := daycount.YearFraction(periodStart, periodEnd, daycount.Act360)
	want := 100 * (0.02 + 0.01) * yf
	if math.Abs(flows[1].InterestAmount-want) > 1e-9 {
		t.Errorf("projected-leg interest = %v, want %v", flows[1].InterestAmount, want)
	}
}

// S4: fixed scheduled, externally supplied principal flows.
func TestScenarioS4FixedScheduledNII(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2028, 1, 1)
	pos := Position{
		ContractID:         "S4",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           100,
		Side:               Asset,
		RateType:           RateFixed,
		DaycountBase:       daycount.Act360,
		SourceContractType: FixedScheduled,
		FixedRate:          ptr(0.06),
	}
	sched := []ScheduledPrincipalFlow{
		{ContractID: "S4", FlowDate: d(2026, 7, 1), PrincipalAmount: 40},
		{ContractID: "S4", FlowDate: d(2027, 1, 1), PrincipalAmount: 60},
	}
	curves := flatEURCurves(t, "EUR_ESTR_OIS", 0.02)
	flows, err := Generate(pos, sched, curves, analysis, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	yf1 := daycount.YearFraction(d(2026, 1, 1), d(2026, 7, 1), daycount.Act360)
	yf2 := daycount.YearFraction(d(2026, 7, 1), d(2027, 1, 1), daycount.Act360)
	want1 := 100 * 0.06 * yf1
	want2 := 60 * 0.06 * yf2
	if math.Abs(flows[0].InterestAmount-want1) > 1e-9 {
		t.Errorf("flow 1 interest = %v, want %v", flows[0].InterestAmount, want1)
	}
	if math.Abs(flows[1].InterestAmount-want2) > 1e-9 {
		t.Errorf("flow 2 interest = %v, want %v", flows[1].InterestAmount, want2)
	}
	if flows[0].PrincipalAmount != 40 || flows[1].PrincipalAmount != 60 {
		t.Fatalf("unexpected principal amounts: %+v", flows)
	}
}

func TestScheduledMissingFlowsFails(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2028, 1, 1)
	pos := Position{
		ContractID:         "S4x",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           100,
		Side:               Asset,
		RateType:           RateFixed,
		DaycountBase:       daycount.Act360,
		SourceContractType: FixedScheduled,
		FixedRate:          ptr(0.06),
	}
	curves := flatEURCurves(t, "EUR_ESTR_OIS", 0.02)
	if _, err := Generate(pos, nil, curves, analysis, Options{}); err == nil {
		t.Fatal("expected MissingPrincipalSchedule error")
	}
}

func TestLinearAmortisationPaysOffExactly(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2030, 1, 1)
	pos := Position{
		ContractID:         "LIN1",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           100,
		Side:               Asset,
		RateType:           RateFixed,
		DaycountBase:       daycount.Act365,
		SourceContractType: FixedLinear,
		FixedRate:          ptr(0.04),
		PaymentFreq:        sptr("1Y"),
	}
	curves := flatEURCurves(t, "EUR_ESTR_OIS", 0.02)
	flows, err := Generate(pos, nil, curves, analysis, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var totalPrincipal float64
	for _, f := range flows {
		totalPrincipal += f.PrincipalAmount
	}
	if math.Abs(totalPrincipal-100) > 1e-9 {
		t.Errorf("total principal = %v, want 100", totalPrincipal)
	}
}

func TestAnnuityPaysOffExactly(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2031, 1, 1)
	pos := Position{
		ContractID:         "ANN1",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           1000,
		Side:               Asset,
		RateType:           RateFixed,
		DaycountBase:       daycount.Act365,
		SourceContractType: FixedAnnuity,
		FixedRate:          ptr(0.05),
		PaymentFreq:        sptr("1Y"),
	}
	curves := flatEURCurves(t, "EUR_ESTR_OIS", 0.02)
	flows, err := Generate(pos, nil, curves, analysis, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var totalPrincipal float64
	payments := map[float64]bool{}
	for _, f := range flows {
		totalPrincipal += f.PrincipalAmount
		payments[math.Round((f.InterestAmount+f.PrincipalAmount)*100)/100] = true
	}
	if math.Abs(totalPrincipal-1000) > 1e-6 {
		t.Errorf("total principal = %v, want 1000", totalPrincipal)
	}
	if len(payments) != 1 {
		t.Errorf("expected a single constant payment amount across periods, got %v", payments)
	}
}

func TestAnnuityFixedPaymentModeHoldsPaymentConstantAcrossReset(t *testing.T) {
	analysis := d(2026, 1, 1)
	maturity := d(2029, 1, 1)
	reprice := d(2027, 1, 1)
	pos := Position{
		ContractID:         "ANN2",
		StartDate:          analysis,
		MaturityDate:       &maturity,
		Notional:           1000,
		Side:               Asset,
		RateType:           RateFloat,
		DaycountBase:       daycount.Act365,
		SourceContractType: VariableAnnuity,
		FixedRate:          ptr(0.05),
		IndexName:          sptr("EUR_ESTR_OIS"),
		Spread:             ptr(0.0),
		PaymentFreq:        sptr("1Y"),
		NextRepriceDate:    &reprice,
	}
	curves := flatEURCurves(t, "EUR_ESTR_OIS", 0.03)
	flows, err := Generate(pos, nil, curves, analysis, Options{VariableAnnuityPaymentMode: FixedPayment})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	first := flows[0].InterestAmount + flows[0].PrincipalAmount
	second := flows[1].InterestAmount + flows[1].PrincipalAmount
	if math.Abs(first-second) > 1e-6 {
		t.Errorf("fixed_payment mode should hold payment constant: %v vs %v", first, second)
	}
}
