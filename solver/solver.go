// Package solver implements the find-limit search (spec.md §4.9): given a
// prototype position and a target metric value, solve for the notional,
// rate, maturity or spread that drives the metric to the limit. Grounded
// on swap/curve/curve.go's solveOISDiscountFactor, which iterates a single
// scalar (a discount factor) toward a target PV; here the scalar is one of
// four position fields and the root-finder is bisection rather than
// Newton-Raphson, since the metric function is not cheaply differentiable
// across product-type branches.
package solver

import "fmt"

// Metric is the target quantity the solve-for variable is calibrated
// against.
type Metric string

const (
	MetricEVE Metric = "eve"
	MetricNII Metric = "nii"
)

// Variable is the position field being solved for.
type Variable string

const (
	VariableNotional Variable = "notional"
	VariableRate     Variable = "rate"
	VariableMaturity Variable = "maturity"
	VariableSpread   Variable = "spread"
)

// Range is an inclusive [Low, High] search interval.
type Range struct {
	Low, High float64
}

// DefaultRanges are the spec's default bisection bounds (spec.md §4.9):
// rate in decimal [0, 0.20], maturity in years [0.25, 50], spread in
// decimal [0, 0.10] (1000bps).
var DefaultRanges = map[Variable]Range{
	VariableRate:     {Low: 0, High: 0.20},
	VariableMaturity: {Low: 0.25, High: 50},
	VariableSpread:   {Low: 0, High: 0.10},
}

const (
	DefaultMaxIterations = 30
	DefaultAbsTol        = 1000
)

// Result is the outcome of a single find-limit solve.
type Result struct {
	Value      float64
	Metric     float64
	Iterations int
	Converged  bool
}

// EvalFunc evaluates the target metric for a candidate value of the
// solve-for variable. The caller closes over the prototype position,
// curve set and any other fixed context.
type EvalFunc func(value float64) (float64, error)

// SolveNotional implements the linear notional case (spec.md §4.9): one
// evaluation at refNotional gives the metric's sensitivity, from which the
// required notional is derived directly. refNotional must be non-zero.
func SolveNotional(refNotional, baseMetric, limit float64, eval EvalFunc) (Result, error) {
	if refNotional == 0 {
		return Result{}, fmt.Errorf("solver: reference notional must be non-zero")
	}
	refMetric, err := eval(refNotional)
	if err != nil {
		return Result{}, err
	}
	refDelta := refMetric - baseMetric
	if refDelta == 0 {
		return Result{}, fmt.Errorf("solver: reference notional produced zero metric sensitivity, cannot solve linearly")
	}
	required := refNotional * (limit - baseMetric) / refDelta
	metric, err := eval(required)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: required, Metric: metric, Iterations: 1, Converged: true}, nil
}

// Bisect finds value in rng such that eval(value) is within absTol of
// limit (spec.md §4.9 "Rate / maturity / spread"). If both endpoints lie
// on the same side of limit, the closer endpoint is returned with
// Converged=false rather than bisecting blindly.
func Bisect(rng Range, limit float64, maxIterations int, absTol float64, eval EvalFunc) (Result, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if absTol <= 0 {
		absTol = DefaultAbsTol
	}

	lowMetric, err := eval(rng.Low)
	if err != nil {
		return Result{}, err
	}
	highMetric, err := eval(rng.High)
	if err != nil {
		return Result{}, err
	}

	if sameSide(lowMetric, highMetric, limit) {
		if absDiff(lowMetric, limit) <= absDiff(highMetric, limit) {
			return Result{Value: rng.Low, Metric: lowMetric, Iterations: 0, Converged: false}, nil
		}
		return Result{Value: rng.High, Metric: highMetric, Iterations: 0, Converged: false}, nil
	}

	low, high := rng.Low, rng.High
	lowM := lowMetric
	for iter := 1; iter <= maxIterations; iter++ {
		mid := (low + high) / 2
		midMetric, err := eval(mid)
		if err != nil {
			return Result{}, err
		}
		if absDiff(midMetric, limit) < absTol {
			return Result{Value: mid, Metric: midMetric, Iterations: iter, Converged: true}, nil
		}
		if sameSide(lowM, midMetric, limit) {
			low = mid
			lowM = midMetric
		} else {
			high = mid
		}
	}

	mid := (low + high) / 2
	midMetric, err := eval(mid)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: mid, Metric: midMetric, Iterations: maxIterations, Converged: absDiff(midMetric, limit) < absTol}, nil
}

func sameSide(a, b, limit float64) bool {
	return (a-limit >= 0) == (b-limit >= 0)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
