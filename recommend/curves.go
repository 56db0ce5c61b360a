package recommend

import (
	"errors"
	"math"

	"github.com/sajari/regression"
	"gonum.org/v1/gonum/optimize"
)

// CostFloor is the minimum believable solar cost in PHP per kW; the decay
// curve is clamped here so far-future years never quote near-zero panels.
const CostFloor = 20000.0

// CostCurve models solar cost over time as exponential decay
// a*exp(-b*(x-xmin)) + c. The x shift keeps the exponent small.
type CostCurve struct {
	A, B, C float64
	XMin    float64
}

// At evaluates the curve for a year, floored at CostFloor.
func (c CostCurve) At(year float64) float64 {
	v := c.A*math.Exp(-c.B*(year-c.XMin)) + c.C
	return math.Max(v, CostFloor)
}

// FitCostCurve fits the decay parameters by minimizing the sum of squared
// errors with Nelder-Mead.
func FitCostCurve(years, costs []float64) (CostCurve, error) {
	if len(years) < 3 || len(years) != len(costs) {
		return CostCurve{}, errors.New("need at least 3 cost observations to fit the decay curve")
	}

	xmin := years[0]
	lo, hi := costs[0], costs[0]
	for i, y := range years {
		if y < xmin {
			xmin = y
		}
		lo = math.Min(lo, costs[i])
		hi = math.Max(hi, costs[i])
	}

	sse := func(p []float64) float64 {
		a, b, c := p[0], p[1], p[2]
		var sum float64
		for i := range years {
			diff := a*math.Exp(-b*(years[i]-xmin)) + c - costs[i]
			sum += diff * diff
		}
		return sum
	}

	problem := optimize.Problem{Func: sse}
	init := []float64{hi - lo, 0.1, lo}
	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil {
		return CostCurve{}, err
	}

	return CostCurve{A: result.X[0], B: result.X[1], C: result.X[2], XMin: xmin}, nil
}

// TariffCurve models the electricity tariff over time as a quadratic in the
// shifted year.
type TariffCurve struct {
	Coeffs [3]float64
	XMin   float64
}

// At evaluates the curve for a year, floored at zero.
func (t TariffCurve) At(year float64) float64 {
	x := year - t.XMin
	v := t.Coeffs[0] + t.Coeffs[1]*x + t.Coeffs[2]*x*x
	return math.Max(v, 0)
}

// FitTariffCurve fits the quadratic by ordinary least squares.
func FitTariffCurve(years, rates []float64) (TariffCurve, error) {
	if len(years) < 3 || len(years) != len(rates) {
		return TariffCurve{}, errors.New("need at least 3 tariff observations to fit the quadratic")
	}

	xmin := years[0]
	for _, y := range years {
		if y < xmin {
			xmin = y
		}
	}

	var r regression.Regression
	r.SetObserved("tariff")
	r.SetVar(0, "year")
	r.SetVar(1, "year_sq")
	for i := range years {
		x := years[i] - xmin
		r.Train(regression.DataPoint(rates[i], []float64{x, x * x}))
	}
	if err := r.Run(); err != nil {
		return TariffCurve{}, err
	}

	coeffs := r.GetCoeffs()
	if len(coeffs) < 3 {
		return TariffCurve{}, errors.New("tariff fit produced too few coefficients")
	}
	return TariffCurve{Coeffs: [3]float64{coeffs[0], coeffs[1], coeffs[2]}, XMin: xmin}, nil
}
