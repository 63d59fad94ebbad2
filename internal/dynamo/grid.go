package dynamo

import (
	"fmt"
	"math"
)

// Linspace returns n evenly spaced points from t0 to t1 inclusive.
func Linspace(t0, t1 float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{t0}
	}
	ts := make([]float64, n)
	h := (t1 - t0) / float64(n-1)
	for i := range ts {
		ts[i] = t0 + float64(i)*h
	}
	ts[n-1] = t1
	return ts
}

// Arange returns t0, t0+h, ... up to and including t1 when it lands on the
// grid within rounding. h must move t0 toward t1.
func Arange(t0, t1, h float64) ([]float64, error) {
	if h == 0 || math.IsNaN(h) || math.IsInf(h, 0) || (t1-t0)*h < 0 {
		return nil, fmt.Errorf("step %g does not advance from %g to %g", h, t0, t1)
	}
	n := int(math.Floor((t1-t0)/h+1e-9)) + 1
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = t0 + float64(i)*h
	}
	return ts, nil
}

// CheckTimes verifies that t is finite and strictly increasing or strictly
// decreasing.
func CheckTimes(t []float64) error {
	for i, v := range t {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: t[%d] = %v", ErrNonMonotonic, i, v)
		}
	}
	if len(t) < 2 {
		return nil
	}
	increasing := t[1] > t[0]
	for i := 1; i < len(t); i++ {
		d := t[i] - t[i-1]
		if d == 0 || (d > 0) != increasing {
			return fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrNonMonotonic, i, t[i], i-1, t[i-1])
		}
	}
	return nil
}
