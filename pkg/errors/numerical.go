package errors

import (
	"math"
)

// CheckScalar returns a NumericalInstabilityError when value is NaN or Inf.
// Trainers call it on the running loss to fail fast instead of iterating on
// garbage.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}
