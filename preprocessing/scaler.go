// Package preprocessing provides data transformers applied ahead of model
// fitting. StandardScaler centres each column on zero mean and unit variance,
// which keeps gradient-based training numerically stable on columns whose
// raw magnitudes differ by orders of magnitude (lot areas vs. bath counts).
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/core/model"
	"github.com/amesml/amesgo/core/parallel"
	"github.com/amesml/amesgo/pkg/errors"
)

// parallelThreshold is the row count above which Transform fans out
// across CPU cores. Small matrices stay on one goroutine.
const parallelThreshold = 1000

// StandardScaler standardizes features by removing the per-column mean and
// scaling to unit variance:
//
//	z = (x - mean) / std
//
// Columns with near-zero standard deviation are scaled by 1.0 instead, so a
// constant column passes through as zeros rather than NaN.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-column mean learned by Fit.
	Mean []float64

	// Scale holds the per-column standard deviation learned by Fit
	// (population standard deviation, dividing by n).
	Scale []float64

	// NFeatures is the number of columns seen during Fit.
	NFeatures int

	// WithMean controls whether Fit learns column means (true) or leaves
	// them at zero (false).
	WithMean bool

	// WithStd controls whether Fit learns column standard deviations
	// (true) or leaves the scale at one (false).
	WithStd bool
}

var _ model.InverseTransformer = (*StandardScaler)(nil)

// NewStandardScaler creates a StandardScaler with explicit centring and
// scaling switches.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler that both centres and
// scales, the configuration the cleaning stage uses.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns the per-column mean and standard deviation from X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	if s.WithMean {
		for j := 0; j < c; j++ {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}
	}

	if s.WithStd {
		for j := 0; j < c; j++ {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - s.Mean[j]
				sumSquares += diff * diff
			}
			s.Scale[j] = math.Sqrt(sumSquares / float64(r))

			// Constant column: scale by 1 to avoid division by zero.
			if s.Scale[j] < 1e-8 {
				s.Scale[j] = 1.0
			}
		}
	} else {
		for j := 0; j < c; j++ {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X using the statistics learned by Fit.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
			}
		}
	})

	return result, nil
}

// FitTransform learns the statistics from X and standardizes the same data.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
			}
		}
	})

	return result, nil
}

// GetParams returns the scaler's configuration.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String returns a short description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
