// Package linear implements ordinary least squares regression fitted by the
// normal equations. It is the baseline model of the pipeline: a single
// above-ground living-area feature already explains about half of the sale
// price variance.
package linear

import (
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/core/model"
	"github.com/amesml/amesgo/core/parallel"
	"github.com/amesml/amesgo/metrics"
	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

// parallelThreshold is the row count above which matrix assembly and
// prediction fan out across CPU cores.
const parallelThreshold = 1000

// modelName identifies LinearRegression documents in the JSON interchange
// format.
const modelName = "LinearRegression"

// LinearRegression is an ordinary least squares model solved in closed form
// with the normal equations:
//
//	w = (XᵀX)⁻¹ Xᵀy
//
// Fit fails with ErrSingularMatrix when XᵀX is not invertible, which happens
// when features are linearly dependent or there are fewer samples than
// features.
type LinearRegression struct {
	model.BaseEstimator

	weights   *mat.VecDense
	intercept float64
	nFeatures int

	fitIntercept bool
}

var (
	_ model.Regressor   = (*LinearRegression)(nil)
	_ model.LinearModel = (*LinearRegression)(nil)
)

// NewLinearRegression creates a linear regression model. By default an
// intercept term is fitted alongside the feature weights.
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit estimates the weights and intercept from the training data. y must be
// an n×1 column vector matching the n rows of X.
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	start := time.Now()

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.nFeatures = c

	// Design matrix: a leading column of ones absorbs the intercept.
	cols := c
	if lr.fitIntercept {
		cols = c + 1
	}
	design := mat.NewDense(r, cols, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(startRow, endRow int) {
		for i := startRow; i < endRow; i++ {
			if lr.fitIntercept {
				design.Set(i, 0, 1.0)
				for j := 0; j < c; j++ {
					design.Set(i, j+1, X.At(i, j))
				}
			} else {
				for j := 0; j < c; j++ {
					design.Set(i, j, X.At(i, j))
				}
			}
		}
	})

	var designT mat.Dense
	designT.CloneFrom(design.T())

	var gram mat.Dense
	gram.Mul(&designT, design)

	var gramInv mat.Dense
	if err := gramInv.Inverse(&gram); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var moment mat.VecDense
	moment.MulVec(&designT, yVec)

	solution := mat.NewVecDense(cols, nil)
	solution.MulVec(&gramInv, &moment)

	if lr.fitIntercept {
		lr.intercept = solution.AtVec(0)
		lr.weights = mat.NewVecDense(c, nil)
		for j := 0; j < c; j++ {
			lr.weights.SetVec(j, solution.AtVec(j+1))
		}
	} else {
		lr.intercept = 0
		lr.weights = mat.VecDenseCopyOf(solution)
	}

	lr.SetFitted()

	log.GetLoggerWithName("linear").Info("model fitted",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return nil
}

// Predict returns an n×1 matrix of predictions y = Xw + b.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.nFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.nFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := lr.intercept
			for j := 0; j < c; j++ {
				pred += X.At(i, j) * lr.weights.AtVec(j)
			}
			predictions.Set(i, 0, pred)
		}
	})

	return predictions, nil
}

// Score returns the coefficient of determination R² on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// Weights returns a copy of the learned coefficients, one per feature.
func (lr *LinearRegression) Weights() []float64 {
	if lr.weights == nil {
		return nil
	}

	weights := make([]float64, lr.weights.Len())
	for i := range weights {
		weights[i] = lr.weights.AtVec(i)
	}
	return weights
}

// Intercept returns the learned bias term.
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// NFeatures returns the number of features seen during Fit.
func (lr *LinearRegression) NFeatures() int {
	return lr.nFeatures
}

// GetParams returns the model's hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
	}
}

// linearParams is the JSON payload for a trained LinearRegression.
type linearParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	NFeatures    int       `json:"n_features"`
	FitIntercept bool      `json:"fit_intercept"`
}

// SaveJSON writes the fitted model to a file in the model interchange
// format.
func (lr *LinearRegression) SaveJSON(path string) error {
	if !lr.IsFitted() {
		return errors.NewNotFittedError("LinearRegression", "SaveJSON")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create model file")
	}
	defer file.Close()

	return lr.SaveJSONWriter(file)
}

// SaveJSONWriter writes the fitted model to w.
func (lr *LinearRegression) SaveJSONWriter(w io.Writer) error {
	if !lr.IsFitted() {
		return errors.NewNotFittedError("LinearRegression", "SaveJSONWriter")
	}

	params := linearParams{
		Coefficients: lr.Weights(),
		Intercept:    lr.intercept,
		NFeatures:    lr.nFeatures,
		FitIntercept: lr.fitIntercept,
	}

	return model.EncodeDocument(w, modelName, params)
}

// LoadJSON restores a model previously written with SaveJSON.
func (lr *LinearRegression) LoadJSON(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open model file")
	}
	defer file.Close()

	return lr.LoadJSONReader(file)
}

// LoadJSONReader restores a model from r.
func (lr *LinearRegression) LoadJSONReader(r io.Reader) error {
	doc, err := model.DecodeDocument(r)
	if err != nil {
		return err
	}

	var params linearParams
	if err := doc.DecodeParams(modelName, &params); err != nil {
		return err
	}

	if len(params.Coefficients) == 0 || params.NFeatures != len(params.Coefficients) {
		return errors.NewValueError("LinearRegression.LoadJSONReader", "inconsistent coefficient count")
	}

	lr.nFeatures = params.NFeatures
	lr.intercept = params.Intercept
	lr.fitIntercept = params.FitIntercept
	lr.weights = mat.NewVecDense(len(params.Coefficients), params.Coefficients)

	lr.SetFitted()
	return nil
}
