// Package model defines the estimator contracts shared across the library
// and the JSON interchange format for trained models.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the minimal surface every model exposes: inspection and reset
// of the fitted state. BaseEstimator provides the implementation.
type Estimator interface {
	IsFitted() bool
	Reset()
}

// Fitter is a supervised model trainable from a feature matrix and a target
// column vector.
type Fitter interface {
	// Fit trains the model. y must be a column vector with one row per
	// sample in X.
	Fit(X, y mat.Matrix) error
}

// Predictor produces predictions for a feature matrix.
type Predictor interface {
	// Predict returns an n×1 matrix of predictions for the n rows of X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer computes the coefficient of determination R² of the prediction.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor is the composite interface implemented by the supervised
// regression estimators.
type Regressor interface {
	Estimator
	Fitter
	Predictor
	Scorer
}

// LinearModel exposes the parameters of a fitted linear model.
type LinearModel interface {
	// Weights returns the learned coefficients, one per feature.
	Weights() []float64
	// Intercept returns the learned bias term.
	Intercept() float64
}

// Transformer fits and applies a feature transformation.
type Transformer interface {
	// Fit learns the transformation parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit and Transform in one step.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer is a Transformer whose mapping can be reversed.
type InverseTransformer interface {
	Transformer

	// InverseTransform maps transformed data back to the original space.
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter exposes an estimator's hyperparameters, mirroring
// scikit-learn's get_params.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
