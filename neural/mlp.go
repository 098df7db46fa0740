// Package neural implements a multilayer perceptron regressor trained by
// minibatch gradient descent, with a choice of adam (the default) or
// momentum SGD updates. The default architecture is the small funnel network
// used by the pipeline's multi-feature model: three hidden ReLU layers of 2,
// 8 and 2 units feeding one identity output.
package neural

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/core/model"
	"github.com/amesml/amesgo/core/parallel"
	"github.com/amesml/amesgo/metrics"
	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

// parallelThreshold is the row count above which Predict fans out across
// CPU cores.
const parallelThreshold = 1000

// modelName identifies MLPRegressor documents in the JSON interchange
// format.
const modelName = "MLPRegressor"

// MLPRegressor is a feedforward neural network for regression: hidden ReLU
// layers, an identity output unit and a squared-error objective with L2
// penalty, optimized minibatch-wise by adam or momentum SGD.
//
// Training stops early when the loss has not improved by at least Tol for
// NIterNoChange consecutive epochs. Hitting MaxIter without converging is
// not an error: a ConvergenceWarning is emitted and the best parameters seen
// so far are kept.
type MLPRegressor struct {
	model.BaseEstimator

	// HiddenLayerSizes holds the width of each hidden layer.
	HiddenLayerSizes []int
	// Solver selects the update rule, SolverAdam or SolverSGD.
	Solver string
	// LearningRate is the constant step size.
	LearningRate float64
	// MaxIter caps the number of training epochs.
	MaxIter int
	// Alpha is the L2 penalty strength.
	Alpha float64
	// Momentum is the SGD velocity decay in [0, 1]; ignored by adam.
	Momentum float64
	// Beta1 and Beta2 are adam's moment decay rates; ignored by SGD.
	Beta1 float64
	Beta2 float64
	// Epsilon guards adam's division by the second-moment root.
	Epsilon float64
	// BatchSize fixes the minibatch size; 0 selects min(200, n).
	BatchSize int
	// Tol is the minimum loss improvement that counts as progress.
	Tol float64
	// NIterNoChange is how many stalled epochs end training early.
	NIterNoChange int
	// RandomState seeds initialization and shuffling; negative values draw
	// a fresh seed from OS entropy.
	RandomState int64

	coefs_      []*mat.Dense
	intercepts_ [][]float64
	nFeatures_  int
	lossCurve_  []float64
	bestLoss_   float64
	nIter_      int
}

var _ model.Regressor = (*MLPRegressor)(nil)

// NewMLPRegressor creates a regressor with the pipeline's default
// configuration.
func NewMLPRegressor() *MLPRegressor {
	return &MLPRegressor{
		HiddenLayerSizes: []int{2, 8, 2},
		Solver:           SolverAdam,
		LearningRate:     0.01,
		MaxIter:          2000,
		Alpha:            1e-4,
		Momentum:         0.9,
		Beta1:            0.9,
		Beta2:            0.999,
		Epsilon:          1e-8,
		BatchSize:        0,
		Tol:              1e-4,
		NIterNoChange:    10,
		RandomState:      -1,
	}
}

// WithSolver selects the update rule, SolverAdam or SolverSGD.
func (m *MLPRegressor) WithSolver(solver string) *MLPRegressor {
	m.Solver = solver
	return m
}

// WithHiddenLayerSizes sets the hidden layer widths.
func (m *MLPRegressor) WithHiddenLayerSizes(sizes ...int) *MLPRegressor {
	m.HiddenLayerSizes = sizes
	return m
}

// WithLearningRate sets the optimizer step size.
func (m *MLPRegressor) WithLearningRate(lr float64) *MLPRegressor {
	m.LearningRate = lr
	return m
}

// WithMaxIter sets the epoch cap.
func (m *MLPRegressor) WithMaxIter(n int) *MLPRegressor {
	m.MaxIter = n
	return m
}

// WithAlpha sets the L2 penalty strength.
func (m *MLPRegressor) WithAlpha(a float64) *MLPRegressor {
	m.Alpha = a
	return m
}

// WithMomentum sets the SGD velocity decay.
func (m *MLPRegressor) WithMomentum(mom float64) *MLPRegressor {
	m.Momentum = mom
	return m
}

// WithAdamParams sets adam's moment decay rates and epsilon guard.
func (m *MLPRegressor) WithAdamParams(beta1, beta2, epsilon float64) *MLPRegressor {
	m.Beta1 = beta1
	m.Beta2 = beta2
	m.Epsilon = epsilon
	return m
}

// WithBatchSize fixes the minibatch size.
func (m *MLPRegressor) WithBatchSize(n int) *MLPRegressor {
	m.BatchSize = n
	return m
}

// WithTol sets the early-stopping improvement threshold.
func (m *MLPRegressor) WithTol(tol float64) *MLPRegressor {
	m.Tol = tol
	return m
}

// WithNIterNoChange sets how many stalled epochs end training.
func (m *MLPRegressor) WithNIterNoChange(n int) *MLPRegressor {
	m.NIterNoChange = n
	return m
}

// WithRandomState seeds the run for reproducible training.
func (m *MLPRegressor) WithRandomState(seed int64) *MLPRegressor {
	m.RandomState = seed
	return m
}

// Fit trains the network on X and the column vector y.
func (m *MLPRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "MLPRegressor.Fit")

	start := time.Now()

	if err := m.validateParams(); err != nil {
		return err
	}

	n, c := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || c == 0 {
		return errors.NewModelError("MLPRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("MLPRegressor.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("MLPRegressor.Fit", "y must be a column vector")
	}

	Xd := mat.DenseCopyOf(X)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		targets[i] = y.At(i, 0)
	}
	if err := checkFinite(Xd, targets); err != nil {
		return err
	}

	m.nFeatures_ = c

	layers := make([]int, 0, len(m.HiddenLayerSizes)+2)
	layers = append(layers, c)
	layers = append(layers, m.HiddenLayerSizes...)
	layers = append(layers, 1)

	rng := m.newRNG()
	m.initParams(layers, rng)

	batch := m.BatchSize
	if batch <= 0 {
		batch = 200
	}
	if batch > n {
		batch = n
	}

	opt := m.newOptimizer()

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	logger := log.GetLoggerWithName("neural")
	logger.Debug("training started",
		log.ModelNameKey, modelName,
		log.LearningRateKey, m.LearningRate,
		log.MaxIterKey, m.MaxIter,
		log.BatchSizeKey, batch,
	)

	m.lossCurve_ = nil
	m.bestLoss_ = math.Inf(1)
	m.nIter_ = 0

	var bestCoefs []*mat.Dense
	var bestIntercepts [][]float64
	noImprovement := 0
	converged := false

	for iter := 0; iter < m.MaxIter; iter++ {
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		accumulated := 0.0
		for from := 0; from < n; from += batch {
			to := from + batch
			if to > n {
				to = n
			}
			size := to - from

			Xb := mat.NewDense(size, c, nil)
			yb := make([]float64, size)
			for bi := 0; bi < size; bi++ {
				row := indices[from+bi]
				for j := 0; j < c; j++ {
					Xb.Set(bi, j, Xd.At(row, j))
				}
				yb[bi] = targets[row]
			}

			accumulated += m.updateBatch(Xb, yb, opt) * float64(size)
		}

		epochLoss := accumulated / float64(n)
		m.lossCurve_ = append(m.lossCurve_, epochLoss)
		m.nIter_ = iter + 1

		if err := errors.CheckScalar("MLPRegressor.Fit", epochLoss, m.nIter_); err != nil {
			return err
		}

		logger.Debug("epoch finished",
			log.EpochKey, m.nIter_,
			log.LossKey, epochLoss,
		)

		if epochLoss > m.bestLoss_-m.Tol {
			noImprovement++
		} else {
			noImprovement = 0
		}
		if epochLoss < m.bestLoss_ {
			m.bestLoss_ = epochLoss
			bestCoefs, bestIntercepts = m.snapshot()
		}
		if noImprovement > m.NIterNoChange {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("MLPRegressor", m.MaxIter,
			"stochastic optimizer reached the iteration cap before the loss converged"))
		if bestCoefs != nil {
			m.coefs_ = bestCoefs
			m.intercepts_ = bestIntercepts
		}
	}

	m.SetFitted()

	logger.Info("model fitted",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, c,
		log.HiddenLayersKey, m.HiddenLayerSizes,
		log.IterationKey, m.nIter_,
		log.LossKey, m.lossCurve_[len(m.lossCurve_)-1],
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return nil
}

// Predict returns an n×1 matrix of network outputs for the rows of X.
func (m *MLPRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MLPRegressor", "Predict")
	}

	r, c := X.Dims()
	if c != m.nFeatures_ {
		return nil, errors.NewDimensionError("MLPRegressor.Predict", m.nFeatures_, c, 1)
	}

	Xd := mat.DenseCopyOf(X)
	out := mat.NewDense(r, 1, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(from, to int) {
		chunk := Xd.Slice(from, to, 0, c).(*mat.Dense)
		activations := m.forward(chunk)
		pred := activations[len(activations)-1]
		for i := from; i < to; i++ {
			out.Set(i, 0, pred.At(i-from, 0))
		}
	})

	return out, nil
}

// Score returns the coefficient of determination R² on the given data.
func (m *MLPRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("MLPRegressor", "Score")
	}

	yPred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, yPred)
}

// LossCurve returns a copy of the per-epoch training loss.
func (m *MLPRegressor) LossCurve() []float64 {
	curve := make([]float64, len(m.lossCurve_))
	copy(curve, m.lossCurve_)
	return curve
}

// BestLoss returns the lowest epoch loss reached during training.
func (m *MLPRegressor) BestLoss() float64 {
	return m.bestLoss_
}

// NIterations returns the number of completed training epochs.
func (m *MLPRegressor) NIterations() int {
	return m.nIter_
}

// NFeatures returns the number of features seen during Fit.
func (m *MLPRegressor) NFeatures() int {
	return m.nFeatures_
}

// GetParams returns the model's hyperparameters.
func (m *MLPRegressor) GetParams() map[string]interface{} {
	hidden := make([]int, len(m.HiddenLayerSizes))
	copy(hidden, m.HiddenLayerSizes)

	return map[string]interface{}{
		"hidden_layer_sizes": hidden,
		"solver":             m.Solver,
		"learning_rate":      m.LearningRate,
		"max_iter":           m.MaxIter,
		"alpha":              m.Alpha,
		"momentum":           m.Momentum,
		"beta_1":             m.Beta1,
		"beta_2":             m.Beta2,
		"epsilon":            m.Epsilon,
		"batch_size":         m.BatchSize,
		"tol":                m.Tol,
		"n_iter_no_change":   m.NIterNoChange,
		"random_state":       m.RandomState,
	}
}

// newOptimizer builds the configured update rule over the freshly
// initialized parameters.
func (m *MLPRegressor) newOptimizer() optimizer {
	if m.Solver == SolverSGD {
		return newSGDOptimizer(m.LearningRate, m.Momentum, m.coefs_, m.intercepts_)
	}
	return newAdamOptimizer(m.LearningRate, m.Beta1, m.Beta2, m.Epsilon, m.coefs_, m.intercepts_)
}

// validateParams rejects hyperparameter settings the optimizer cannot run
// with.
func (m *MLPRegressor) validateParams() error {
	if len(m.HiddenLayerSizes) == 0 {
		return errors.NewValidationError("hidden_layer_sizes", "must not be empty", m.HiddenLayerSizes)
	}
	for _, size := range m.HiddenLayerSizes {
		if size <= 0 {
			return errors.NewValidationError("hidden_layer_sizes", "layer widths must be positive", size)
		}
	}
	if m.Solver != SolverAdam && m.Solver != SolverSGD {
		return errors.NewValidationError("solver", "must be \"adam\" or \"sgd\"", m.Solver)
	}
	if m.LearningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", m.LearningRate)
	}
	if m.MaxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", m.MaxIter)
	}
	if m.Momentum < 0 || m.Momentum > 1 {
		return errors.NewValidationError("momentum", "must be in [0, 1]", m.Momentum)
	}
	if m.Beta1 < 0 || m.Beta1 >= 1 {
		return errors.NewValidationError("beta_1", "must be in [0, 1)", m.Beta1)
	}
	if m.Beta2 < 0 || m.Beta2 >= 1 {
		return errors.NewValidationError("beta_2", "must be in [0, 1)", m.Beta2)
	}
	if m.Epsilon <= 0 {
		return errors.NewValidationError("epsilon", "must be positive", m.Epsilon)
	}
	if m.Tol < 0 {
		return errors.NewValidationError("tol", "must be non-negative", m.Tol)
	}
	if m.NIterNoChange <= 0 {
		return errors.NewValidationError("n_iter_no_change", "must be positive", m.NIterNoChange)
	}
	return nil
}

// newRNG builds the run's random source: seeded PCG when RandomState is set,
// OS entropy otherwise.
func (m *MLPRegressor) newRNG() *rand.Rand {
	if m.RandomState >= 0 {
		return rand.New(rand.NewPCG(uint64(m.RandomState), uint64(m.RandomState)))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// initParams draws Glorot-uniform weights and biases for each layer:
// uniform in ±sqrt(6/(fanIn+fanOut)).
func (m *MLPRegressor) initParams(layers []int, rng *rand.Rand) {
	count := len(layers) - 1
	m.coefs_ = make([]*mat.Dense, count)
	m.intercepts_ = make([][]float64, count)

	for l := 0; l < count; l++ {
		fanIn, fanOut := layers[l], layers[l+1]
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

		w := mat.NewDense(fanIn, fanOut, nil)
		for i := 0; i < fanIn; i++ {
			for j := 0; j < fanOut; j++ {
				w.Set(i, j, rng.Float64()*2*bound-bound)
			}
		}
		m.coefs_[l] = w

		b := make([]float64, fanOut)
		for j := range b {
			b[j] = rng.Float64()*2*bound - bound
		}
		m.intercepts_[l] = b
	}
}

// forward runs the network over a batch, returning every layer's activation
// with activations[0] == X and the identity output last.
func (m *MLPRegressor) forward(X *mat.Dense) []*mat.Dense {
	count := len(m.coefs_)
	activations := make([]*mat.Dense, count+1)
	activations[0] = X

	for l := 0; l < count; l++ {
		var z mat.Dense
		z.Mul(activations[l], m.coefs_[l])

		rows, cols := z.Dims()
		hidden := l < count-1
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := z.At(i, j) + m.intercepts_[l][j]
				if hidden && v < 0 {
					v = 0
				}
				z.Set(i, j, v)
			}
		}
		activations[l+1] = &z
	}

	return activations
}

// updateBatch runs one forward/backward pass over a minibatch, hands the
// gradients to the optimizer, and returns the batch loss
// ½·MSE + ½·alpha·‖W‖²/batch.
func (m *MLPRegressor) updateBatch(Xb *mat.Dense, yb []float64, opt optimizer) float64 {
	size := float64(len(yb))
	count := len(m.coefs_)

	activations := m.forward(Xb)
	output := activations[count]

	delta := mat.NewDense(len(yb), 1, nil)
	sse := 0.0
	for i := range yb {
		d := output.At(i, 0) - yb[i]
		delta.Set(i, 0, d)
		sse += d * d
	}

	sumSquares := 0.0
	for _, w := range m.coefs_ {
		norm := mat.Norm(w, 2)
		sumSquares += norm * norm
	}
	loss := sse/(2*size) + 0.5*m.Alpha*sumSquares/size

	gradW := make([]*mat.Dense, count)
	gradB := make([][]float64, count)

	current := delta
	for l := count - 1; l >= 0; l-- {
		// Layer gradient: (AᵀΔ + αW)/batch.
		var gw mat.Dense
		gw.Mul(activations[l].T(), current)
		var reg mat.Dense
		reg.Scale(m.Alpha, m.coefs_[l])
		gw.Add(&gw, &reg)
		gw.Scale(1/size, &gw)
		gradW[l] = &gw

		_, fanOut := current.Dims()
		gb := make([]float64, fanOut)
		for j := 0; j < fanOut; j++ {
			s := 0.0
			for i := range yb {
				s += current.At(i, j)
			}
			gb[j] = s / size
		}
		gradB[l] = gb

		if l > 0 {
			var back mat.Dense
			back.Mul(current, m.coefs_[l].T())
			rows, cols := back.Dims()
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					if activations[l].At(i, j) <= 0 {
						back.Set(i, j, 0)
					}
				}
			}
			current = &back
		}
	}

	opt.step(m.coefs_, m.intercepts_, gradW, gradB)

	return loss
}

// snapshot deep-copies the current parameters.
func (m *MLPRegressor) snapshot() ([]*mat.Dense, [][]float64) {
	coefs := make([]*mat.Dense, len(m.coefs_))
	for l, w := range m.coefs_ {
		coefs[l] = mat.DenseCopyOf(w)
	}
	intercepts := make([][]float64, len(m.intercepts_))
	for l, b := range m.intercepts_ {
		intercepts[l] = make([]float64, len(b))
		copy(intercepts[l], b)
	}
	return coefs, intercepts
}

// checkFinite rejects NaN and infinite inputs before training starts.
func checkFinite(X *mat.Dense, y []float64) error {
	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValueError("MLPRegressor.Fit", "X contains NaN or infinity")
			}
		}
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewValueError("MLPRegressor.Fit", "y contains NaN or infinity")
		}
	}
	return nil
}
