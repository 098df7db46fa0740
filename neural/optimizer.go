package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver names accepted by MLPRegressor.
const (
	// SolverAdam selects the adaptive-moment optimizer (the default).
	SolverAdam = "adam"
	// SolverSGD selects constant-rate gradient descent with momentum.
	SolverSGD = "sgd"
)

// optimizer applies one gradient step to the network parameters in place.
// Gradients arrive already averaged over the minibatch and including the L2
// term.
type optimizer interface {
	step(weights []*mat.Dense, biases [][]float64, gradW []*mat.Dense, gradB [][]float64)
}

// sgdOptimizer tracks one velocity per parameter:
// v = momentum·v − lr·grad, then param += v.
type sgdOptimizer struct {
	learningRate float64
	momentum     float64
	velocityW    []*mat.Dense
	velocityB    [][]float64
}

func newSGDOptimizer(lr, momentum float64, weights []*mat.Dense, biases [][]float64) *sgdOptimizer {
	o := &sgdOptimizer{
		learningRate: lr,
		momentum:     momentum,
		velocityW:    make([]*mat.Dense, len(weights)),
		velocityB:    make([][]float64, len(biases)),
	}
	for l := range weights {
		rows, cols := weights[l].Dims()
		o.velocityW[l] = mat.NewDense(rows, cols, nil)
		o.velocityB[l] = make([]float64, len(biases[l]))
	}
	return o
}

func (o *sgdOptimizer) step(weights []*mat.Dense, biases [][]float64, gradW []*mat.Dense, gradB [][]float64) {
	for l := range weights {
		o.velocityW[l].Scale(o.momentum, o.velocityW[l])
		var scaled mat.Dense
		scaled.Scale(o.learningRate, gradW[l])
		o.velocityW[l].Sub(o.velocityW[l], &scaled)
		weights[l].Add(weights[l], o.velocityW[l])

		for j := range biases[l] {
			o.velocityB[l][j] = o.momentum*o.velocityB[l][j] - o.learningRate*gradB[l][j]
			biases[l][j] += o.velocityB[l][j]
		}
	}
}

// adamOptimizer tracks bias-corrected first and second gradient moments per
// parameter. The effective step size is bounded by the learning rate, which
// keeps training stable on targets far from unit scale.
type adamOptimizer struct {
	learningRate float64
	beta1        float64
	beta2        float64
	epsilon      float64
	t            int
	momentW      []*mat.Dense
	secondW      []*mat.Dense
	momentB      [][]float64
	secondB      [][]float64
}

func newAdamOptimizer(lr, beta1, beta2, epsilon float64, weights []*mat.Dense, biases [][]float64) *adamOptimizer {
	o := &adamOptimizer{
		learningRate: lr,
		beta1:        beta1,
		beta2:        beta2,
		epsilon:      epsilon,
		momentW:      make([]*mat.Dense, len(weights)),
		secondW:      make([]*mat.Dense, len(weights)),
		momentB:      make([][]float64, len(biases)),
		secondB:      make([][]float64, len(biases)),
	}
	for l := range weights {
		rows, cols := weights[l].Dims()
		o.momentW[l] = mat.NewDense(rows, cols, nil)
		o.secondW[l] = mat.NewDense(rows, cols, nil)
		o.momentB[l] = make([]float64, len(biases[l]))
		o.secondB[l] = make([]float64, len(biases[l]))
	}
	return o
}

func (o *adamOptimizer) step(weights []*mat.Dense, biases [][]float64, gradW []*mat.Dense, gradB [][]float64) {
	o.t++
	lr := o.learningRate *
		math.Sqrt(1-math.Pow(o.beta2, float64(o.t))) / (1 - math.Pow(o.beta1, float64(o.t)))

	for l := range weights {
		rows, cols := weights[l].Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				g := gradW[l].At(i, j)
				first := o.beta1*o.momentW[l].At(i, j) + (1-o.beta1)*g
				second := o.beta2*o.secondW[l].At(i, j) + (1-o.beta2)*g*g
				o.momentW[l].Set(i, j, first)
				o.secondW[l].Set(i, j, second)
				weights[l].Set(i, j, weights[l].At(i, j)-lr*first/(math.Sqrt(second)+o.epsilon))
			}
		}

		for j := range biases[l] {
			g := gradB[l][j]
			o.momentB[l][j] = o.beta1*o.momentB[l][j] + (1-o.beta1)*g
			o.secondB[l][j] = o.beta2*o.secondB[l][j] + (1-o.beta2)*g*g
			biases[l][j] -= lr * o.momentB[l][j] / (math.Sqrt(o.secondB[l][j]) + o.epsilon)
		}
	}
}
