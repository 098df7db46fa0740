// Package split partitions a dataset into train and test sets through a
// single random permutation, seeded for reproducible experiments or left
// unseeded for a fresh partition on every run.
package split

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

// Split is a train/test partition of a feature matrix and its label vector.
// TrainIndex and TestIndex record which original rows landed where, in
// permuted order; together they cover every row exactly once.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense

	TrainIndex []int
	TestIndex  []int
}

type options struct {
	testSize float64
	seed     int64
	seeded   bool
}

// Option configures TrainTest.
type Option func(*options)

// WithTestSize sets the fraction of rows assigned to the test set. The
// default is 0.25. The fraction must lie strictly between 0 and 1.
func WithTestSize(f float64) Option {
	return func(o *options) {
		o.testSize = f
	}
}

// WithSeed makes the permutation reproducible: the same seed on the same
// data always yields the same partition. Without it the permutation draws
// from OS entropy.
func WithSeed(s int64) Option {
	return func(o *options) {
		o.seed = s
		o.seeded = true
	}
}

// TrainTest splits X and y into train and test sets by one random
// permutation. The test set receives ceil(testSize·n) rows and the remainder
// trains; the first part of the permutation trains, the rest tests.
func TrainTest(X, y mat.Matrix, opts ...Option) (*Split, error) {
	o := options{testSize: 0.25}
	for _, opt := range opts {
		opt(&o)
	}

	if o.testSize <= 0 || o.testSize >= 1 {
		return nil, errors.NewValueError("split.TrainTest", "test size must be in (0, 1)")
	}

	n, c := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || c == 0 {
		return nil, errors.NewModelError("split.TrainTest", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return nil, errors.NewDimensionError("split.TrainTest", n, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError("split.TrainTest", "y must be a column vector")
	}

	nTest := int(math.Ceil(o.testSize * float64(n)))
	nTrain := n - nTest
	if nTrain == 0 {
		return nil, errors.NewValueError("split.TrainTest", "test size leaves no training rows")
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	if o.seeded {
		r := rand.New(rand.NewPCG(uint64(o.seed), uint64(o.seed)))
		r.Shuffle(n, func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})
	} else {
		rand.Shuffle(n, func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})
	}

	s := &Split{
		XTrain:     mat.NewDense(nTrain, c, nil),
		XTest:      mat.NewDense(nTest, c, nil),
		YTrain:     mat.NewVecDense(nTrain, nil),
		YTest:      mat.NewVecDense(nTest, nil),
		TrainIndex: perm[:nTrain],
		TestIndex:  perm[nTrain:],
	}

	for i, row := range s.TrainIndex {
		for j := 0; j < c; j++ {
			s.XTrain.Set(i, j, X.At(row, j))
		}
		s.YTrain.SetVec(i, y.At(row, 0))
	}
	for i, row := range s.TestIndex {
		for j := 0; j < c; j++ {
			s.XTest.Set(i, j, X.At(row, j))
		}
		s.YTest.SetVec(i, y.At(row, 0))
	}

	fields := []any{
		log.StepKey, log.StepSplit,
		log.TrainSamplesKey, nTrain,
		log.TestSamplesKey, nTest,
		log.TestSizeKey, o.testSize,
	}
	if o.seeded {
		fields = append(fields, log.RandomSeedKey, o.seed)
	}
	log.GetLoggerWithName("split").Info("data split", fields...)

	return s, nil
}
