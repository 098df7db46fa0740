// Package pipeline wires the housing-price workflow end to end: load the
// TSV, select and engineer columns, fill and standardize, split, fit the
// linear and network models, score them, and render the diagnostic plots.
// Data flows strictly forward; any step failure aborts the run.
package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/dataset"
	"github.com/amesml/amesgo/linear"
	"github.com/amesml/amesgo/metrics"
	"github.com/amesml/amesgo/neural"
	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
	"github.com/amesml/amesgo/preprocessing"
	"github.com/amesml/amesgo/split"
	"github.com/amesml/amesgo/visual"
)

// Evaluation pairs the held-out scores of one model.
type Evaluation struct {
	MSE float64
	R2  float64
}

// Result carries everything one run produces.
type Result struct {
	// Linear is the single-feature least-squares model.
	Linear *linear.LinearRegression
	// Network is the multi-feature perceptron model.
	Network *neural.MLPRegressor

	LinearEval  Evaluation
	NetworkEval Evaluation

	TrainRows int
	TestRows  int

	// PlotPaths lists the PNG files rendered during the run, in order.
	PlotPaths []string
}

// Run executes the full pipeline described by cfg.
func Run(cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	r := &runner{cfg: cfg, logger: log.GetLoggerWithName("pipeline")}

	if cfg.Plots.Dir != "" {
		if err := os.MkdirAll(cfg.Plots.Dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create plot directory %s", cfg.Plots.Dir)
		}
	}

	table, err := dataset.ReadTSVFile(cfg.Data.Path)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if err := r.runLinear(table, result); err != nil {
		return nil, err
	}
	if err := r.runNetwork(table, result); err != nil {
		return nil, err
	}
	result.PlotPaths = r.plots

	r.logger.Info("pipeline finished",
		log.TrainSamplesKey, result.TrainRows,
		log.TestSamplesKey, result.TestRows,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// runner threads the config, logger and accumulated plot paths through the
// two model passes.
type runner struct {
	cfg    *Config
	logger log.Logger
	plots  []string
}

// runLinear fits sale price on the single feature: select, fill, split,
// ordinary least squares, evaluate, and render the scatter and fitted-line
// plots.
func (r *runner) runLinear(table *dataset.Table, result *Result) error {
	cfg := r.cfg

	r.logger.Info("selecting simple-model columns",
		log.StepKey, log.StepSelect,
		log.ColumnsKey, []string{cfg.Data.SimpleFeature, cfg.Data.Label},
	)
	selected, err := table.Select(cfg.Data.SimpleFeature, cfg.Data.Label)
	if err != nil {
		return err
	}

	missing := selected.MissingCells()
	filled := selected.FillMissing(cfg.Data.FillValue)
	r.logger.Info("missing cells filled",
		log.StepKey, log.StepClean,
		log.MissingKey, missing,
	)

	X, err := filled.Matrix(cfg.Data.SimpleFeature)
	if err != nil {
		return err
	}
	y, err := filled.Vector(cfg.Data.Label)
	if err != nil {
		return err
	}

	if err := r.renderScatter(X, y); err != nil {
		return err
	}

	sp, err := split.TrainTest(X, y, r.splitOptions()...)
	if err != nil {
		return err
	}
	result.TrainRows = len(sp.TrainIndex)
	result.TestRows = len(sp.TestIndex)

	model := linear.NewLinearRegression()
	if err := model.Fit(sp.XTrain, sp.YTrain); err != nil {
		return err
	}

	pred, err := model.Predict(sp.XTest)
	if err != nil {
		return err
	}
	eval, err := evaluate(sp.YTest, pred)
	if err != nil {
		return err
	}
	r.logger.Info("simple model evaluated",
		log.StepKey, log.StepEvaluate,
		log.ModelNameKey, "LinearRegression",
		log.MSEKey, eval.MSE,
		log.R2ScoreKey, eval.R2,
	)

	result.Linear = model
	result.LinearEval = eval

	return r.renderFitOverlay(sp, model)
}

// runNetwork fits the perceptron on the curated feature table: engineer the
// derived column, select, fill, standardize, split, train, evaluate, and
// render the residual histogram and loss curve.
func (r *runner) runNetwork(table *dataset.Table, result *Result) error {
	cfg := r.cfg

	engineered := table
	if cfg.Data.Derived.Name != "" {
		var err error
		engineered, err = table.SumColumns(cfg.Data.Derived.Name, cfg.Data.Derived.Sources...)
		if err != nil {
			return err
		}
		r.logger.Info("derived column appended",
			log.StepKey, log.StepEngineer,
			log.ColumnsKey, cfg.Data.Derived.Sources,
		)
	}

	names := make([]string, 0, len(cfg.Data.Features)+1)
	names = append(names, cfg.Data.Features...)
	names = append(names, cfg.Data.Label)

	r.logger.Info("selecting network-model columns",
		log.StepKey, log.StepSelect,
		log.ColumnsKey, names,
	)
	selected, err := engineered.Select(names...)
	if err != nil {
		return err
	}

	missing := selected.MissingCells()
	filled := selected.FillMissing(cfg.Data.FillValue)
	r.logger.Info("missing cells filled",
		log.StepKey, log.StepClean,
		log.MissingKey, missing,
	)

	X, err := filled.Matrix(cfg.Data.Features...)
	if err != nil {
		return err
	}
	y, err := filled.Vector(cfg.Data.Label)
	if err != nil {
		return err
	}

	// The whole feature table is standardized before splitting, as the
	// reference run does. The label stays in its original scale.
	scaler := preprocessing.NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return err
	}

	sp, err := split.TrainTest(scaled, y, r.splitOptions()...)
	if err != nil {
		return err
	}
	result.TrainRows = len(sp.TrainIndex)
	result.TestRows = len(sp.TestIndex)

	model := neural.NewMLPRegressor().
		WithHiddenLayerSizes(cfg.Network.HiddenLayers...).
		WithLearningRate(cfg.Network.LearningRate).
		WithMaxIter(cfg.Network.MaxIter).
		WithRandomState(cfg.Network.Seed)
	if err := model.Fit(sp.XTrain, sp.YTrain); err != nil {
		return err
	}

	pred, err := model.Predict(sp.XTest)
	if err != nil {
		return err
	}
	eval, err := evaluate(sp.YTest, pred)
	if err != nil {
		return err
	}
	r.logger.Info("network model evaluated",
		log.StepKey, log.StepEvaluate,
		log.ModelNameKey, "MLPRegressor",
		log.MSEKey, eval.MSE,
		log.R2ScoreKey, eval.R2,
	)

	result.Network = model
	result.NetworkEval = eval

	if err := r.renderResiduals(sp.YTest, pred); err != nil {
		return err
	}
	return r.renderLossCurve(model)
}

// splitOptions translates the split config; a negative seed means a fresh
// partition each run.
func (r *runner) splitOptions() []split.Option {
	opts := []split.Option{split.WithTestSize(r.cfg.Split.TestSize)}
	if r.cfg.Split.Seed >= 0 {
		opts = append(opts, split.WithSeed(r.cfg.Split.Seed))
	}
	return opts
}

// evaluate scores predictions against held-out truth.
func evaluate(yTrue, yPred mat.Matrix) (Evaluation, error) {
	mse, err := metrics.MSEMatrix(yTrue, yPred)
	if err != nil {
		return Evaluation{}, err
	}
	r2, err := metrics.R2ScoreMatrix(yTrue, yPred)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{MSE: mse, R2: r2}, nil
}

func (r *runner) renderScatter(X *mat.Dense, y *mat.VecDense) error {
	if r.cfg.Plots.Dir == "" {
		return nil
	}

	path := filepath.Join(r.cfg.Plots.Dir, "feature_scatter.png")
	title := r.cfg.Data.SimpleFeature + " vs " + r.cfg.Data.Label
	if err := visual.Scatter(columnSlice(X), vecSlice(y),
		r.cfg.Data.SimpleFeature, r.cfg.Data.Label, title, path); err != nil {
		return err
	}
	return r.recordPlot(path)
}

func (r *runner) renderFitOverlay(sp *split.Split, model *linear.LinearRegression) error {
	if r.cfg.Plots.Dir == "" {
		return nil
	}

	path := filepath.Join(r.cfg.Plots.Dir, "linear_fit.png")
	if err := visual.FitOverlay(
		columnSlice(sp.XTrain), vecSlice(sp.YTrain),
		columnSlice(sp.XTest), vecSlice(sp.YTest),
		model.Weights()[0], model.Intercept(),
		r.cfg.Data.SimpleFeature, r.cfg.Data.Label,
		"Least squares fit", path); err != nil {
		return err
	}
	return r.recordPlot(path)
}

func (r *runner) renderResiduals(yTrue *mat.VecDense, yPred mat.Matrix) error {
	if r.cfg.Plots.Dir == "" {
		return nil
	}

	n, _ := yPred.Dims()
	predVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		predVec.SetVec(i, yPred.At(i, 0))
	}
	residuals, err := metrics.Residuals(yTrue, predVec)
	if err != nil {
		return err
	}

	path := filepath.Join(r.cfg.Plots.Dir, "residuals.png")
	if err := visual.ResidualHist(vecSlice(residuals),
		r.cfg.Plots.ResidualLo, r.cfg.Plots.ResidualHi, r.cfg.Plots.ResidualBins, path); err != nil {
		return err
	}
	return r.recordPlot(path)
}

func (r *runner) renderLossCurve(model *neural.MLPRegressor) error {
	if r.cfg.Plots.Dir == "" {
		return nil
	}

	path := filepath.Join(r.cfg.Plots.Dir, "loss_curve.png")
	if err := visual.LossCurve(model.LossCurve(), path); err != nil {
		return err
	}
	return r.recordPlot(path)
}

func (r *runner) recordPlot(path string) error {
	r.plots = append(r.plots, path)
	r.logger.Info("plot rendered",
		log.StepKey, log.StepVisualize,
		log.PlotPathKey, path,
	)
	return nil
}

// columnSlice copies the first column of X.
func columnSlice(X *mat.Dense) []float64 {
	n, _ := X.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = X.At(i, 0)
	}
	return out
}

// vecSlice copies a vector's elements.
func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = v.AtVec(i)
	}
	return out
}
