// Standard attribute keys for pipeline and estimator logging.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that log lines from every stage of a run can be filtered
// and joined in analysis tooling. Use these constants instead of ad-hoc
// strings.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "LinearRegression", "MLPRegressor", "StandardScaler"
	ModelNameKey = "model.name"

	// OperationKey names the estimator operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or component emitting the record.
	// Examples: "dataset", "preprocessing", "neural.mlp", "pipeline"
	ComponentKey = "ml.component"

	// PhaseKey indicates the lifecycle phase.
	// Examples: "preprocessing", "training", "evaluation"
	PhaseKey = "ml.phase"

	// StepKey names the pipeline step in flight.
	// Examples: "load", "select", "engineer", "clean", "split", "train"
	StepKey = "pipeline.step"
)

// Data shape and provenance.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns being processed.
	FeaturesKey = "data.features"

	// ColumnsKey identifies the table columns in play: a count when logged
	// by the loader, the selected names when logged by pipeline steps.
	ColumnsKey = "data.columns"

	// MissingKey is the number of missing cells encountered.
	MissingKey = "data.missing"

	// TrainSamplesKey and TestSamplesKey record split sizes.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"

	// BatchSizeKey is the minibatch size of an iterative trainer.
	BatchSizeKey = "data.batch_size"

	// DataPathKey is the source path of a loaded dataset.
	DataPathKey = "data.path"
)

// Performance and metrics.
const (
	// DurationMsKey is the wall-clock duration of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey is the training loss at the logged iteration.
	LossKey = "metrics.loss"

	// MSEKey is the mean squared error of an evaluation.
	MSEKey = "metrics.mse"

	// R2ScoreKey is the coefficient of determination of an evaluation.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey is the iteration counter of an iterative process.
	IterationKey = "training.iteration"

	// EpochKey is the epoch counter of an iterative trainer.
	EpochKey = "training.epoch"
)

// Hyperparameters and run configuration.
const (
	// LearningRateKey is the learning rate of a gradient-based trainer.
	LearningRateKey = "hyperparams.learning_rate"

	// HiddenLayersKey is the hidden layer topology of a network.
	HiddenLayersKey = "hyperparams.hidden_layers"

	// MaxIterKey is the iteration cap of an iterative trainer.
	MaxIterKey = "hyperparams.max_iter"

	// RandomSeedKey is the seed controlling shuffles and initialization.
	RandomSeedKey = "config.random_seed"

	// TestSizeKey is the held-out fraction of a train/test split.
	TestSizeKey = "config.test_size"
)

// Output artifacts.
const (
	// PlotPathKey is the path of a rendered plot file.
	PlotPathKey = "plot.path"
)

// Error context.
const (
	// ErrorCodeKey is a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "PARSE_FAILURE"
	ErrorCodeKey = "error.code"

	// StacktraceKey carries the stack trace attached to an error. It is
	// populated automatically when an error field is logged.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values for common operations.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseEvaluation    = "evaluation"

	StepLoad      = "load"
	StepSelect    = "select"
	StepEngineer  = "engineer"
	StepClean     = "clean"
	StepSplit     = "split"
	StepTrain     = "train"
	StepEvaluate  = "evaluate"
	StepVisualize = "visualize"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorParseFailure      = "PARSE_FAILURE"
	ErrorMissingColumn     = "MISSING_COLUMN"
)
