// Package amesgo reproduces the classic Ames housing regression workflow as
// a reusable Go pipeline: load the tab-separated housing records, select and
// engineer features, clean and standardize them, split train/test, fit a
// least-squares model and a small feedforward network, score both, and
// render diagnostic plots.
//
// The estimators follow a scikit-learn-like contract (Fit/Predict/Score over
// gonum matrices) so each stage is usable on its own as well as through the
// pipeline.
//
// # Installation
//
//	go get github.com/amesml/amesgo
//
// # Quick Start
//
// Fit the single-feature model directly:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/amesml/amesgo/linear"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(3, 1, []float64{1000, 1500, 2000})
//	    y := mat.NewDense(3, 1, []float64{100000, 150000, 200000})
//
//	    model := linear.NewLinearRegression()
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := model.Predict(mat.NewDense(1, 1, []float64{1750}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("predicted price: %.0f\n", pred.At(0, 0))
//	}
//
// Or run the whole workflow from a config:
//
//	cfg := pipeline.DefaultConfig()
//	cfg.Data.Path = "data/AmesHousing.tsv"
//	result, err := pipeline.Run(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report())
//
// # Packages
//
//   - dataset: TSV loading, column selection, derived columns, missing-value fill
//   - preprocessing: feature standardization
//   - split: seeded train/test splitting
//   - linear: ordinary least squares regression
//   - neural: feedforward network regression with loss-curve tracking
//   - metrics: MSE, RMSE, MAE and R²
//   - visual: scatter, fit-overlay, residual and loss plots (PNG)
//   - pipeline: configuration, orchestration and the evaluation report
//   - core/model: estimator interfaces, base types and the JSON model format
//   - core/parallel: threshold-gated parallel loops used in estimator hot paths
//   - pkg/errors, pkg/log: structured errors and logging used throughout
//
// The amesgo command in cmd/amesgo runs the pipeline from a YAML config and
// prints the evaluation table.
package amesgo
