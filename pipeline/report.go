package pipeline

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report renders the run's evaluations as a text table.
func (r *Result) Report() string {
	t := table.NewWriter()
	t.SetTitle("MODEL EVALUATION")
	t.AppendHeader(table.Row{"Model", "MSE", "R²", "Train rows", "Test rows"})
	t.AppendRow(table.Row{
		"LinearRegression",
		formatMetric(r.LinearEval.MSE),
		fmt.Sprintf("%.4f", r.LinearEval.R2),
		r.TrainRows,
		r.TestRows,
	})
	t.AppendRow(table.Row{
		"MLPRegressor",
		formatMetric(r.NetworkEval.MSE),
		fmt.Sprintf("%.4f", r.NetworkEval.R2),
		r.TrainRows,
		r.TestRows,
	})
	return t.Render()
}

// formatMetric keeps dollar-scale squared errors readable.
func formatMetric(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
