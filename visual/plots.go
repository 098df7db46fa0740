// Package visual renders the pipeline's diagnostic plots to PNG files with
// gonum/plot: feature scatters, the fitted-line overlay, the residual
// histogram and the training-loss curve. The functions are purely
// observational; they validate nothing beyond what plotting needs.
package visual

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

// Plot palette.
var (
	colorTrain = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff} // blue
	colorTest  = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff} // orange
	colorFit   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff} // red
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// Scatter renders an x/y point cloud, the pipeline's first look at a feature
// against the sale price.
func Scatter(x, y []float64, xLabel, yLabel, title, path string) error {
	points, err := pairs(x, y)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return errors.Wrap(err, "failed to build scatter")
	}
	scatter.GlyphStyle.Color = colorTrain
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(scatter)

	return save(p, path)
}

// FitOverlay renders train and test points in distinct glyphs with the
// fitted regression line drawn across the visible x-range.
func FitOverlay(trainX, trainY, testX, testY []float64, slope, intercept float64, xLabel, yLabel, title, path string) error {
	trainPoints, err := pairs(trainX, trainY)
	if err != nil {
		return err
	}
	testPoints, err := pairs(testX, testY)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	train, err := plotter.NewScatter(trainPoints)
	if err != nil {
		return errors.Wrap(err, "failed to build train scatter")
	}
	train.GlyphStyle.Color = colorTrain
	train.GlyphStyle.Radius = vg.Points(2)
	train.GlyphStyle.Shape = draw.CircleGlyph{}

	test, err := plotter.NewScatter(testPoints)
	if err != nil {
		return errors.Wrap(err, "failed to build test scatter")
	}
	test.GlyphStyle.Color = colorTest
	test.GlyphStyle.Radius = vg.Points(2.5)
	test.GlyphStyle.Shape = draw.PyramidGlyph{}

	fitted := plotter.NewFunction(func(x float64) float64 {
		return slope*x + intercept
	})
	fitted.Color = colorFit
	fitted.Width = vg.Points(1.5)

	p.Add(train, test, fitted)
	p.Legend.Add("train", train)
	p.Legend.Add("test", test)
	p.Legend.Top = true

	return save(p, path)
}

// ResidualHist renders a histogram of prediction residuals. Values outside
// [lo, hi] are dropped and the x-axis is fixed to that range, so histograms
// from different runs are directly comparable.
func ResidualHist(residuals []float64, lo, hi float64, bins int, path string) error {
	if len(residuals) == 0 {
		return errors.NewValueError("visual.ResidualHist", "no residuals")
	}
	if hi <= lo {
		return errors.NewValueError("visual.ResidualHist", "empty display range")
	}
	if bins <= 0 {
		return errors.NewValueError("visual.ResidualHist", "bins must be positive")
	}

	inRange := make(plotter.Values, 0, len(residuals))
	for _, v := range residuals {
		if v >= lo && v <= hi {
			inRange = append(inRange, v)
		}
	}
	if len(inRange) == 0 {
		return errors.NewValueError("visual.ResidualHist", "no residuals inside display range")
	}

	p := plot.New()
	p.Title.Text = "Prediction residuals"
	p.X.Label.Text = "residual"
	p.Y.Label.Text = "count"
	p.X.Min = lo
	p.X.Max = hi

	hist, err := plotter.NewHist(inRange, bins)
	if err != nil {
		return errors.Wrap(err, "failed to build histogram")
	}
	hist.FillColor = colorTrain

	p.Add(hist)

	return save(p, path)
}

// LossCurve renders the per-epoch training loss as a line plot.
func LossCurve(losses []float64, path string) error {
	if len(losses) == 0 {
		return errors.NewValueError("visual.LossCurve", "no losses")
	}

	points := make(plotter.XYs, len(losses))
	for i, loss := range losses {
		points[i].X = float64(i + 1)
		points[i].Y = loss
	}

	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"

	line, err := plotter.NewLine(points)
	if err != nil {
		return errors.Wrap(err, "failed to build loss line")
	}
	line.Color = colorTrain
	line.Width = vg.Points(1.5)

	p.Add(line)

	return save(p, path)
}

// pairs zips two equally long slices into plot points.
func pairs(x, y []float64) (plotter.XYs, error) {
	if len(x) == 0 {
		return nil, errors.NewValueError("visual", "no points")
	}
	if len(x) != len(y) {
		return nil, errors.NewDimensionError("visual", len(x), len(y), 0)
	}

	points := make(plotter.XYs, len(x))
	for i := range x {
		points[i].X = x[i]
		points[i].Y = y[i]
	}
	return points, nil
}

// save writes the plot as a PNG and logs the artifact path.
func save(p *plot.Plot, path string) error {
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "failed to save plot %s", path)
	}

	log.GetLoggerWithName("visual").Debug("plot written", log.PlotPathKey, path)
	return nil
}
