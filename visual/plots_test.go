package visual

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/amesml/amesgo/pkg/errors"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// assertPNG fails the test unless path holds a non-empty PNG file.
func assertPNG(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading plot file: %v", err)
	}
	if len(data) <= len(pngMagic) {
		t.Fatalf("plot file %s is empty", path)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("plot file %s does not start with a PNG header", path)
	}
}

func TestScatter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scatter.png")

	x := []float64{800, 1200, 1600, 2000, 2400}
	y := []float64{90000, 135000, 178000, 225000, 268000}

	if err := Scatter(x, y, "Gr Liv Area", "SalePrice", "Living area vs sale price", path); err != nil {
		t.Fatalf("Scatter failed: %v", err)
	}
	assertPNG(t, path)
}

func TestScatterErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scatter.png")

	if err := Scatter(nil, nil, "x", "y", "t", path); err == nil {
		t.Error("expected error for empty points")
	}

	err := Scatter([]float64{1, 2}, []float64{1}, "x", "y", "t", path)
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for mismatched lengths, got %v", err)
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written when inputs are invalid")
	}
}

func TestFitOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fit.png")

	trainX := []float64{800, 1200, 1600, 2000}
	trainY := []float64{90000, 135000, 178000, 225000}
	testX := []float64{1000, 1800}
	testY := []float64{112000, 200000}

	err := FitOverlay(trainX, trainY, testX, testY, 112.0, 1500.0,
		"Gr Liv Area", "SalePrice", "Fitted line", path)
	if err != nil {
		t.Fatalf("FitOverlay failed: %v", err)
	}
	assertPNG(t, path)
}

func TestFitOverlayMismatchedTest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fit.png")

	err := FitOverlay([]float64{1, 2}, []float64{1, 2}, []float64{1, 2}, []float64{1}, 1, 0,
		"x", "y", "t", path)
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

func TestResidualHist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "residuals.png")

	residuals := []float64{
		-45000, -22000, -15000, -8000, -3000,
		1000, 2500, 7000, 12000, 18000,
		26000, 39000, 51000, 250000, -300000, // last two fall outside the range
	}

	if err := ResidualHist(residuals, -200000, 200000, 30, path); err != nil {
		t.Fatalf("ResidualHist failed: %v", err)
	}
	assertPNG(t, path)
}

func TestResidualHistErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "residuals.png")

	tests := []struct {
		name      string
		residuals []float64
		lo, hi    float64
		bins      int
	}{
		{name: "empty residuals", residuals: nil, lo: -1, hi: 1, bins: 10},
		{name: "inverted range", residuals: []float64{0}, lo: 1, hi: -1, bins: 10},
		{name: "zero bins", residuals: []float64{0}, lo: -1, hi: 1, bins: 0},
		{name: "all outside range", residuals: []float64{50, 60}, lo: -1, hi: 1, bins: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ResidualHist(tt.residuals, tt.lo, tt.hi, tt.bins, path)
			var valErr *errors.ValueError
			if !errors.As(err, &valErr) {
				t.Errorf("expected ValueError, got %v", err)
			}
		})
	}
}

func TestLossCurve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loss.png")

	losses := make([]float64, 50)
	for i := range losses {
		losses[i] = 1.0 / float64(i+1)
	}

	if err := LossCurve(losses, path); err != nil {
		t.Fatalf("LossCurve failed: %v", err)
	}
	assertPNG(t, path)
}

func TestLossCurveEmpty(t *testing.T) {
	dir := t.TempDir()

	err := LossCurve(nil, filepath.Join(dir, "loss.png"))
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValueError, got %v", err)
	}
}
