package neural

import (
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/amesml/amesgo/core/model"
	"github.com/amesml/amesgo/pkg/errors"
)

// mlpParams is the JSON payload for a trained MLPRegressor: the architecture
// and parameters prediction needs, plus the fitted training statistics.
type mlpParams struct {
	HiddenLayerSizes []int         `json:"hidden_layer_sizes"`
	NFeatures        int           `json:"n_features"`
	Coefs            [][][]float64 `json:"coefs"`
	Intercepts       [][]float64   `json:"intercepts"`
	LossCurve        []float64     `json:"loss_curve"`
	BestLoss         float64       `json:"best_loss"`
	NIter            int           `json:"n_iter"`
}

// SaveJSON writes the fitted network to a file in the model interchange
// format.
func (m *MLPRegressor) SaveJSON(path string) error {
	if !m.IsFitted() {
		return errors.NewNotFittedError("MLPRegressor", "SaveJSON")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create model file")
	}
	defer file.Close()

	return m.SaveJSONWriter(file)
}

// SaveJSONWriter writes the fitted network to w.
func (m *MLPRegressor) SaveJSONWriter(w io.Writer) error {
	if !m.IsFitted() {
		return errors.NewNotFittedError("MLPRegressor", "SaveJSONWriter")
	}

	params := mlpParams{
		HiddenLayerSizes: m.HiddenLayerSizes,
		NFeatures:        m.nFeatures_,
		Coefs:            make([][][]float64, len(m.coefs_)),
		Intercepts:       m.intercepts_,
		LossCurve:        m.lossCurve_,
		BestLoss:         m.bestLoss_,
		NIter:            m.nIter_,
	}

	for l, w := range m.coefs_ {
		rows, cols := w.Dims()
		layer := make([][]float64, rows)
		for i := 0; i < rows; i++ {
			layer[i] = make([]float64, cols)
			for j := 0; j < cols; j++ {
				layer[i][j] = w.At(i, j)
			}
		}
		params.Coefs[l] = layer
	}

	return model.EncodeDocument(w, modelName, params)
}

// LoadJSON restores a network previously written with SaveJSON.
func (m *MLPRegressor) LoadJSON(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open model file")
	}
	defer file.Close()

	return m.LoadJSONReader(file)
}

// LoadJSONReader restores a network from r.
func (m *MLPRegressor) LoadJSONReader(r io.Reader) error {
	doc, err := model.DecodeDocument(r)
	if err != nil {
		return err
	}

	var params mlpParams
	if err := doc.DecodeParams(modelName, &params); err != nil {
		return err
	}

	wantLayers := len(params.HiddenLayerSizes) + 1
	if len(params.Coefs) != wantLayers || len(params.Intercepts) != wantLayers {
		return errors.NewValueError("MLPRegressor.LoadJSONReader", "layer count does not match architecture")
	}
	if params.NFeatures <= 0 {
		return errors.NewValueError("MLPRegressor.LoadJSONReader", "invalid feature count")
	}

	layers := make([]int, 0, wantLayers+1)
	layers = append(layers, params.NFeatures)
	layers = append(layers, params.HiddenLayerSizes...)
	layers = append(layers, 1)

	coefs := make([]*mat.Dense, wantLayers)
	for l := 0; l < wantLayers; l++ {
		fanIn, fanOut := layers[l], layers[l+1]
		if len(params.Coefs[l]) != fanIn || len(params.Intercepts[l]) != fanOut {
			return errors.NewValueError("MLPRegressor.LoadJSONReader", "weight shape does not match architecture")
		}

		w := mat.NewDense(fanIn, fanOut, nil)
		for i := 0; i < fanIn; i++ {
			if len(params.Coefs[l][i]) != fanOut {
				return errors.NewValueError("MLPRegressor.LoadJSONReader", "weight shape does not match architecture")
			}
			for j := 0; j < fanOut; j++ {
				w.Set(i, j, params.Coefs[l][i][j])
			}
		}
		coefs[l] = w
	}

	m.HiddenLayerSizes = params.HiddenLayerSizes
	m.nFeatures_ = params.NFeatures
	m.coefs_ = coefs
	m.intercepts_ = params.Intercepts
	m.lossCurve_ = params.LossCurve
	m.bestLoss_ = params.BestLoss
	m.nIter_ = params.NIter

	m.SetFitted()
	return nil
}
