package pipeline

import (
	"github.com/spf13/viper"

	"github.com/amesml/amesgo/pkg/errors"
)

// Config drives one end-to-end run. The zero value is not usable; start from
// DefaultConfig or LoadConfig.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Split   SplitConfig   `mapstructure:"split"`
	Network NetworkConfig `mapstructure:"network"`
	Plots   PlotConfig    `mapstructure:"plots"`
}

// DataConfig locates the dataset and names the columns each model consumes.
// The feature list lives here rather than in code so a run can be repeated
// with a different column selection by editing configuration only.
type DataConfig struct {
	// Path points at the housing TSV; .gz and .xz files are read
	// transparently.
	Path string `mapstructure:"path"`
	// Label names the target column.
	Label string `mapstructure:"label"`
	// SimpleFeature is the single column the linear model trains on.
	SimpleFeature string `mapstructure:"simple_feature"`
	// Features is the curated column list for the network model. It may
	// reference the derived column.
	Features []string `mapstructure:"features"`
	// Derived is appended to the table before selection.
	Derived DerivedColumn `mapstructure:"derived"`
	// FillValue replaces missing numeric cells before standardization.
	FillValue float64 `mapstructure:"fill_value"`
}

// DerivedColumn describes an engineered column: the row-wise sum of the
// source columns.
type DerivedColumn struct {
	Name    string   `mapstructure:"name"`
	Sources []string `mapstructure:"sources"`
}

// SplitConfig controls the train/test partition.
type SplitConfig struct {
	// TestSize is the held-out fraction in (0, 1).
	TestSize float64 `mapstructure:"test_size"`
	// Seed fixes the shuffle; a negative value draws a fresh split per run.
	Seed int64 `mapstructure:"seed"`
}

// NetworkConfig holds the network model's hyperparameters.
type NetworkConfig struct {
	HiddenLayers []int   `mapstructure:"hidden_layers"`
	LearningRate float64 `mapstructure:"learning_rate"`
	MaxIter      int     `mapstructure:"max_iter"`
	// Seed fixes weight initialization and epoch shuffling; negative values
	// train non-reproducibly.
	Seed int64 `mapstructure:"seed"`
}

// PlotConfig controls the PNG artifacts.
type PlotConfig struct {
	// Dir receives the rendered plots; empty disables plotting.
	Dir string `mapstructure:"dir"`
	// ResidualLo and ResidualHi fix the residual histogram's display range.
	ResidualLo float64 `mapstructure:"residual_lo"`
	ResidualHi float64 `mapstructure:"residual_hi"`
	// ResidualBins is the histogram bin count.
	ResidualBins int `mapstructure:"residual_bins"`
}

// DefaultConfig reproduces the reference run on the Ames housing data:
// a simple linear fit of sale price on living area, and a (2, 8, 2) network
// on thirty numeric columns including the engineered total square footage.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:          "data/AmesHousing.tsv",
			Label:         "SalePrice",
			SimpleFeature: "Gr Liv Area",
			Features: []string{
				"Lot Area", "Overall Qual", "Overall Cond", "Year Built",
				"Year Remod/Add", "Mas Vnr Area", "BsmtFin SF 1", "BsmtFin SF 2",
				"Bsmt Unf SF", "Total Bsmt SF", "1st Flr SF", "2nd Flr SF",
				"Gr Liv Area", "Bsmt Full Bath", "Bsmt Half Bath", "Full Bath",
				"Half Bath", "Bedroom AbvGr", "Kitchen AbvGr", "TotRms AbvGrd",
				"Fireplaces", "Garage Yr Blt", "Garage Cars", "Garage Area",
				"Wood Deck SF", "Open Porch SF", "Enclosed Porch", "Screen Porch",
				"Pool Area", "Total SF",
			},
			Derived: DerivedColumn{
				Name:    "Total SF",
				Sources: []string{"1st Flr SF", "2nd Flr SF", "BsmtFin SF 1", "BsmtFin SF 2"},
			},
			FillValue: 0,
		},
		Split: SplitConfig{
			TestSize: 0.25,
			Seed:     42,
		},
		Network: NetworkConfig{
			HiddenLayers: []int{2, 8, 2},
			LearningRate: 0.01,
			MaxIter:      2000,
			Seed:         42,
		},
		Plots: PlotConfig{
			Dir:          "plots",
			ResidualLo:   -200000,
			ResidualHi:   200000,
			ResidualBins: 40,
		},
	}
}

// LoadConfig reads a YAML config file, filling unset keys from
// DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config %s", path)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("data.path", def.Data.Path)
	v.SetDefault("data.label", def.Data.Label)
	v.SetDefault("data.simple_feature", def.Data.SimpleFeature)
	v.SetDefault("data.features", def.Data.Features)
	v.SetDefault("data.derived.name", def.Data.Derived.Name)
	v.SetDefault("data.derived.sources", def.Data.Derived.Sources)
	v.SetDefault("data.fill_value", def.Data.FillValue)

	v.SetDefault("split.test_size", def.Split.TestSize)
	v.SetDefault("split.seed", def.Split.Seed)

	v.SetDefault("network.hidden_layers", def.Network.HiddenLayers)
	v.SetDefault("network.learning_rate", def.Network.LearningRate)
	v.SetDefault("network.max_iter", def.Network.MaxIter)
	v.SetDefault("network.seed", def.Network.Seed)

	v.SetDefault("plots.dir", def.Plots.Dir)
	v.SetDefault("plots.residual_lo", def.Plots.ResidualLo)
	v.SetDefault("plots.residual_hi", def.Plots.ResidualHi)
	v.SetDefault("plots.residual_bins", def.Plots.ResidualBins)
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.NewValidationError("data.path", "must not be empty", c.Data.Path)
	}
	if c.Data.Label == "" {
		return errors.NewValidationError("data.label", "must not be empty", c.Data.Label)
	}
	if c.Data.SimpleFeature == "" {
		return errors.NewValidationError("data.simple_feature", "must not be empty", c.Data.SimpleFeature)
	}
	if len(c.Data.Features) == 0 {
		return errors.NewValidationError("data.features", "must name at least one column", c.Data.Features)
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return errors.NewValidationError("split.test_size", "must be in (0, 1)", c.Split.TestSize)
	}
	if len(c.Network.HiddenLayers) == 0 {
		return errors.NewValidationError("network.hidden_layers", "must name at least one layer", c.Network.HiddenLayers)
	}
	if c.Network.LearningRate <= 0 {
		return errors.NewValidationError("network.learning_rate", "must be positive", c.Network.LearningRate)
	}
	if c.Network.MaxIter <= 0 {
		return errors.NewValidationError("network.max_iter", "must be positive", c.Network.MaxIter)
	}
	if c.Plots.Dir != "" {
		if c.Plots.ResidualHi <= c.Plots.ResidualLo {
			return errors.NewValidationError("plots.residual_hi", "must exceed plots.residual_lo", c.Plots.ResidualHi)
		}
		if c.Plots.ResidualBins <= 0 {
			return errors.NewValidationError("plots.residual_bins", "must be positive", c.Plots.ResidualBins)
		}
	}
	return nil
}
