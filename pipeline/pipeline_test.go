package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

// testConfig wires the bundled 24-row dataset with a reduced feature list
// and iteration cap so the end-to-end run stays fast.
func testConfig(t *testing.T) *Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Data.Path = filepath.Join("testdata", "ames_mini.tsv")
	cfg.Data.Features = []string{
		"Lot Area", "Overall Qual", "Year Built", "1st Flr SF",
		"2nd Flr SF", "Gr Liv Area", "Garage Yr Blt", "Total SF",
	}
	cfg.Network.MaxIter = 60
	cfg.Plots.Dir = t.TempDir()
	cfg.Plots.ResidualLo = -500000
	cfg.Plots.ResidualHi = 500000
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	defer log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelInfo))

	cfg := testConfig(t)

	result, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Linear == nil || !result.Linear.IsFitted() {
		t.Error("linear model not fitted")
	}
	if result.Network == nil || !result.Network.IsFitted() {
		t.Error("network model not fitted")
	}

	// 24 rows at test size 0.25: ceil gives 6 held out, 18 training.
	if result.TrainRows != 18 || result.TestRows != 6 {
		t.Errorf("split sizes = %d/%d, want 18/6", result.TrainRows, result.TestRows)
	}

	for name, eval := range map[string]Evaluation{
		"linear":  result.LinearEval,
		"network": result.NetworkEval,
	} {
		if eval.MSE < 0 {
			t.Errorf("%s MSE = %v, want >= 0", name, eval.MSE)
		}
		if math.IsNaN(eval.MSE) || math.IsInf(eval.MSE, 0) {
			t.Errorf("%s MSE = %v, want finite", name, eval.MSE)
		}
		if math.IsNaN(eval.R2) || math.IsInf(eval.R2, 0) {
			t.Errorf("%s R2 = %v, want finite", name, eval.R2)
		}
	}

	if len(result.Network.LossCurve()) == 0 {
		t.Error("network loss curve is empty")
	}

	if len(result.PlotPaths) != 4 {
		t.Fatalf("PlotPaths has %d entries, want 4", len(result.PlotPaths))
	}
	for _, path := range result.PlotPaths {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("plot %s not written: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("plot %s is empty", path)
		}
	}

	testLogger, ok := provider.GetLogger().(*log.TestLogger)
	if !ok {
		t.Fatal("test provider did not return a TestLogger")
	}
	for _, msg := range []string{
		"dataset loaded", "data split", "model fitted", "plot rendered", "pipeline finished",
	} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("expected %q in the run's logs", msg)
		}
	}
}

func TestRunSeededReproducibility(t *testing.T) {
	cfgA := testConfig(t)
	cfgA.Plots.Dir = ""
	cfgB := testConfig(t)
	cfgB.Plots.Dir = ""

	a, err := Run(cfgA)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	b, err := Run(cfgB)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if a.LinearEval != b.LinearEval {
		t.Errorf("seeded linear evaluations differ: %+v vs %+v", a.LinearEval, b.LinearEval)
	}
	if a.NetworkEval != b.NetworkEval {
		t.Errorf("seeded network evaluations differ: %+v vs %+v", a.NetworkEval, b.NetworkEval)
	}
	if len(a.PlotPaths) != 0 {
		t.Errorf("plots rendered with empty plot dir: %v", a.PlotPaths)
	}
}

func TestRunMissingColumn(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plots.Dir = ""
	cfg.Data.SimpleFeature = "No Such Column"

	_, err := Run(cfg)
	if err == nil {
		t.Fatal("Run() with absent column: expected error, got nil")
	}
	var keyErr *errors.KeyError
	if !errors.As(err, &keyErr) {
		t.Errorf("Run() error = %v, want KeyError", err)
	}
}

func TestRunMissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plots.Dir = ""
	cfg.Data.Path = filepath.Join("testdata", "no_such_file.tsv")

	if _, err := Run(cfg); err == nil {
		t.Fatal("Run() with absent file: expected error, got nil")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Split.TestSize = 1.5

	_, err := Run(cfg)
	if err == nil {
		t.Fatal("Run() with invalid config: expected error, got nil")
	}
	var validationErr *errors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Run() error = %v, want ValidationError", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if len(cfg.Data.Features) != 30 {
		t.Errorf("default feature list has %d columns, want 30", len(cfg.Data.Features))
	}
	if cfg.Data.Derived.Name != "Total SF" {
		t.Errorf("default derived column = %q, want Total SF", cfg.Data.Derived.Name)
	}
	if len(cfg.Data.Derived.Sources) != 4 {
		t.Errorf("default derived sources = %v, want four area columns", cfg.Data.Derived.Sources)
	}
	if cfg.Split.TestSize != 0.25 {
		t.Errorf("default test size = %v, want 0.25", cfg.Split.TestSize)
	}

	// The derived column must be part of the default selection.
	found := false
	for _, name := range cfg.Data.Features {
		if name == cfg.Data.Derived.Name {
			found = true
			break
		}
	}
	if !found {
		t.Error("default feature list does not include the derived column")
	}
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `data:
  path: custom.tsv
  label: Price
split:
  test_size: 0.3
network:
  max_iter: 500
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Data.Path != "custom.tsv" {
		t.Errorf("Data.Path = %q, want custom.tsv", cfg.Data.Path)
	}
	if cfg.Data.Label != "Price" {
		t.Errorf("Data.Label = %q, want Price", cfg.Data.Label)
	}
	if cfg.Split.TestSize != 0.3 {
		t.Errorf("Split.TestSize = %v, want 0.3", cfg.Split.TestSize)
	}
	if cfg.Network.MaxIter != 500 {
		t.Errorf("Network.MaxIter = %d, want 500", cfg.Network.MaxIter)
	}

	// Unset keys fall back to the defaults.
	if cfg.Data.SimpleFeature != "Gr Liv Area" {
		t.Errorf("Data.SimpleFeature = %q, want default", cfg.Data.SimpleFeature)
	}
	if len(cfg.Data.Features) != 30 {
		t.Errorf("Data.Features has %d columns, want default 30", len(cfg.Data.Features))
	}
	if cfg.Split.Seed != 42 {
		t.Errorf("Split.Seed = %d, want default 42", cfg.Split.Seed)
	}
	if cfg.Network.LearningRate != 0.01 {
		t.Errorf("Network.LearningRate = %v, want default 0.01", cfg.Network.LearningRate)
	}
	if cfg.Plots.ResidualBins != 40 {
		t.Errorf("Plots.ResidualBins = %d, want default 40", cfg.Plots.ResidualBins)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig() with absent file: expected error, got nil")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty path", func(c *Config) { c.Data.Path = "" }},
		{"empty label", func(c *Config) { c.Data.Label = "" }},
		{"empty simple feature", func(c *Config) { c.Data.SimpleFeature = "" }},
		{"empty features", func(c *Config) { c.Data.Features = nil }},
		{"zero test size", func(c *Config) { c.Split.TestSize = 0 }},
		{"test size at one", func(c *Config) { c.Split.TestSize = 1 }},
		{"empty hidden layers", func(c *Config) { c.Network.HiddenLayers = nil }},
		{"zero learning rate", func(c *Config) { c.Network.LearningRate = 0 }},
		{"zero max iter", func(c *Config) { c.Network.MaxIter = 0 }},
		{"inverted residual range", func(c *Config) { c.Plots.ResidualLo, c.Plots.ResidualHi = 1, -1 }},
		{"zero residual bins", func(c *Config) { c.Plots.ResidualBins = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
			var validationErr *errors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Validate() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestResultReport(t *testing.T) {
	r := &Result{
		LinearEval:  Evaluation{MSE: 2.56e9, R2: 0.547},
		NetworkEval: Evaluation{MSE: 6.1e9, R2: -0.08},
		TrainRows:   2198,
		TestRows:    732,
	}

	out := r.Report()
	for _, want := range []string{
		"MODEL EVALUATION", "LinearRegression", "MLPRegressor",
		"0.5470", "-0.0800", "2198", "732",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report() missing %q:\n%s", want, out)
		}
	}
}
