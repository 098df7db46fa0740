package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	amesErrors "github.com/amesml/amesgo/pkg/errors"
)

func TestTestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")

	testErr := fmt.Errorf("test error")
	testLogger.Error("error message", "error", testErr, ErrorCodeKey, ErrorInvalidInput)

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("Message %q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	// JSON numbers decode as float64.
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField("error", "test error") {
		t.Error("Expected error field not found")
	}
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "TestModel",
		ComponentKey, "test",
	)

	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "TestModel") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "test") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Operation field not found")
	}
}

func TestTestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	if !testLogger.Enabled(ctx, LevelInfo) {
		t.Error("Logger should be enabled for Info level")
	}
	if !testLogger.Enabled(ctx, LevelError) {
		t.Error("Logger should be enabled for Error level")
	}
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("this should appear") {
		t.Error("Info message should appear when level is Info")
	}
}

func TestAttributeKeys(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	testLogger.Info("training started",
		OperationKey, OperationFit,
		PhaseKey, PhaseTraining,
		SamplesKey, 1000,
		FeaturesKey, 10,
		ModelNameKey, "LinearRegression",
		DurationMsKey, 250,
	)

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}

	entry := entries[0]
	expectedFields := map[string]interface{}{
		OperationKey:  OperationFit,
		PhaseKey:      PhaseTraining,
		SamplesKey:    1000.0,
		FeaturesKey:   10.0,
		ModelNameKey:  "LinearRegression",
		DurationMsKey: 250.0,
	}

	for key, expectedValue := range expectedFields {
		if actualValue, exists := entry[key]; !exists {
			t.Errorf("Expected field %s not found", key)
		} else if actualValue != expectedValue {
			t.Errorf("Field %s: expected %v, got %v", key, expectedValue, actualValue)
		}
	}
}

func TestTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("test-component").Info("named logger message")

	output := buffer.String()
	if output == "" {
		t.Fatal("Expected log output from provider")
	}
	if !strings.Contains(output, "provider test message") {
		t.Error("Provider test message not found")
	}
	if !strings.Contains(output, "named logger message") {
		t.Error("Named logger message not found")
	}
	if !strings.Contains(output, "test-component") {
		t.Error("Component name not found in named logger output")
	}
}

func TestZerologProviderJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)

	logger := provider.GetLoggerWithName("dataset")
	logger.Info("dataset loaded",
		SamplesKey, 2930,
		ColumnsKey, 82,
	)

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v (%s)", err, line)
	}

	if entry["message"] != "dataset loaded" {
		t.Errorf("message = %v, want 'dataset loaded'", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want 'info'", entry["level"])
	}
	if entry[ComponentKey] != "dataset" {
		t.Errorf("%s = %v, want 'dataset'", ComponentKey, entry[ComponentKey])
	}
	if entry[SamplesKey] != 2930.0 {
		t.Errorf("%s = %v, want 2930", SamplesKey, entry[SamplesKey])
	}
	if _, hasTime := entry["time"]; !hasTime {
		t.Error("Expected timestamp field in output")
	}
}

func TestZerologProviderLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelWarn)
	logger := provider.GetLogger()

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Warn("visible warn")

	output := buf.String()
	if strings.Contains(output, "hidden debug") || strings.Contains(output, "hidden info") {
		t.Error("Records below the provider level should be suppressed")
	}
	if !strings.Contains(output, "visible warn") {
		t.Error("Warn record should be emitted")
	}

	if logger.Enabled(context.Background(), LevelInfo) {
		t.Error("Enabled(Info) should be false at Warn level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("Enabled(Error) should be true at Warn level")
	}
}

func TestZerologProviderStacktrace(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)

	err := amesErrors.New("matrix solve failed")
	provider.GetLogger().Error("training failed", "error", err)

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	if jsonErr := json.Unmarshal([]byte(line), &entry); jsonErr != nil {
		t.Fatalf("Output is not valid JSON: %v", jsonErr)
	}

	if entry["error"] != "matrix solve failed" {
		t.Errorf("error field = %v, want 'matrix solve failed'", entry["error"])
	}
	st, ok := entry[StacktraceKey].(string)
	if !ok || st == "" {
		t.Error("Expected non-empty stack trace extracted from the error")
	}
}

func TestWarningBridge(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)
	SetProvider(provider)
	defer SetProvider(NewZerologProvider(os.Stderr, LevelInfo))

	amesErrors.Warn(amesErrors.NewConvergenceWarning("MLPRegressor", 2000, ""))

	if !strings.Contains(buffer.String(), "failed to converge") {
		t.Error("Warning should flow through the default provider")
	}
	if !strings.Contains(buffer.String(), "warnings") {
		t.Error("Warning records should carry the warnings component tag")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(100), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func BenchmarkZerologLogging(b *testing.B) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelInfo).GetLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			IterationKey, i,
			OperationKey, OperationPredict,
			SamplesKey, 1000,
		)
	}
}
