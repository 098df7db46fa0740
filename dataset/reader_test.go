package dataset

import (
	"compress/gzip"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

const sampleTSV = "Order\tNeighborhood\tGr Liv Area\tSalePrice\n" +
	"1\tNAmes\t1000\t100000\n" +
	"2\tGilbert\tNA\t150000\n" +
	"3\t\t2000\t200000\n"

func TestReadTSV(t *testing.T) {
	table, err := ReadTSV(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("ReadTSV() error = %v", err)
	}

	if table.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", table.NumRows())
	}
	if table.NumCols() != 4 {
		t.Errorf("NumCols() = %d, want 4", table.NumCols())
	}

	// Gr Liv Area contains an NA marker but every other cell parses, so the
	// column is numeric with NaN for the missing row.
	area, err := table.Column("Gr Liv Area")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if area.Kind != Numeric {
		t.Fatalf("Gr Liv Area kind = %v, want Numeric", area.Kind)
	}
	if area.Floats[0] != 1000 {
		t.Errorf("Gr Liv Area[0] = %v, want 1000", area.Floats[0])
	}
	if !math.IsNaN(area.Floats[1]) {
		t.Errorf("Gr Liv Area[1] = %v, want NaN", area.Floats[1])
	}

	// Neighborhood has non-numeric cells, so it is text with "" for the
	// missing row.
	neigh, err := table.Column("Neighborhood")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if neigh.Kind != Text {
		t.Fatalf("Neighborhood kind = %v, want Text", neigh.Kind)
	}
	if neigh.Strings[0] != "NAmes" {
		t.Errorf("Neighborhood[0] = %q, want NAmes", neigh.Strings[0])
	}
	if neigh.Strings[2] != "" {
		t.Errorf("Neighborhood[2] = %q, want empty", neigh.Strings[2])
	}

	if got := table.MissingCells(); got != 2 {
		t.Errorf("MissingCells() = %d, want 2", got)
	}
}

func TestReadTSVFieldCountMismatch(t *testing.T) {
	input := "a\tb\n" +
		"1\t2\n" +
		"3\t4\t5\n" // extra field on line 3

	_, err := ReadTSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("ReadTSV() with ragged record: expected error, got nil")
	}

	var parseErr *errors.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ReadTSV() error = %v, want ParseError", err)
	}
	if parseErr.Line != 3 {
		t.Errorf("ParseError.Line = %d, want 3", parseErr.Line)
	}
}

func TestReadTSVEmptyInput(t *testing.T) {
	_, err := ReadTSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("ReadTSV() on empty input: expected error, got nil")
	}

	var parseErr *errors.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("ReadTSV() error = %v, want ParseError", err)
	}
}

func TestReadTSVDuplicateHeader(t *testing.T) {
	input := "a\ta\n1\t2\n"

	if _, err := ReadTSV(strings.NewReader(input)); err == nil {
		t.Fatal("ReadTSV() with duplicate header: expected error, got nil")
	}
}

func TestReadTSVAllMissingColumn(t *testing.T) {
	// A column of nothing but NA markers defaults to numeric (all NaN),
	// matching how an all-missing column behaves downstream.
	input := "a\tb\n1\tNA\n2\t\n"

	table, err := ReadTSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTSV() error = %v", err)
	}

	col, err := table.Column("b")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if col.Kind != Numeric {
		t.Fatalf("all-missing column kind = %v, want Numeric", col.Kind)
	}
	for i, v := range col.Floats {
		if !math.IsNaN(v) {
			t.Errorf("col[%d] = %v, want NaN", i, v)
		}
	}
}

func TestReadTSVMixedColumnDemotedToText(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	defer log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelInfo))

	// Lot Frontage mixes numbers with an unparseable cell, so the whole
	// column is demoted to text and a conversion warning is emitted.
	input := "Lot Frontage\tSalePrice\n" +
		"80\t100000\n" +
		"8O\t150000\n" +
		"70\t200000\n"

	table, err := ReadTSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTSV() error = %v", err)
	}

	col, err := table.Column("Lot Frontage")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if col.Kind != Text {
		t.Errorf("mixed column kind = %v, want Text", col.Kind)
	}

	testLogger, ok := provider.GetLogger().(*log.TestLogger)
	if !ok {
		t.Fatal("test provider did not return a TestLogger")
	}
	if !testLogger.ContainsMessage("data converted from numeric to text") {
		t.Error("expected a data conversion warning in the logs")
	}
}

func TestReadTSVFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain", func(t *testing.T) {
		path := filepath.Join(dir, "sample.tsv")
		if err := os.WriteFile(path, []byte(sampleTSV), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		table, err := ReadTSVFile(path)
		if err != nil {
			t.Fatalf("ReadTSVFile() error = %v", err)
		}
		if table.NumRows() != 3 {
			t.Errorf("NumRows() = %d, want 3", table.NumRows())
		}
	})

	t.Run("gzip", func(t *testing.T) {
		path := filepath.Join(dir, "sample.tsv.gz")
		file, err := os.Create(path)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		gzWriter := gzip.NewWriter(file)
		if _, err := gzWriter.Write([]byte(sampleTSV)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := gzWriter.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := file.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		table, err := ReadTSVFile(path)
		if err != nil {
			t.Fatalf("ReadTSVFile() error = %v", err)
		}
		if table.NumRows() != 3 {
			t.Errorf("NumRows() = %d, want 3", table.NumRows())
		}
	})

	t.Run("xz", func(t *testing.T) {
		path := filepath.Join(dir, "sample.tsv.xz")
		file, err := os.Create(path)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		xzWriter, err := xz.NewWriter(file)
		if err != nil {
			t.Fatalf("xz.NewWriter() error = %v", err)
		}
		if _, err := xzWriter.Write([]byte(sampleTSV)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := xzWriter.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := file.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		table, err := ReadTSVFile(path)
		if err != nil {
			t.Fatalf("ReadTSVFile() error = %v", err)
		}
		if table.NumRows() != 3 {
			t.Errorf("NumRows() = %d, want 3", table.NumRows())
		}

		area, err := table.Column("Gr Liv Area")
		if err != nil {
			t.Fatalf("Column() error = %v", err)
		}
		if !math.IsNaN(area.Floats[1]) {
			t.Errorf("Gr Liv Area[1] = %v, want NaN", area.Floats[1])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadTSVFile(filepath.Join(dir, "nope.tsv")); err == nil {
			t.Fatal("ReadTSVFile() on missing file: expected error, got nil")
		}
	})
}
