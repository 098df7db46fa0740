package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/amesml/amesgo/pkg/errors"
	"github.com/amesml/amesgo/pkg/log"
)

// isMissing reports whether a raw cell denotes a missing value. The housing
// file marks absent values either with an empty field or the literal NA.
func isMissing(cell string) bool {
	return cell == "" || cell == "NA"
}

// ReadTSV parses tab-separated data with a header line into a Table. Every
// record must have as many fields as the header; a ParseError carries the
// offending line number otherwise. Column kinds are detected after reading:
// a column whose every non-missing cell parses as a float is numeric.
func ReadTSV(r io.Reader) (*Table, error) {
	rd := csv.NewReader(r)
	rd.Comma = '\t'
	rd.LazyQuotes = true

	header, err := rd.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("", 0, "empty input")
	}
	if err != nil {
		return nil, translateCSVError(err)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	cells := make([][]string, len(header))
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, translateCSVError(err)
		}
		for j, cell := range record {
			cells[j] = append(cells[j], cell)
		}
	}

	columns := make([]Column, len(header))
	for j, name := range header {
		columns[j] = detectColumn(name, cells[j])
	}

	return NewTable(columns...)
}

// ReadTSVFile opens and parses a TSV file, transparently decompressing
// .xz and .gz files by suffix.
func ReadTSVFile(path string) (*Table, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open dataset")
	}
	defer file.Close()

	var r io.Reader = file
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open xz stream %s", path)
		}
		r = xzReader
	case strings.HasSuffix(path, ".gz"):
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open gzip stream %s", path)
		}
		defer gzReader.Close()
		r = gzReader
	}

	table, err := ReadTSV(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	log.GetLoggerWithName("dataset").Info("dataset loaded",
		log.DataPathKey, path,
		log.SamplesKey, table.NumRows(),
		log.ColumnsKey, table.NumCols(),
		log.MissingKey, table.MissingCells(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return table, nil
}

// detectColumn types a raw column: numeric when all non-missing cells parse
// as floats (missing becomes NaN), text otherwise (missing becomes "").
// A column holding both parseable and unparseable cells is demoted to text
// with a DataConversionWarning.
func detectColumn(name string, cells []string) Column {
	parsed, failed := 0, 0
	for _, cell := range cells {
		if isMissing(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			failed++
		} else {
			parsed++
		}
	}

	if failed == 0 {
		floats := make([]float64, len(cells))
		for i, cell := range cells {
			if isMissing(cell) {
				floats[i] = math.NaN()
			} else {
				floats[i], _ = strconv.ParseFloat(cell, 64)
			}
		}
		return Column{Name: name, Kind: Numeric, Floats: floats}
	}

	if parsed > 0 {
		errors.Warn(errors.NewDataConversionWarning("numeric", "text",
			fmt.Sprintf("column %q has %d non-numeric cells", name, failed)))
	}

	strs := make([]string, len(cells))
	for i, cell := range cells {
		if isMissing(cell) {
			strs[i] = ""
		} else {
			strs[i] = cell
		}
	}
	return Column{Name: name, Kind: Text, Strings: strs}
}

// translateCSVError converts encoding/csv errors into the package error
// taxonomy, preserving the line number.
func translateCSVError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		reason := csvErr.Err.Error()
		if errors.Is(csvErr.Err, csv.ErrFieldCount) {
			reason = "wrong number of fields"
		}
		return errors.NewParseError("", csvErr.Line, reason)
	}
	return errors.Wrap(err, "failed to read TSV")
}
