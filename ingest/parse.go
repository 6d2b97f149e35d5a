package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-flavor-inventory/internal/apperr"
	"github.com/goliatone/go-flavor-inventory/model"
)

// Column positions of an upload. The header line is discarded.
const (
	colStore = iota
	colDate
	colFlavor
	colSeason
	colQuantity
	colListedBy

	minFields
)

// CheckUpload rejects files without a .csv extension and empty uploads.
func CheckUpload(filename string, size int64) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return apperr.InvalidInput("file %q must have a .csv extension", filepath.Base(filename))
	}
	if size == 0 {
		return apperr.InvalidInput("file %q is empty", filepath.Base(filename))
	}
	return nil
}

// Parse reads comma separated rows after a header line. Lines with fewer
// than six fields and lines with a blank date are dropped without error.
// Unparsable quantities become 0. A date that is present but not yyyy-MM-dd
// fails the whole file.
func Parse(r io.Reader) ([]model.RawImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.RawImportRow{}, nil
		}
		return nil, apperr.InvalidInput("malformed csv header: %v", err)
	}

	rows := []model.RawImportRow{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.InvalidInput("malformed csv: %v", err)
		}

		line, _ := reader.FieldPos(0)
		row, ok, err := normalize(line, fields)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func normalize(line int, fields []string) (model.RawImportRow, bool, error) {
	if len(fields) < minFields {
		return model.RawImportRow{}, false, nil
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if fields[colDate] == "" {
		return model.RawImportRow{}, false, nil
	}

	date, err := model.ParseDate(fields[colDate])
	if err != nil {
		return model.RawImportRow{}, false, apperr.InvalidInput("line %d: date %q is not yyyy-MM-dd", line, fields[colDate])
	}

	return model.RawImportRow{
		Line:           line,
		Store:          fields[colStore],
		Date:           date,
		Flavor:         fields[colFlavor],
		IsSeasonFlavor: model.IsYes(fields[colSeason]),
		Quantity:       parseQuantity(fields[colQuantity]),
		ListedBy:       fields[colListedBy],
	}, true, nil
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
