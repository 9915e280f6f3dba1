package parser

import (
	"encoding/csv"
	"io"
)

// SheetReader is the tabular-reader abstraction spec.md §4.5 calls an
// "injected dependency ... with fallback chain across multiple engine
// implementations". Byte-level spreadsheet decoding (xlsx/xls parsing) is
// explicitly out of scope (spec.md Non-goals); format parsers below only
// depend on this interface, never on a concrete spreadsheet library, so a
// real multi-engine Excel reader can be substituted without touching the
// column-mapping/classification logic that is actually this repo's
// concern.
type SheetReader interface {
	// OpenSheet selects a sheet by name or index (format-specific).
	OpenSheet(sheet string) error
	// ReadRows returns every row as raw cell strings, starting at
	// headerAt (0-indexed), header row included as row 0 of the result.
	ReadRows(headerAt int) ([][]string, error)
}

// CSVSheetReader is the one concrete SheetReader this repo ships: CSV is
// the one tabular format pfas parses directly (bank and PPF statement
// exports are commonly CSV), grounded on the injected-reader shape
// original_source's scanner.py documents for non-Excel sources.
type CSVSheetReader struct {
	r    io.Reader
	rows [][]string
}

func NewCSVSheetReader(r io.Reader) *CSVSheetReader {
	return &CSVSheetReader{r: r}
}

func (c *CSVSheetReader) OpenSheet(string) error { return nil } // CSV has no sheets

func (c *CSVSheetReader) ReadRows(headerAt int) ([][]string, error) {
	reader := csv.NewReader(c.r)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if headerAt >= len(all) {
		return nil, nil
	}
	return all[headerAt:], nil
}

// RowsToMaps zips a header row against each data row into Row values,
// the case-insensitive fuzzy column mapping step (spec.md §4.5 step 2).
func RowsToMaps(rows [][]string) []Row {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	out := make([]Row, 0, len(rows)-1)
	for _, data := range rows[1:] {
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(data) {
				fields[h] = data[i]
			}
		}
		out = append(out, NewRow(fields))
	}
	return out
}
