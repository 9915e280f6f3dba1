// Package formats holds the concrete per-source parsers spec.md §4.5
// names: cams, karvy, zerodha, icici, nsdlcas, ppf, bank. Each is grounded
// on its original_source/parsers counterpart but reworked around the
// parser.SheetReader injected-dependency abstraction instead of pandas.
package formats

import (
	"fmt"

	"pfas/parser"
)

// CAMSParser parses CAMS consolidated account statements (mutual fund
// transactions), grounded on
// original_source/parsers/mf/cams.py. Header row is fixed at index 3
// (spec.md §4.5 step 1: "CAMS row 4 = index 3").
type CAMSParser struct {
	Reader parser.SheetReader
}

func (p *CAMSParser) Name() string { return "cams" }

func (p *CAMSParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet("TRXN_DETAILS"); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	rows, err := p.Reader.ReadRows(parser.FixedHeaderOffsets["cams"])
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		folio, _ := row.GetByAny("folio", "folio no", "folio number")
		scheme, _ := row.GetByAny("scheme", "scheme name")
		date, _ := row.GetByAny("date", "transaction date", "txn date")
		amount, _ := row.GetByAny("amount")
		units, _ := row.GetByAny("units")
		txnType, _ := row.GetByAny("transaction type", "txn type", "description")

		if folio == "" || scheme == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing folio/scheme, skipped", i))
			continue
		}
		naturalKey := fmt.Sprintf("%s|%s|%s|%s|%s|%s", folio, scheme, date, amount, units, txnType)
		result.Transactions = append(result.Transactions, parser.NewRow(map[string]string{
			"folio": folio, "scheme": scheme, "date": date, "amount": amount,
			"units": units, "txn_type": txnType, "natural_key": naturalKey,
		}))
	}
	return result, nil
}
