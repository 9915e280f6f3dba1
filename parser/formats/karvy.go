package formats

import (
	"fmt"

	"pfas/parser"
)

// KarvyParser parses Karvy (KFintech) RTA mutual fund statements, grounded
// on original_source/parsers/mf/karvy.py. Header row fixed at index 4
// (spec.md §4.5 step 1: "Karvy row 5 = index 4"); the natural key matches
// CAMS (spec.md §4.5 table: "CAMS/Karvy MF: (folio, scheme, date, amount,
// units, txn_type)") since both RTAs share the same statement shape.
type KarvyParser struct {
	Reader parser.SheetReader
}

func (p *KarvyParser) Name() string { return "karvy" }

func (p *KarvyParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet(""); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	rows, err := p.Reader.ReadRows(parser.FixedHeaderOffsets["karvy"])
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		folio, _ := row.GetByAny("folio", "folio no")
		scheme, _ := row.GetByAny("scheme", "scheme name", "fund name")
		date, _ := row.GetByAny("date", "transaction date")
		amount, _ := row.GetByAny("amount")
		units, _ := row.GetByAny("units")
		txnType, _ := row.GetByAny("transaction type", "txn type", "trxn desc")

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
