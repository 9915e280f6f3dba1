package formats

import (
	"fmt"

	"pfas/parser"
)

// NSDLCASParser parses NSDL Consolidated Account Statement holdings (the
// Golden-Reference engine's primary external source, spec.md §4.10),
// grounded on original_source's CAS PDF/report parsing
// (cas_pdf_parser.py, cas_report_generator.py) — byte-level PDF text
// extraction is out of scope (spec.md Non-goals), so this parser consumes
// already-tabulated rows via parser.SheetReader exactly like the
// spreadsheet-based parsers. Natural key per spec.md §4.5 table:
// "(golden_ref_id, isin, folio_number)".
type NSDLCASParser struct {
	Reader      parser.SheetReader
	GoldenRefID string
}

func (p *NSDLCASParser) Name() string { return "nsdlcas" }

func (p *NSDLCASParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet(""); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	rows, err := p.Reader.ReadRows(0)
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		isin, _ := row.GetByAny("isin")
		folio, _ := row.GetByAny("folio", "folio number")
		symbol, _ := row.GetByAny("symbol", "scheme name", "scrip")
		units, _ := row.GetByAny("units", "closing balance")
		marketValue, _ := row.GetByAny("market value", "value")

		if isin == "" && folio == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing isin/folio, skipped", i))
			continue
		}
		naturalKey := fmt.Sprintf("%s|%s|%s", p.GoldenRefID, isin, folio)
		result.Holdings = append(result.Holdings, parser.NewRow(map[string]string{
			"isin": isin, "folio": folio, "symbol": symbol, "units": units,
			"market_value": marketValue, "natural_key": naturalKey,
		}))
	}
	return result, nil
}
