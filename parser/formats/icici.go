package formats

import (
	"fmt"

	"pfas/parser"
)

// ICICIParser parses ICICI Direct stock-sale (capital gains) statements,
// grounded on original_source/parsers/stock/icici.py. Header row is
// detected by keyword-overlap scoring (spec.md §4.5 step 1) since ICICI
// exports do not have a fixed offset the way RTA files do.
type ICICIParser struct {
	Reader parser.SheetReader
}

var iciciHeaderKeywords = []string{"symbol", "sale date", "quantity", "purchase date", "sale price", "purchase price"}

func (p *ICICIParser) Name() string { return "icici" }

func (p *ICICIParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet(""); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	allRows, err := p.Reader.ReadRows(0)
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	headerAt := parser.DetectHeaderRow(allRows, iciciHeaderKeywords, 20)
	rows := allRows[headerAt:]

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		symbol, _ := row.GetByAny("symbol", "scrip name")
		saleDate, _ := row.GetByAny("sale date")
		purchaseDate, _ := row.GetByAny("purchase date")
		quantity, _ := row.GetByAny("quantity", "qty")

		if symbol == "" || saleDate == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing symbol/sale date, skipped", i))
			continue
		}
		naturalKey := fmt.Sprintf("%s|%s|%s|%s", symbol, saleDate, quantity, purchaseDate)
		result.Transactions = append(result.Transactions, parser.NewRow(map[string]string{
			"symbol": symbol, "sale_date": saleDate, "purchase_date": purchaseDate,
			"quantity": quantity, "natural_key": naturalKey,
		}))
	}
	return result, nil
}
