package formats

import (
	"fmt"

	"pfas/parser"
)

// ZerodhaParser parses Zerodha tradebook exports (equity delivery/
// intraday/F&O), grounded on original_source/parsers/stock/zerodha.py.
// Header row fixed at index 14 for the "new format" export (spec.md §4.5
// step 1), natural key per spec.md §4.5 table: "(symbol, trade_date,
// trade_type, quantity, price)".
type ZerodhaParser struct {
	Reader parser.SheetReader
}

func (p *ZerodhaParser) Name() string { return "zerodha" }

func (p *ZerodhaParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet(""); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	rows, err := p.Reader.ReadRows(parser.FixedHeaderOffsets["zerodha"])
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		symbol, _ := row.GetByAny("symbol", "scrip")
		tradeDate, _ := row.GetByAny("trade date", "date")
		tradeType, _ := row.GetByAny("trade type", "buy/sell")
		quantity, _ := row.GetByAny("quantity", "qty")
		price, _ := row.GetByAny("price", "trade price")

		if symbol == "" || quantity == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing symbol/quantity, skipped", i))
			continue
		}
		naturalKey := fmt.Sprintf("%s|%s|%s|%s|%s", symbol, tradeDate, tradeType, quantity, price)
		result.Transactions = append(result.Transactions, parser.NewRow(map[string]string{
			"symbol": symbol, "trade_date": tradeDate, "trade_type": tradeType,
			"quantity": quantity, "price": price, "natural_key": naturalKey,
		}))
	}
	return result, nil
}
