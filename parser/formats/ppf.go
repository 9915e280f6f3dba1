package formats

import (
	"fmt"

	"pfas/parser"
)

// PPFParser parses PPF passbook exports (CSV), natural key per spec.md
// §4.5 table: "(account_number, date, amount, txn_type)".
type PPFParser struct {
	Reader parser.SheetReader
}

func (p *PPFParser) Name() string { return "ppf" }

func (p *PPFParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet(""); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	rows, err := p.Reader.ReadRows(0)
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		account, _ := row.GetByAny("account number", "account no")
		date, _ := row.GetByAny("date")
		amount, _ := row.GetByAny("amount")
		txnType, _ := row.GetByAny("transaction type", "txn type", "particulars")

		if account == "" || date == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing account/date, skipped", i))
			continue
		}
		naturalKey := fmt.Sprintf("%s|%s|%s|%s", account, date, amount, txnType)
		result.Transactions = append(result.Transactions, parser.NewRow(map[string]string{
			"account_number": account, "date": date, "amount": amount,
			"txn_type": txnType, "natural_key": naturalKey,
		}))
	}
	return result, nil
}
