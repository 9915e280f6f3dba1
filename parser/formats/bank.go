package formats

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"pfas/parser"
)

var bankHeaderKeywords = []string{"date", "description", "narration", "debit", "credit", "balance", "withdrawal", "deposit"}

// BankParser parses bank-statement CSV exports. Header row is detected by
// keyword-overlap scoring over the first 20 rows (spec.md §4.5 step 1),
// since bank exports vary widely in layout across banks. Natural key per
// spec.md §4.5 table: "SHA-256 of (user, bank, date, raw_description,
// amount)".
type BankParser struct {
	Reader parser.SheetReader
	Bank   string
}

func (p *BankParser) Name() string { return "bank" }

func (p *BankParser) Parse(src parser.Source) (parser.ParseResult, error) {
	if err := p.Reader.OpenSheet(""); err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	allRows, err := p.Reader.ReadRows(0)
	if err != nil {
		return parser.ParseResult{Success: false, SourceFile: src.Name, Errors: []string{err.Error()}}, nil
	}
	headerAt := parser.DetectHeaderRow(allRows, bankHeaderKeywords, 20)
	rows := allRows[headerAt:]

	result := parser.ParseResult{Success: true, SourceFile: src.Name}
	for i, row := range parser.RowsToMaps(rows) {
		date, _ := row.GetByAny("date", "txn date", "value date")
		description, _ := row.GetByAny("description", "narration", "particulars")
		debit, _ := row.GetByAny("debit", "withdrawal", "withdrawal amt")
		credit, _ := row.GetByAny("credit", "deposit", "deposit amt")
		balance, _ := row.GetByAny("balance", "closing balance")

		if date == "" || description == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: missing date/description, skipped", i))
			continue
		}
		amount := credit
		if amount == "" {
			amount = debit
		}
		result.Transactions = append(result.Transactions, parser.NewRow(map[string]string{
			"date": date, "description": description, "debit": debit, "credit": credit,
			"balance": balance, "natural_key": p.naturalKey("", date, description, amount),
		}))
	}
	return result, nil
}

// naturalKey computes the SHA-256 digest spec.md §4.5 specifies, keyed on
// (user, bank, date, raw_description, amount). Parse does not know the
// user and passes a blank userID; the ingester does not recompute the
// digest but prefixes it with the user id before upsert.
func (p *BankParser) naturalKey(userID, date, description, amount string) string {
	h := sha256.Sum256([]byte(userID + "|" + p.Bank + "|" + date + "|" + description + "|" + amount))
	return hex.EncodeToString(h[:])
}
