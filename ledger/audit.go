package ledger

import (
	"encoding/json"

	"pfas/domain"
)

// auditDetail serializes a posted journal as plain JSON, the same approach
// the teacher's EventStore/EventProcessor use for event payloads
// (event_store.go marshals with encoding/json, not protobuf — the pack
// never ships a generated accounting/proto/accounting package, so this
// repo follows the teacher's own JSON fallback everywhere a payload needs
// serializing; see DESIGN.md).
func auditDetail(j domain.Journal, entries []domain.JournalEntry) string {
	type entryDetail struct {
		AccountID string `json:"account_id"`
		Debit     string `json:"debit"`
		Credit    string `json:"credit"`
	}
	type detail struct {
		JournalID string        `json:"journal_id"`
		TxnDate   string        `json:"txn_date"`
		Entries   []entryDetail `json:"entries"`
	}
	d := detail{JournalID: j.ID, TxnDate: j.TxnDate.Format("2006-01-02")}
	for _, e := range entries {
		d.Entries = append(d.Entries, entryDetail{AccountID: e.AccountID, Debit: e.Debit.String(), Credit: e.Credit.String()})
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(b)
}
