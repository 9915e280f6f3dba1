package costbasis

import (
	"encoding/json"

	"pfas/domain"
)

// lotAuditDetail serializes a purchase lot as plain JSON, the same
// approach ledger.auditDetail uses for journal payloads.
func lotAuditDetail(lot domain.Lot) string {
	type detail struct {
		Symbol          string `json:"symbol"`
		AcquisitionDate string `json:"acquisition_date"`
		UnitsAcquired   string `json:"units_acquired"`
		CostPerUnit     string `json:"cost_per_unit"`
		TotalCost       string `json:"total_cost"`
	}
	d := detail{
		Symbol: lot.Symbol, AcquisitionDate: lot.AcquisitionDate.Format("2006-01-02"),
		UnitsAcquired: lot.UnitsAcquired.String(), CostPerUnit: lot.CostPerUnit.String(), TotalCost: lot.TotalCost.String(),
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// lotDepletionAuditDetail serializes a lot's units_remaining mutation.
func lotDepletionAuditDetail(unitsUsed, oldRemaining, newRemaining string) string {
	type detail struct {
		UnitsUsed    string `json:"units_used"`
		OldRemaining string `json:"old_units_remaining"`
		NewRemaining string `json:"new_units_remaining"`
	}
	b, err := json.Marshal(detail{UnitsUsed: unitsUsed, OldRemaining: oldRemaining, NewRemaining: newRemaining})
	if err != nil {
		return "{}"
	}
	return string(b)
}
