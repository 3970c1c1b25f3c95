package enums

// SettlementStatus maps to the settlement_status enum in Postgres.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "PENDING"
	SettlementStatusCompleted SettlementStatus = "COMPLETED"
)

// IsValid reports whether the value matches the canonical settlement status enum.
func (s SettlementStatus) IsValid() bool {
	return s == SettlementStatusPending || s == SettlementStatusCompleted
}
