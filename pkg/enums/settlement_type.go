package enums

import "fmt"

// SettlementType maps to the settlement_type enum in Postgres. Each settlement
// type has a matching ledger transaction type so payouts stay traceable.
type SettlementType string

const (
	SettlementTypeTaskComplete SettlementType = "TASK_COMPLETE"
	SettlementTypeReviewReward SettlementType = "REVIEW_REWARD"
	SettlementTypeBonus        SettlementType = "BONUS"
	SettlementTypePenalty      SettlementType = "PENALTY"
	SettlementTypePlatformFee  SettlementType = "PLATFORM_FEE"
	SettlementTypeRefund       SettlementType = "REFUND"
)

var validSettlementTypes = []SettlementType{
	SettlementTypeTaskComplete,
	SettlementTypeReviewReward,
	SettlementTypeBonus,
	SettlementTypePenalty,
	SettlementTypePlatformFee,
	SettlementTypeRefund,
}

// IsValid reports whether the value matches the canonical settlement type enum.
func (t SettlementType) IsValid() bool {
	for _, candidate := range validSettlementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// TransactionType returns the ledger transaction type recorded for a
// settlement of this type.
func (t SettlementType) TransactionType() PointTransactionType {
	return PointTransactionType(t)
}

// ParseSettlementType converts raw input into SettlementType.
func ParseSettlementType(value string) (SettlementType, error) {
	for _, candidate := range validSettlementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement type %q", value)
}
