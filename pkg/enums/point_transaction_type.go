package enums

import "fmt"

// PointTransactionType maps to the point_transaction_type enum in Postgres.
type PointTransactionType string

const (
	PointTransactionTypeTaskComplete PointTransactionType = "TASK_COMPLETE"
	PointTransactionTypeReviewReward PointTransactionType = "REVIEW_REWARD"
	PointTransactionTypeBonus        PointTransactionType = "BONUS"
	PointTransactionTypePenalty      PointTransactionType = "PENALTY"
	PointTransactionTypePlatformFee  PointTransactionType = "PLATFORM_FEE"
	PointTransactionTypeRefund       PointTransactionType = "REFUND"
)

var validPointTransactionTypes = []PointTransactionType{
	PointTransactionTypeTaskComplete,
	PointTransactionTypeReviewReward,
	PointTransactionTypeBonus,
	PointTransactionTypePenalty,
	PointTransactionTypePlatformFee,
	PointTransactionTypeRefund,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t PointTransactionType) IsValid() bool {
	for _, candidate := range validPointTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePointTransactionType converts raw input into PointTransactionType.
func ParsePointTransactionType(value string) (PointTransactionType, error) {
	for _, candidate := range validPointTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid point transaction type %q", value)
}
