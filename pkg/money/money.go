// Package money centralizes point arithmetic. All monetary values are
// decimals quantized to two places with half-up rounding, matching the
// numeric(12,2) columns they are persisted into.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

var (
	enterpriseFeeRate = decimal.NewFromFloat(0.03)
	communityFeeRate  = decimal.NewFromFloat(0.05)
)

// Round2 rounds half-up to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FeeRate returns the platform fee rate for a project mode. Unknown modes
// fall back to the community rate.
func FeeRate(mode enums.ProjectMode) decimal.Decimal {
	if mode == enums.ProjectModeEnterprise {
		return enterpriseFeeRate
	}
	return communityFeeRate
}

// ComputeFee splits a gross amount into the platform fee and the net payout.
// The fee is rounded first so fee + net always reconstructs the gross amount.
func ComputeFee(amount decimal.Decimal, mode enums.ProjectMode) (fee, net decimal.Decimal) {
	fee = Round2(amount.Mul(FeeRate(mode)))
	net = amount.Sub(fee)
	return fee, net
}
