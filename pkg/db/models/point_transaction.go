package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// PointTransaction is an immutable ledger entry. For any user, entries ordered
// by creation form a chain: each BalanceBefore equals the previous BalanceAfter.
type PointTransaction struct {
	ID            uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Amount        decimal.Decimal            `gorm:"column:amount;type:numeric(12,2);not null"`
	BalanceBefore decimal.Decimal            `gorm:"column:balance_before;type:numeric(12,2);not null"`
	BalanceAfter  decimal.Decimal            `gorm:"column:balance_after;type:numeric(12,2);not null"`
	Type          enums.PointTransactionType `gorm:"column:type;type:point_transaction_type;not null"`
	Description   string                     `gorm:"type:text"`
	TaskID        *uuid.UUID                 `gorm:"column:task_id;type:uuid;index"`
	CreatedAt     time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
