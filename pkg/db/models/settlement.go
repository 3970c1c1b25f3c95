package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Settlement records one payout event. At most one COMPLETED settlement of a
// given type may exist per task, enforced by a partial unique index.
type Settlement struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	TaskID      *uuid.UUID             `gorm:"column:task_id;type:uuid;index"`
	Amount      decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null"`
	PlatformFee decimal.Decimal        `gorm:"column:platform_fee;type:numeric(12,2);not null"`
	NetAmount   decimal.Decimal        `gorm:"column:net_amount;type:numeric(12,2);not null"`
	Currency    string                 `gorm:"column:currency;not null;default:'POINT'"`
	Type        enums.SettlementType   `gorm:"column:type;type:settlement_type;not null"`
	Status      enums.SettlementStatus `gorm:"column:status;type:settlement_status;not null;default:'PENDING'"`
	Description *string                `gorm:"type:text"`
	SettledAt   *time.Time             `gorm:"column:settled_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
