package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// User represents the canonical identity entity. Points are mutated only by
// the ledger; CreditScore only by the credit adjuster.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"type:text;not null;uniqueIndex"`
	Name         string           `gorm:"not null"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.UserRole   `gorm:"column:role;type:user_role;not null;default:'PARTICIPANT'"`
	Status       enums.UserStatus `gorm:"column:status;type:user_status;not null;default:'ACTIVE'"`
	Points       decimal.Decimal  `gorm:"column:points;type:numeric(12,2);not null;default:0"`
	CreditScore  int              `gorm:"column:credit_score;not null;default:100"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
