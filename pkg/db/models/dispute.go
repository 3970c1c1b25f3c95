package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
	"github.com/taskforge/taskforge-backend/pkg/types"
)

// Dispute tracks a contested task outcome. CLOSED is terminal; a partial
// unique index guarantees at most one non-closed dispute per task.
type Dispute struct {
	ID             uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TaskID         uuid.UUID              `gorm:"column:task_id;type:uuid;not null;index"`
	ProjectID      uuid.UUID              `gorm:"column:project_id;type:uuid;not null"`
	InitiatorID    uuid.UUID              `gorm:"column:initiator_id;type:uuid;not null;index"`
	RespondentID   uuid.UUID              `gorm:"column:respondent_id;type:uuid;not null;index"`
	Reason         string                 `gorm:"type:text;not null"`
	Evidence       *string                `gorm:"type:text"`
	EvidenceURLs   types.StringList       `gorm:"column:evidence_urls;type:jsonb"`
	Status         enums.DisputeStatus    `gorm:"column:status;type:dispute_status;not null;default:'OPEN';index"`
	Decision       *enums.DisputeDecision `gorm:"column:decision;type:dispute_decision"`
	DecisionReason *string                `gorm:"column:decision_reason;type:text"`
	RefundAmount   *decimal.Decimal       `gorm:"column:refund_amount;type:numeric(12,2)"`
	PenaltyAmount  *decimal.Decimal       `gorm:"column:penalty_amount;type:numeric(12,2)"`
	ArbitratorID   *uuid.UUID             `gorm:"column:arbitrator_id;type:uuid"`
	ArbitratedAt   *time.Time             `gorm:"column:arbitrated_at"`
	ClosedAt       *time.Time             `gorm:"column:closed_at"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
