// Package payloads defines the event bodies placed inside outbox envelopes.
package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// SettlementCompletedEvent is emitted after a settlement commits.
type SettlementCompletedEvent struct {
	SettlementID uuid.UUID            `json:"settlementId"`
	TaskID       *uuid.UUID           `json:"taskId,omitempty"`
	UserID       uuid.UUID            `json:"userId"`
	Type         enums.SettlementType `json:"type"`
	Amount       decimal.Decimal      `json:"amount"`
	PlatformFee  decimal.Decimal      `json:"platformFee"`
	NetAmount    decimal.Decimal      `json:"netAmount"`
}

// DisputeClosedEvent is emitted when arbitration closes a dispute.
type DisputeClosedEvent struct {
	DisputeID    uuid.UUID             `json:"disputeId"`
	TaskID       uuid.UUID             `json:"taskId"`
	Decision     enums.DisputeDecision `json:"decision"`
	InitiatorID  uuid.UUID             `json:"initiatorId"`
	RespondentID uuid.UUID             `json:"respondentId"`
	RefundAmount *decimal.Decimal      `json:"refundAmount,omitempty"`
}

// TaskReviewedEvent is emitted after a review decision is recorded.
type TaskReviewedEvent struct {
	TaskID     uuid.UUID          `json:"taskId"`
	ReviewID   uuid.UUID          `json:"reviewId"`
	AssigneeID uuid.UUID          `json:"assigneeId"`
	Result     enums.ReviewResult `json:"result"`
	TotalScore float64            `json:"totalScore"`
}
