package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// UserCreditHistory is an immutable append of one reputation change.
// PreviousScore always reflects the user's score at write time.
type UserCreditHistory struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Change        int                    `gorm:"column:change;not null"`
	PreviousScore int                    `gorm:"column:previous_score;not null"`
	NewScore      int                    `gorm:"column:new_score;not null"`
	SourceType    enums.CreditSourceType `gorm:"column:source_type;type:credit_source_type;not null"`
	Description   string                 `gorm:"type:text"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
