package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Project is the container tasks belong to. Its mode decides the settlement
// fee schedule and its initiator is the refund target for dispute refunds.
type Project struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string            `gorm:"not null"`
	Description string            `gorm:"type:text"`
	InitiatorID uuid.UUID         `gorm:"column:initiator_id;type:uuid;not null;index"`
	Mode        enums.ProjectMode `gorm:"column:mode;type:project_mode;not null;default:'COMMUNITY'"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
