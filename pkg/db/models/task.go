package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Task is one claimable unit of work inside a project. AssigneeID is set when
// the task leaves OPEN and cleared only if the task is cancelled back to the pool.
type Task struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   uuid.UUID        `gorm:"column:project_id;type:uuid;not null;index"`
	Title       string           `gorm:"not null"`
	Description string           `gorm:"type:text"`
	Status      enums.TaskStatus `gorm:"column:status;type:task_status;not null;default:'OPEN';index"`
	AssigneeID  *uuid.UUID       `gorm:"column:assignee_id;type:uuid;index"`
	Budget      decimal.Decimal  `gorm:"column:budget;type:numeric(12,2);not null;default:0"`
	DueAt       *time.Time       `gorm:"column:due_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
