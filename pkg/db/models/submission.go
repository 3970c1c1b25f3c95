package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Submission is one deliverable handed in against a task. A task accumulates
// submissions across revision rounds; at most one is awaiting review.
type Submission struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TaskID      uuid.UUID              `gorm:"column:task_id;type:uuid;not null;index"`
	SubmitterID uuid.UUID              `gorm:"column:submitter_id;type:uuid;not null"`
	RepoURL     string                 `gorm:"column:repo_url;not null"`
	Description *string                `gorm:"type:text"`
	Branch      *string                `gorm:"column:branch"`
	CommitHash  *string                `gorm:"column:commit_hash"`
	Status      enums.SubmissionStatus `gorm:"column:status;type:submission_status;not null;default:'SUBMITTED'"`
	SubmittedAt time.Time              `gorm:"column:submitted_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
