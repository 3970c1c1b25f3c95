package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge-backend/pkg/enums"
	"github.com/taskforge/taskforge-backend/pkg/types"
)

// Review is the immutable record of one review decision. Rows are only ever
// inserted; there is no update path.
type Review struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TaskID       uuid.UUID          `gorm:"column:task_id;type:uuid;not null;index"`
	SubmissionID uuid.UUID          `gorm:"column:submission_id;type:uuid;not null"`
	ReviewerID   uuid.UUID          `gorm:"column:reviewer_id;type:uuid;not null"`
	Scores       types.ScoreList    `gorm:"column:scores;type:jsonb;not null"`
	TotalScore   float64            `gorm:"column:total_score;type:numeric(5,2);not null"`
	Comment      *string            `gorm:"type:text"`
	Result       enums.ReviewResult `gorm:"column:result;type:review_result;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
