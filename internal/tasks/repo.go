package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Repository manages persistence for tasks, submissions and reviews. Status
// writes are guarded on the status the caller read, so an illegal or stale
// transition never reaches the row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTask(ctx context.Context, task *models.Task) error
	FindTaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	TransitionTask(ctx context.Context, taskID uuid.UUID, from enums.TaskStatus, updates map[string]any) (bool, error)
	ListTasks(ctx context.Context, params listTasksParams) ([]models.Task, error)
	CountTasks(ctx context.Context, params listTasksParams) (int64, error)
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	FindPendingSubmission(ctx context.Context, taskID uuid.UUID) (*models.Submission, error)
	TransitionSubmission(ctx context.Context, submissionID uuid.UUID, from, to enums.SubmissionStatus) (bool, error)
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviewsByTask(ctx context.Context, taskID uuid.UUID) ([]models.Review, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tasks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listTasksParams struct {
	ProjectID  *uuid.UUID
	Status     *enums.TaskStatus
	AssigneeID *uuid.UUID
	Limit      int
	Offset     int
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTask(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *repository) FindTaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var row models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// TransitionTask applies updates only while the task still holds the status
// the caller observed. A false return means another writer moved it first.
func (r *repository) TransitionTask(ctx context.Context, taskID uuid.UUID, from enums.TaskStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND status = ?", taskID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListTasks(ctx context.Context, params listTasksParams) ([]models.Task, error) {
	var rows []models.Task
	if err := r.applyFilters(ctx, params).
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountTasks(ctx context.Context, params listTasksParams) (int64, error) {
	var count int64
	err := r.applyFilters(ctx, params).Count(&count).Error
	return count, err
}

func (r *repository) applyFilters(ctx context.Context, params listTasksParams) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *params.AssigneeID)
	}
	return query
}

func (r *repository) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// FindPendingSubmission returns the submission awaiting review for a task, or
// nil when there is none. At most one submission per task may be SUBMITTED.
func (r *repository) FindPendingSubmission(ctx context.Context, taskID uuid.UUID) (*models.Submission, error) {
	var row models.Submission
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND status = ?", taskID, enums.SubmissionStatusSubmitted).
		Order("submitted_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) TransitionSubmission(ctx context.Context, submissionID uuid.UUID, from, to enums.SubmissionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", submissionID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repository) ListReviewsByTask(ctx context.Context, taskID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
