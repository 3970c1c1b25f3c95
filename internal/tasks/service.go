package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/internal/notifications"
	"github.com/taskforge/taskforge-backend/internal/settlements"
	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/money"
	"github.com/taskforge/taskforge-backend/pkg/outbox"
	"github.com/taskforge/taskforge-backend/pkg/outbox/payloads"
	"github.com/taskforge/taskforge-backend/pkg/pagination"
	"github.com/taskforge/taskforge-backend/pkg/types"
)

// Service drives the task lifecycle. Claim, submit, review and cancel each run
// in one transaction and guard the status they read, so concurrent callers
// cannot apply two transitions from the same starting state.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*TaskDetail, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Claim(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error)
	Submit(ctx context.Context, input SubmitInput) (*models.Submission, error)
	Review(ctx context.Context, input ReviewInput) (*ReviewOutcome, error)
	Cancel(ctx context.Context, taskID, actorID uuid.UUID) (*models.Task, error)
}

type projectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type settler interface {
	SettleTx(ctx context.Context, tx *gorm.DB, input settlements.SettleInput) (*models.Settlement, error)
}

type notifier interface {
	NotifyTx(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo        Repository
	projects    projectFinder
	settlements settler
	notifier    notifier
	outbox      outboxEmitter
	runner      txRunner
}

// CreateInput describes a new task inside a project.
type CreateInput struct {
	ProjectID   uuid.UUID
	ActorID     uuid.UUID
	Title       string
	Description string
	Budget      decimal.Decimal
	DueAt       *time.Time
}

// SubmitInput carries one deliverable for a claimed task.
type SubmitInput struct {
	TaskID      uuid.UUID
	ActorID     uuid.UUID
	RepoURL     string
	Description *string
	Branch      *string
	CommitHash  *string
}

// ReviewInput records a review decision. ReviewerID defaults to the project
// initiator when unset.
type ReviewInput struct {
	TaskID     uuid.UUID
	ReviewerID uuid.UUID
	Result     enums.ReviewResult
	Scores     []float64
	Comment    *string
}

// ReviewOutcome is the result of a review: the immutable review row, the
// task's new status, and the settlement when the decision approved a payout.
type ReviewOutcome struct {
	Review     *models.Review     `json:"review"`
	TaskStatus enums.TaskStatus   `json:"taskStatus"`
	Settlement *models.Settlement `json:"settlement,omitempty"`
}

// TaskDetail is a task with its review history.
type TaskDetail struct {
	Task    models.Task     `json:"task"`
	Reviews []models.Review `json:"reviews"`
}

// ListParams filters and paginates task listings.
type ListParams struct {
	ProjectID  *uuid.UUID
	Status     *enums.TaskStatus
	AssigneeID *uuid.UUID
	Page       int
	PageSize   int
}

// ListResult wraps returned tasks and the page metadata.
type ListResult struct {
	Items []models.Task   `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

// ServiceParams collects the tasks service dependencies.
type ServiceParams struct {
	Repo        Repository
	Projects    projectFinder
	Settlements settler
	Notifier    notifier
	Outbox      outboxEmitter
	Runner      txRunner
}

// NewService wires the tasks service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tasks repository required")
	}
	if params.Projects == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	if params.Settlements == nil {
		return nil, fmt.Errorf("settlements service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        params.Repo,
		projects:    params.Projects,
		settlements: params.Settlements,
		notifier:    params.Notifier,
		outbox:      params.Outbox,
		runner:      params.Runner,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "title required")
	}
	if input.ProjectID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "project id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor id required")
	}
	budget := money.Round2(input.Budget)
	if budget.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "budget must not be negative")
	}

	project, err := s.findProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.InitiatorID != input.ActorID {
		return nil, apperrors.New(apperrors.CodeForbidden, "only the project initiator may create tasks")
	}

	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   input.ProjectID,
		Title:       title,
		Description: input.Description,
		Status:      enums.TaskStatusOpen,
		Budget:      budget,
		DueAt:       input.DueAt,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create task")
	}
	return task, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TaskDetail, error) {
	task, err := s.findTask(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListReviewsByTask(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list reviews")
	}
	return &TaskDetail{Task: *task, Reviews: reviews}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid task status filter")
	}
	normalized := pagination.Normalize(pagination.Params{Page: params.Page, PageSize: params.PageSize})
	filters := listTasksParams{
		ProjectID:  params.ProjectID,
		Status:     params.Status,
		AssigneeID: params.AssigneeID,
		Limit:      normalized.PageSize,
		Offset:     normalized.Offset(),
	}
	total, err := s.repo.CountTasks(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "count tasks")
	}
	rows, err := s.repo.ListTasks(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list tasks")
	}
	return &ListResult{Items: rows, Meta: pagination.NewMeta(total, normalized)}, nil
}

func (s *service) Claim(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id required")
	}

	var claimed *models.Task
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		task, err := s.findTask(ctx, repo, taskID)
		if err != nil {
			return err
		}
		if task.Status != enums.TaskStatusOpen {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("task cannot be claimed from %s", task.Status))
		}

		project, err := s.findProject(ctx, task.ProjectID)
		if err != nil {
			return err
		}

		ok, err := repo.TransitionTask(ctx, taskID, enums.TaskStatusOpen, map[string]any{
			"status":      enums.TaskStatusClaimed,
			"assignee_id": userID,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "claim task")
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "task was claimed concurrently")
		}

		if err := s.notifier.NotifyTx(ctx, tx, notifications.NotifyInput{
			UserID: project.InitiatorID,
			Type:   enums.NotificationTaskClaimed,
			Title:  "Task claimed",
			Body:   fmt.Sprintf("Task %q was claimed.", task.Title),
		}); err != nil {
			return err
		}

		task.Status = enums.TaskStatusClaimed
		task.AssigneeID = &userID
		claimed = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Submission, error) {
	if strings.TrimSpace(input.RepoURL) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "repoUrl required")
	}
	if input.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor id required")
	}

	var submission *models.Submission
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		task, err := s.findTask(ctx, repo, input.TaskID)
		if err != nil {
			return err
		}
		if !submittableFrom(task.Status) {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("task cannot accept submissions in %s", task.Status))
		}
		if task.AssigneeID == nil || *task.AssigneeID != input.ActorID {
			return apperrors.New(apperrors.CodeForbidden, "only the assignee may submit")
		}

		pending, err := repo.FindPendingSubmission(ctx, input.TaskID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "check pending submission")
		}
		if pending != nil {
			return apperrors.New(apperrors.CodeConflict, "a submission is already awaiting review")
		}

		row := &models.Submission{
			ID:          uuid.New(),
			TaskID:      input.TaskID,
			SubmitterID: input.ActorID,
			RepoURL:     strings.TrimSpace(input.RepoURL),
			Description: input.Description,
			Branch:      input.Branch,
			CommitHash:  input.CommitHash,
			Status:      enums.SubmissionStatusSubmitted,
		}
		if err := repo.CreateSubmission(ctx, row); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "create submission")
		}

		ok, err := repo.TransitionTask(ctx, input.TaskID, task.Status, map[string]any{
			"status": enums.TaskStatusSubmitted,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "transition task")
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "task status changed concurrently")
		}

		submission = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*ReviewOutcome, error) {
	if !input.Result.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid review result")
	}
	if len(input.Scores) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "scores required")
	}

	var outcome *ReviewOutcome
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		task, err := s.findTask(ctx, repo, input.TaskID)
		if err != nil {
			return err
		}
		if task.Status != enums.TaskStatusSubmitted && task.Status != enums.TaskStatusInReview {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("task cannot be reviewed in %s", task.Status))
		}

		project, err := s.findProject(ctx, task.ProjectID)
		if err != nil {
			return err
		}
		reviewer := input.ReviewerID
		if reviewer == uuid.Nil {
			reviewer = project.InitiatorID
		}
		if reviewer != project.InitiatorID {
			return apperrors.New(apperrors.CodeForbidden, "only the project initiator may review")
		}

		pending, err := repo.FindPendingSubmission(ctx, input.TaskID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "find pending submission")
		}
		if pending == nil {
			return apperrors.New(apperrors.CodeStateConflict, "no submission awaiting review")
		}

		scores := types.ScoreList(input.Scores)
		mean, _ := scores.Mean()

		review := &models.Review{
			ID:           uuid.New(),
			TaskID:       input.TaskID,
			SubmissionID: pending.ID,
			ReviewerID:   reviewer,
			Scores:       scores,
			TotalScore:   mean,
			Comment:      input.Comment,
			Result:       input.Result,
		}
		if err := repo.CreateReview(ctx, review); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "create review")
		}

		ok, err := repo.TransitionSubmission(ctx, pending.ID, enums.SubmissionStatusSubmitted, submissionStatusFor(input.Result))
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "transition submission")
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "submission was reviewed concurrently")
		}

		nextStatus := taskStatusFor(input.Result)
		ok, err = repo.TransitionTask(ctx, input.TaskID, task.Status, map[string]any{"status": nextStatus})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "transition task")
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "task status changed concurrently")
		}

		result := &ReviewOutcome{Review: review, TaskStatus: nextStatus}
		if input.Result == enums.ReviewResultApproved && task.Budget.IsPositive() {
			taskID := input.TaskID
			settlement, err := s.settlements.SettleTx(ctx, tx, settlements.SettleInput{
				TaskID:      &taskID,
				UserID:      *task.AssigneeID,
				Amount:      task.Budget,
				Type:        enums.SettlementTypeTaskComplete,
				Mode:        project.Mode,
				Description: fmt.Sprintf("payout for task %q", task.Title),
				Actor:       &outbox.ActorRef{UserID: reviewer},
			})
			if err != nil {
				return err
			}
			result.Settlement = settlement
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTaskReviewed,
			AggregateType: enums.AggregateTask,
			AggregateID:   input.TaskID,
			Actor:         &outbox.ActorRef{UserID: reviewer},
			Version:       1,
			Data: payloads.TaskReviewedEvent{
				TaskID:     input.TaskID,
				ReviewID:   review.ID,
				AssigneeID: *task.AssigneeID,
				Result:     input.Result,
				TotalScore: mean,
			},
		}); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "queue review event")
		}

		if err := s.notifier.NotifyTx(ctx, tx, notifications.NotifyInput{
			UserID: *task.AssigneeID,
			Type:   enums.NotificationTaskReviewed,
			Title:  "Submission reviewed",
			Body:   fmt.Sprintf("Task %q was reviewed: %s (score %.2f).", task.Title, input.Result, mean),
		}); err != nil {
			return err
		}

		outcome = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *service) Cancel(ctx context.Context, taskID, actorID uuid.UUID) (*models.Task, error) {
	var cancelled *models.Task
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		task, err := s.findTask(ctx, repo, taskID)
		if err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			return apperrors.New(apperrors.CodeStateConflict,
				fmt.Sprintf("task cannot be cancelled from %s", task.Status))
		}

		project, err := s.findProject(ctx, task.ProjectID)
		if err != nil {
			return err
		}
		if project.InitiatorID != actorID {
			return apperrors.New(apperrors.CodeForbidden, "only the project initiator may cancel")
		}

		ok, err := repo.TransitionTask(ctx, taskID, task.Status, map[string]any{
			"status":      enums.TaskStatusCancelled,
			"assignee_id": nil,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "cancel task")
		}
		if !ok {
			return apperrors.New(apperrors.CodeStateConflict, "task status changed concurrently")
		}

		task.Status = enums.TaskStatusCancelled
		task.AssigneeID = nil
		cancelled = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) findTask(ctx context.Context, repo Repository, id uuid.UUID) (*models.Task, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "task id required")
	}
	task, err := repo.FindTaskByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "task not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find task")
	}
	return task, nil
}

func (s *service) findProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "project not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find project")
	}
	return project, nil
}

func submittableFrom(status enums.TaskStatus) bool {
	switch status {
	case enums.TaskStatusClaimed, enums.TaskStatusInProgress, enums.TaskStatusPending:
		return true
	default:
		return false
	}
}

func submissionStatusFor(result enums.ReviewResult) enums.SubmissionStatus {
	switch result {
	case enums.ReviewResultApproved:
		return enums.SubmissionStatusApproved
	case enums.ReviewResultRejected:
		return enums.SubmissionStatusRejected
	default:
		return enums.SubmissionStatusRevisionRequested
	}
}

func taskStatusFor(result enums.ReviewResult) enums.TaskStatus {
	switch result {
	case enums.ReviewResultApproved:
		return enums.TaskStatusCompleted
	case enums.ReviewResultRejected:
		return enums.TaskStatusRejected
	default:
		return enums.TaskStatusPending
	}
}
