package tasks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/internal/notifications"
	"github.com/taskforge/taskforge-backend/internal/settlements"
	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/outbox"
)

type fakeRepo struct {
	tasks       map[uuid.UUID]*models.Task
	submissions map[uuid.UUID]*models.Submission
	reviews     []*models.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		tasks:       map[uuid.UUID]*models.Task{},
		submissions: map[uuid.UUID]*models.Submission{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateTask(ctx context.Context, task *models.Task) error {
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeRepo) FindTaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeRepo) TransitionTask(ctx context.Context, taskID uuid.UUID, from enums.TaskStatus, updates map[string]any) (bool, error) {
	task, ok := f.tasks[taskID]
	if !ok || task.Status != from {
		return false, nil
	}
	if status, ok := updates["status"]; ok {
		task.Status = status.(enums.TaskStatus)
	}
	if assignee, ok := updates["assignee_id"]; ok {
		switch v := assignee.(type) {
		case uuid.UUID:
			task.AssigneeID = &v
		case nil:
			task.AssigneeID = nil
		}
	}
	return true, nil
}

func (f *fakeRepo) ListTasks(ctx context.Context, params listTasksParams) ([]models.Task, error) {
	var rows []models.Task
	for _, task := range f.tasks {
		rows = append(rows, *task)
	}
	return rows, nil
}

func (f *fakeRepo) CountTasks(ctx context.Context, params listTasksParams) (int64, error) {
	return int64(len(f.tasks)), nil
}

func (f *fakeRepo) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	f.submissions[submission.ID] = submission
	return nil
}

func (f *fakeRepo) FindPendingSubmission(ctx context.Context, taskID uuid.UUID) (*models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.TaskID == taskID && submission.Status == enums.SubmissionStatusSubmitted {
			copied := *submission
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) TransitionSubmission(ctx context.Context, submissionID uuid.UUID, from, to enums.SubmissionStatus) (bool, error) {
	submission, ok := f.submissions[submissionID]
	if !ok || submission.Status != from {
		return false, nil
	}
	submission.Status = to
	return true, nil
}

func (f *fakeRepo) CreateReview(ctx context.Context, review *models.Review) error {
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeRepo) ListReviewsByTask(ctx context.Context, taskID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	for _, review := range f.reviews {
		if review.TaskID == taskID {
			rows = append(rows, *review)
		}
	}
	return rows, nil
}

type fakeProjects struct {
	projects map[uuid.UUID]*models.Project
}

func (f *fakeProjects) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if project, ok := f.projects[id]; ok {
		return project, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSettler struct {
	inputs  []settlements.SettleInput
	settErr error
}

func (f *fakeSettler) SettleTx(ctx context.Context, tx *gorm.DB, input settlements.SettleInput) (*models.Settlement, error) {
	if f.settErr != nil {
		return nil, f.settErr
	}
	f.inputs = append(f.inputs, input)
	return &models.Settlement{
		ID:     uuid.New(),
		UserID: input.UserID,
		TaskID: input.TaskID,
		Amount: input.Amount,
		Type:   input.Type,
		Status: enums.SettlementStatusCompleted,
	}, nil
}

type fakeNotifier struct {
	inputs []notifications.NotifyInput
}

func (f *fakeNotifier) NotifyTx(ctx context.Context, tx *gorm.DB, input notifications.NotifyInput) error {
	f.inputs = append(f.inputs, input)
	return nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeRunner struct{}

func (fakeRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fixture struct {
	svc      Service
	repo     *fakeRepo
	projects *fakeProjects
	settler  *fakeSettler
	notifier *fakeNotifier
	outbox   *fakeOutbox

	projectID   uuid.UUID
	initiatorID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	initiatorID := uuid.New()
	projectID := uuid.New()
	projectsFake := &fakeProjects{projects: map[uuid.UUID]*models.Project{
		projectID: {ID: projectID, Title: "Pipeline", InitiatorID: initiatorID, Mode: enums.ProjectModeCommunity},
	}}
	settler := &fakeSettler{}
	notifier := &fakeNotifier{}
	outboxFake := &fakeOutbox{}
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Projects:    projectsFake,
		Settlements: settler,
		Notifier:    notifier,
		Outbox:      outboxFake,
		Runner:      fakeRunner{},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{
		svc:         svc,
		repo:        repo,
		projects:    projectsFake,
		settler:     settler,
		notifier:    notifier,
		outbox:      outboxFake,
		projectID:   projectID,
		initiatorID: initiatorID,
	}
}

func (fx *fixture) seedTask(status enums.TaskStatus, assigneeID *uuid.UUID) *models.Task {
	task := &models.Task{
		ID:         uuid.New(),
		ProjectID:  fx.projectID,
		Title:      "Fix flaky import",
		Status:     status,
		AssigneeID: assigneeID,
		Budget:     decimal.RequireFromString("100.00"),
	}
	fx.repo.tasks[task.ID] = task
	return task
}

func (fx *fixture) seedPendingSubmission(taskID, submitterID uuid.UUID) *models.Submission {
	submission := &models.Submission{
		ID:          uuid.New(),
		TaskID:      taskID,
		SubmitterID: submitterID,
		RepoURL:     "https://git.example.com/fix",
		Status:      enums.SubmissionStatusSubmitted,
	}
	fx.repo.submissions[submission.ID] = submission
	return submission
}

func expectCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestClaimOpenTask(t *testing.T) {
	fx := newFixture(t)
	task := fx.seedTask(enums.TaskStatusOpen, nil)
	userID := uuid.New()

	claimed, err := fx.svc.Claim(context.Background(), task.ID, userID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.Status != enums.TaskStatusClaimed {
		t.Fatalf("expected CLAIMED, got %s", claimed.Status)
	}
	if claimed.AssigneeID == nil || *claimed.AssigneeID != userID {
		t.Fatal("expected assignee to be set")
	}
	if len(fx.notifier.inputs) != 1 || fx.notifier.inputs[0].UserID != fx.initiatorID {
		t.Fatalf("expected one notification to the initiator, got %+v", fx.notifier.inputs)
	}
}

func TestClaimNonOpenTaskFails(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusClaimed, &assignee)

	_, err := fx.svc.Claim(context.Background(), task.ID, uuid.New())
	expectCode(t, err, apperrors.CodeStateConflict)
}

func TestClaimMissingTask(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Claim(context.Background(), uuid.New(), uuid.New())
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestSubmitFromClaimed(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusClaimed, &assignee)

	submission, err := fx.svc.Submit(context.Background(), SubmitInput{
		TaskID:  task.ID,
		ActorID: assignee,
		RepoURL: "https://git.example.com/fix",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submission.Status != enums.SubmissionStatusSubmitted {
		t.Fatalf("expected SUBMITTED submission, got %s", submission.Status)
	}
	if fx.repo.tasks[task.ID].Status != enums.TaskStatusSubmitted {
		t.Fatalf("expected task SUBMITTED, got %s", fx.repo.tasks[task.ID].Status)
	}
}

func TestSubmitFromPendingLoops(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusPending, &assignee)

	_, err := fx.svc.Submit(context.Background(), SubmitInput{
		TaskID:  task.ID,
		ActorID: assignee,
		RepoURL: "https://git.example.com/fix-v2",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if fx.repo.tasks[task.ID].Status != enums.TaskStatusSubmitted {
		t.Fatalf("expected task back in SUBMITTED, got %s", fx.repo.tasks[task.ID].Status)
	}
}

func TestSubmitOnOpenTaskFails(t *testing.T) {
	fx := newFixture(t)
	task := fx.seedTask(enums.TaskStatusOpen, nil)

	_, err := fx.svc.Submit(context.Background(), SubmitInput{
		TaskID:  task.ID,
		ActorID: uuid.New(),
		RepoURL: "https://git.example.com/fix",
	})
	expectCode(t, err, apperrors.CodeStateConflict)
}

func TestSubmitByNonAssigneeForbidden(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusClaimed, &assignee)

	_, err := fx.svc.Submit(context.Background(), SubmitInput{
		TaskID:  task.ID,
		ActorID: uuid.New(),
		RepoURL: "https://git.example.com/fix",
	})
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestSubmitWithPendingSubmissionConflicts(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusPending, &assignee)
	fx.seedPendingSubmission(task.ID, assignee)

	_, err := fx.svc.Submit(context.Background(), SubmitInput{
		TaskID:  task.ID,
		ActorID: assignee,
		RepoURL: "https://git.example.com/fix",
	})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestReviewApprovedCompletesAndSettles(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusSubmitted, &assignee)
	submission := fx.seedPendingSubmission(task.ID, assignee)

	outcome, err := fx.svc.Review(context.Background(), ReviewInput{
		TaskID: task.ID,
		Result: enums.ReviewResultApproved,
		Scores: []float64{4, 5},
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome.TaskStatus != enums.TaskStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", outcome.TaskStatus)
	}
	if outcome.Review.TotalScore != 4.5 {
		t.Fatalf("expected mean 4.5, got %v", outcome.Review.TotalScore)
	}
	if outcome.Review.ReviewerID != fx.initiatorID {
		t.Fatal("reviewer must default to the project initiator")
	}
	if fx.repo.submissions[submission.ID].Status != enums.SubmissionStatusApproved {
		t.Fatalf("expected APPROVED submission, got %s", fx.repo.submissions[submission.ID].Status)
	}

	if len(fx.settler.inputs) != 1 {
		t.Fatalf("expected one settlement, got %d", len(fx.settler.inputs))
	}
	settleInput := fx.settler.inputs[0]
	if settleInput.UserID != assignee || !settleInput.Amount.Equal(task.Budget) {
		t.Fatalf("unexpected settle input %+v", settleInput)
	}
	if settleInput.Mode != enums.ProjectModeCommunity || settleInput.Type != enums.SettlementTypeTaskComplete {
		t.Fatalf("unexpected settle input %+v", settleInput)
	}

	if len(fx.outbox.events) != 1 || fx.outbox.events[0].EventType != enums.EventTaskReviewed {
		t.Fatalf("expected a task.reviewed event, got %+v", fx.outbox.events)
	}
	if len(fx.notifier.inputs) != 1 || fx.notifier.inputs[0].UserID != assignee {
		t.Fatalf("expected the assignee to be notified, got %+v", fx.notifier.inputs)
	}
}

func TestReviewRevisionRequiredLoopsToPending(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusSubmitted, &assignee)
	submission := fx.seedPendingSubmission(task.ID, assignee)

	outcome, err := fx.svc.Review(context.Background(), ReviewInput{
		TaskID: task.ID,
		Result: enums.ReviewResultRevisionRequired,
		Scores: []float64{2},
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome.TaskStatus != enums.TaskStatusPending {
		t.Fatalf("expected PENDING, got %s", outcome.TaskStatus)
	}
	if fx.repo.submissions[submission.ID].Status != enums.SubmissionStatusRevisionRequested {
		t.Fatal("expected submission REVISION_REQUESTED")
	}
	if outcome.Settlement != nil || len(fx.settler.inputs) != 0 {
		t.Fatal("revision must not settle")
	}
}

func TestReviewRejectedIsTerminal(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusSubmitted, &assignee)
	fx.seedPendingSubmission(task.ID, assignee)

	outcome, err := fx.svc.Review(context.Background(), ReviewInput{
		TaskID: task.ID,
		Result: enums.ReviewResultRejected,
		Scores: []float64{1, 2},
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome.TaskStatus != enums.TaskStatusRejected {
		t.Fatalf("expected REJECTED, got %s", outcome.TaskStatus)
	}
	if len(fx.settler.inputs) != 0 {
		t.Fatal("rejection must not settle")
	}
}

func TestReviewEmptyScoresRejectedBeforeMutation(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusSubmitted, &assignee)
	fx.seedPendingSubmission(task.ID, assignee)

	_, err := fx.svc.Review(context.Background(), ReviewInput{
		TaskID: task.ID,
		Result: enums.ReviewResultApproved,
		Scores: nil,
	})
	expectCode(t, err, apperrors.CodeValidation)
	if fx.repo.tasks[task.ID].Status != enums.TaskStatusSubmitted {
		t.Fatal("validation failure must not mutate the task")
	}
	if len(fx.repo.reviews) != 0 {
		t.Fatal("validation failure must not record a review")
	}
}

func TestReviewWithoutPendingSubmission(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusSubmitted, &assignee)

	_, err := fx.svc.Review(context.Background(), ReviewInput{
		TaskID: task.ID,
		Result: enums.ReviewResultApproved,
		Scores: []float64{5},
	})
	expectCode(t, err, apperrors.CodeStateConflict)
}

func TestReviewByNonInitiatorForbidden(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusSubmitted, &assignee)
	fx.seedPendingSubmission(task.ID, assignee)

	_, err := fx.svc.Review(context.Background(), ReviewInput{
		TaskID:     task.ID,
		ReviewerID: uuid.New(),
		Result:     enums.ReviewResultApproved,
		Scores:     []float64{5},
	})
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestCancelClearsAssignee(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusClaimed, &assignee)

	cancelled, err := fx.svc.Cancel(context.Background(), task.ID, fx.initiatorID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != enums.TaskStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.AssigneeID != nil {
		t.Fatal("expected assignee cleared on cancel")
	}
}

func TestCancelTerminalTaskFails(t *testing.T) {
	fx := newFixture(t)
	assignee := uuid.New()
	task := fx.seedTask(enums.TaskStatusCompleted, &assignee)

	_, err := fx.svc.Cancel(context.Background(), task.ID, fx.initiatorID)
	expectCode(t, err, apperrors.CodeStateConflict)
}

func TestCreateTaskRequiresInitiator(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), CreateInput{
		ProjectID: fx.projectID,
		ActorID:   uuid.New(),
		Title:     "Stray task",
		Budget:    decimal.RequireFromString("10.00"),
	})
	expectCode(t, err, apperrors.CodeForbidden)

	task, err := fx.svc.Create(context.Background(), CreateInput{
		ProjectID: fx.projectID,
		ActorID:   fx.initiatorID,
		Title:     "Real task",
		Budget:    decimal.RequireFromString("10.00"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != enums.TaskStatusOpen {
		t.Fatalf("expected OPEN, got %s", task.Status)
	}
}
