package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/taskforge/taskforge-backend/internal/tasks"
	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

type testTasksService struct {
	claimFn  func(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error)
	reviewFn func(ctx context.Context, input tasks.ReviewInput) (*tasks.ReviewOutcome, error)
	submitFn func(ctx context.Context, input tasks.SubmitInput) (*models.Submission, error)
}

func (s *testTasksService) Create(ctx context.Context, input tasks.CreateInput) (*models.Task, error) {
	return &models.Task{}, nil
}

func (s *testTasksService) Get(ctx context.Context, id uuid.UUID) (*tasks.TaskDetail, error) {
	return &tasks.TaskDetail{}, nil
}

func (s *testTasksService) List(ctx context.Context, params tasks.ListParams) (*tasks.ListResult, error) {
	return &tasks.ListResult{}, nil
}

func (s *testTasksService) Claim(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	if s.claimFn != nil {
		return s.claimFn(ctx, taskID, userID)
	}
	return &models.Task{}, nil
}

func (s *testTasksService) Submit(ctx context.Context, input tasks.SubmitInput) (*models.Submission, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, input)
	}
	return &models.Submission{}, nil
}

func (s *testTasksService) Review(ctx context.Context, input tasks.ReviewInput) (*tasks.ReviewOutcome, error) {
	if s.reviewFn != nil {
		return s.reviewFn(ctx, input)
	}
	return &tasks.ReviewOutcome{}, nil
}

func (s *testTasksService) Cancel(ctx context.Context, taskID, actorID uuid.UUID) (*models.Task, error) {
	return &models.Task{}, nil
}

func TestClaimTaskPassesActor(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()
	svc := &testTasksService{
		claimFn: func(ctx context.Context, tid, uid uuid.UUID) (*models.Task, error) {
			if tid != taskID {
				t.Fatalf("unexpected task %s", tid)
			}
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return &models.Task{ID: tid, Status: enums.TaskStatusClaimed}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/claim", nil)
	req = requestWithActor(req, userID)
	req = withURLParam(req, "id", taskID.String())

	resp := httptest.NewRecorder()
	ClaimTask(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestReviewTaskParsesDecision(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()
	var got tasks.ReviewInput
	svc := &testTasksService{
		reviewFn: func(ctx context.Context, input tasks.ReviewInput) (*tasks.ReviewOutcome, error) {
			got = input
			return &tasks.ReviewOutcome{TaskStatus: enums.TaskStatusCompleted}, nil
		},
	}

	body := `{"result":"APPROVED","scores":[4,5],"comment":"solid work"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/review", strings.NewReader(body))
	req = requestWithActor(req, userID)
	req = withURLParam(req, "id", taskID.String())

	resp := httptest.NewRecorder()
	ReviewTask(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Result != enums.ReviewResultApproved {
		t.Fatalf("unexpected result %s", got.Result)
	}
	if got.ReviewerID != userID {
		t.Fatalf("unexpected reviewer %s", got.ReviewerID)
	}
	if len(got.Scores) != 2 {
		t.Fatalf("unexpected scores %v", got.Scores)
	}
}

func TestReviewTaskRejectsUnknownDecision(t *testing.T) {
	svc := &testTasksService{
		reviewFn: func(ctx context.Context, input tasks.ReviewInput) (*tasks.ReviewOutcome, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	taskID := uuid.New()
	body := `{"result":"MAYBE","scores":[4]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/review", strings.NewReader(body))
	req = requestWithActor(req, uuid.New())
	req = withURLParam(req, "id", taskID.String())

	resp := httptest.NewRecorder()
	ReviewTask(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmitTaskRequiresRepoURL(t *testing.T) {
	svc := &testTasksService{
		submitFn: func(ctx context.Context, input tasks.SubmitInput) (*models.Submission, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	taskID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/submit", strings.NewReader(`{}`))
	req = requestWithActor(req, uuid.New())
	req = withURLParam(req, "id", taskID.String())

	resp := httptest.NewRecorder()
	SubmitTask(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
