package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
)

type fakeRepo struct {
	rows []models.Project
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, project *models.Project) error {
	f.rows = append(f.rows, *project)
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) List(ctx context.Context, params listProjectsParams) ([]models.Project, error) {
	return f.rows, nil
}

func (f *fakeRepo) Count(ctx context.Context, params listProjectsParams) (int64, error) {
	return int64(len(f.rows)), nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func TestCreateDefaultsToCommunityMode(t *testing.T) {
	svc, repo := newTestService(t)

	project, err := svc.Create(context.Background(), CreateInput{
		Title:       "  Data pipeline cleanup  ",
		InitiatorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if project.Mode != enums.ProjectModeCommunity {
		t.Fatalf("expected COMMUNITY default, got %s", project.Mode)
	}
	if project.Title != "Data pipeline cleanup" {
		t.Fatalf("expected trimmed title, got %q", project.Title)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one project, got %d", len(repo.rows))
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []CreateInput{
		{InitiatorID: uuid.New()},
		{Title: "   ", InitiatorID: uuid.New()},
		{Title: "ok"},
		{Title: "ok", InitiatorID: uuid.New(), Mode: enums.ProjectMode("BOGUS")},
	}
	for _, input := range cases {
		_, err := svc.Create(context.Background(), input)
		typed := apperrors.As(err)
		if typed == nil || typed.Code() != apperrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
