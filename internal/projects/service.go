package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/pagination"
)

// Service manages the project containers tasks belong to.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// CreateInput describes a new project.
type CreateInput struct {
	Title       string
	Description string
	InitiatorID uuid.UUID
	Mode        enums.ProjectMode
}

// ListParams filters and paginates project listings.
type ListParams struct {
	InitiatorID *uuid.UUID
	Page        int
	PageSize    int
}

// ListResult wraps returned projects and the page metadata.
type ListResult struct {
	Items []models.Project `json:"items"`
	Meta  pagination.Meta  `json:"meta"`
}

// NewService wires the projects service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "title required")
	}
	if input.InitiatorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "initiator id required")
	}
	mode := input.Mode
	if mode == "" {
		mode = enums.ProjectModeCommunity
	}
	if !mode.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid project mode")
	}

	project := &models.Project{
		ID:          uuid.New(),
		Title:       title,
		Description: input.Description,
		InitiatorID: input.InitiatorID,
		Mode:        mode,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create project")
	}
	return project, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "project not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find project")
	}
	return project, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	normalized := pagination.Normalize(pagination.Params{Page: params.Page, PageSize: params.PageSize})
	filters := listProjectsParams{
		InitiatorID: params.InitiatorID,
		Limit:       normalized.PageSize,
		Offset:      normalized.Offset(),
	}
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "count projects")
	}
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list projects")
	}
	return &ListResult{Items: rows, Meta: pagination.NewMeta(total, normalized)}, nil
}
