package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/internal/repo"
	"github.com/taskforge/taskforge-backend/pkg/db/models"
)

// Repository manages persistence for projects.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params listProjectsParams) ([]models.Project, error)
	Count(ctx context.Context, params listProjectsParams) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a projects repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

type listProjectsParams struct {
	InitiatorID *uuid.UUID
	Limit       int
	Offset      int
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.DB(ctx).Create(project).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var row models.Project
	if err := r.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, params listProjectsParams) ([]models.Project, error) {
	var rows []models.Project
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

func (r *repository) Count(ctx context.Context, params listProjectsParams) (int64, error) {
	var count int64
	err := r.applyFilters(ctx, params).Count(&count).Error
	return count, err
}

func (r *repository) applyFilters(ctx context.Context, params listProjectsParams) *gorm.DB {
	query := r.DB(ctx).Model(&models.Project{})
	if params.InitiatorID != nil {
		query = query.Where("initiator_id = ?", *params.InitiatorID)
	}
	return query
}
