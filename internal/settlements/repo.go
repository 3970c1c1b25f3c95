package settlements

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Repository manages persistence for settlement rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, settlement *models.Settlement) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	FindCompleted(ctx context.Context, taskID uuid.UUID, settlementType enums.SettlementType) (*models.Settlement, error)
	List(ctx context.Context, params listSettlementsParams) ([]models.Settlement, error)
	Count(ctx context.Context, params listSettlementsParams) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlements repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listSettlementsParams struct {
	UserID *uuid.UUID
	TaskID *uuid.UUID
	Limit  int
	Offset int
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, settlement *models.Settlement) error {
	return r.db.WithContext(ctx).Create(settlement).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	var row models.Settlement
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindCompleted returns the completed settlement of the given type for a task,
// or nil when none exists. The partial unique index guarantees at most one.
func (r *repository) FindCompleted(ctx context.Context, taskID uuid.UUID, settlementType enums.SettlementType) (*models.Settlement, error) {
	var row models.Settlement
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND type = ? AND status = ?", taskID, settlementType, enums.SettlementStatusCompleted).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, params listSettlementsParams) ([]models.Settlement, error) {
	var rows []models.Settlement
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

func (r *repository) Count(ctx context.Context, params listSettlementsParams) (int64, error) {
	var count int64
	err := r.applyFilters(ctx, params).Count(&count).Error
	return count, err
}

func (r *repository) applyFilters(ctx context.Context, params listSettlementsParams) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Settlement{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.TaskID != nil {
		query = query.Where("task_id = ?", *params.TaskID)
	}
	return query
}
