package disputes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

// Repository manages persistence for disputes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dispute *models.Dispute) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	FindOpenByTask(ctx context.Context, taskID uuid.UUID) (*models.Dispute, error)
	Close(ctx context.Context, disputeID uuid.UUID, updates map[string]any) (bool, error)
	List(ctx context.Context, params listDisputesParams) ([]models.Dispute, error)
	Count(ctx context.Context, params listDisputesParams) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a disputes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listDisputesParams struct {
	Status *enums.DisputeStatus
	UserID *uuid.UUID
	Limit  int
	Offset int
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, dispute *models.Dispute) error {
	return r.db.WithContext(ctx).Create(dispute).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var row models.Dispute
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindOpenByTask returns the task's non-closed dispute, or nil when there is
// none. The partial unique index guarantees at most one.
func (r *repository) FindOpenByTask(ctx context.Context, taskID uuid.UUID) (*models.Dispute, error) {
	var row models.Dispute
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND status <> ?", taskID, enums.DisputeStatusClosed).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Close moves a dispute to CLOSED, guarded on it still being arbitrable. A
// false return means the dispute was closed by another writer.
func (r *repository) Close(ctx context.Context, disputeID uuid.UUID, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("id = ? AND status IN ?", disputeID, []enums.DisputeStatus{
			enums.DisputeStatusOpen,
			enums.DisputeStatusArbitrating,
		}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) List(ctx context.Context, params listDisputesParams) ([]models.Dispute, error) {
	var rows []models.Dispute
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

func (r *repository) Count(ctx context.Context, params listDisputesParams) (int64, error) {
	var count int64
	err := r.applyFilters(ctx, params).Count(&count).Error
	return count, err
}

func (r *repository) applyFilters(ctx context.Context, params listDisputesParams) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Dispute{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.UserID != nil {
		query = query.Where("initiator_id = ? OR respondent_id = ?", *params.UserID, *params.UserID)
	}
	return query
}
