package credit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
)

// Repository manages persistence for credit scores and their history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetCreditScore(ctx context.Context, userID uuid.UUID) (int, error)
	CompareAndSwapScore(ctx context.Context, userID uuid.UUID, before, after int) (bool, error)
	CreateHistory(ctx context.Context, entry *models.UserCreditHistory) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserCreditHistory, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a credit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetCreditScore(ctx context.Context, userID uuid.UUID) (int, error) {
	var row struct {
		CreditScore int
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("credit_score").
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		return 0, err
	}
	return row.CreditScore, nil
}

func (r *repository) CompareAndSwapScore(ctx context.Context, userID uuid.UUID, before, after int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND credit_score = ?", userID, before).
		Update("credit_score", after)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateHistory(ctx context.Context, entry *models.UserCreditHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserCreditHistory, error) {
	var rows []models.UserCreditHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserCreditHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
