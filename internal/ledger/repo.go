package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
)

// Repository manages persistence for point transactions and user balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetUserPoints(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	CompareAndSwapPoints(ctx context.Context, userID uuid.UUID, before, after decimal.Decimal) (bool, error)
	CreateTransaction(ctx context.Context, txn *models.PointTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.PointTransaction, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetUserPoints(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Points decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("points").
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Points, nil
}

// CompareAndSwapPoints updates the balance only when it still matches the
// value read earlier. A false return means another writer got there first.
func (r *repository) CompareAndSwapPoints(ctx context.Context, userID uuid.UUID, before, after decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND points = ?", userID, before).
		Update("points", after)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.PointTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.PointTransaction, error) {
	var rows []models.PointTransaction
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
		Model(&models.PointTransaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
