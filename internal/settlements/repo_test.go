package settlements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

func setupSettlementsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS settlements (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  task_id TEXT,
  amount NUMERIC NOT NULL,
  platform_fee NUMERIC NOT NULL,
  net_amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'POINT',
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  description TEXT,
  settled_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedSettlement(t *testing.T, db *gorm.DB, userID uuid.UUID, taskID *uuid.UUID, status enums.SettlementStatus) models.Settlement {
	t.Helper()
	now := time.Now().UTC()
	row := models.Settlement{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      taskID,
		Amount:      decimal.RequireFromString("100.00"),
		PlatformFee: decimal.RequireFromString("5.00"),
		NetAmount:   decimal.RequireFromString("95.00"),
		Currency:    "POINT",
		Type:        enums.SettlementTypeTaskComplete,
		Status:      status,
	}
	if status == enums.SettlementStatusCompleted {
		row.SettledAt = &now
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepository_FindCompleted(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	taskID := uuid.New()
	seedSettlement(t, db, userID, &taskID, enums.SettlementStatusPending)

	found, err := repo.FindCompleted(ctx, taskID, enums.SettlementTypeTaskComplete)
	require.NoError(t, err)
	assert.Nil(t, found, "pending settlements must not satisfy the completed check")

	completed := seedSettlement(t, db, userID, &taskID, enums.SettlementStatusCompleted)

	found, err = repo.FindCompleted(ctx, taskID, enums.SettlementTypeTaskComplete)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, completed.ID, found.ID)

	found, err = repo.FindCompleted(ctx, taskID, enums.SettlementTypeBonus)
	require.NoError(t, err)
	assert.Nil(t, found, "other settlement types must not match")
}

func TestRepository_FindByID(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedSettlement(t, db, uuid.New(), nil, enums.SettlementStatusCompleted)

	found, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, found.ID)
	assert.True(t, found.NetAmount.Equal(decimal.RequireFromString("95.00")))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListAndCount(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()
	taskID := uuid.New()
	for i := 0; i < 3; i++ {
		seedSettlement(t, db, userID, &taskID, enums.SettlementStatusCompleted)
	}
	seedSettlement(t, db, otherID, nil, enums.SettlementStatusCompleted)

	rows, err := repo.List(ctx, listSettlementsParams{UserID: &userID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	count, err := repo.Count(ctx, listSettlementsParams{UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	rows, err = repo.List(ctx, listSettlementsParams{TaskID: &taskID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	count, err = repo.Count(ctx, listSettlementsParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
