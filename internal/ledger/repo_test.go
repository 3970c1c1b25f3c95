package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'PARTICIPANT',
  status TEXT NOT NULL DEFAULT 'ACTIVE',
  points NUMERIC NOT NULL DEFAULT 0,
  credit_score INTEGER NOT NULL DEFAULT 100,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
CREATE TABLE IF NOT EXISTS point_transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  balance_before NUMERIC NOT NULL,
  balance_after NUMERIC NOT NULL,
  type TEXT NOT NULL,
  description TEXT,
  task_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func seedLedgerUser(t *testing.T, db *gorm.DB, points string) uuid.UUID {
	t.Helper()
	user := models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		Name:         "Ledger User",
		PasswordHash: "x",
		Points:       decimal.RequireFromString(points),
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestRepository_CompareAndSwapPoints(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := seedLedgerUser(t, db, "100.00")

	before, err := repo.GetUserPoints(ctx, userID)
	require.NoError(t, err)
	assert.True(t, before.Equal(decimal.RequireFromString("100.00")))

	swapped, err := repo.CompareAndSwapPoints(ctx, userID, before, decimal.RequireFromString("150.00"))
	require.NoError(t, err)
	assert.True(t, swapped)

	stale, err := repo.CompareAndSwapPoints(ctx, userID, before, decimal.RequireFromString("999.00"))
	require.NoError(t, err)
	assert.False(t, stale, "swap against a stale balance must fail")

	current, err := repo.GetUserPoints(ctx, userID)
	require.NoError(t, err)
	assert.True(t, current.Equal(decimal.RequireFromString("150.00")))
}

func TestRepository_GetUserPointsMissing(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetUserPoints(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListAndCountByUser(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := seedLedgerUser(t, db, "0.00")
	other := seedLedgerUser(t, db, "0.00")

	for i := 0; i < 3; i++ {
		txn := &models.PointTransaction{
			ID:            uuid.New(),
			UserID:        userID,
			Amount:        decimal.RequireFromString("10.00"),
			BalanceBefore: decimal.NewFromInt(int64(i * 10)),
			BalanceAfter:  decimal.NewFromInt(int64((i + 1) * 10)),
			Type:          enums.PointTransactionTypeBonus,
		}
		require.NoError(t, repo.CreateTransaction(ctx, txn))
	}
	require.NoError(t, repo.CreateTransaction(ctx, &models.PointTransaction{
		ID:     uuid.New(),
		UserID: other,
		Amount: decimal.RequireFromString("1.00"),
		Type:   enums.PointTransactionTypeBonus,
	}))

	count, err := repo.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	rows, err := repo.ListByUser(ctx, userID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rest, err := repo.ListByUser(ctx, userID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
