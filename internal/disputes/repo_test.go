package disputes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
)

func setupDisputesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS disputes (
  id TEXT PRIMARY KEY,
  task_id TEXT NOT NULL,
  project_id TEXT NOT NULL,
  initiator_id TEXT NOT NULL,
  respondent_id TEXT NOT NULL,
  reason TEXT NOT NULL,
  evidence TEXT,
  evidence_urls TEXT,
  status TEXT NOT NULL DEFAULT 'OPEN',
  decision TEXT,
  decision_reason TEXT,
  refund_amount NUMERIC,
  penalty_amount NUMERIC,
  arbitrator_id TEXT,
  arbitrated_at DATETIME,
  closed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_disputes_task_open
  ON disputes (task_id) WHERE status <> 'CLOSED';`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedDisputeRow(t *testing.T, db *gorm.DB, taskID uuid.UUID, status enums.DisputeStatus) models.Dispute {
	t.Helper()
	row := models.Dispute{
		ID:           uuid.New(),
		TaskID:       taskID,
		ProjectID:    uuid.New(),
		InitiatorID:  uuid.New(),
		RespondentID: uuid.New(),
		Reason:       "deliverable does not match the brief",
		Status:       status,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepository_FindOpenByTask(t *testing.T) {
	ctx := context.Background()
	db := setupDisputesTestDB(t)
	repo := NewRepository(db)
	taskID := uuid.New()

	found, err := repo.FindOpenByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Nil(t, found)

	seedDisputeRow(t, db, uuid.New(), enums.DisputeStatusOpen)
	seedDisputeRow(t, db, taskID, enums.DisputeStatusClosed)

	found, err = repo.FindOpenByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Nil(t, found, "closed dispute must not count as open")

	open := seedDisputeRow(t, db, taskID, enums.DisputeStatusOpen)
	found, err = repo.FindOpenByTask(ctx, taskID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, open.ID, found.ID)
}

func TestRepository_OpenDisputeUniquePerTask(t *testing.T) {
	db := setupDisputesTestDB(t)
	taskID := uuid.New()

	seedDisputeRow(t, db, taskID, enums.DisputeStatusOpen)

	dup := models.Dispute{
		ID:           uuid.New(),
		TaskID:       taskID,
		ProjectID:    uuid.New(),
		InitiatorID:  uuid.New(),
		RespondentID: uuid.New(),
		Reason:       "second complaint",
		Status:       enums.DisputeStatusOpen,
	}
	err := db.Create(&dup).Error
	require.Error(t, err, "second open dispute for the same task must violate the index")

	// A new dispute is allowed once the previous one is closed.
	require.NoError(t, db.Model(&models.Dispute{}).
		Where("task_id = ?", taskID).
		Update("status", enums.DisputeStatusClosed).Error)
	require.NoError(t, db.Create(&dup).Error)
}

func TestRepository_CloseGuardsStatus(t *testing.T) {
	ctx := context.Background()
	db := setupDisputesTestDB(t)
	repo := NewRepository(db)

	row := seedDisputeRow(t, db, uuid.New(), enums.DisputeStatusArbitrating)

	ok, err := repo.Close(ctx, row.ID, map[string]any{
		"status":          enums.DisputeStatusClosed,
		"decision":        enums.DisputeDecisionCompromise,
		"decision_reason": "both sides share responsibility",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusClosed, reloaded.Status)
	require.NotNil(t, reloaded.Decision)
	assert.Equal(t, enums.DisputeDecisionCompromise, *reloaded.Decision)

	// Already closed, the guarded update affects no rows.
	ok, err = repo.Close(ctx, row.ID, map[string]any{
		"status":   enums.DisputeStatusClosed,
		"decision": enums.DisputeDecisionSustainInitiator,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err = repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeDecisionCompromise, *reloaded.Decision)
}

func TestRepository_ListAndCountFilters(t *testing.T) {
	ctx := context.Background()
	db := setupDisputesTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	asInitiator := models.Dispute{
		ID:           uuid.New(),
		TaskID:       uuid.New(),
		ProjectID:    uuid.New(),
		InitiatorID:  userID,
		RespondentID: uuid.New(),
		Reason:       "late delivery",
		Status:       enums.DisputeStatusOpen,
	}
	require.NoError(t, db.Create(&asInitiator).Error)
	asRespondent := models.Dispute{
		ID:           uuid.New(),
		TaskID:       uuid.New(),
		ProjectID:    uuid.New(),
		InitiatorID:  uuid.New(),
		RespondentID: userID,
		Reason:       "scope disagreement",
		Status:       enums.DisputeStatusClosed,
	}
	require.NoError(t, db.Create(&asRespondent).Error)
	seedDisputeRow(t, db, uuid.New(), enums.DisputeStatusOpen)

	rows, err := repo.List(ctx, listDisputesParams{UserID: &userID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2, "user filter matches either side of the dispute")

	open := enums.DisputeStatusOpen
	rows, err = repo.List(ctx, listDisputesParams{UserID: &userID, Status: &open, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, asInitiator.ID, rows[0].ID)

	total, err := repo.Count(ctx, listDisputesParams{Status: &open})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
