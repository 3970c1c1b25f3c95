package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/internal/ledger"
	"github.com/taskforge/taskforge-backend/pkg/db/models"
	pkgerrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/pagination"
)

type testLedgerService struct {
	balance    decimal.Decimal
	balanceErr error
	listedUser uuid.UUID
	listParams pagination.Params
}

func (t *testLedgerService) Post(ctx context.Context, input ledger.PostInput) (*models.PointTransaction, error) {
	return &models.PointTransaction{}, nil
}

func (t *testLedgerService) PostTx(ctx context.Context, tx *gorm.DB, input ledger.PostInput) (*models.PointTransaction, error) {
	return &models.PointTransaction{}, nil
}

func (t *testLedgerService) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if t.balanceErr != nil {
		return decimal.Zero, t.balanceErr
	}
	return t.balance, nil
}

func (t *testLedgerService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, pagination.Meta, error) {
	t.listedUser = userID
	t.listParams = params
	return []models.PointTransaction{{UserID: userID}}, pagination.NewMeta(1, pagination.Normalize(params)), nil
}

func TestGetUserPointsReturnsBalance(t *testing.T) {
	svc := &testLedgerService{balance: decimal.RequireFromString("42.50")}
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID.String()+"/points", nil)
	req = withURLParam(req, "id", userID.String())
	resp := httptest.NewRecorder()
	GetUserPoints(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Points decimal.Decimal `json:"points"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !envelope.Success || !envelope.Data.Points.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestGetUserPointsUnknownUser(t *testing.T) {
	svc := &testLedgerService{balanceErr: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID.String()+"/points", nil)
	req = withURLParam(req, "id", userID.String())
	resp := httptest.NewRecorder()
	GetUserPoints(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetUserPointsRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/nope/points", nil)
	req = withURLParam(req, "id", "nope")
	resp := httptest.NewRecorder()
	GetUserPoints(&testLedgerService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListUserPointTransactionsPropagatesPagination(t *testing.T) {
	svc := &testLedgerService{}
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+userID.String()+"/points/transactions?page=3&pageSize=25", nil)
	req = withURLParam(req, "id", userID.String())
	resp := httptest.NewRecorder()
	ListUserPointTransactions(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.listedUser != userID {
		t.Fatalf("listed wrong user: %s", svc.listedUser)
	}
	if svc.listParams.Page != 3 || svc.listParams.PageSize != 25 {
		t.Fatalf("unexpected pagination %+v", svc.listParams)
	}
}
