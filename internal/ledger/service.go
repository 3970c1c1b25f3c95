package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/money"
	"github.com/taskforge/taskforge-backend/pkg/pagination"
)

// casMaxAttempts bounds the balance compare-and-swap retry loop.
const casMaxAttempts = 5

// Service posts balance changes and serves transaction history. Every post
// writes the balance update and the transaction row atomically.
type Service interface {
	Post(ctx context.Context, input PostInput) (*models.PointTransaction, error)
	PostTx(ctx context.Context, tx *gorm.DB, input PostInput) (*models.PointTransaction, error)
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, pagination.Meta, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	runner txRunner
}

// PostInput captures one balance change to record. AllowNegative lets a
// debit take the balance below zero; without it such posts are refused.
type PostInput struct {
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Type          enums.PointTransactionType
	Description   string
	TaskID        *uuid.UUID
	AllowNegative bool
}

// NewService wires a ledger service with the provided repository and runner.
func NewService(repo Repository, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Post(ctx context.Context, input PostInput) (*models.PointTransaction, error) {
	var txn *models.PointTransaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		posted, err := s.PostTx(ctx, tx, input)
		if err != nil {
			return err
		}
		txn = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// PostTx records a balance change inside the caller's transaction. The update
// uses compare-and-swap so two concurrent writers can never both apply against
// the same starting balance.
func (s *service) PostTx(ctx context.Context, tx *gorm.DB, input PostInput) (*models.PointTransaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if !input.Type.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if input.Amount.IsZero() {
		return nil, apperrors.New(apperrors.CodeValidation, "amount must be non-zero")
	}

	amount := money.Round2(input.Amount)
	repo := s.repo.WithTx(tx)

	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		before, err := repo.GetUserPoints(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
			}
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "reading balance")
		}

		after := before.Add(amount)
		if amount.IsNegative() && after.IsNegative() && !input.AllowNegative {
			return nil, apperrors.New(apperrors.CodeInsufficient, "balance would go negative").
				WithDetails(map[string]string{
					"balance": before.StringFixed(2),
					"amount":  amount.StringFixed(2),
				})
		}

		swapped, err := repo.CompareAndSwapPoints(ctx, input.UserID, before, after)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "updating balance")
		}
		if !swapped {
			continue
		}

		txn := &models.PointTransaction{
			UserID:        input.UserID,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Type:          input.Type,
			Description:   input.Description,
			TaskID:        input.TaskID,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "recording transaction")
		}
		return txn, nil
	}

	return nil, apperrors.New(apperrors.CodeConflict, "balance update contention, retry")
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if userID == uuid.Nil {
		return decimal.Zero, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	points, err := s.repo.GetUserPoints(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return decimal.Zero, apperrors.Wrap(apperrors.CodeDependency, err, "reading balance")
	}
	return points, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, pagination.Meta, error) {
	if userID == uuid.Nil {
		return nil, pagination.Meta{}, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if _, err := s.repo.GetUserPoints(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pagination.Meta{}, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeDependency, err, "reading balance")
	}
	normalized := pagination.Normalize(params)
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeDependency, err, "counting transactions")
	}
	rows, err := s.repo.ListByUser(ctx, userID, normalized.PageSize, normalized.Offset())
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeDependency, err, "listing transactions")
	}
	return rows, pagination.NewMeta(total, normalized), nil
}
