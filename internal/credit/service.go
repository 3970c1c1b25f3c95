package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/pagination"
)

const casMaxAttempts = 5

// Floor and ceiling for credit scores. Adjustments clamp instead of failing.
const (
	MinScore = 0
	MaxScore = 200
)

// Service applies credit score changes and keeps the audit history in step.
type Service interface {
	Adjust(ctx context.Context, input AdjustInput) (*models.UserCreditHistory, error)
	AdjustTx(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.UserCreditHistory, error)
	History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.UserCreditHistory, pagination.Meta, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	runner txRunner
}

// AdjustInput captures one credit score change.
type AdjustInput struct {
	UserID      uuid.UUID
	Change      int
	SourceType  enums.CreditSourceType
	Description string
}

// NewService wires a credit service with the provided repository and runner.
func NewService(repo Repository, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("credit repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.UserCreditHistory, error) {
	var entry *models.UserCreditHistory
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		adjusted, err := s.AdjustTx(ctx, tx, input)
		if err != nil {
			return err
		}
		entry = adjusted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AdjustTx applies a score change inside the caller's transaction. The history
// row always records the score that was actually read, never an assumed value.
func (s *service) AdjustTx(ctx context.Context, tx *gorm.DB, input AdjustInput) (*models.UserCreditHistory, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if !input.SourceType.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid credit source %q", input.SourceType))
	}
	if input.Change == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "change must be non-zero")
	}

	repo := s.repo.WithTx(tx)

	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		before, err := repo.GetCreditScore(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
			}
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "reading credit score")
		}

		after := clampScore(before + input.Change)

		swapped, err := repo.CompareAndSwapScore(ctx, input.UserID, before, after)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "updating credit score")
		}
		if !swapped {
			continue
		}

		entry := &models.UserCreditHistory{
			UserID:        input.UserID,
			Change:        after - before,
			PreviousScore: before,
			NewScore:      after,
			SourceType:    input.SourceType,
			Description:   input.Description,
		}
		if err := repo.CreateHistory(ctx, entry); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "recording credit history")
		}
		return entry, nil
	}

	return nil, apperrors.New(apperrors.CodeConflict, "credit score contention, retry")
}

func (s *service) History(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.UserCreditHistory, pagination.Meta, error) {
	if userID == uuid.Nil {
		return nil, pagination.Meta{}, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	normalized := pagination.Normalize(params)
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeDependency, err, "counting history")
	}
	rows, err := s.repo.ListByUser(ctx, userID, normalized.PageSize, normalized.Offset())
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeDependency, err, "listing history")
	}
	return rows, pagination.NewMeta(total, normalized), nil
}

func clampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
