package settlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/internal/ledger"
	dbpkg "github.com/taskforge/taskforge-backend/pkg/db"
	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	apperrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/metrics"
	"github.com/taskforge/taskforge-backend/pkg/money"
	"github.com/taskforge/taskforge-backend/pkg/outbox"
	"github.com/taskforge/taskforge-backend/pkg/outbox/payloads"
	"github.com/taskforge/taskforge-backend/pkg/pagination"
)

// Service settles payouts. A settlement deducts the platform fee, credits the
// net amount to the user's balance, and records the settlement row in one
// transaction. A task may carry at most one completed settlement per type, so
// a second settle for the same task fails instead of paying twice.
type Service interface {
	Settle(ctx context.Context, input SettleInput) (*models.Settlement, error)
	SettleTx(ctx context.Context, tx *gorm.DB, input SettleInput) (*models.Settlement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ledgerService interface {
	PostTx(ctx context.Context, tx *gorm.DB, input ledger.PostInput) (*models.PointTransaction, error)
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	users   userFinder
	ledger  ledgerService
	outbox  outboxEmitter
	runner  txRunner
	metrics *metrics.DomainMetrics
}

// SettleInput describes one payout to perform.
type SettleInput struct {
	TaskID      *uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Type        enums.SettlementType
	Mode        enums.ProjectMode
	Description string
	Actor       *outbox.ActorRef
}

// ListParams filters and paginates settlement listings.
type ListParams struct {
	UserID   *uuid.UUID
	TaskID   *uuid.UUID
	Page     int
	PageSize int
}

// ListResult wraps returned settlements and the page metadata.
type ListResult struct {
	Items []models.Settlement `json:"items"`
	Meta  pagination.Meta     `json:"meta"`
}

// ServiceParams collects the settlements service dependencies. Metrics may be nil.
type ServiceParams struct {
	Repo    Repository
	Users   userFinder
	Ledger  ledgerService
	Outbox  outboxEmitter
	Runner  txRunner
	Metrics *metrics.DomainMetrics
}

// NewService wires the settlements service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settlements repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    params.Repo,
		users:   params.Users,
		ledger:  params.Ledger,
		outbox:  params.Outbox,
		runner:  params.Runner,
		metrics: params.Metrics,
	}, nil
}

func (s *service) Settle(ctx context.Context, input SettleInput) (*models.Settlement, error) {
	var settlement *models.Settlement
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		settled, err := s.SettleTx(ctx, tx, input)
		if err != nil {
			return err
		}
		settlement = settled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// SettleTx performs a settlement inside the caller's transaction. The
// existence check runs inside the same transaction as the ledger post, and the
// partial unique index on completed settlements closes the remaining race.
func (s *service) SettleTx(ctx context.Context, tx *gorm.DB, input SettleInput) (*models.Settlement, error) {
	if tx == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "transaction required")
	}
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id required")
	}
	if !input.Type.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid settlement type")
	}
	amount := money.Round2(input.Amount)
	if !amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "amount must be positive")
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find user")
	}
	if user.Status != enums.UserStatusActive {
		return nil, apperrors.New(apperrors.CodeNotFound, "user is not active")
	}

	repo := s.repo.WithTx(tx)
	if input.TaskID != nil {
		existing, err := repo.FindCompleted(ctx, *input.TaskID, input.Type)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "check existing settlement")
		}
		if existing != nil {
			return nil, apperrors.New(apperrors.CodeConflict, "task already settled")
		}
	}

	fee, net := money.ComputeFee(amount, input.Mode)

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("%s settlement", input.Type)
	}
	if _, err := s.ledger.PostTx(ctx, tx, ledger.PostInput{
		UserID:      input.UserID,
		Amount:      net,
		Type:        input.Type.TransactionType(),
		Description: description,
		TaskID:      input.TaskID,
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	settlement := &models.Settlement{
		ID:          uuid.New(),
		UserID:      input.UserID,
		TaskID:      input.TaskID,
		Amount:      amount,
		PlatformFee: fee,
		NetAmount:   net,
		Currency:    "POINT",
		Type:        input.Type,
		Status:      enums.SettlementStatusCompleted,
		Description: &description,
		SettledAt:   &now,
	}
	if err := repo.Create(ctx, settlement); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_settlements_task_type_completed") {
			return nil, apperrors.New(apperrors.CodeConflict, "task already settled")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "create settlement")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventSettlementCompleted,
		AggregateType: enums.AggregateSettlement,
		AggregateID:   settlement.ID,
		Actor:         input.Actor,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.SettlementCompletedEvent{
			SettlementID: settlement.ID,
			TaskID:       settlement.TaskID,
			UserID:       settlement.UserID,
			Type:         settlement.Type,
			Amount:       settlement.Amount,
			PlatformFee:  settlement.PlatformFee,
			NetAmount:    settlement.NetAmount,
		},
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "queue settlement event")
	}

	s.metrics.IncSettlement(string(settlement.Type))
	return settlement, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "settlement id required")
	}
	settlement, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "settlement not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find settlement")
	}
	return settlement, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	normalized := pagination.Normalize(pagination.Params{Page: params.Page, PageSize: params.PageSize})
	filters := listSettlementsParams{
		UserID: params.UserID,
		TaskID: params.TaskID,
		Limit:  normalized.PageSize,
		Offset: normalized.Offset(),
	}
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "count settlements")
	}
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list settlements")
	}
	return &ListResult{Items: rows, Meta: pagination.NewMeta(total, normalized)}, nil
}
