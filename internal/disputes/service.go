package disputes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/taskforge/taskforge-backend/internal/credit"
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
	"github.com/taskforge/taskforge-backend/pkg/types"
)

// creditDeltas is the decision policy: how each arbitration outcome moves the
// initiator's and respondent's credit scores.
var creditDeltas = map[enums.DisputeDecision]struct{ Initiator, Respondent int }{
	enums.DisputeDecisionSustainInitiator:  {Initiator: 0, Respondent: -5},
	enums.DisputeDecisionOverturnInitiator: {Initiator: -5, Respondent: 10},
	enums.DisputeDecisionCompromise:        {Initiator: -3, Respondent: -3},
}

// Service runs the dispute lifecycle. Arbitration applies the refund, both
// credit adjustments and the CLOSED transition in one transaction; if any
// write fails the dispute stays arbitrable.
type Service interface {
	Open(ctx context.Context, input OpenInput) (*models.Dispute, error)
	Arbitrate(ctx context.Context, input ArbitrateInput) (*ArbitrationResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type taskFinder interface {
	FindTaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

type projectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

type ledgerService interface {
	PostTx(ctx context.Context, tx *gorm.DB, input ledger.PostInput) (*models.PointTransaction, error)
}

type creditService interface {
	AdjustTx(ctx context.Context, tx *gorm.DB, input credit.AdjustInput) (*models.UserCreditHistory, error)
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	tasks    taskFinder
	projects projectFinder
	ledger   ledgerService
	credit   creditService
	outbox   outboxEmitter
	runner   txRunner
	metrics  *metrics.DomainMetrics
}

// OpenInput describes a new dispute against a task outcome.
type OpenInput struct {
	TaskID       uuid.UUID
	InitiatorID  uuid.UUID
	Reason       string
	Evidence     *string
	EvidenceURLs []string
}

// ArbitrateInput records an arbitration decision.
type ArbitrateInput struct {
	DisputeID      uuid.UUID
	ArbitratorID   uuid.UUID
	Decision       enums.DisputeDecision
	DecisionReason string
	RefundAmount   *decimal.Decimal
	PenaltyAmount  *decimal.Decimal
}

// ArbitrationResult reports everything one arbitration applied.
type ArbitrationResult struct {
	Dispute          *models.Dispute           `json:"dispute"`
	InitiatorCredit  *models.UserCreditHistory `json:"initiatorCredit,omitempty"`
	RespondentCredit *models.UserCreditHistory `json:"respondentCredit,omitempty"`
	Refund           *models.PointTransaction  `json:"refund,omitempty"`
}

// ListParams filters and paginates dispute listings.
type ListParams struct {
	Status   *enums.DisputeStatus
	UserID   *uuid.UUID
	Page     int
	PageSize int
}

// ListResult wraps returned disputes and the page metadata.
type ListResult struct {
	Items []models.Dispute `json:"items"`
	Meta  pagination.Meta  `json:"meta"`
}

// ServiceParams collects the disputes service dependencies. Metrics may be nil.
type ServiceParams struct {
	Repo     Repository
	Tasks    taskFinder
	Projects projectFinder
	Ledger   ledgerService
	Credit   creditService
	Outbox   outboxEmitter
	Runner   txRunner
	Metrics  *metrics.DomainMetrics
}

// NewService wires the disputes service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("disputes repository required")
	}
	if params.Tasks == nil {
		return nil, fmt.Errorf("tasks repository required")
	}
	if params.Projects == nil {
		return nil, fmt.Errorf("projects repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Credit == nil {
		return nil, fmt.Errorf("credit service required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		tasks:    params.Tasks,
		projects: params.Projects,
		ledger:   params.Ledger,
		credit:   params.Credit,
		outbox:   params.Outbox,
		runner:   params.Runner,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) Open(ctx context.Context, input OpenInput) (*models.Dispute, error) {
	if input.TaskID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "task id required")
	}
	if input.InitiatorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "initiator id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "reason required")
	}

	task, err := s.tasks.FindTaskByID(ctx, input.TaskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "task not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find task")
	}
	if task.AssigneeID == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "task has no assignee to dispute")
	}

	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "project not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find project")
	}

	// The respondent is the other party on the same task.
	var respondent uuid.UUID
	switch input.InitiatorID {
	case *task.AssigneeID:
		respondent = project.InitiatorID
	case project.InitiatorID:
		respondent = *task.AssigneeID
	default:
		return nil, apperrors.New(apperrors.CodeForbidden, "only a task participant may open a dispute")
	}

	var dispute *models.Dispute
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindOpenByTask(ctx, input.TaskID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "check open dispute")
		}
		if existing != nil {
			return apperrors.New(apperrors.CodeConflict, "task already has an open dispute")
		}

		row := &models.Dispute{
			ID:           uuid.New(),
			TaskID:       input.TaskID,
			ProjectID:    task.ProjectID,
			InitiatorID:  input.InitiatorID,
			RespondentID: respondent,
			Reason:       reason,
			Evidence:     input.Evidence,
			EvidenceURLs: types.StringList(input.EvidenceURLs),
			Status:       enums.DisputeStatusOpen,
		}
		if err := repo.Create(ctx, row); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_disputes_task_open") {
				return apperrors.New(apperrors.CodeConflict, "task already has an open dispute")
			}
			return apperrors.Wrap(apperrors.CodeDependency, err, "create dispute")
		}
		dispute = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func (s *service) Arbitrate(ctx context.Context, input ArbitrateInput) (*ArbitrationResult, error) {
	if input.DisputeID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "dispute id required")
	}
	if !input.Decision.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid decision")
	}
	reason := strings.TrimSpace(input.DecisionReason)
	if reason == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "decision reason required")
	}
	var refund decimal.Decimal
	if input.RefundAmount != nil {
		refund = money.Round2(*input.RefundAmount)
		if refund.IsNegative() {
			return nil, apperrors.New(apperrors.CodeValidation, "refund amount must not be negative")
		}
	}

	var result *ArbitrationResult
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dispute, err := repo.FindByID(ctx, input.DisputeID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "dispute not found")
		}
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "find dispute")
		}
		if dispute.Status == enums.DisputeStatusClosed {
			return apperrors.New(apperrors.CodeConflict, "dispute already closed")
		}

		outcome := &ArbitrationResult{}

		if refund.IsPositive() {
			project, err := s.projects.FindByID(ctx, dispute.ProjectID)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeDependency, err, "find project")
			}
			taskID := dispute.TaskID
			posted, err := s.ledger.PostTx(ctx, tx, ledger.PostInput{
				UserID:      project.InitiatorID,
				Amount:      refund,
				Type:        enums.PointTransactionTypeRefund,
				Description: fmt.Sprintf("dispute refund: %s", reason),
				TaskID:      &taskID,
			})
			if err != nil {
				return err
			}
			outcome.Refund = posted
		}

		deltas := creditDeltas[input.Decision]
		description := fmt.Sprintf("arbitration %s", input.Decision)
		if deltas.Initiator != 0 {
			entry, err := s.credit.AdjustTx(ctx, tx, credit.AdjustInput{
				UserID:      dispute.InitiatorID,
				Change:      deltas.Initiator,
				SourceType:  enums.CreditSourceArbitration,
				Description: description,
			})
			if err != nil {
				return err
			}
			outcome.InitiatorCredit = entry
		}
		if deltas.Respondent != 0 {
			entry, err := s.credit.AdjustTx(ctx, tx, credit.AdjustInput{
				UserID:      dispute.RespondentID,
				Change:      deltas.Respondent,
				SourceType:  enums.CreditSourceArbitration,
				Description: description,
			})
			if err != nil {
				return err
			}
			outcome.RespondentCredit = entry
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":          enums.DisputeStatusClosed,
			"decision":        input.Decision,
			"decision_reason": reason,
			"arbitrated_at":   now,
			"closed_at":       now,
		}
		if input.ArbitratorID != uuid.Nil {
			updates["arbitrator_id"] = input.ArbitratorID
		}
		if input.RefundAmount != nil {
			updates["refund_amount"] = refund
		}
		if input.PenaltyAmount != nil {
			penalty := money.Round2(*input.PenaltyAmount)
			updates["penalty_amount"] = penalty
			dispute.PenaltyAmount = &penalty
		}
		ok, err := repo.Close(ctx, input.DisputeID, updates)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "close dispute")
		}
		if !ok {
			return apperrors.New(apperrors.CodeConflict, "dispute was closed concurrently")
		}

		payload := payloads.DisputeClosedEvent{
			DisputeID:    dispute.ID,
			TaskID:       dispute.TaskID,
			Decision:     input.Decision,
			InitiatorID:  dispute.InitiatorID,
			RespondentID: dispute.RespondentID,
		}
		if input.RefundAmount != nil {
			payload.RefundAmount = &refund
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventDisputeClosed,
			AggregateType: enums.AggregateDispute,
			AggregateID:   dispute.ID,
			Version:       1,
			OccurredAt:    now,
			Data:          payload,
		}
		if input.ArbitratorID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: input.ArbitratorID}
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "queue dispute event")
		}

		decision := input.Decision
		dispute.Status = enums.DisputeStatusClosed
		dispute.Decision = &decision
		dispute.DecisionReason = &reason
		dispute.ArbitratedAt = &now
		dispute.ClosedAt = &now
		if input.ArbitratorID != uuid.Nil {
			arbitrator := input.ArbitratorID
			dispute.ArbitratorID = &arbitrator
		}
		if input.RefundAmount != nil {
			dispute.RefundAmount = &refund
		}
		outcome.Dispute = dispute

		s.metrics.IncArbitration(string(input.Decision))
		result = outcome
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "dispute id required")
	}
	dispute, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "dispute not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "find dispute")
	}
	return dispute, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid dispute status filter")
	}
	normalized := pagination.Normalize(pagination.Params{Page: params.Page, PageSize: params.PageSize})
	filters := listDisputesParams{
		Status: params.Status,
		UserID: params.UserID,
		Limit:  normalized.PageSize,
		Offset: normalized.Offset(),
	}
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "count disputes")
	}
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list disputes")
	}
	return &ListResult{Items: rows, Meta: pagination.NewMeta(total, normalized)}, nil
}
