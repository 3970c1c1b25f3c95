package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/api/responses"
	"github.com/taskforge/taskforge-backend/api/validators"
	"github.com/taskforge/taskforge-backend/internal/disputes"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	pkgerrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/logger"
)

type openDisputeRequest struct {
	TaskID       uuid.UUID `json:"taskId" validate:"required"`
	Reason       string    `json:"reason" validate:"required"`
	Evidence     *string   `json:"evidence,omitempty"`
	EvidenceURLs []string  `json:"evidenceUrls,omitempty" validate:"omitempty,dive,url"`
}

type arbitrateRequest struct {
	Decision       string           `json:"decision" validate:"required"`
	DecisionReason string           `json:"decisionReason" validate:"required"`
	RefundAmount   *decimal.Decimal `json:"refundAmount,omitempty"`
	PenaltyAmount  *decimal.Decimal `json:"penaltyAmount,omitempty"`
}

// OpenDispute opens a dispute against a task outcome.
func OpenDispute(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body openDisputeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispute, err := svc.Open(r.Context(), disputes.OpenInput{
			TaskID:       body.TaskID,
			InitiatorID:  actor,
			Reason:       body.Reason,
			Evidence:     body.Evidence,
			EvidenceURLs: body.EvidenceURLs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dispute)
	}
}

// Arbitrate closes a dispute with a decision. Restricted to arbitrators at the route level.
func Arbitrate(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body arbitrateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseDisputeDecision(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		result, err := svc.Arbitrate(r.Context(), disputes.ArbitrateInput{
			DisputeID:      id,
			ArbitratorID:   actor,
			Decision:       decision,
			DecisionReason: body.DecisionReason,
			RefundAmount:   body.RefundAmount,
			PenaltyAmount:  body.PenaltyAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetDispute returns one dispute by id.
func GetDispute(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispute, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dispute)
	}
}

// ListDisputes returns paginated disputes with optional status/user filters.
func ListDisputes(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}

		page, pageSize, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := disputes.ListParams{Page: page, PageSize: pageSize}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseDisputeStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			params.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid userId"))
				return
			}
			params.UserID = &id
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
