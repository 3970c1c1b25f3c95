package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taskforge/taskforge-backend/api/middleware"
	"github.com/taskforge/taskforge-backend/api/responses"
	"github.com/taskforge/taskforge-backend/api/validators"
	"github.com/taskforge/taskforge-backend/internal/settlements"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	pkgerrors "github.com/taskforge/taskforge-backend/pkg/errors"
	"github.com/taskforge/taskforge-backend/pkg/logger"
	"github.com/taskforge/taskforge-backend/pkg/outbox"
)

type settleRequest struct {
	TaskID      *uuid.UUID      `json:"taskId,omitempty"`
	UserID      uuid.UUID       `json:"userId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required"`
	Mode        string          `json:"mode,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Settle runs a manual settlement. Restricted to admins at the route level.
func Settle(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body settleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settleType, err := enums.ParseSettlementType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}

		mode := enums.ProjectModeCommunity
		if raw := strings.TrimSpace(body.Mode); raw != "" {
			mode, err = enums.ParseProjectMode(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
				return
			}
		}

		settlement, err := svc.Settle(r.Context(), settlements.SettleInput{
			TaskID:      body.TaskID,
			UserID:      body.UserID,
			Amount:      body.Amount,
			Type:        settleType,
			Mode:        mode,
			Description: body.Description,
			Actor:       &outbox.ActorRef{UserID: actor, Role: middleware.RoleFromContext(r.Context())},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, settlement)
	}
}

// GetSettlement returns one settlement by id.
func GetSettlement(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settlement, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settlement)
	}
}

// ListSettlements returns paginated settlements with optional user/task filters.
func ListSettlements(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		page, pageSize, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := settlements.ListParams{Page: page, PageSize: pageSize}
		if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid userId"))
				return
			}
			params.UserID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("taskId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid taskId"))
				return
			}
			params.TaskID = &id
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
