package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/taskforge/taskforge-backend/pkg/db/models"
	"github.com/taskforge/taskforge-backend/pkg/enums"
	"github.com/taskforge/taskforge-backend/pkg/logger"
	"github.com/taskforge/taskforge-backend/pkg/outbox"
	"github.com/taskforge/taskforge-backend/pkg/outbox/idempotency"
)

const domainNotificationConsumer = "domain-notifications"

type consumerRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches the domain topic and fans settlement and dispute events
// out into user notifications.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a domain notification consumer.
func NewConsumer(repo consumerRepository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	switch eventType {
	case enums.EventSettlementCompleted, enums.EventDisputeClosed:
	default:
		// Task review notifications are written in the same transaction as
		// the review itself, so those events are acked without work here.
		c.logg.Info(logCtx, "event type not handled")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventSettlementCompleted:
		return c.handleSettlementCompleted(ctx, data, logCtx)
	case enums.EventDisputeClosed:
		return c.handleDisputeClosed(ctx, data, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) handleSettlementCompleted(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload settlementCompletedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse settlement payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("settlement payload missing user id")
	}
	notification := &models.Notification{
		UserID: payload.UserID,
		Type:   enums.NotificationSettlementCompleted,
		Title:  "Settlement completed",
		Body: fmt.Sprintf("You received %s points (%s gross, %s platform fee).",
			payload.NetAmount, payload.Amount, payload.PlatformFee),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"settlement_id": payload.SettlementID.String(),
		"user_id":       payload.UserID.String(),
	}), "settlement notification created")
	return nil
}

func (c *Consumer) handleDisputeClosed(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload disputeClosedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse dispute payload: %w", err)
	}
	if payload.InitiatorID == uuid.Nil || payload.RespondentID == uuid.Nil {
		return fmt.Errorf("dispute payload missing party ids")
	}
	body := fmt.Sprintf("Dispute on task %s closed with decision %s.", payload.TaskID, payload.Decision)
	for _, userID := range []uuid.UUID{payload.InitiatorID, payload.RespondentID} {
		notification := &models.Notification{
			UserID: userID,
			Type:   enums.NotificationDisputeClosed,
			Title:  "Dispute closed",
			Body:   body,
		}
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
	}
	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"dispute_id": payload.DisputeID.String(),
		"decision":   string(payload.Decision),
	}), "dispute notifications created")
	return nil
}

type settlementCompletedPayload struct {
	SettlementID uuid.UUID `json:"settlementId"`
	UserID       uuid.UUID `json:"userId"`
	Amount       string    `json:"amount"`
	PlatformFee  string    `json:"platformFee"`
	NetAmount    string    `json:"netAmount"`
}

type disputeClosedPayload struct {
	DisputeID    uuid.UUID             `json:"disputeId"`
	TaskID       uuid.UUID             `json:"taskId"`
	Decision     enums.DisputeDecision `json:"decision"`
	InitiatorID  uuid.UUID             `json:"initiatorId"`
	RespondentID uuid.UUID             `json:"respondentId"`
}
