package enums

// OutboxEventType identifies a domain event queued for publication.
type OutboxEventType string

const (
	EventSettlementCompleted OutboxEventType = "settlement.completed"
	EventDisputeClosed       OutboxEventType = "dispute.closed"
	EventTaskReviewed        OutboxEventType = "task.reviewed"
)

// IsValid reports whether the value matches a published event type.
func (t OutboxEventType) IsValid() bool {
	switch t {
	case EventSettlementCompleted, EventDisputeClosed, EventTaskReviewed:
		return true
	default:
		return false
	}
}

// OutboxAggregateType identifies which aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateSettlement OutboxAggregateType = "settlement"
	AggregateDispute    OutboxAggregateType = "dispute"
	AggregateTask       OutboxAggregateType = "task"
)
