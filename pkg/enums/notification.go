package enums

// NotificationType labels user-facing notification rows.
type NotificationType string

const (
	NotificationSettlementCompleted NotificationType = "SETTLEMENT_COMPLETED"
	NotificationDisputeClosed       NotificationType = "DISPUTE_CLOSED"
	NotificationTaskReviewed        NotificationType = "TASK_REVIEWED"
	NotificationTaskClaimed         NotificationType = "TASK_CLAIMED"
)

// IsValid reports whether the value matches the canonical notification enum.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationSettlementCompleted, NotificationDisputeClosed, NotificationTaskReviewed, NotificationTaskClaimed:
		return true
	default:
		return false
	}
}
