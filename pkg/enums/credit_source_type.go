package enums

// CreditSourceType records what kind of event produced a credit adjustment.
type CreditSourceType string

const (
	CreditSourceArbitration CreditSourceType = "ARBITRATION"
	CreditSourceTask        CreditSourceType = "TASK"
	CreditSourceAdjustment  CreditSourceType = "ADJUSTMENT"
)

// IsValid reports whether the value matches the canonical credit source enum.
func (t CreditSourceType) IsValid() bool {
	switch t {
	case CreditSourceArbitration, CreditSourceTask, CreditSourceAdjustment:
		return true
	default:
		return false
	}
}
