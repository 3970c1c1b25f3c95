package enums

import "fmt"

// DisputeDecision is the arbitration outcome recorded on a closed dispute.
type DisputeDecision string

const (
	DisputeDecisionSustainInitiator  DisputeDecision = "SUSTAIN_INITIATOR"
	DisputeDecisionOverturnInitiator DisputeDecision = "OVERTURN_INITIATOR"
	DisputeDecisionCompromise        DisputeDecision = "COMPROMISE"
)

var validDisputeDecisions = []DisputeDecision{
	DisputeDecisionSustainInitiator,
	DisputeDecisionOverturnInitiator,
	DisputeDecisionCompromise,
}

// IsValid reports whether the value matches the canonical dispute decision enum.
func (d DisputeDecision) IsValid() bool {
	for _, candidate := range validDisputeDecisions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisputeDecision converts raw input into DisputeDecision.
func ParseDisputeDecision(value string) (DisputeDecision, error) {
	for _, candidate := range validDisputeDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispute decision %q", value)
}
