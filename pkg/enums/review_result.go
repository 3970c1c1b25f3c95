package enums

import "fmt"

// ReviewResult is the decision a reviewer records against a submission.
type ReviewResult string

const (
	ReviewResultApproved         ReviewResult = "APPROVED"
	ReviewResultRejected         ReviewResult = "REJECTED"
	ReviewResultRevisionRequired ReviewResult = "REVISION_REQUIRED"
)

var validReviewResults = []ReviewResult{
	ReviewResultApproved,
	ReviewResultRejected,
	ReviewResultRevisionRequired,
}

// IsValid reports whether the value matches the canonical review result enum.
func (r ReviewResult) IsValid() bool {
	for _, candidate := range validReviewResults {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReviewResult converts raw input into ReviewResult.
func ParseReviewResult(value string) (ReviewResult, error) {
	for _, candidate := range validReviewResults {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review result %q", value)
}
