package enums

// SubmissionStatus maps to the submission_status enum in Postgres.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted         SubmissionStatus = "SUBMITTED"
	SubmissionStatusApproved          SubmissionStatus = "APPROVED"
	SubmissionStatusRejected          SubmissionStatus = "REJECTED"
	SubmissionStatusRevisionRequested SubmissionStatus = "REVISION_REQUESTED"
)

// IsValid reports whether the value matches the canonical submission status enum.
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusApproved, SubmissionStatusRejected, SubmissionStatusRevisionRequested:
		return true
	default:
		return false
	}
}
