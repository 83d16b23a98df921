package models

// FeedbackRequestStatus labels one point in the request lifecycle.
type FeedbackRequestStatus string

const (
	StatusRejected        FeedbackRequestStatus = "Rejected"
	StatusExpired         FeedbackRequestStatus = "Expired"
	StatusFinalized       FeedbackRequestStatus = "Finalized"
	StatusWaitingAnswers  FeedbackRequestStatus = "Waiting Answers"
	StatusPendingApproval FeedbackRequestStatus = "Pending Approval"
	StatusInCreation      FeedbackRequestStatus = "In Creation"
)

// Per-appraiser submission labels used by the form projection.
const (
	AppraiserStatusNotSent     = "Not Sent"
	AppraiserStatusAnswered    = "Answered"
	AppraiserStatusNotAnswered = "Not Answered"
)

// DeriveStatus computes the lifecycle status from a snapshot of the
// aggregate. Precedence is fixed: rejection and expiration dominate
// regardless of approval, and "Finalized" requires at least one answer.
// Nothing is ever stored; callers recompute on every read.
func DeriveStatus(fr *FeedbackRequest) FeedbackRequestStatus {
	switch {
	case fr.IsRejected():
		return StatusRejected
	case fr.IsExpired():
		return StatusExpired
	case fr.IsApproved():
		if len(fr.Answers) > 0 && fr.HasAllAppraisersAnswered() {
			return StatusFinalized
		}
		return StatusWaitingAnswers
	case !fr.CreatedAt.IsZero():
		return StatusPendingApproval
	default:
		return StatusInCreation
	}
}
