package models

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/nextgen-hr/feedback-request-api/pkg/errors"
)

// InternalEmailDomain is the organisation's mail suffix. Appraisers must be
// external reviewers, so any email containing this fragment is refused.
const InternalEmailDomain = "@nextgen-hr"

// ExpiryWindowMonths is how long a feedback request stays answerable after
// creation.
const ExpiryWindowMonths = 3

// Appraiser is an external reviewer invited to answer the questionnaire.
type Appraiser struct {
	Email string `db:"email" json:"email"`
}

// Question is one questionnaire entry; ordering is display-significant.
type Question struct {
	Text string `db:"text" json:"text"`
}

// Answer records one appraiser response. Answers are not linked to a
// question by index; completion is judged by count.
type Answer struct {
	AppraiserEmail string `db:"appraiser_email" json:"appraiser_email"`
	Text           string `db:"text" json:"text"`
}

// FeedbackRequest is the aggregate root for one round of the feedback
// workflow. All invariants are enforced here; the service layer only
// sequences operations and collaborators.
type FeedbackRequest struct {
	ID            string     `db:"id" json:"id"`
	RequesterID   string     `db:"requester_id" json:"requester_id"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	ApprovedAt    *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectedAt    *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	EditedAt      *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	RejectMessage string     `db:"reject_message" json:"reject_message,omitempty"`

	Appraisers []Appraiser `json:"appraisers"`
	Questions  []Question  `json:"questions"`
	Answers    []Answer    `json:"answers"`
}

// NewFeedbackRequest constructs a request for the given requester and stamps
// the creation time.
func NewFeedbackRequest(requesterID string) (*FeedbackRequest, error) {
	if strings.TrimSpace(requesterID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requester ID cannot be empty")
	}
	return &FeedbackRequest{
		RequesterID: requesterID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// AddAppraiser appends an external reviewer. Emails must be unique
// case-insensitively and cannot belong to the internal domain.
func (fr *FeedbackRequest) AddAppraiser(email string) error {
	for _, a := range fr.Appraisers {
		if strings.EqualFold(a.Email, email) {
			return appErrors.Clone(appErrors.ErrDuplicate, fmt.Sprintf("appraiser with email %s already exists", email))
		}
	}
	if strings.Contains(strings.ToLower(email), InternalEmailDomain) {
		return appErrors.Clone(appErrors.ErrValidation, "the email cannot be from an internal employee")
	}
	fr.Appraisers = append(fr.Appraisers, Appraiser{Email: email})
	return nil
}

// RemoveAppraiser drops the appraiser and all of their answers. Removing an
// unknown email is a no-op.
func (fr *FeedbackRequest) RemoveAppraiser(email string) {
	kept := fr.Appraisers[:0]
	for _, a := range fr.Appraisers {
		if !strings.EqualFold(a.Email, email) {
			kept = append(kept, a)
		}
	}
	fr.Appraisers = kept

	answers := fr.Answers[:0]
	for _, ans := range fr.Answers {
		if !strings.EqualFold(ans.AppraiserEmail, email) {
			answers = append(answers, ans)
		}
	}
	fr.Answers = answers
}

// FindAppraiserByEmail looks an appraiser up case-insensitively.
func (fr *FeedbackRequest) FindAppraiserByEmail(email string) (*Appraiser, bool) {
	for i := range fr.Appraisers {
		if strings.EqualFold(fr.Appraisers[i].Email, email) {
			return &fr.Appraisers[i], true
		}
	}
	return nil, false
}

// AddQuestion appends a questionnaire entry.
func (fr *FeedbackRequest) AddQuestion(text string) error {
	if strings.TrimSpace(text) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "question text cannot be empty")
	}
	fr.Questions = append(fr.Questions, Question{Text: text})
	return nil
}

// UpdateQuestion replaces the question at index.
func (fr *FeedbackRequest) UpdateQuestion(index int, text string) error {
	if index < 0 || index >= len(fr.Questions) {
		return appErrors.Clone(appErrors.ErrValidation, "question index out of range")
	}
	if strings.TrimSpace(text) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "question text cannot be empty")
	}
	fr.Questions[index] = Question{Text: text}
	return nil
}

// RemoveQuestion drops the question at index.
func (fr *FeedbackRequest) RemoveQuestion(index int) error {
	if index < 0 || index >= len(fr.Questions) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("question index out of range: %d", index))
	}
	fr.Questions = append(fr.Questions[:index], fr.Questions[index+1:]...)
	return nil
}

// SubmitAnswer records an appraiser response. The request must be approved
// and unexpired, and the submitter must be a known appraiser; the checks run
// in that order.
func (fr *FeedbackRequest) SubmitAnswer(appraiserEmail, text string) error {
	if !fr.IsApproved() {
		return appErrors.Clone(appErrors.ErrIllegalState, "cannot submit answers for unapproved feedback request")
	}
	if fr.IsExpired() {
		return appErrors.Clone(appErrors.ErrExpired, "cannot submit answers for expired feedback request")
	}
	if _, ok := fr.FindAppraiserByEmail(appraiserEmail); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("appraiser not found with email: %s", appraiserEmail))
	}
	fr.Answers = append(fr.Answers, Answer{AppraiserEmail: appraiserEmail, Text: text})
	return nil
}

// Approve stamps the approval time. The question-count boundary mirrors the
// product rule as shipped: zero to two questions are refused, three or more
// pass. Re-approval simply refreshes the timestamp.
func (fr *FeedbackRequest) Approve() error {
	if len(fr.Questions) == 0 || len(fr.Questions) < 3 {
		return appErrors.Clone(appErrors.ErrInsufficientData, "feedback request must have at least 1 question and max 3 questions")
	}
	if len(fr.Appraisers) == 0 {
		return appErrors.Clone(appErrors.ErrInsufficientData, "feedback request must have at least one appraiser")
	}
	now := time.Now().UTC()
	fr.ApprovedAt = &now
	return nil
}

// Reject stamps the rejection time and stores the reviewer's message.
func (fr *FeedbackRequest) Reject(message string) error {
	if strings.TrimSpace(message) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "reject message cannot be empty")
	}
	now := time.Now().UTC()
	fr.RejectedAt = &now
	fr.RejectMessage = message
	return nil
}

// MarkAsEdited records an edit and clears any prior rejection so the request
// re-enters the approval flow.
func (fr *FeedbackRequest) MarkAsEdited() {
	now := time.Now().UTC()
	fr.EditedAt = &now
	fr.RejectedAt = nil
}

// IsApproved reports whether the latest decision on the request was an
// approval.
func (fr *FeedbackRequest) IsApproved() bool {
	return fr.ApprovedAt != nil && (fr.RejectedAt == nil || fr.ApprovedAt.After(*fr.RejectedAt))
}

// IsRejected reports whether the request was rejected and never approved.
func (fr *FeedbackRequest) IsRejected() bool {
	return fr.RejectedAt != nil && fr.ApprovedAt == nil
}

// IsEdited reports whether the request was edited after creation.
func (fr *FeedbackRequest) IsEdited() bool {
	return fr.EditedAt != nil
}

// IsExpired reports whether the answering window has closed. Evaluated at
// read time, never persisted.
func (fr *FeedbackRequest) IsExpired() bool {
	return !fr.CreatedAt.IsZero() && fr.CreatedAt.AddDate(0, ExpiryWindowMonths, 0).Before(time.Now().UTC())
}

// AppraiserAnswers returns the answers submitted by one appraiser.
func (fr *FeedbackRequest) AppraiserAnswers(appraiserEmail string) []Answer {
	var out []Answer
	for _, a := range fr.Answers {
		if strings.EqualFold(a.AppraiserEmail, appraiserEmail) {
			out = append(out, a)
		}
	}
	return out
}

// HasAllAppraisersAnswered reports whether every appraiser has submitted at
// least as many answers as there are questions.
func (fr *FeedbackRequest) HasAllAppraisersAnswered() bool {
	counts := make(map[string]int, len(fr.Appraisers))
	for _, a := range fr.Answers {
		counts[strings.ToLower(a.AppraiserEmail)]++
	}
	for _, appraiser := range fr.Appraisers {
		if counts[strings.ToLower(appraiser.Email)] < len(fr.Questions) {
			return false
		}
	}
	return true
}

// AppraisersWithStatus maps each appraiser email to its submission status:
// everyone is "Not Sent" before approval, afterwards "Answered" or
// "Not Answered" per appraiser.
func (fr *FeedbackRequest) AppraisersWithStatus() map[string]string {
	status := make(map[string]string, len(fr.Appraisers))

	if fr.ApprovedAt == nil {
		for _, appraiser := range fr.Appraisers {
			status[appraiser.Email] = AppraiserStatusNotSent
		}
		return status
	}

	for _, appraiser := range fr.Appraisers {
		answered := false
		for _, answer := range fr.Answers {
			if strings.EqualFold(answer.AppraiserEmail, appraiser.Email) {
				answered = true
				break
			}
		}
		if answered {
			status[appraiser.Email] = AppraiserStatusAnswered
		} else {
			status[appraiser.Email] = AppraiserStatusNotAnswered
		}
	}
	return status
}

// Status derives the lifecycle label for the request.
func (fr *FeedbackRequest) Status() FeedbackRequestStatus {
	return DeriveStatus(fr)
}
