package dto

import (
	"time"

	"github.com/nextgen-hr/feedback-request-api/internal/models"
)

// CreateFeedbackRequest is the payload for opening a new feedback round.
type CreateFeedbackRequest struct {
	Questions       []string `json:"questions" validate:"required,min=1,dive,required"`
	AppraiserEmails []string `json:"appraiserEmails" validate:"required,min=1,dive,email"`
}

// ReviewFeedbackRequest carries the PDM decision. RejectMessage is required
// when Approved is false and must be absent when it is true.
type ReviewFeedbackRequest struct {
	Approved      *bool  `json:"approved" validate:"required"`
	RejectMessage string `json:"rejectMessage" validate:"max=500"`
}

// SubmitAnswerRequest records one appraiser response.
type SubmitAnswerRequest struct {
	AppraiserEmail string `json:"appraiserEmail" validate:"required,email"`
	Text           string `json:"text" validate:"required"`
}

// AddAppraiserRequest invites one more external reviewer.
type AddAppraiserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// QuestionRequest adds or replaces a questionnaire entry.
type QuestionRequest struct {
	Text string `json:"text" validate:"required"`
}

// FeedbackRequestView is the full aggregate read-shape.
type FeedbackRequestView struct {
	ID            string         `json:"id"`
	RequesterID   string         `json:"requesterId"`
	CreatedAt     time.Time      `json:"createdAt"`
	ApprovedAt    *time.Time     `json:"approvedAt,omitempty"`
	RejectedAt    *time.Time     `json:"rejectedAt,omitempty"`
	EditedAt      *time.Time     `json:"editedAt,omitempty"`
	RejectMessage string         `json:"rejectMessage,omitempty"`
	Appraisers    []AppraiserDTO `json:"appraisers,omitempty"`
	Questions     []QuestionDTO  `json:"questions,omitempty"`
	Answers       []AnswerDTO    `json:"answers,omitempty"`
	Approved      bool           `json:"approved"`
	Rejected      bool           `json:"rejected"`
	Expired       bool           `json:"expired"`
	Status        string         `json:"status"`
}

// AppraiserDTO is the wire shape for an invited reviewer.
type AppraiserDTO struct {
	Email string `json:"email"`
}

// QuestionDTO is the wire shape for a questionnaire entry.
type QuestionDTO struct {
	Text string `json:"text"`
}

// AnswerDTO is the wire shape for a submitted answer.
type AnswerDTO struct {
	AppraiserEmail string `json:"appraiserEmail"`
	Text           string `json:"text"`
}

// FeedbackSummary is the compact listing row.
type FeedbackSummary struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requesterId"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
}

// FeedbackForm is the rendering-ready projection served to the answer page.
type FeedbackForm struct {
	ID              string            `json:"id"`
	Questions       []string          `json:"questions"`
	Appraisers      []string          `json:"appraisers"`
	AppraiserStatus map[string]string `json:"appraiserStatus"`
	RequesterID     string            `json:"requesterId"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// PDMFeedback is one row of the per-manager listing: a collaborator's
// request with its derived status.
type PDMFeedback struct {
	Requester models.Collaborator `json:"requester"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}
