package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nextgen-hr/feedback-request-api/internal/dto"
	"github.com/nextgen-hr/feedback-request-api/internal/models"
	appErrors "github.com/nextgen-hr/feedback-request-api/pkg/errors"
)

const (
	formCacheKeyPrefix = "feedback:form:"
	pdmCacheKeyPrefix  = "feedback:pdm:"
)

type feedbackRequestStore interface {
	FindByID(ctx context.Context, id string) (*models.FeedbackRequest, error)
	FindByRequesterID(ctx context.Context, requesterID string) ([]models.FeedbackRequest, error)
	FindAll(ctx context.Context) ([]models.FeedbackRequest, error)
	FindAllApproved(ctx context.Context) ([]models.FeedbackRequest, error)
	FindAllPending(ctx context.Context) ([]models.FeedbackRequest, error)
	Save(ctx context.Context, fr *models.FeedbackRequest) (*models.FeedbackRequest, error)
	Delete(ctx context.Context, id string) error
}

type directoryClient interface {
	GetUser(ctx context.Context, userID, bearerToken string) (*models.DirectoryUser, error)
	GetCollaborators(ctx context.Context, pdmID, bearerToken string) ([]models.Collaborator, error)
}

type notifier interface {
	Dispatch(recipient, subject, body string)
}

// FeedbackRequestService orchestrates the feedback workflow. Invariants live
// on the aggregate; this layer sequences entity operations with storage,
// directory and notification collaborators.
type FeedbackRequestService struct {
	repo      feedbackRequestStore
	directory directoryClient
	notifier  notifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackRequestService builds the orchestrator with sane defaults.
func NewFeedbackRequestService(
	repo feedbackRequestStore,
	directory directoryClient,
	notifier notifier,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *FeedbackRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackRequestService{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// Create opens a new feedback round for the requester, persists it and
// triggers the PDM approval notification. The notification is best-effort:
// an unresolved manager never fails the creation.
func (s *FeedbackRequestService) Create(ctx context.Context, requesterID string, req dto.CreateFeedbackRequest, bearerToken string) (*dto.FeedbackRequestView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback request payload")
	}

	fr, err := models.NewFeedbackRequest(requesterID)
	if err != nil {
		return nil, err
	}
	for _, email := range req.AppraiserEmails {
		if err := fr.AddAppraiser(email); err != nil {
			return nil, err
		}
	}
	for _, question := range req.Questions {
		if err := fr.AddQuestion(question); err != nil {
			return nil, err
		}
	}

	saved, err := s.repo.Save(ctx, fr)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist feedback request")
	}

	s.notifyPDM(ctx, saved, bearerToken)
	s.invalidateProjections(ctx, saved.ID)

	view := mapToView(saved)
	return &view, nil
}

// Review applies the PDM decision: approve, or reject with a message.
func (s *FeedbackRequestService) Review(ctx context.Context, id string, req dto.ReviewFeedbackRequest) (*dto.FeedbackRequestView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	fr, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if *req.Approved {
		if err := fr.Approve(); err != nil {
			return nil, err
		}
	} else {
		if strings.TrimSpace(req.RejectMessage) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "reject message is required when rejecting a feedback request")
		}
		if err := fr.Reject(req.RejectMessage); err != nil {
			return nil, err
		}
	}

	saved, err := s.repo.Save(ctx, fr)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist review")
	}
	s.invalidateProjections(ctx, id)
	view := mapToView(saved)
	return &view, nil
}

// SubmitAnswer records one appraiser response; all preconditions are checked
// by the aggregate.
func (s *FeedbackRequestService) SubmitAnswer(ctx context.Context, id string, req dto.SubmitAnswerRequest) (*dto.FeedbackRequestView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answer payload")
	}

	fr, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fr.SubmitAnswer(req.AppraiserEmail, req.Text); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, fr)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist answer")
	}
	s.invalidateProjections(ctx, id)
	view := mapToView(saved)
	return &view, nil
}

// AddAppraiser invites one more reviewer on a stored request and marks the
// request edited, clearing any prior rejection.
func (s *FeedbackRequestService) AddAppraiser(ctx context.Context, id, email string) (*dto.FeedbackRequestView, error) {
	return s.edit(ctx, id, func(fr *models.FeedbackRequest) error {
		return fr.AddAppraiser(email)
	})
}

// RemoveAppraiser drops a reviewer and their answers.
func (s *FeedbackRequestService) RemoveAppraiser(ctx context.Context, id, email string) (*dto.FeedbackRequestView, error) {
	return s.edit(ctx, id, func(fr *models.FeedbackRequest) error {
		fr.RemoveAppraiser(email)
		return nil
	})
}

// AddQuestion appends a questionnaire entry.
func (s *FeedbackRequestService) AddQuestion(ctx context.Context, id, text string) (*dto.FeedbackRequestView, error) {
	return s.edit(ctx, id, func(fr *models.FeedbackRequest) error {
		return fr.AddQuestion(text)
	})
}

// UpdateQuestion replaces the question at index.
func (s *FeedbackRequestService) UpdateQuestion(ctx context.Context, id string, index int, text string) (*dto.FeedbackRequestView, error) {
	return s.edit(ctx, id, func(fr *models.FeedbackRequest) error {
		return fr.UpdateQuestion(index, text)
	})
}

// RemoveQuestion drops the question at index.
func (s *FeedbackRequestService) RemoveQuestion(ctx context.Context, id string, index int) (*dto.FeedbackRequestView, error) {
	return s.edit(ctx, id, func(fr *models.FeedbackRequest) error {
		return fr.RemoveQuestion(index)
	})
}

func (s *FeedbackRequestService) edit(ctx context.Context, id string, mutate func(*models.FeedbackRequest) error) (*dto.FeedbackRequestView, error) {
	fr, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(fr); err != nil {
		return nil, err
	}
	fr.MarkAsEdited()

	saved, err := s.repo.Save(ctx, fr)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist edit")
	}
	s.invalidateProjections(ctx, id)
	view := mapToView(saved)
	return &view, nil
}

// Delete destroys the aggregate.
func (s *FeedbackRequestService) Delete(ctx context.Context, id string) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete feedback request")
	}
	s.invalidateProjections(ctx, id)
	return nil
}

// GetByRequesterID returns the requester's rounds as full views. An empty
// result is reported as not found.
func (s *FeedbackRequestService) GetByRequesterID(ctx context.Context, requesterID string) ([]dto.FeedbackRequestView, error) {
	requests, err := s.repo.FindByRequesterID(ctx, requesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback requests")
	}
	if len(requests) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no feedback requests were found")
	}

	views := make([]dto.FeedbackRequestView, len(requests))
	for i := range requests {
		views[i] = mapToView(&requests[i])
	}
	return views, nil
}

// ListAll returns a compact summary of every round with its derived status.
// The filter narrows the listing to approved or pending rounds.
func (s *FeedbackRequestService) ListAll(ctx context.Context, filter string) ([]dto.FeedbackSummary, error) {
	var (
		requests []models.FeedbackRequest
		err      error
	)
	switch filter {
	case "approved":
		requests, err = s.repo.FindAllApproved(ctx)
	case "pending":
		requests, err = s.repo.FindAllPending(ctx)
	case "":
		requests, err = s.repo.FindAll(ctx)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown filter: %s", filter))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback requests")
	}
	summaries := make([]dto.FeedbackSummary, len(requests))
	for i := range requests {
		summaries[i] = dto.FeedbackSummary{
			ID:          requests[i].ID,
			RequesterID: requests[i].RequesterID,
			CreatedAt:   requests[i].CreatedAt,
			Status:      string(requests[i].Status()),
		}
	}
	return summaries, nil
}

// GetForm builds the rendering-ready projection for the answer page.
func (s *FeedbackRequestService) GetForm(ctx context.Context, id string) (*dto.FeedbackForm, error) {
	cacheKey := formCacheKeyPrefix + id
	var cached dto.FeedbackForm
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	fr, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(fr.Questions))
	for _, q := range fr.Questions {
		if q.Text != "" {
			questions = append(questions, q.Text)
		}
	}
	appraisers := make([]string, 0, len(fr.Appraisers))
	for _, a := range fr.Appraisers {
		if a.Email != "" {
			appraisers = append(appraisers, a.Email)
		}
	}

	form := &dto.FeedbackForm{
		ID:              fr.ID,
		Questions:       questions,
		Appraisers:      appraisers,
		AppraiserStatus: fr.AppraisersWithStatus(),
		RequesterID:     fr.RequesterID,
		CreatedAt:       fr.CreatedAt,
	}

	_ = s.cache.Set(ctx, cacheKey, form, 0)
	return form, nil
}

// ListForPDM resolves the manager's collaborators and aggregates their
// rounds, newest first. A failed per-collaborator fetch is logged and
// skipped so the manager still sees partial results.
func (s *FeedbackRequestService) ListForPDM(ctx context.Context, pdmID, bearerToken string) ([]dto.PDMFeedback, error) {
	cacheKey := pdmCacheKeyPrefix + pdmID
	var cached []dto.PDMFeedback
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	collaborators, err := s.directory.GetCollaborators(ctx, pdmID, bearerToken)
	if err != nil {
		return nil, err
	}
	if len(collaborators) == 0 {
		return []dto.PDMFeedback{}, nil
	}

	result := make([]dto.PDMFeedback, 0, len(collaborators))
	for _, collaborator := range collaborators {
		requests, err := s.repo.FindByRequesterID(ctx, collaborator.ID)
		if err != nil {
			s.logger.Warn("skipping collaborator after fetch failure",
				zap.String("collaborator_id", collaborator.ID),
				zap.Error(err))
			continue
		}
		for i := range requests {
			result = append(result, dto.PDMFeedback{
				Requester: collaborator,
				Status:    string(requests[i].Status()),
				CreatedAt: requests[i].CreatedAt,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	_ = s.cache.Set(ctx, cacheKey, result, 0)
	return result, nil
}

// NotifyPDM re-sends the approval notification for a stored request.
func (s *FeedbackRequestService) NotifyPDM(ctx context.Context, id, bearerToken string) error {
	fr, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	s.notifyPDM(ctx, fr, bearerToken)
	return nil
}

// NotifyAppraisers emails the questionnaire invitation to every appraiser.
func (s *FeedbackRequestService) NotifyAppraisers(ctx context.Context, id string) error {
	fr, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	subject := "Feedback questionnaire"
	for _, appraiser := range fr.Appraisers {
		body := "Hello,\n\n" +
			"You have been selected to provide feedback. Please answer the questionnaire at:\n\n" +
			fmt.Sprintf("[questionnaire link for request %s]\n\n", fr.ID) +
			"Thank you for participating!"
		s.notifier.Dispatch(appraiser.Email, subject, body)
	}
	return nil
}

// notifyPDM resolves the requester's manager and enqueues the approval
// email. Failures are logged and swallowed, never surfaced to the caller.
func (s *FeedbackRequestService) notifyPDM(ctx context.Context, fr *models.FeedbackRequest, bearerToken string) {
	user, err := s.directory.GetUser(ctx, fr.RequesterID, bearerToken)
	if err != nil {
		s.logger.Warn("skipping PDM notification, requester lookup failed",
			zap.String("feedback_request_id", fr.ID),
			zap.String("requester_id", fr.RequesterID),
			zap.Error(err))
		return
	}
	pdm := user.Pdm()
	if pdm == nil {
		s.logger.Info("requester has no PDM assigned, skipping notification",
			zap.String("feedback_request_id", fr.ID),
			zap.String("requester_id", fr.RequesterID))
		return
	}

	subject := fmt.Sprintf("Feedback request approval - Request #%s", fr.ID)
	body := fmt.Sprintf("Hello %s,\n\n", pdm.Name) +
		fmt.Sprintf("%s requested feedback and request #%s needs your approval. ", user.Name, fr.ID) +
		"Please open the link below to approve or reject the request:\n\n" +
		fmt.Sprintf("[review link for request %s]\n\n", fr.ID) +
		"Thank you for your collaboration.\n\n" +
		"NextGen HR"
	s.notifier.Dispatch(pdm.Email, subject, body)
}

func (s *FeedbackRequestService) findByID(ctx context.Context, id string) (*models.FeedbackRequest, error) {
	fr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback request")
	}
	if fr == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("feedback request not found with id: %s", id))
	}
	return fr, nil
}

func (s *FeedbackRequestService) invalidateProjections(ctx context.Context, id string) {
	_ = s.cache.Invalidate(ctx, formCacheKeyPrefix+id)
	_ = s.cache.Invalidate(ctx, pdmCacheKeyPrefix+"*")
}

func mapToView(fr *models.FeedbackRequest) dto.FeedbackRequestView {
	view := dto.FeedbackRequestView{
		ID:            fr.ID,
		RequesterID:   fr.RequesterID,
		CreatedAt:     fr.CreatedAt,
		ApprovedAt:    fr.ApprovedAt,
		RejectedAt:    fr.RejectedAt,
		EditedAt:      fr.EditedAt,
		RejectMessage: fr.RejectMessage,
		Approved:      fr.IsApproved(),
		Rejected:      fr.IsRejected(),
		Expired:       fr.IsExpired(),
		Status:        string(fr.Status()),
	}
	for _, a := range fr.Appraisers {
		view.Appraisers = append(view.Appraisers, dto.AppraiserDTO{Email: a.Email})
	}
	for _, q := range fr.Questions {
		view.Questions = append(view.Questions, dto.QuestionDTO{Text: q.Text})
	}
	for _, ans := range fr.Answers {
		view.Answers = append(view.Answers, dto.AnswerDTO{AppraiserEmail: ans.AppraiserEmail, Text: ans.Text})
	}
	return view
}
