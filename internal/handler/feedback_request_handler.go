package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nextgen-hr/feedback-request-api/internal/dto"
	"github.com/nextgen-hr/feedback-request-api/internal/service"
	appErrors "github.com/nextgen-hr/feedback-request-api/pkg/errors"
	"github.com/nextgen-hr/feedback-request-api/pkg/response"
)

// FeedbackRequestService is the surface this handler depends on.
type FeedbackRequestService interface {
	Create(ctx context.Context, requesterID string, req dto.CreateFeedbackRequest, bearerToken string) (*dto.FeedbackRequestView, error)
	Review(ctx context.Context, id string, req dto.ReviewFeedbackRequest) (*dto.FeedbackRequestView, error)
	SubmitAnswer(ctx context.Context, id string, req dto.SubmitAnswerRequest) (*dto.FeedbackRequestView, error)
	AddAppraiser(ctx context.Context, id, email string) (*dto.FeedbackRequestView, error)
	RemoveAppraiser(ctx context.Context, id, email string) (*dto.FeedbackRequestView, error)
	AddQuestion(ctx context.Context, id, text string) (*dto.FeedbackRequestView, error)
	UpdateQuestion(ctx context.Context, id string, index int, text string) (*dto.FeedbackRequestView, error)
	RemoveQuestion(ctx context.Context, id string, index int) (*dto.FeedbackRequestView, error)
	Delete(ctx context.Context, id string) error
	GetByRequesterID(ctx context.Context, requesterID string) ([]dto.FeedbackRequestView, error)
	ListAll(ctx context.Context, filter string) ([]dto.FeedbackSummary, error)
	GetForm(ctx context.Context, id string) (*dto.FeedbackForm, error)
	ListForPDM(ctx context.Context, pdmID, bearerToken string) ([]dto.PDMFeedback, error)
	NotifyPDM(ctx context.Context, id, bearerToken string) error
	NotifyAppraisers(ctx context.Context, id string) error
}

// ExportService resolves answer exports for download responses.
type ExportService interface {
	ExportAnswers(ctx context.Context, id string, format service.ExportFormat) (*service.ExportResult, error)
}

// FeedbackRequestHandler exposes feedback request endpoints.
type FeedbackRequestHandler struct {
	feedback FeedbackRequestService
	exports  ExportService
}

// NewFeedbackRequestHandler constructs handler.
func NewFeedbackRequestHandler(feedback FeedbackRequestService, exports ExportService) *FeedbackRequestHandler {
	return &FeedbackRequestHandler{feedback: feedback, exports: exports}
}

// Create godoc
// @Summary Create feedback request
// @Tags FeedbackRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeedbackRequest true "Feedback request payload"
// @Success 201 {object} response.Envelope
// @Router /feedback-requests [post]
func (h *FeedbackRequestHandler) Create(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authenticated user"))
		return
	}
	view, err := h.feedback.Create(c.Request.Context(), claims.UserID, req, tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// List godoc
// @Summary List feedback requests
// @Tags FeedbackRequests
// @Produce json
// @Param filter query string false "Filter: approved or pending"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests [get]
func (h *FeedbackRequestHandler) List(c *gin.Context) {
	summaries, err := h.feedback.ListAll(c.Request.Context(), c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// ListByRequester godoc
// @Summary List feedback requests by requester
// @Tags FeedbackRequests
// @Produce json
// @Param requesterId path string true "Requester ID"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/requester/{requesterId} [get]
func (h *FeedbackRequestHandler) ListByRequester(c *gin.Context) {
	views, err := h.feedback.GetByRequesterID(c.Request.Context(), c.Param("requesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Form godoc
// @Summary Appraisal form projection
// @Tags FeedbackRequests
// @Produce json
// @Param id path string true "Feedback request ID"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/form [get]
func (h *FeedbackRequestHandler) Form(c *gin.Context) {
	form, err := h.feedback.GetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Review godoc
// @Summary Approve or reject a feedback request
// @Tags FeedbackRequests
// @Accept json
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param payload body dto.ReviewFeedbackRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/review [put]
func (h *FeedbackRequestHandler) Review(c *gin.Context) {
	var req dto.ReviewFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.feedback.Review(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// SubmitAnswer godoc
// @Summary Submit an appraiser answer
// @Tags FeedbackRequests
// @Accept json
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param payload body dto.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/answers [post]
func (h *FeedbackRequestHandler) SubmitAnswer(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.feedback.SubmitAnswer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AddAppraiser godoc
// @Summary Invite an appraiser
// @Tags FeedbackRequests
// @Accept json
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param payload body dto.AddAppraiserRequest true "Appraiser payload"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/appraisers [post]
func (h *FeedbackRequestHandler) AddAppraiser(c *gin.Context) {
	var req dto.AddAppraiserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.feedback.AddAppraiser(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// RemoveAppraiser godoc
// @Summary Remove an appraiser and their answers
// @Tags FeedbackRequests
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param email path string true "Appraiser email"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/appraisers/{email} [delete]
func (h *FeedbackRequestHandler) RemoveAppraiser(c *gin.Context) {
	view, err := h.feedback.RemoveAppraiser(c.Request.Context(), c.Param("id"), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AddQuestion godoc
// @Summary Append a question
// @Tags FeedbackRequests
// @Accept json
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param payload body dto.QuestionRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/questions [post]
func (h *FeedbackRequestHandler) AddQuestion(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.feedback.AddQuestion(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UpdateQuestion godoc
// @Summary Replace a question's text
// @Tags FeedbackRequests
// @Accept json
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param index path int true "Question position"
// @Param payload body dto.QuestionRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/questions/{index} [put]
func (h *FeedbackRequestHandler) UpdateQuestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "question index must be an integer"))
		return
	}
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.feedback.UpdateQuestion(c.Request.Context(), c.Param("id"), index, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// RemoveQuestion godoc
// @Summary Remove a question
// @Tags FeedbackRequests
// @Produce json
// @Param id path string true "Feedback request ID"
// @Param index path int true "Question position"
// @Success 200 {object} response.Envelope
// @Router /feedback-requests/{id}/questions/{index} [delete]
func (h *FeedbackRequestHandler) RemoveQuestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "question index must be an integer"))
		return
	}
	view, err := h.feedback.RemoveQuestion(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Delete godoc
// @Summary Delete a feedback request
// @Tags FeedbackRequests
// @Produce json
// @Param id path string true "Feedback request ID"
// @Success 204 {object} nil
// @Router /feedback-requests/{id} [delete]
func (h *FeedbackRequestHandler) Delete(c *gin.Context) {
	if err := h.feedback.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NotifyPDM godoc
// @Summary Resend the approval notification to the requester's PDM
// @Tags Notifications
// @Produce json
// @Param id path string true "Feedback request ID"
// @Success 202 {object} response.Envelope
// @Router /feedback-requests/{id}/notify-pdm [post]
func (h *FeedbackRequestHandler) NotifyPDM(c *gin.Context) {
	if err := h.feedback.NotifyPDM(c.Request.Context(), c.Param("id"), tokenFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued"}, nil)
}

// NotifyAppraisers godoc
// @Summary Send invitation emails to every appraiser
// @Tags Notifications
// @Produce json
// @Param id path string true "Feedback request ID"
// @Success 202 {object} response.Envelope
// @Router /feedback-requests/{id}/notify-appraisers [post]
func (h *FeedbackRequestHandler) NotifyAppraisers(c *gin.Context) {
	if err := h.feedback.NotifyAppraisers(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued"}, nil)
}

// Export godoc
// @Summary Export collected answers
// @Tags FeedbackRequests
// @Produce octet-stream
// @Param id path string true "Feedback request ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /feedback-requests/{id}/export [get]
func (h *FeedbackRequestHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.exports.ExportAnswers(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ListForPDM godoc
// @Summary List feedback requests awaiting the caller's review
// @Tags FeedbackRequests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pdm/feedback-requests [get]
func (h *FeedbackRequestHandler) ListForPDM(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authenticated user"))
		return
	}
	items, err := h.feedback.ListForPDM(c.Request.Context(), claims.UserID, tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
