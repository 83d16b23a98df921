package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextgen-hr/feedback-request-api/internal/dto"
	"github.com/nextgen-hr/feedback-request-api/internal/middleware"
	"github.com/nextgen-hr/feedback-request-api/internal/models"
	"github.com/nextgen-hr/feedback-request-api/internal/service"
	appErrors "github.com/nextgen-hr/feedback-request-api/pkg/errors"
)

type feedbackServiceMock struct {
	view    *dto.FeedbackRequestView
	views   []dto.FeedbackRequestView
	summary []dto.FeedbackSummary
	form    *dto.FeedbackForm
	pdm     []dto.PDMFeedback
	err     error

	lastRequester string
	lastFilter    string
	lastIndex     int
}

func (m *feedbackServiceMock) Create(ctx context.Context, requesterID string, req dto.CreateFeedbackRequest, token string) (*dto.FeedbackRequestView, error) {
	m.lastRequester = requesterID
	return m.view, m.err
}

func (m *feedbackServiceMock) Review(ctx context.Context, id string, req dto.ReviewFeedbackRequest) (*dto.FeedbackRequestView, error) {
	return m.view, m.err
}

func (m *feedbackServiceMock) SubmitAnswer(ctx context.Context, id string, req dto.SubmitAnswerRequest) (*dto.FeedbackRequestView, error) {
	return m.view, m.err
}

func (m *feedbackServiceMock) AddAppraiser(ctx context.Context, id, email string) (*dto.FeedbackRequestView, error) {
	return m.view, m.err
}

func (m *feedbackServiceMock) RemoveAppraiser(ctx context.Context, id, email string) (*dto.FeedbackRequestView, error) {
	return m.view, m.err
}

func (m *feedbackServiceMock) AddQuestion(ctx context.Context, id, text string) (*dto.FeedbackRequestView, error) {
	return m.view, m.err
}

func (m *feedbackServiceMock) UpdateQuestion(ctx context.Context, id string, index int, text string) (*dto.FeedbackRequestView, error) {
	m.lastIndex = index
	return m.view, m.err
}

func (m *feedbackServiceMock) RemoveQuestion(ctx context.Context, id string, index int) (*dto.FeedbackRequestView, error) {
	m.lastIndex = index
	return m.view, m.err
}

func (m *feedbackServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func (m *feedbackServiceMock) GetByRequesterID(ctx context.Context, requesterID string) ([]dto.FeedbackRequestView, error) {
	m.lastRequester = requesterID
	return m.views, m.err
}

func (m *feedbackServiceMock) ListAll(ctx context.Context, filter string) ([]dto.FeedbackSummary, error) {
	m.lastFilter = filter
	return m.summary, m.err
}

func (m *feedbackServiceMock) GetForm(ctx context.Context, id string) (*dto.FeedbackForm, error) {
	return m.form, m.err
}

func (m *feedbackServiceMock) ListForPDM(ctx context.Context, pdmID, token string) ([]dto.PDMFeedback, error) {
	m.lastRequester = pdmID
	return m.pdm, m.err
}

func (m *feedbackServiceMock) NotifyPDM(ctx context.Context, id, token string) error {
	return m.err
}

func (m *feedbackServiceMock) NotifyAppraisers(ctx context.Context, id string) error {
	return m.err
}

type exportServiceMock struct {
	result *service.ExportResult
	err    error
	format service.ExportFormat
}

func (m *exportServiceMock) ExportAnswers(ctx context.Context, id string, format service.ExportFormat) (*service.ExportResult, error) {
	m.format = format
	return m.result, m.err
}

func newFeedbackContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func authenticate(c *gin.Context, userID string) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID})
	c.Set(middleware.ContextTokenKey, "token")
}

func TestFeedbackHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{view: &dto.FeedbackRequestView{ID: "fr-1", RequesterID: "user-1"}}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.CreateFeedbackRequest{
		Questions:       []string{"q1", "q2", "q3"},
		AppraiserEmails: []string{"reviewer@partner.com"},
	})
	c, w := newFeedbackContext(http.MethodPost, "/feedback-requests", payload)
	authenticate(c, "user-1")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastRequester)
}

func TestFeedbackHandlerCreateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackRequestHandler(&feedbackServiceMock{}, nil)

	c, w := newFeedbackContext(http.MethodPost, "/feedback-requests", []byte("{not json"))
	authenticate(c, "user-1")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackHandlerCreateMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackRequestHandler(&feedbackServiceMock{}, nil)

	payload, _ := json.Marshal(dto.CreateFeedbackRequest{
		Questions:       []string{"q1"},
		AppraiserEmails: []string{"reviewer@partner.com"},
	})
	c, w := newFeedbackContext(http.MethodPost, "/feedback-requests", payload)

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeedbackHandlerListPassesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{summary: []dto.FeedbackSummary{{ID: "fr-1"}}}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	c, w := newFeedbackContext(http.MethodGet, "/feedback-requests?filter=approved", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", mockSvc.lastFilter)
}

func TestFeedbackHandlerReviewErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{err: appErrors.Clone(appErrors.ErrInsufficientData, "not enough questions")}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	approved := true
	payload, _ := json.Marshal(dto.ReviewFeedbackRequest{Approved: &approved})
	c, w := newFeedbackContext(http.MethodPut, "/feedback-requests/fr-1/review", payload)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}}

	h.Review(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFeedbackHandlerUpdateQuestionBadIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackRequestHandler(&feedbackServiceMock{}, nil)

	c, w := newFeedbackContext(http.MethodPut, "/feedback-requests/fr-1/questions/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}, {Key: "index", Value: "abc"}}

	h.UpdateQuestion(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackHandlerRemoveQuestion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{view: &dto.FeedbackRequestView{ID: "fr-1"}}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	c, w := newFeedbackContext(http.MethodDelete, "/feedback-requests/fr-1/questions/2", nil)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}, {Key: "index", Value: "2"}}

	h.RemoveQuestion(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, mockSvc.lastIndex)
}

func TestFeedbackHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackRequestHandler(&feedbackServiceMock{}, nil)

	c, w := newFeedbackContext(http.MethodDelete, "/feedback-requests/fr-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}}

	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFeedbackHandlerNotFoundMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "feedback request not found with id: fr-1")}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	c, w := newFeedbackContext(http.MethodGet, "/feedback-requests/fr-1/form", nil)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}}

	h.Form(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockExport := &exportServiceMock{result: &service.ExportResult{
		FileName:    "feedback-fr-1.csv",
		ContentType: "text/csv",
		Data:        []byte("Appraiser,Answer #,Answer\n"),
	}}
	h := NewFeedbackRequestHandler(&feedbackServiceMock{}, mockExport)

	c, w := newFeedbackContext(http.MethodGet, "/feedback-requests/fr-1/export", nil)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}}

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, mockExport.format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "feedback-fr-1.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestFeedbackHandlerListForPDM(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{pdm: []dto.PDMFeedback{{Status: string(models.StatusPendingApproval)}}}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	c, w := newFeedbackContext(http.MethodGet, "/pdm/feedback-requests", nil)
	authenticate(c, "pdm-1")

	h.ListForPDM(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdm-1", mockSvc.lastRequester)
}

func TestFeedbackHandlerNotifyAppraisersQueued(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewFeedbackRequestHandler(&feedbackServiceMock{}, nil)

	c, w := newFeedbackContext(http.MethodPost, "/feedback-requests/fr-1/notify-appraisers", nil)
	c.Params = gin.Params{{Key: "id", Value: "fr-1"}}

	h.NotifyAppraisers(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestFeedbackHandlerInternalErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &feedbackServiceMock{err: appErrors.Wrap(errors.New("boom"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback requests")}
	h := NewFeedbackRequestHandler(mockSvc, nil)

	c, w := newFeedbackContext(http.MethodGet, "/feedback-requests", nil)

	h.List(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrInternal.Code, envelope.Error.Code)
}
