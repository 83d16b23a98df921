package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextgen-hr/feedback-request-api/internal/models"
)

func newFeedbackRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func rootRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "requester_id", "created_at", "approved_at", "rejected_at", "edited_at", "reject_message"})
}

func expectCollections(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT feedback_request_id, email FROM feedback_request_appraisers WHERE feedback_request_id = ANY($1) ORDER BY feedback_request_id, position")).
		WillReturnRows(sqlmock.NewRows([]string{"feedback_request_id", "email"}).
			AddRow("fr-1", "reviewer@partner.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT feedback_request_id, text FROM feedback_request_questions WHERE feedback_request_id = ANY($1) ORDER BY feedback_request_id, position")).
		WillReturnRows(sqlmock.NewRows([]string{"feedback_request_id", "text"}).
			AddRow("fr-1", "How was the delivery?").
			AddRow("fr-1", "What should improve?"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT feedback_request_id, appraiser_email, text FROM feedback_request_answers WHERE feedback_request_id = ANY($1) ORDER BY feedback_request_id, position")).
		WillReturnRows(sqlmock.NewRows([]string{"feedback_request_id", "appraiser_email", "text"}).
			AddRow("fr-1", "reviewer@partner.com", "solid work"))
}

func TestFeedbackRequestRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	created := time.Now().UTC()
	approved := created.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message FROM feedback_requests WHERE id = $1")).
		WithArgs("fr-1").
		WillReturnRows(rootRows().AddRow("fr-1", "user-1", created, approved, nil, nil, nil))
	expectCollections(mock)

	fr, err := repo.FindByID(context.Background(), "fr-1")
	require.NoError(t, err)
	require.NotNil(t, fr)
	assert.Equal(t, "fr-1", fr.ID)
	assert.Equal(t, "user-1", fr.RequesterID)
	require.NotNil(t, fr.ApprovedAt)
	assert.Nil(t, fr.RejectedAt)
	require.Len(t, fr.Appraisers, 1)
	require.Len(t, fr.Questions, 2)
	assert.Equal(t, "How was the delivery?", fr.Questions[0].Text)
	require.Len(t, fr.Answers, 1)
	assert.Equal(t, "solid work", fr.Answers[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRequestRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message FROM feedback_requests WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(rootRows())

	fr, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, fr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRequestRepositoryFindByRequesterID(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	created := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message FROM feedback_requests WHERE requester_id = $1 ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(rootRows().AddRow("fr-1", "user-1", created, nil, nil, nil, nil))
	expectCollections(mock)

	list, err := repo.FindByRequesterID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fr-1", list[0].ID)
	assert.Len(t, list[0].Questions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRequestRepositoryFindAllFilters(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message FROM feedback_requests WHERE approved_at IS NOT NULL ORDER BY created_at DESC")).
		WillReturnRows(rootRows())
	list, err := repo.FindAllApproved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message FROM feedback_requests WHERE approved_at IS NULL ORDER BY created_at DESC")).
		WillReturnRows(rootRows())
	list, err = repo.FindAllPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRequestRepositorySave(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	fr := &models.FeedbackRequest{
		RequesterID: "user-1",
		CreatedAt:   time.Now().UTC(),
		Appraisers:  []models.Appraiser{{Email: "reviewer@partner.com"}},
		Questions:   []models.Question{{Text: "q1"}, {Text: "q2"}},
		Answers:     []models.Answer{{AppraiserEmail: "reviewer@partner.com", Text: "a1"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback_requests").
		WithArgs(sqlmock.AnyArg(), "user-1", fr.CreatedAt, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM feedback_request_appraisers WHERE feedback_request_id = $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM feedback_request_questions WHERE feedback_request_id = $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM feedback_request_answers WHERE feedback_request_id = $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO feedback_request_appraisers").
		WithArgs(sqlmock.AnyArg(), 0, "reviewer@partner.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO feedback_request_questions").
		WithArgs(sqlmock.AnyArg(), 0, "q1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO feedback_request_questions").
		WithArgs(sqlmock.AnyArg(), 1, "q2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO feedback_request_answers").
		WithArgs(sqlmock.AnyArg(), 0, "reviewer@partner.com", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), fr)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRequestRepositorySaveKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	fr := &models.FeedbackRequest{ID: "fr-1", RequesterID: "user-1", CreatedAt: time.Now().UTC()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback_requests").
		WithArgs("fr-1", "user-1", fr.CreatedAt, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, table := range []string{"feedback_request_appraisers", "feedback_request_questions", "feedback_request_answers"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM "+table+" WHERE feedback_request_id = $1")).
			WithArgs("fr-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), fr)
	require.NoError(t, err)
	assert.Equal(t, "fr-1", saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRequestRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newFeedbackRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM feedback_requests WHERE id = $1")).
		WithArgs("fr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "fr-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
