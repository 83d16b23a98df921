package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nextgen-hr/feedback-request-api/internal/models"
)

const feedbackRequestColumns = "id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message"

// FeedbackRequestRepository persists feedback request aggregates. Appraisers,
// questions and answers live in position-ordered child tables owned
// exclusively by the root row.
type FeedbackRequestRepository struct {
	db *sqlx.DB
}

// NewFeedbackRequestRepository constructs a new repository.
func NewFeedbackRequestRepository(db *sqlx.DB) *FeedbackRequestRepository {
	return &FeedbackRequestRepository{db: db}
}

type feedbackRequestRow struct {
	ID            string         `db:"id"`
	RequesterID   string         `db:"requester_id"`
	CreatedAt     time.Time      `db:"created_at"`
	ApprovedAt    sql.NullTime   `db:"approved_at"`
	RejectedAt    sql.NullTime   `db:"rejected_at"`
	EditedAt      sql.NullTime   `db:"edited_at"`
	RejectMessage sql.NullString `db:"reject_message"`
}

func (row feedbackRequestRow) toModel() models.FeedbackRequest {
	fr := models.FeedbackRequest{
		ID:          row.ID,
		RequesterID: row.RequesterID,
		CreatedAt:   row.CreatedAt,
	}
	if row.ApprovedAt.Valid {
		t := row.ApprovedAt.Time
		fr.ApprovedAt = &t
	}
	if row.RejectedAt.Valid {
		t := row.RejectedAt.Time
		fr.RejectedAt = &t
	}
	if row.EditedAt.Valid {
		t := row.EditedAt.Time
		fr.EditedAt = &t
	}
	if row.RejectMessage.Valid {
		fr.RejectMessage = row.RejectMessage.String
	}
	return fr
}

// FindByID loads one aggregate with its collections. Returns (nil, nil) when
// the id is unknown.
func (r *FeedbackRequestRepository) FindByID(ctx context.Context, id string) (*models.FeedbackRequest, error) {
	var row feedbackRequestRow
	query := fmt.Sprintf("SELECT %s FROM feedback_requests WHERE id = $1", feedbackRequestColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find feedback request %s: %w", id, err)
	}
	fr := row.toModel()
	if err := r.loadCollections(ctx, []*models.FeedbackRequest{&fr}); err != nil {
		return nil, err
	}
	return &fr, nil
}

// FindByRequesterID returns all requests opened by one requester.
func (r *FeedbackRequestRepository) FindByRequesterID(ctx context.Context, requesterID string) ([]models.FeedbackRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM feedback_requests WHERE requester_id = $1 ORDER BY created_at DESC", feedbackRequestColumns)
	return r.list(ctx, query, requesterID)
}

// FindAll returns every stored request.
func (r *FeedbackRequestRepository) FindAll(ctx context.Context) ([]models.FeedbackRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM feedback_requests ORDER BY created_at DESC", feedbackRequestColumns)
	return r.list(ctx, query)
}

// FindAllApproved returns requests that carry an approval timestamp.
func (r *FeedbackRequestRepository) FindAllApproved(ctx context.Context) ([]models.FeedbackRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM feedback_requests WHERE approved_at IS NOT NULL ORDER BY created_at DESC", feedbackRequestColumns)
	return r.list(ctx, query)
}

// FindAllPending returns requests that were never approved.
func (r *FeedbackRequestRepository) FindAllPending(ctx context.Context) ([]models.FeedbackRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM feedback_requests WHERE approved_at IS NULL ORDER BY created_at DESC", feedbackRequestColumns)
	return r.list(ctx, query)
}

func (r *FeedbackRequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.FeedbackRequest, error) {
	var rows []feedbackRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list feedback requests: %w", err)
	}
	requests := make([]models.FeedbackRequest, len(rows))
	refs := make([]*models.FeedbackRequest, len(rows))
	for i, row := range rows {
		requests[i] = row.toModel()
		refs[i] = &requests[i]
	}
	if err := r.loadCollections(ctx, refs); err != nil {
		return nil, err
	}
	return requests, nil
}

// Save upserts the root row and rewrites the owned collections in a single
// transaction; ids are assigned here on first save.
func (r *FeedbackRequestRepository) Save(ctx context.Context, fr *models.FeedbackRequest) (*models.FeedbackRequest, error) {
	if fr.ID == "" {
		fr.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save feedback request: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	root := `INSERT INTO feedback_requests (id, requester_id, created_at, approved_at, rejected_at, edited_at, reject_message)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	approved_at = EXCLUDED.approved_at,
	rejected_at = EXCLUDED.rejected_at,
	edited_at = EXCLUDED.edited_at,
	reject_message = EXCLUDED.reject_message`
	if _, err := tx.ExecContext(ctx, root,
		fr.ID, fr.RequesterID, fr.CreatedAt,
		nullTime(fr.ApprovedAt), nullTime(fr.RejectedAt), nullTime(fr.EditedAt),
		nullString(fr.RejectMessage),
	); err != nil {
		return nil, fmt.Errorf("save feedback request %s: %w", fr.ID, err)
	}

	for _, table := range []string{"feedback_request_appraisers", "feedback_request_questions", "feedback_request_answers"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE feedback_request_id = $1", table), fr.ID); err != nil {
			return nil, fmt.Errorf("clear %s for %s: %w", table, fr.ID, err)
		}
	}

	for i, appraiser := range fr.Appraisers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO feedback_request_appraisers (feedback_request_id, position, email) VALUES ($1, $2, $3)",
			fr.ID, i, appraiser.Email,
		); err != nil {
			return nil, fmt.Errorf("save appraiser for %s: %w", fr.ID, err)
		}
	}
	for i, question := range fr.Questions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO feedback_request_questions (feedback_request_id, position, text) VALUES ($1, $2, $3)",
			fr.ID, i, question.Text,
		); err != nil {
			return nil, fmt.Errorf("save question for %s: %w", fr.ID, err)
		}
	}
	for i, answer := range fr.Answers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO feedback_request_answers (feedback_request_id, position, appraiser_email, text) VALUES ($1, $2, $3, $4)",
			fr.ID, i, answer.AppraiserEmail, answer.Text,
		); err != nil {
			return nil, fmt.Errorf("save answer for %s: %w", fr.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit feedback request %s: %w", fr.ID, err)
	}
	return fr, nil
}

// Delete removes the aggregate. Child rows cascade via foreign keys.
func (r *FeedbackRequestRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM feedback_requests WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete feedback request %s: %w", id, err)
	}
	return nil
}

func (r *FeedbackRequestRepository) loadCollections(ctx context.Context, requests []*models.FeedbackRequest) error {
	if len(requests) == 0 {
		return nil
	}
	ids := make([]string, len(requests))
	byID := make(map[string]*models.FeedbackRequest, len(requests))
	for i, fr := range requests {
		ids[i] = fr.ID
		byID[fr.ID] = fr
	}

	type appraiserRow struct {
		FeedbackRequestID string `db:"feedback_request_id"`
		Email             string `db:"email"`
	}
	var appraisers []appraiserRow
	if err := r.db.SelectContext(ctx, &appraisers,
		"SELECT feedback_request_id, email FROM feedback_request_appraisers WHERE feedback_request_id = ANY($1) ORDER BY feedback_request_id, position",
		pq.Array(ids),
	); err != nil {
		return fmt.Errorf("load appraisers: %w", err)
	}
	for _, row := range appraisers {
		fr := byID[row.FeedbackRequestID]
		fr.Appraisers = append(fr.Appraisers, models.Appraiser{Email: row.Email})
	}

	type questionRow struct {
		FeedbackRequestID string `db:"feedback_request_id"`
		Text              string `db:"text"`
	}
	var questions []questionRow
	if err := r.db.SelectContext(ctx, &questions,
		"SELECT feedback_request_id, text FROM feedback_request_questions WHERE feedback_request_id = ANY($1) ORDER BY feedback_request_id, position",
		pq.Array(ids),
	); err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	for _, row := range questions {
		fr := byID[row.FeedbackRequestID]
		fr.Questions = append(fr.Questions, models.Question{Text: row.Text})
	}

	type answerRow struct {
		FeedbackRequestID string `db:"feedback_request_id"`
		AppraiserEmail    string `db:"appraiser_email"`
		Text              string `db:"text"`
	}
	var answers []answerRow
	if err := r.db.SelectContext(ctx, &answers,
		"SELECT feedback_request_id, appraiser_email, text FROM feedback_request_answers WHERE feedback_request_id = ANY($1) ORDER BY feedback_request_id, position",
		pq.Array(ids),
	); err != nil {
		return fmt.Errorf("load answers: %w", err)
	}
	for _, row := range answers {
		fr := byID[row.FeedbackRequestID]
		fr.Answers = append(fr.Answers, models.Answer{AppraiserEmail: row.AppraiserEmail, Text: row.Text})
	}

	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
