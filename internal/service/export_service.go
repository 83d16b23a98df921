package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/nextgen-hr/feedback-request-api/internal/models"
	appErrors "github.com/nextgen-hr/feedback-request-api/pkg/errors"
	"github.com/nextgen-hr/feedback-request-api/pkg/export"
)

// ExportFormat selects the rendering of an answers export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and its metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the collected answers of a feedback round into a
// downloadable document, grouped per appraiser in invitation order.
type ExportService struct {
	repo   feedbackRequestStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService builds an export service.
func NewExportService(repo feedbackRequestStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportAnswers renders the answers of one request in the requested format.
func (s *ExportService) ExportAnswers(ctx context.Context, id string, format ExportFormat) (*ExportResult, error) {
	fr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback request")
	}
	if fr == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("feedback request not found with id: %s", id))
	}

	dataset := buildAnswerDataset(fr)
	title := fmt.Sprintf("Feedback answers - request %s", fr.ID)

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("feedback-%s.csv", fr.ID),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("feedback-%s.pdf", fr.ID),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format: %s", format))
	}
}

func buildAnswerDataset(fr *models.FeedbackRequest) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Appraiser", "Answer #", "Answer"},
	}
	for _, appraiser := range fr.Appraisers {
		answers := fr.AppraiserAnswers(appraiser.Email)
		for i, answer := range answers {
			dataset.Rows = append(dataset.Rows, []string{
				appraiser.Email,
				strconv.Itoa(i + 1),
				answer.Text,
			})
		}
	}
	return dataset
}
