package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nextgen-hr/feedback-request-api/internal/models"
	appErrors "github.com/nextgen-hr/feedback-request-api/pkg/errors"
)

// DirectoryConfig configures the user-management service client.
type DirectoryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DirectoryService resolves identities against the user-management service.
// Callers forward the bearer token of the original request.
type DirectoryService struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewDirectoryService constructs the directory client.
func NewDirectoryService(config DirectoryConfig, logger *zap.Logger) *DirectoryService {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		baseURL: config.BaseURL,
		client:  &http.Client{Timeout: config.Timeout},
		logger:  logger,
	}
}

// GetUser fetches one user record, including the PDM assignment.
func (s *DirectoryService) GetUser(ctx context.Context, userID, bearerToken string) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	if err := s.getJSON(ctx, fmt.Sprintf("%s/user/%s", s.baseURL, userID), bearerToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCollaborators fetches the direct reports of a PDM.
func (s *DirectoryService) GetCollaborators(ctx context.Context, pdmID, bearerToken string) ([]models.Collaborator, error) {
	var collaborators []models.Collaborator
	if err := s.getJSON(ctx, fmt.Sprintf("%s/pdm/%s/collaborators", s.baseURL, pdmID), bearerToken, &collaborators); err != nil {
		return nil, err
	}
	return collaborators, nil
}

func (s *DirectoryService) getJSON(ctx context.Context, url, bearerToken string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("directory request %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, "directory record not found")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrUnauthorized, "directory rejected credentials")
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("directory request %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}
