package service

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailConfig configures the Resend-backed mailer.
type EmailConfig struct {
	APIKey      string
	FromName    string
	FromAddress string
	Enabled     bool
}

// EmailService delivers workflow notifications through Resend. Callers treat
// delivery as fire-and-forget; a failed send never aborts a workflow step.
type EmailService struct {
	config EmailConfig
	client *resend.Client
	logger *zap.Logger
}

// NewEmailService constructs the mailer.
func NewEmailService(config EmailConfig, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{
		config: config,
		client: resend.NewClient(config.APIKey),
		logger: logger,
	}
}

// SendEmail sends one plain-text message.
func (s *EmailService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	if !s.config.Enabled {
		s.logger.Debug("email delivery disabled, dropping message",
			zap.String("to", recipient),
			zap.String("subject", subject))
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{recipient},
		Subject: subject,
		Text:    body,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		s.logger.Error("email send failed",
			zap.String("to", recipient),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("email send failed: %w", err)
	}

	s.logger.Info("email sent",
		zap.String("to", recipient),
		zap.String("subject", subject))
	return nil
}
