package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nextgen-hr/feedback-request-api/pkg/jobs"
)

// Mailer sends a single notification email.
type Mailer interface {
	SendEmail(ctx context.Context, recipient, subject, body string) error
}

// EmailJob is the payload queued for asynchronous delivery.
type EmailJob struct {
	Recipient string
	Subject   string
	Body      string
}

// NotificationDispatcher decouples workflow steps from email delivery: the
// orchestrator enqueues, the worker pool sends. Delivery failures are
// retried by the queue and otherwise only logged, keeping the best-effort
// channel separate from the strict invariant path.
type NotificationDispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationDispatcher builds the dispatcher on top of the shared job
// queue machinery.
func NewNotificationDispatcher(mailer Mailer, workers int, logger *zap.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(EmailJob)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return mailer.SendEmail(ctx, payload.Recipient, payload.Subject, payload.Body)
	}
	queue := jobs.NewQueue("notifications", handler, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return &NotificationDispatcher{queue: queue, logger: logger}
}

// Start launches the delivery workers.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *NotificationDispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch enqueues one email. A full queue is logged and dropped rather
// than blocking the calling workflow.
func (d *NotificationDispatcher) Dispatch(recipient, subject, body string) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "email",
		Payload: EmailJob{Recipient: recipient, Subject: subject, Body: body},
	}
	if err := d.queue.Enqueue(job); err != nil {
		d.logger.Warn("notification dropped",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err))
	}
}
