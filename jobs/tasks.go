package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeAnnouncementFanout delivers a published announcement to
	// its audience.
	TaskTypeAnnouncementFanout = "announcements:fanout"
	// TaskTypeReportWarmup refreshes cached branch reports.
	TaskTypeReportWarmup = "reports:warmup"
	// TaskTypeIdempotencyCleanup prunes aged idempotency keys.
	TaskTypeIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder until the SMTP relay is provisioned; the payload
	// shape is final.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// AnnouncementFanoutPayload identifies the announcement to deliver.
type AnnouncementFanoutPayload struct {
	AnnouncementID int64 `json:"announcement_id"`
}

// NewAnnouncementFanoutTask constructs the fanout task.
func NewAnnouncementFanoutTask(payload AnnouncementFanoutPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAnnouncementFanout, data), nil
}

// NewReportWarmupTask constructs the warmup task. It carries no
// payload; the handler refreshes every active branch.
func NewReportWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReportWarmup, nil)
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeIdempotencyCleanup, nil)
}
