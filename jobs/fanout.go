package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FanoutProcessor resolves a published announcement's audience and
// enqueues one email per recipient. It runs inside the worker, not the
// API process, so a large audience never blocks a request.
type FanoutProcessor struct {
	pool   *pgxpool.Pool
	client *Client
	logger *slog.Logger
}

func NewFanoutProcessor(pool *pgxpool.Pool, client *Client, logger *slog.Logger) *FanoutProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FanoutProcessor{pool: pool, client: client, logger: logger}
}

// Handle processes TaskTypeAnnouncementFanout tasks.
func (p *FanoutProcessor) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AnnouncementFanoutPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var (
		branchID int64
		title    string
		body     string
		audience string
		status   string
	)
	err := p.pool.QueryRow(ctx, `
		SELECT branch_id, title, body, audience, status
		FROM announcements WHERE id = $1`, payload.AnnouncementID).
		Scan(&branchID, &title, &body, &audience, &status)
	if err != nil {
		p.logger.Warn("fanout: announcement lookup",
			slog.Int64("announcement_id", payload.AnnouncementID), slog.Any("error", err))
		return asynq.SkipRetry
	}
	if status != "published" {
		return asynq.SkipRetry
	}

	emails, err := p.recipients(ctx, branchID, audience)
	if err != nil {
		return err
	}
	for _, email := range emails {
		if _, err := p.client.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      email,
			Subject: title,
			Body:    body,
		}); err != nil {
			return fmt.Errorf("fanout enqueue %s: %w", email, err)
		}
	}
	p.logger.Info("announcement fanned out",
		slog.Int64("announcement_id", payload.AnnouncementID),
		slog.Int("recipients", len(emails)))
	return nil
}

func (p *FanoutProcessor) recipients(ctx context.Context, branchID int64, audience string) ([]string, error) {
	var query string
	switch audience {
	case "students":
		query = `SELECT email FROM students WHERE branch_id = $1 AND is_active AND email IS NOT NULL`
	case "teachers":
		query = `SELECT email FROM teachers WHERE branch_id = $1 AND is_active`
	case "staff":
		query = `SELECT email FROM users WHERE branch_id = $1 AND is_active`
	default: // all
		query = `
			SELECT email FROM users WHERE branch_id = $1 AND is_active
			UNION
			SELECT email FROM teachers WHERE branch_id = $1 AND is_active
			UNION
			SELECT email FROM students WHERE branch_id = $1 AND is_active AND email IS NOT NULL`
	}
	rows, err := p.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		if email != "" {
			emails = append(emails, email)
		}
	}
	return emails, rows.Err()
}
