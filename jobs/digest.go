package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskTypeAttendanceDigest mails branch staff a summary of the previous
// day's attendance. Scheduled nightly after the school day closes.
const TaskTypeAttendanceDigest = "attendance:digest"

// NewAttendanceDigestTask constructs the digest task. It carries no
// payload; the handler always covers the previous calendar day.
func NewAttendanceDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAttendanceDigest, nil)
}

// DigestProcessor aggregates yesterday's attendance per branch and
// enqueues one summary email per active staff account.
type DigestProcessor struct {
	pool   *pgxpool.Pool
	client *Client
	logger *slog.Logger
}

func NewDigestProcessor(pool *pgxpool.Pool, client *Client, logger *slog.Logger) *DigestProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigestProcessor{pool: pool, client: client, logger: logger}
}

type digestRow struct {
	branchID   int64
	branchName string
	status     string
	count      int
}

// Handle processes TaskTypeAttendanceDigest tasks.
func (p *DigestProcessor) Handle(ctx context.Context, t *asynq.Task) error {
	day := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)

	rows, err := p.pool.Query(ctx, `
		SELECT b.id, b.name, a.status, COUNT(*)
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id
		JOIN branches b ON b.id = s.branch_id
		WHERE a.date = $1
		GROUP BY b.id, b.name, a.status
		ORDER BY b.name, a.status`, day)
	if err != nil {
		return fmt.Errorf("digest query: %w", err)
	}
	defer rows.Close()

	byBranch := map[int64][]digestRow{}
	for rows.Next() {
		var r digestRow
		if err := rows.Scan(&r.branchID, &r.branchName, &r.status, &r.count); err != nil {
			return err
		}
		byBranch[r.branchID] = append(byBranch[r.branchID], r)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(byBranch) == 0 {
		p.logger.Info("attendance digest: no records", slog.Time("day", day))
		return nil
	}

	for branchID, branchRows := range byBranch {
		emails, err := p.staffEmails(ctx, branchID)
		if err != nil {
			return err
		}
		subject := fmt.Sprintf("Attendance digest %s (%s)",
			day.Format("2006-01-02"), branchRows[0].branchName)
		body := digestBody(day, branchRows)
		for _, email := range emails {
			if _, err := p.client.EnqueueSendEmail(ctx, SendEmailPayload{
				To:      email,
				Subject: subject,
				Body:    body,
			}); err != nil {
				return fmt.Errorf("digest enqueue %s: %w", email, err)
			}
		}
		p.logger.Info("attendance digest sent",
			slog.Int64("branch_id", branchID), slog.Int("recipients", len(emails)))
	}
	return nil
}

func (p *DigestProcessor) staffEmails(ctx context.Context, branchID int64) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT email FROM users
		WHERE branch_id = $1 AND is_active AND role IN ('admin', 'staff')`, branchID)
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

func digestBody(day time.Time, rows []digestRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance summary for %s\n\n", day.Format("Monday, 2 January 2006"))
	total := 0
	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %d\n", r.status, r.count)
		total += r.count
	}
	fmt.Fprintf(&b, "\nTotal records: %d\n", total)
	return b.String()
}
