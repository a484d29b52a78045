package attendance

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

const dateLayout = "2006-01-02"

type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReportInvalidator busts cached report aggregates after a write.
// Satisfied by the reports service.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo    Repository
	audit   AuditRecorder
	reports ReportInvalidator
	logger  *slog.Logger
}

func NewService(repo Repository, audit AuditRecorder, reports ReportInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, reports: reports, logger: logger}
}

func (s *Service) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]RecordRow, shared.Pagination, error) {
	if q.Page < 1 {
		q.Page = shared.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = shared.DefaultLimit
	}
	items, total, err := s.repo.List(ctx, q, f)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if items == nil {
		items = []RecordRow{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRecordInput, actorID int64) (*Record, error) {
	status := Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, httpx.Validation("status invalid")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, Record{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		Date:       date,
		Status:     status,
		Notes:      req.Notes,
		RecordedBy: actorID,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	s.bustReports(ctx)
	return created, nil
}

// BulkRecord writes a full class sheet for one date. Statuses are
// validated up front so an invalid row rejects the sheet before any
// writes happen.
func (s *Service) BulkRecord(ctx context.Context, req BulkRecordInput, actorID int64) (*BulkResult, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if len(req.Entries) == 0 {
		return nil, httpx.Validation("entries required")
	}

	recs := make([]Record, 0, len(req.Entries))
	for _, entry := range req.Entries {
		status := Status(strings.ToLower(strings.TrimSpace(entry.Status)))
		if !status.Valid() {
			return nil, httpx.Validation("status invalid for student " + strconv.FormatInt(entry.StudentID, 10))
		}
		recs = append(recs, Record{
			StudentID:  entry.StudentID,
			CourseID:   req.CourseID,
			Date:       date,
			Status:     status,
			Notes:      entry.Notes,
			RecordedBy: actorID,
		})
	}

	result, err := s.repo.BulkCreate(ctx, recs)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "bulk_record", req.CourseID)
	s.bustReports(ctx)
	return result, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRecordInput, actorID int64) (*Record, error) {
	updates := make(map[string]any)
	if req.Status != nil {
		status := Status(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			return nil, httpx.Validation("status invalid")
		}
		updates["status"] = status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}
	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "update", id)
	s.bustReports(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", id)
	s.bustReports(ctx)
	return nil
}

// bustReports bumps the report cache version so attendance summaries
// are recomputed on the next read. Failure leaves the TTL as backstop.
func (s *Service) bustReports(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate report cache", slog.Any("error", err))
	}
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, httpx.Validation("date invalid, expected YYYY-MM-DD")
	}
	return t, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "attendance",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record attendance audit", slog.Any("error", err))
	}
}
