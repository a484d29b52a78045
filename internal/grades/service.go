package grades

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReportInvalidator busts cached report aggregates after a write.
// Satisfied by the reports service.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service records assessment scores. The student must be enrolled in
// the course before a score may be recorded against it.
type Service struct {
	repo       Repository
	enrollment EnrollmentChecker
	audit      AuditRecorder
	reports    ReportInvalidator
	logger     *slog.Logger
}

// EnrollmentChecker answers whether a student is enrolled in a course.
// Satisfied by the courses repository.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, courseID, studentID int64) (bool, error)
}

func NewService(repo Repository, enrollment EnrollmentChecker, audit AuditRecorder, reports ReportInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, enrollment: enrollment, audit: audit, reports: reports, logger: logger}
}

func (s *Service) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]GradeRow, shared.Pagination, error) {
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
		items = []GradeRow{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Grade, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateGradeInput, actorID int64) (*Grade, error) {
	component := Component(strings.ToLower(strings.TrimSpace(req.Component)))
	if !component.Valid() {
		return nil, httpx.Validation("component invalid")
	}
	if req.Score < 0 || req.Score > 100 {
		return nil, httpx.Validation("score must be between 0 and 100")
	}
	if s.enrollment != nil {
		enrolled, err := s.enrollment.IsEnrolled(ctx, req.CourseID, req.StudentID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, httpx.Validation("student is not enrolled in this course")
		}
	}

	created, err := s.repo.Create(ctx, Grade{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		Component:  component,
		Score:      req.Score,
		Term:       strings.TrimSpace(req.Term),
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

func (s *Service) Update(ctx context.Context, id int64, req UpdateGradeInput, actorID int64) (*Grade, error) {
	updates := make(map[string]any)
	if req.Score != nil {
		if *req.Score < 0 || *req.Score > 100 {
			return nil, httpx.Validation("score must be between 0 and 100")
		}
		updates["score"] = *req.Score
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

// bustReports bumps the report cache version so grade distributions are
// recomputed on the next read. Failure leaves the TTL as backstop.
func (s *Service) bustReports(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate report cache", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "grade",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record grade audit", slog.Any("error", err))
	}
}
