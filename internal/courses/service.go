package courses

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Course, shared.Pagination, error) {
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
		items = []Course{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*CourseDetail, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCourseInput, actorID int64) (*Course, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Code) == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return nil, httpx.Validation(strings.Join(missing, ", ") + " required")
	}

	created, err := s.repo.Create(ctx, Course{
		BranchID:    req.BranchID,
		TeacherID:   req.TeacherID,
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: req.Description,
		Credits:     req.Credits,
		Schedule:    req.Schedule,
		Capacity:    req.Capacity,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCourseInput, actorID int64) (*Course, error) {
	updates := make(map[string]any)
	if req.TeacherID != nil {
		updates["teacher_id"] = *req.TeacherID
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, httpx.Validation("name required")
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		if strings.TrimSpace(*req.Code) == "" {
			return nil, httpx.Validation("code required")
		}
		updates["code"] = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Credits != nil {
		updates["credits"] = *req.Credits
	}
	if req.Schedule != nil {
		updates["schedule"] = *req.Schedule
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		detail, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		c := detail.Course
		return &c, nil
	}
	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "update", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", id)
	return nil
}

// Enroll adds a student to the course after the capacity check. The
// unique pair constraint catches concurrent duplicates that the check
// cannot see.
func (s *Service) Enroll(ctx context.Context, courseID int64, req EnrollInput, actorID int64) (*Enrollment, error) {
	detail, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !detail.IsActive {
		return nil, httpx.Validation("course is inactive")
	}
	if detail.Capacity > 0 {
		enrolled, err := s.repo.EnrolledCount(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if enrolled >= detail.Capacity {
			return nil, httpx.Conflict(fmt.Sprintf("course is full (capacity %d)", detail.Capacity))
		}
	}

	enrollment, err := s.repo.Enroll(ctx, courseID, req.StudentID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "enroll", courseID)
	return enrollment, nil
}

func (s *Service) Unenroll(ctx context.Context, courseID, studentID int64, actorID int64) error {
	if err := s.repo.Unenroll(ctx, courseID, studentID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "unenroll", courseID)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "course",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record course audit", slog.Any("error", err))
	}
}
