package teachers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

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

func (s *Service) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Teacher, shared.Pagination, error) {
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
		items = []Teacher{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*TeacherDetail, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateTeacherInput, actorID int64) (*Teacher, error) {
	var missing []string
	if strings.TrimSpace(req.NIP) == "" {
		missing = append(missing, "nip")
	}
	if strings.TrimSpace(req.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, httpx.Validation(strings.Join(missing, ", ") + " required")
	}

	hireDate, err := parseHireDate(req.HireDate)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, Teacher{
		BranchID:  req.BranchID,
		NIP:       strings.TrimSpace(req.NIP),
		FullName:  shared.NormalizeName(req.FullName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Expertise: req.Expertise,
		HireDate:  hireDate,
		IsActive:  true,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateTeacherInput, actorID int64) (*Teacher, error) {
	updates := make(map[string]any)
	if req.NIP != nil {
		if strings.TrimSpace(*req.NIP) == "" {
			return nil, httpx.Validation("nip required")
		}
		updates["nip"] = strings.TrimSpace(*req.NIP)
	}
	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, httpx.Validation("full_name required")
		}
		updates["full_name"] = shared.NormalizeName(*req.FullName)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Expertise != nil {
		updates["expertise"] = *req.Expertise
	}
	if req.HireDate != nil {
		hireDate, err := parseHireDate(req.HireDate)
		if err != nil {
			return nil, err
		}
		updates["hire_date"] = hireDate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		detail, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		t := detail.Teacher
		return &t, nil
	}
	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "update", id)
	return updated, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "deactivate", id)
	return nil
}

func parseHireDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, httpx.Validation("hire_date invalid, expected YYYY-MM-DD")
	}
	return &t, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "teacher",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record teacher audit", slog.Any("error", err))
	}
}
