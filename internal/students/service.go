package students

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

const birthDateLayout = "2006-01-02"

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

func (s *Service) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Student, shared.Pagination, error) {
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
		items = []Student{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*StudentDetail, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateStudentInput, actorID int64) (*Student, error) {
	var missing []string
	if strings.TrimSpace(req.NIS) == "" {
		missing = append(missing, "nis")
	}
	if strings.TrimSpace(req.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if len(missing) > 0 {
		return nil, httpx.Validation(strings.Join(missing, ", ") + " required")
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, Student{
		BranchID:      req.BranchID,
		NIS:           strings.TrimSpace(req.NIS),
		FullName:      shared.NormalizeName(req.FullName),
		Email:         req.Email,
		Phone:         req.Phone,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		BirthDate:     birthDate,
		Gender:        req.Gender,
		Address:       req.Address,
		GradeLevel:    req.GradeLevel,
		IsActive:      true,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateStudentInput, actorID int64) (*Student, error) {
	updates := make(map[string]any)
	if req.NIS != nil {
		if strings.TrimSpace(*req.NIS) == "" {
			return nil, httpx.Validation("nis required")
		}
		updates["nis"] = strings.TrimSpace(*req.NIS)
	}
	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, httpx.Validation("full_name required")
		}
		updates["full_name"] = shared.NormalizeName(*req.FullName)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.GuardianName != nil {
		updates["guardian_name"] = *req.GuardianName
	}
	if req.GuardianPhone != nil {
		updates["guardian_phone"] = *req.GuardianPhone
	}
	if req.BirthDate != nil {
		birthDate, err := parseBirthDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		updates["birth_date"] = birthDate
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.GradeLevel != nil {
		updates["grade_level"] = *req.GradeLevel
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		detail, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		st := detail.Student
		return &st, nil
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

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(birthDateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, httpx.Validation("birth_date invalid, expected YYYY-MM-DD")
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
		Entity:   "student",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record student audit", slog.Any("error", err))
	}
}
