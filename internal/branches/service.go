package branches

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

const (
	defaultTimezone = "UTC"
	defaultCurrency = "USD"
)

// AuditRecorder captures mutation history. Satisfied by shared.AuditLogger.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements the branch entity contract: validate, default, call
// storage, and classify every failure into a known error kind. Nothing
// past this boundary sees a raw storage error.
type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns one page of branches with pagination metadata. The slice and
// the total always reflect the same search predicate.
func (s *Service) List(ctx context.Context, q shared.PageQuery) ([]Branch, shared.Pagination, error) {
	if q.Page < 1 {
		q.Page = shared.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = shared.DefaultLimit
	}
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if items == nil {
		items = []Branch{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

// Get fetches a branch with member summaries. A missing row is a normal
// outcome, distinguished from storage failure by its error kind.
func (s *Service) Get(ctx context.Context, id int64) (*BranchDetail, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the payload, applies defaults and inserts the branch.
// Validation runs before any write reaches storage.
func (s *Service) Create(ctx context.Context, req CreateBranchRequest, actorID int64) (*Branch, error) {
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

	branch := Branch{
		Name:         strings.TrimSpace(req.Name),
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Phone:        req.Phone,
		Email:        req.Email,
		Timezone:     req.Timezone,
		Currency:     req.Currency,
		IsActive:     true,
	}
	if branch.Timezone == "" {
		branch.Timezone = defaultTimezone
	}
	if branch.Currency == "" {
		branch.Currency = defaultCurrency
	}

	created, err := s.repo.Create(ctx, branch)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	return created, nil
}

// Update writes only the fields present in the request.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBranchRequest, actorID int64) (*Branch, error) {
	updates := make(map[string]any)
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
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		detail, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		b := detail.Branch
		return &b, nil
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "update", id)
	return updated, nil
}

// Delete removes the branch. Referential violations surface as conflicts.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "delete", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "branch",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record branch audit", slog.Any("error", err))
	}
}
