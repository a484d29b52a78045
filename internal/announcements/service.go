package announcements

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// FanoutEnqueuer hands a published announcement to the background
// worker for delivery. Satisfied by the jobs client.
type FanoutEnqueuer interface {
	EnqueueAnnouncementFanout(ctx context.Context, announcementID int64) error
}

// IdempotencyGuard records publish keys so a retried publish request
// never fans out twice.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

type Service struct {
	repo     Repository
	enqueuer FanoutEnqueuer
	idem     IdempotencyGuard
	audit    AuditRecorder
	logger   *slog.Logger
}

func NewService(repo Repository, enqueuer FanoutEnqueuer, idem IdempotencyGuard, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, enqueuer: enqueuer, idem: idem, audit: audit, logger: logger}
}

func (s *Service) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Announcement, shared.Pagination, error) {
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
		items = []Announcement{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Announcement, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateAnnouncementInput, actorID int64) (*Announcement, error) {
	audience := Audience(strings.ToLower(strings.TrimSpace(req.Audience)))
	if !audience.Valid() {
		return nil, httpx.Validation("audience invalid")
	}
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, httpx.Validation(strings.Join(missing, ", ") + " required")
	}

	created, err := s.repo.Create(ctx, Announcement{
		BranchID: req.BranchID,
		AuthorID: actorID,
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		Audience: audience,
		Status:   StatusDraft,
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "create", created.ID)
	return created, nil
}

// Update edits a draft. Published announcements are immutable.
func (s *Service) Update(ctx context.Context, id int64, req UpdateAnnouncementInput, actorID int64) (*Announcement, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusPublished {
		return nil, httpx.Conflict("published announcements cannot be edited")
	}

	updates := make(map[string]any)
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, httpx.Validation("title required")
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return nil, httpx.Validation("body required")
		}
		updates["body"] = *req.Body
	}
	if req.Audience != nil {
		audience := Audience(strings.ToLower(strings.TrimSpace(*req.Audience)))
		if !audience.Valid() {
			return nil, httpx.Validation("audience invalid")
		}
		updates["audience"] = audience
	}

	if len(updates) == 0 {
		return current, nil
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

// Publish transitions a draft to published and hands delivery to the
// worker. The idempotency key pins the fanout to at most once even if
// the enqueue is retried after a transient failure.
func (s *Service) Publish(ctx context.Context, id int64, actorID int64) (*Announcement, error) {
	published, err := s.repo.MarkPublished(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or already published; Get disambiguates.
			if _, getErr := s.repo.Get(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, httpx.Conflict("announcement is already published")
		}
		return nil, err
	}

	if s.idem != nil {
		key := "announcement:" + strconv.FormatInt(id, 10)
		if err := s.idem.CheckAndInsert(ctx, key, "announcements"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return published, nil
			}
			s.logger.Warn("announcement idempotency", slog.Any("error", err))
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAnnouncementFanout(ctx, id); err != nil {
			// Row is already published; an operator can re-trigger
			// delivery, so log instead of failing the request.
			s.logger.Error("enqueue announcement fanout",
				slog.Int64("announcement_id", id), slog.Any("error", err))
		}
	}
	s.recordAudit(ctx, actorID, "publish", id)
	return published, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "announcement",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("record announcement audit", slog.Any("error", err))
	}
}
