package reports

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/scholaris/scholaris/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Service serves aggregated reports through the versioned cache. Every
// read goes through FetchJSON so a cold cache and a warm cache return
// identical shapes.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) BranchOverview(ctx context.Context, branchID int64) (*BranchOverview, error) {
	key, err := s.cache.BuildKey(ctx, keyOverview(branchID))
	if err != nil {
		return nil, err
	}
	var overview BranchOverview
	err = s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
		return s.repo.BranchOverview(ctx, branchID)
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}

func (s *Service) AttendanceSummary(ctx context.Context, branchID int64, from, to string) (*AttendanceSummary, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	key, err := s.cache.BuildKey(ctx, keyAttendance(branchID, from, to))
	if err != nil {
		return nil, err
	}
	var summary AttendanceSummary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		return s.repo.AttendanceSummary(ctx, branchID, from, to)
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) GradeDistribution(ctx context.Context, courseID int64, term string) (*GradeDistribution, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, httpx.Validation("term required")
	}
	key, err := s.cache.BuildKey(ctx, keyGrades(courseID, term))
	if err != nil {
		return nil, err
	}
	var dist GradeDistribution
	err = s.cache.FetchJSON(ctx, key, &dist, func(ctx context.Context) (interface{}, error) {
		return s.repo.GradeDistribution(ctx, courseID, term)
	})
	if err != nil {
		return nil, err
	}
	return &dist, nil
}

// Invalidate bumps the report cache version. The grades and attendance
// services call it after every write so cached aggregates never outlive
// the data they summarize.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warmup refreshes the overview report of every active branch. Run
// from the background worker on a schedule.
func (s *Service) Warmup(ctx context.Context) error {
	ids, err := s.repo.BranchIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.BranchOverview(ctx, id); err != nil {
			s.logger.Warn("report warmup", slog.Int64("branch_id", id), slog.Any("error", err))
		}
	}
	return nil
}

// normalizeRange validates the pair and defaults to the last 30 days.
func normalizeRange(from, to string) (string, string, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(to) == "" {
		to = now.Format(dateLayout)
	}
	if strings.TrimSpace(from) == "" {
		from = now.AddDate(0, 0, -30).Format(dateLayout)
	}
	fromT, err := time.Parse(dateLayout, from)
	if err != nil {
		return "", "", httpx.Validation("date_from invalid, expected YYYY-MM-DD")
	}
	toT, err := time.Parse(dateLayout, to)
	if err != nil {
		return "", "", httpx.Validation("date_to invalid, expected YYYY-MM-DD")
	}
	if fromT.After(toT) {
		return "", "", httpx.Validation("date_from must not be after date_to")
	}
	return from, to, nil
}
