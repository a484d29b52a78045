package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/platform/httpx"
)

type mockRepo struct {
	overview       *BranchOverview
	overviewCalls  int
	attendance     *AttendanceSummary
	attendanceFrom string
	attendanceTo   string
	distribution   *GradeDistribution
	branchIDs      []int64
}

func (m *mockRepo) BranchOverview(ctx context.Context, branchID int64) (*BranchOverview, error) {
	m.overviewCalls++
	return m.overview, nil
}

func (m *mockRepo) AttendanceSummary(ctx context.Context, branchID int64, from, to string) (*AttendanceSummary, error) {
	m.attendanceFrom = from
	m.attendanceTo = to
	return m.attendance, nil
}

func (m *mockRepo) GradeDistribution(ctx context.Context, courseID int64, term string) (*GradeDistribution, error) {
	return m.distribution, nil
}

func (m *mockRepo) BranchIDs(ctx context.Context) ([]int64, error) {
	return m.branchIDs, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute), nil)
}

func TestBranchOverviewCaches(t *testing.T) {
	repo := &mockRepo{overview: &BranchOverview{BranchID: 1, BranchName: "Main Campus", StudentCount: 120}}
	svc := newTestService(t, repo)

	first, err := svc.BranchOverview(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 120, first.StudentCount)

	second, err := svc.BranchOverview(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.overviewCalls, "second read must come from cache")
}

func TestInvalidateBustsCache(t *testing.T) {
	repo := &mockRepo{overview: &BranchOverview{BranchID: 1, StudentCount: 120}}
	svc := newTestService(t, repo)

	_, err := svc.BranchOverview(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(context.Background()))
	repo.overview = &BranchOverview{BranchID: 1, StudentCount: 121}

	fresh, err := svc.BranchOverview(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 121, fresh.StudentCount)
	assert.Equal(t, 2, repo.overviewCalls)
}

func TestAttendanceSummaryDefaultsRange(t *testing.T) {
	repo := &mockRepo{attendance: &AttendanceSummary{BranchID: 1, Total: 450}}
	svc := newTestService(t, repo)

	_, err := svc.AttendanceSummary(context.Background(), 1, "", "")
	require.NoError(t, err)

	to, err := time.Parse("2006-01-02", repo.attendanceTo)
	require.NoError(t, err)
	from, err := time.Parse("2006-01-02", repo.attendanceFrom)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, to.Sub(from))
}

func TestAttendanceSummaryRejectsInvertedRange(t *testing.T) {
	svc := newTestService(t, &mockRepo{attendance: &AttendanceSummary{}})

	_, err := svc.AttendanceSummary(context.Background(), 1, "2026-09-01", "2026-08-01")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestAttendanceSummaryRejectsBadDate(t *testing.T) {
	svc := newTestService(t, &mockRepo{attendance: &AttendanceSummary{}})

	_, err := svc.AttendanceSummary(context.Background(), 1, "01/08/2026", "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGradeDistributionRequiresTerm(t *testing.T) {
	svc := newTestService(t, &mockRepo{distribution: &GradeDistribution{}})

	_, err := svc.GradeDistribution(context.Background(), 2, "  ")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestWarmupTouchesEveryBranch(t *testing.T) {
	repo := &mockRepo{
		overview:  &BranchOverview{},
		branchIDs: []int64{1, 2, 3},
	}
	svc := newTestService(t, repo)

	require.NoError(t, svc.Warmup(context.Background()))
	assert.Equal(t, 3, repo.overviewCalls)
}
