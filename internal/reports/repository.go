package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/scholaris/scholaris/internal/platform/httpx"
)

type Repository interface {
	BranchOverview(ctx context.Context, branchID int64) (*BranchOverview, error)
	AttendanceSummary(ctx context.Context, branchID int64, from, to string) (*AttendanceSummary, error)
	GradeDistribution(ctx context.Context, courseID int64, term string) (*GradeDistribution, error)
	BranchIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// BranchOverview runs the count queries concurrently; they are
// independent and each touches a single table.
func (r *repository) BranchOverview(ctx context.Context, branchID int64) (*BranchOverview, error) {
	overview := &BranchOverview{BranchID: branchID}
	if err := r.pool.QueryRow(ctx, `SELECT name FROM branches WHERE id = $1`, branchID).
		Scan(&overview.BranchName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Branch not found")
		}
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	count := func(query string, dest *int) {
		g.Go(func() error {
			return r.pool.QueryRow(gctx, query, branchID).Scan(dest)
		})
	}
	count(`SELECT COUNT(*) FROM students WHERE branch_id = $1`, &overview.StudentCount)
	count(`SELECT COUNT(*) FROM students WHERE branch_id = $1 AND is_active`, &overview.ActiveStudents)
	count(`SELECT COUNT(*) FROM teachers WHERE branch_id = $1`, &overview.TeacherCount)
	count(`SELECT COUNT(*) FROM courses WHERE branch_id = $1`, &overview.CourseCount)
	count(`SELECT COUNT(*) FROM users WHERE branch_id = $1`, &overview.UserCount)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

func (r *repository) AttendanceSummary(ctx context.Context, branchID int64, from, to string) (*AttendanceSummary, error) {
	summary := &AttendanceSummary{BranchID: branchID, DateFrom: from, DateTo: to}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE a.status = 'present'),
			COUNT(*) FILTER (WHERE a.status = 'absent'),
			COUNT(*) FILTER (WHERE a.status = 'late'),
			COUNT(*) FILTER (WHERE a.status = 'sick'),
			COUNT(*) FILTER (WHERE a.status = 'excused'),
			COUNT(*)
		FROM attendance_records a
		JOIN courses c ON c.id = a.course_id
		WHERE c.branch_id = $1 AND a.date BETWEEN $2 AND $3`,
		branchID, from, to).
		Scan(&summary.Present, &summary.Absent, &summary.Late, &summary.Sick,
			&summary.Excused, &summary.Total)
	if err != nil {
		return nil, err
	}
	if summary.Total > 0 {
		summary.Rate = float64(summary.Present+summary.Late) / float64(summary.Total)
	}
	return summary, nil
}

func (r *repository) GradeDistribution(ctx context.Context, courseID int64, term string) (*GradeDistribution, error) {
	dist := &GradeDistribution{CourseID: courseID, Term: term}
	if err := r.pool.QueryRow(ctx, `SELECT name FROM courses WHERE id = $1`, courseID).
		Scan(&dist.CourseName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Course not found")
		}
		return nil, err
	}

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(score), 0), COALESCE(MAX(score), 0), COALESCE(MIN(score), 0), COUNT(*)
		FROM grades WHERE course_id = $1 AND term = $2`, courseID, term).
		Scan(&dist.Average, &dist.Highest, &dist.Lowest, &dist.Graded)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT band, COUNT(*) FROM (
			SELECT CASE
				WHEN score >= 90 THEN 'A'
				WHEN score >= 80 THEN 'B'
				WHEN score >= 70 THEN 'C'
				WHEN score >= 60 THEN 'D'
				ELSE 'E'
			END AS band
			FROM grades WHERE course_id = $1 AND term = $2
		) banded
		GROUP BY band ORDER BY band`, courseID, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dist.Bands = make([]GradeBand, 0, 5)
	for rows.Next() {
		var b GradeBand
		if err := rows.Scan(&b.Band, &b.Count); err != nil {
			return nil, err
		}
		dist.Bands = append(dist.Bands, b)
	}
	return dist, rows.Err()
}

// BranchIDs feeds the cache warmup job.
func (r *repository) BranchIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM branches WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
