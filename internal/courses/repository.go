package courses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type Repository interface {
	List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Course, int, error)
	Get(ctx context.Context, id int64) (*CourseDetail, error)
	Create(ctx context.Context, c Course) (*Course, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Course, error)
	Delete(ctx context.Context, id int64) error
	Enroll(ctx context.Context, courseID, studentID int64) (*Enrollment, error)
	Unenroll(ctx context.Context, courseID, studentID int64) error
	EnrolledCount(ctx context.Context, courseID int64) (int, error)
	IsEnrolled(ctx context.Context, courseID, studentID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const courseColumns = `id, branch_id, teacher_id, name, code, description, credits,
	schedule, capacity, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Course, int, error) {
	var (
		clauses []string
		args    []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args), len(args)))
	}
	if f.BranchID != nil {
		args = append(args, *f.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if f.TeacherID != nil {
		args = append(args, *f.TeacherID)
		clauses = append(clauses, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM courses %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		courseColumns, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM courses %s`, whereClause)

	var (
		items []Course
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, listQuery, append(args, q.Limit, q.Offset())...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c Course
			if err := scanCourse(rows, &c); err != nil {
				return err
			}
			items = append(items, c)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, countQuery, args...).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*CourseDetail, error) {
	var detail CourseDetail
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s, t.full_name
		FROM courses c
		LEFT JOIN teachers t ON t.id = c.teacher_id
		WHERE c.id = $1`, prefixColumns("c")), id)
	if err := row.Scan(&detail.ID, &detail.BranchID, &detail.TeacherID, &detail.Name,
		&detail.Code, &detail.Description, &detail.Credits, &detail.Schedule,
		&detail.Capacity, &detail.IsActive, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.TeacherName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Course not found")
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.nis, s.full_name, e.enrolled_at
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.course_id = $1
		ORDER BY s.full_name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	detail.Roster = make([]RosterEntry, 0, 16)
	for rows.Next() {
		var entry RosterEntry
		if err := rows.Scan(&entry.StudentID, &entry.NIS, &entry.FullName, &entry.EnrolledAt); err != nil {
			return nil, err
		}
		detail.Roster = append(detail.Roster, entry)
	}
	return &detail, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Course) (*Course, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO courses (branch_id, teacher_id, name, code, description, credits, schedule, capacity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s`, courseColumns),
		c.BranchID, c.TeacherID, c.Name, c.Code, c.Description, c.Credits, c.Schedule, c.Capacity, c.IsActive)
	var created Course
	if err := scanCourse(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Course, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"teacher_id", "name", "code", "description", "credits",
		"schedule", "capacity", "is_active"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE courses SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, courseColumns)
	args = append(args, id)

	var updated Course
	if err := scanCourse(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Course not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

// Delete removes the course. Enrollments, grades and attendance rows
// keyed to it make the delete a conflict via the FK classifier.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return httpx.ClassifyPG(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Course not found")
	}
	return nil
}

func (r *repository) Enroll(ctx context.Context, courseID, studentID int64) (*Enrollment, error) {
	var e Enrollment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO enrollments (course_id, student_id)
		VALUES ($1, $2)
		RETURNING id, course_id, student_id, enrolled_at`,
		courseID, studentID).Scan(&e.ID, &e.CourseID, &e.StudentID, &e.EnrolledAt)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &e, nil
}

func (r *repository) Unenroll(ctx context.Context, courseID, studentID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM enrollments WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		return httpx.ClassifyPG(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Enrollment not found")
	}
	return nil
}

func (r *repository) EnrolledCount(ctx context.Context, courseID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}

func (r *repository) IsEnrolled(ctx context.Context, courseID, studentID int64) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2)`,
		courseID, studentID).Scan(&enrolled)
	return enrolled, err
}

func prefixColumns(alias string) string {
	cols := strings.Split(courseColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func scanCourse(row pgx.Row, c *Course) error {
	return row.Scan(&c.ID, &c.BranchID, &c.TeacherID, &c.Name, &c.Code, &c.Description,
		&c.Credits, &c.Schedule, &c.Capacity, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}
