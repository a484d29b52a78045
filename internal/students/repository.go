package students

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
	List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Student, int, error)
	Get(ctx context.Context, id int64) (*StudentDetail, error)
	Create(ctx context.Context, st Student) (*Student, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Student, error)
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const studentColumns = `id, branch_id, nis, full_name, email, phone, guardian_name,
	guardian_phone, birth_date, gender, address, grade_level, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Student, int, error) {
	var (
		clauses []string
		args    []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE $%d OR nis ILIKE $%d)", len(args), len(args)))
	}
	if f.BranchID != nil {
		args = append(args, *f.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if f.GradeLevel != "" {
		args = append(args, f.GradeLevel)
		clauses = append(clauses, fmt.Sprintf("grade_level = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM students %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		studentColumns, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM students %s`, whereClause)

	var (
		items []Student
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
			var st Student
			if err := scanStudent(rows, &st); err != nil {
				return err
			}
			items = append(items, st)
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

func (r *repository) Get(ctx context.Context, id int64) (*StudentDetail, error) {
	var detail StudentDetail
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns), id)
	if err := scanStudent(row, &detail.Student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Student not found")
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.code, COALESCE(t.full_name, '')
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN teachers t ON t.id = c.teacher_id
		WHERE e.student_id = $1
		ORDER BY c.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	detail.Courses = make([]CourseSummary, 0, 4)
	for rows.Next() {
		var c CourseSummary
		if err := rows.Scan(&c.CourseID, &c.Name, &c.Code, &c.TeacherName); err != nil {
			return nil, err
		}
		detail.Courses = append(detail.Courses, c)
	}
	return &detail, rows.Err()
}

func (r *repository) Create(ctx context.Context, st Student) (*Student, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO students (branch_id, nis, full_name, email, phone, guardian_name,
			guardian_phone, birth_date, gender, address, grade_level, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`, studentColumns),
		st.BranchID, st.NIS, st.FullName, st.Email, st.Phone, st.GuardianName,
		st.GuardianPhone, st.BirthDate, st.Gender, st.Address, st.GradeLevel, st.IsActive)
	var created Student
	if err := scanStudent(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Student, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"nis", "full_name", "email", "phone", "guardian_name",
		"guardian_phone", "birth_date", "gender", "address", "grade_level", "is_active"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE students SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, studentColumns)
	args = append(args, id)

	var updated Student
	if err := scanStudent(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Student not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

// Deactivate keeps the row so grades and attendance stay attributable.
func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE students SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Student not found")
	}
	return nil
}

func scanStudent(row pgx.Row, st *Student) error {
	return row.Scan(&st.ID, &st.BranchID, &st.NIS, &st.FullName, &st.Email, &st.Phone,
		&st.GuardianName, &st.GuardianPhone, &st.BirthDate, &st.Gender, &st.Address,
		&st.GradeLevel, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
}
