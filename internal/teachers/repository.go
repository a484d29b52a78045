package teachers

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
	List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Teacher, int, error)
	Get(ctx context.Context, id int64) (*TeacherDetail, error)
	Create(ctx context.Context, t Teacher) (*Teacher, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Teacher, error)
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const teacherColumns = `id, branch_id, nip, full_name, email, phone, expertise,
	hire_date, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Teacher, int, error) {
	var (
		clauses []string
		args    []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE $%d OR nip ILIKE $%d OR email ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	if f.BranchID != nil {
		args = append(args, *f.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if f.Expertise != "" {
		args = append(args, "%"+f.Expertise+"%")
		clauses = append(clauses, fmt.Sprintf("expertise ILIKE $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM teachers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		teacherColumns, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM teachers %s`, whereClause)

	var (
		items []Teacher
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
			var t Teacher
			if err := scanTeacher(rows, &t); err != nil {
				return err
			}
			items = append(items, t)
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

func (r *repository) Get(ctx context.Context, id int64) (*TeacherDetail, error) {
	var detail TeacherDetail
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM teachers WHERE id = $1`, teacherColumns), id)
	if err := scanTeacher(row, &detail.Teacher); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Teacher not found")
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.code,
			(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id)
		FROM courses c
		WHERE c.teacher_id = $1
		ORDER BY c.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	detail.Courses = make([]CourseSummary, 0, 4)
	for rows.Next() {
		var c CourseSummary
		if err := rows.Scan(&c.CourseID, &c.Name, &c.Code, &c.Enrolled); err != nil {
			return nil, err
		}
		detail.Courses = append(detail.Courses, c)
	}
	return &detail, rows.Err()
}

func (r *repository) Create(ctx context.Context, t Teacher) (*Teacher, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO teachers (branch_id, nip, full_name, email, phone, expertise, hire_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, teacherColumns),
		t.BranchID, t.NIP, t.FullName, t.Email, t.Phone, t.Expertise, t.HireDate, t.IsActive)
	var created Teacher
	if err := scanTeacher(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Teacher, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"nip", "full_name", "email", "phone", "expertise", "hire_date", "is_active"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE teachers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, teacherColumns)
	args = append(args, id)

	var updated Teacher
	if err := scanTeacher(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Teacher not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

// Deactivate keeps the row; courses reference the teacher for history.
func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE teachers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Teacher not found")
	}
	return nil
}

func scanTeacher(row pgx.Row, t *Teacher) error {
	return row.Scan(&t.ID, &t.BranchID, &t.NIP, &t.FullName, &t.Email, &t.Phone,
		&t.Expertise, &t.HireDate, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
}
