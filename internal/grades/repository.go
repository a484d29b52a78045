package grades

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
	List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]GradeRow, int, error)
	Get(ctx context.Context, id int64) (*Grade, error)
	Create(ctx context.Context, g Grade) (*Grade, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Grade, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const gradeColumns = `id, student_id, course_id, component, score, term, notes,
	recorded_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]GradeRow, int, error) {
	var (
		clauses []string
		args    []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(s.full_name ILIKE $%d OR c.name ILIKE $%d)", len(args), len(args)))
	}
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		clauses = append(clauses, fmt.Sprintf("g.student_id = $%d", len(args)))
	}
	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		clauses = append(clauses, fmt.Sprintf("g.course_id = $%d", len(args)))
	}
	if f.Component != "" {
		args = append(args, f.Component)
		clauses = append(clauses, fmt.Sprintf("g.component = $%d", len(args)))
	}
	if f.Term != "" {
		args = append(args, f.Term)
		clauses = append(clauses, fmt.Sprintf("g.term = $%d", len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	base := `FROM grades g
		JOIN students s ON s.id = g.student_id
		JOIN courses c ON c.id = g.course_id `
	listQuery := fmt.Sprintf(`
		SELECT g.id, g.student_id, g.course_id, g.component, g.score, g.term, g.notes,
			g.recorded_by, g.created_at, g.updated_at, s.full_name, c.name
		%s %s ORDER BY g.created_at DESC LIMIT $%d OFFSET $%d`,
		base, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, base, whereClause)

	var (
		items []GradeRow
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
			var row GradeRow
			if err := rows.Scan(&row.ID, &row.StudentID, &row.CourseID, &row.Component,
				&row.Score, &row.Term, &row.Notes, &row.RecordedBy, &row.CreatedAt,
				&row.UpdatedAt, &row.StudentName, &row.CourseName); err != nil {
				return err
			}
			items = append(items, row)
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

func (r *repository) Get(ctx context.Context, id int64) (*Grade, error) {
	var g Grade
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM grades WHERE id = $1`, gradeColumns), id)
	if err := scanGrade(row, &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Grade not found")
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) Create(ctx context.Context, g Grade) (*Grade, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO grades (student_id, course_id, component, score, term, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, gradeColumns),
		g.StudentID, g.CourseID, g.Component, g.Score, g.Term, g.Notes, g.RecordedBy)
	var created Grade
	if err := scanGrade(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Grade, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"score", "notes"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE grades SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, gradeColumns)
	args = append(args, id)

	var updated Grade
	if err := scanGrade(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Grade not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Grade not found")
	}
	return nil
}

func scanGrade(row pgx.Row, g *Grade) error {
	return row.Scan(&g.ID, &g.StudentID, &g.CourseID, &g.Component, &g.Score, &g.Term,
		&g.Notes, &g.RecordedBy, &g.CreatedAt, &g.UpdatedAt)
}
