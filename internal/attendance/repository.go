package attendance

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
	List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]RecordRow, int, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, rec Record) (*Record, error)
	BulkCreate(ctx context.Context, recs []Record) (*BulkResult, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Record, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const recordColumns = `id, student_id, course_id, date, status, notes, recorded_by,
	created_at, updated_at`

func (r *repository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]RecordRow, int, error) {
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
		clauses = append(clauses, fmt.Sprintf("a.student_id = $%d", len(args)))
	}
	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		clauses = append(clauses, fmt.Sprintf("a.course_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.DateFrom != "" {
		args = append(args, f.DateFrom)
		clauses = append(clauses, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if f.DateTo != "" {
		args = append(args, f.DateTo)
		clauses = append(clauses, fmt.Sprintf("a.date <= $%d", len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	base := `FROM attendance_records a
		JOIN students s ON s.id = a.student_id
		JOIN courses c ON c.id = a.course_id `
	listQuery := fmt.Sprintf(`
		SELECT a.id, a.student_id, a.course_id, a.date, a.status, a.notes, a.recorded_by,
			a.created_at, a.updated_at, s.full_name, c.name
		%s %s ORDER BY a.date DESC, a.created_at DESC LIMIT $%d OFFSET $%d`,
		base, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, base, whereClause)

	var (
		items []RecordRow
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
			var row RecordRow
			if err := rows.Scan(&row.ID, &row.StudentID, &row.CourseID, &row.Date,
				&row.Status, &row.Notes, &row.RecordedBy, &row.CreatedAt, &row.UpdatedAt,
				&row.StudentName, &row.CourseName); err != nil {
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

func (r *repository) Get(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM attendance_records WHERE id = $1`, recordColumns), id)
	if err := scanRecord(row, &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Attendance record not found")
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repository) Create(ctx context.Context, rec Record) (*Record, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO attendance_records (student_id, course_id, date, status, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, recordColumns),
		rec.StudentID, rec.CourseID, rec.Date, rec.Status, rec.Notes, rec.RecordedBy)
	var created Record
	if err := scanRecord(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

// BulkCreate writes a whole sheet in one transaction. Rows that collide
// with an existing (student, course, date) mark are skipped rather than
// failing the sheet; the caller reports them back.
func (r *repository) BulkCreate(ctx context.Context, recs []Record) (*BulkResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result := &BulkResult{}
	for _, rec := range recs {
		tag, err := tx.Exec(ctx, `
			INSERT INTO attendance_records (student_id, course_id, date, status, notes, recorded_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (student_id, course_id, date) DO NOTHING`,
			rec.StudentID, rec.CourseID, rec.Date, rec.Status, rec.Notes, rec.RecordedBy)
		if err != nil {
			return nil, httpx.ClassifyPG(err)
		}
		if tag.RowsAffected() == 0 {
			result.Skipped = append(result.Skipped, rec.StudentID)
			continue
		}
		result.Recorded++
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Record, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"status", "notes"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE attendance_records SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, recordColumns)
	args = append(args, id)

	var updated Record
	if err := scanRecord(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Attendance record not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Attendance record not found")
	}
	return nil
}

func scanRecord(row pgx.Row, rec *Record) error {
	return row.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.Date, &rec.Status,
		&rec.Notes, &rec.RecordedBy, &rec.CreatedAt, &rec.UpdatedAt)
}
