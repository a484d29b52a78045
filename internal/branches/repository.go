package branches

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

// Repository defines data access for branches.
type Repository interface {
	List(ctx context.Context, q shared.PageQuery) ([]Branch, int, error)
	Get(ctx context.Context, id int64) (*BranchDetail, error)
	Create(ctx context.Context, b Branch) (*Branch, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Branch, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const branchColumns = `id, name, code, address_line1, address_line2, city, postal_code,
	phone, email, timezone, currency, is_active, created_at, updated_at`

// List returns one page of branches plus the total for the same predicate.
// The count and the page query run concurrently; both share whereClause and
// args so the reported total always agrees with the returned slice.
func (r *repository) List(ctx context.Context, q shared.PageQuery) ([]Branch, int, error) {
	whereClause := ""
	var args []any
	if s := strings.TrimSpace(q.Search); s != "" {
		whereClause = "WHERE (name ILIKE $1 OR code ILIKE $1 OR city ILIKE $1)"
		args = append(args, "%"+s+"%")
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM branches %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		branchColumns, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM branches %s`, whereClause)

	var (
		items []Branch
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
			var b Branch
			if err := scanBranch(rows, &b); err != nil {
				return err
			}
			items = append(items, b)
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

// Get fetches a branch with bounded member summaries.
func (r *repository) Get(ctx context.Context, id int64) (*BranchDetail, error) {
	var detail BranchDetail
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM branches WHERE id = $1`, branchColumns), id)
	if err := scanBranch(row, &detail.Branch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Branch not found")
		}
		return nil, err
	}

	var err error
	detail.Users, err = r.memberSummaries(ctx, `SELECT id, full_name, email FROM users WHERE branch_id = $1 ORDER BY full_name LIMIT 50`, id)
	if err != nil {
		return nil, err
	}
	detail.Students, err = r.memberSummaries(ctx, `SELECT id, full_name, COALESCE(email, '') FROM students WHERE branch_id = $1 ORDER BY full_name LIMIT 50`, id)
	if err != nil {
		return nil, err
	}
	detail.Teachers, err = r.memberSummaries(ctx, `SELECT id, full_name, email FROM teachers WHERE branch_id = $1 ORDER BY full_name LIMIT 50`, id)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *repository) memberSummaries(ctx context.Context, query string, branchID int64) ([]MemberSummary, error) {
	rows, err := r.pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := make([]MemberSummary, 0, 8)
	for rows.Next() {
		var m MemberSummary
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email); err != nil {
			return nil, err
		}
		summaries = append(summaries, m)
	}
	return summaries, rows.Err()
}

// Create inserts a branch and returns the stored row.
func (r *repository) Create(ctx context.Context, b Branch) (*Branch, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO branches (name, code, address_line1, address_line2, city, postal_code,
			phone, email, timezone, currency, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s`, branchColumns),
		b.Name, b.Code, b.AddressLine1, b.AddressLine2, b.City, b.PostalCode,
		b.Phone, b.Email, b.Timezone, b.Currency, b.IsActive)
	var created Branch
	if err := scanBranch(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

// Update writes only the provided columns and returns the updated row.
func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Branch, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"name", "code", "address_line1", "address_line2", "city",
		"postal_code", "phone", "email", "timezone", "currency", "is_active"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE branches SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, branchColumns)
	args = append(args, id)

	var updated Branch
	if err := scanBranch(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Branch not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

// Delete removes the branch row. A foreign key violation surfaces as a
// conflict so callers report it instead of cascading silently.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return httpx.ClassifyPG(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Branch not found")
	}
	return nil
}

// Count returns the unfiltered branch count.
func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM branches`).Scan(&total)
	return total, err
}

func scanBranch(row pgx.Row, b *Branch) error {
	return row.Scan(&b.ID, &b.Name, &b.Code, &b.AddressLine1, &b.AddressLine2, &b.City,
		&b.PostalCode, &b.Phone, &b.Email, &b.Timezone, &b.Currency, &b.IsActive,
		&b.CreatedAt, &b.UpdatedAt)
}
