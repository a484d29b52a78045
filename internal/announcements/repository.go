package announcements

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
	List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Announcement, int, error)
	Get(ctx context.Context, id int64) (*Announcement, error)
	Create(ctx context.Context, a Announcement) (*Announcement, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Announcement, error)
	Delete(ctx context.Context, id int64) error
	MarkPublished(ctx context.Context, id int64) (*Announcement, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const announcementColumns = `id, branch_id, author_id, title, body, audience, status,
	published_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Announcement, int, error) {
	var (
		clauses []string
		args    []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d)", len(args), len(args)))
	}
	if f.BranchID != nil {
		args = append(args, *f.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Audience != "" {
		args = append(args, f.Audience)
		clauses = append(clauses, fmt.Sprintf("audience = $%d", len(args)))
	}
	whereClause := ""
	if len(clauses) > 0 {
		whereClause = "WHERE " + strings.Join(clauses, " AND ")
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM announcements %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		announcementColumns, whereClause, len(args)+1, len(args)+2)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM announcements %s`, whereClause)

	var (
		items []Announcement
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
			var a Announcement
			if err := scanAnnouncement(rows, &a); err != nil {
				return err
			}
			items = append(items, a)
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

func (r *repository) Get(ctx context.Context, id int64) (*Announcement, error) {
	var a Announcement
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM announcements WHERE id = $1`, announcementColumns), id)
	if err := scanAnnouncement(row, &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Announcement not found")
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, a Announcement) (*Announcement, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO announcements (branch_id, author_id, title, body, audience, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, announcementColumns),
		a.BranchID, a.AuthorID, a.Title, a.Body, a.Audience, a.Status)
	var created Announcement
	if err := scanAnnouncement(row, &created); err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (*Announcement, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	argPos := 1
	for _, col := range []string{"title", "body", "audience"} {
		if v, ok := updates[col]; ok {
			sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
			args = append(args, v)
			argPos++
		}
	}
	query := fmt.Sprintf(`UPDATE announcements SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, announcementColumns)
	args = append(args, id)

	var updated Announcement
	if err := scanAnnouncement(r.pool.QueryRow(ctx, query, args...), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Announcement not found")
		}
		return nil, httpx.ClassifyPG(err)
	}
	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.NotFound("Announcement not found")
	}
	return nil
}

// MarkPublished flips a draft to published atomically; a row already
// published does not match and surfaces as not found to the caller,
// which translates it into a state conflict.
func (r *repository) MarkPublished(ctx context.Context, id int64) (*Announcement, error) {
	var a Announcement
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE announcements
		SET status = 'published', published_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING %s`, announcementColumns), id)
	if err := scanAnnouncement(row, &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return &a, nil
}

func scanAnnouncement(row pgx.Row, a *Announcement) error {
	return row.Scan(&a.ID, &a.BranchID, &a.AuthorID, &a.Title, &a.Body, &a.Audience,
		&a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
}
