package messaging

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type Repository interface {
	ListConversations(ctx context.Context, userID int64, q shared.PageQuery) ([]ConversationSummary, int, error)
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	FindOrCreateConversation(ctx context.Context, a, b int64) (*Conversation, error)
	ListMessages(ctx context.Context, conversationID int64, q shared.PageQuery) ([]Message, int, error)
	InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (*Message, error)
	MarkRead(ctx context.Context, conversationID, readerID int64) (int, error)
	UnreadTotal(ctx context.Context, userID int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListConversations(ctx context.Context, userID int64, q shared.PageQuery) ([]ConversationSummary, int, error) {
	listQuery := `
		SELECT cv.id,
			CASE WHEN cv.participant_a = $1 THEN cv.participant_b ELSE cv.participant_a END AS peer_id,
			u.full_name,
			COALESCE(m.body, ''),
			cv.last_message_at,
			(SELECT COUNT(*) FROM messages mm
				WHERE mm.conversation_id = cv.id AND mm.sender_id <> $1 AND mm.read_at IS NULL)
		FROM conversations cv
		JOIN users u ON u.id = CASE WHEN cv.participant_a = $1 THEN cv.participant_b ELSE cv.participant_a END
		LEFT JOIN LATERAL (
			SELECT body FROM messages WHERE conversation_id = cv.id ORDER BY created_at DESC LIMIT 1
		) m ON TRUE
		WHERE cv.participant_a = $1 OR cv.participant_b = $1
		ORDER BY cv.last_message_at DESC
		LIMIT $2 OFFSET $3`
	countQuery := `SELECT COUNT(*) FROM conversations WHERE participant_a = $1 OR participant_b = $1`

	var (
		items []ConversationSummary
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, listQuery, userID, q.Limit, q.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c ConversationSummary
			if err := rows.Scan(&c.ID, &c.PeerID, &c.PeerName, &c.LastBody, &c.LastSentAt, &c.UnreadCount); err != nil {
				return err
			}
			items = append(items, c)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, countQuery, userID).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var cv Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, participant_a, participant_b, created_at, last_message_at
		FROM conversations WHERE id = $1`, id).
		Scan(&cv.ID, &cv.ParticipantA, &cv.ParticipantB, &cv.CreatedAt, &cv.LastMessageAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFound("Conversation not found")
		}
		return nil, err
	}
	return &cv, nil
}

// FindOrCreateConversation normalizes the pair ordering before the
// upsert so (a,b) and (b,a) land on the same row.
func (r *repository) FindOrCreateConversation(ctx context.Context, a, b int64) (*Conversation, error) {
	if a > b {
		a, b = b, a
	}
	var cv Conversation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (participant_a, participant_b)
		VALUES ($1, $2)
		ON CONFLICT (participant_a, participant_b)
		DO UPDATE SET participant_a = EXCLUDED.participant_a
		RETURNING id, participant_a, participant_b, created_at, last_message_at`, a, b).
		Scan(&cv.ID, &cv.ParticipantA, &cv.ParticipantB, &cv.CreatedAt, &cv.LastMessageAt)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	return &cv, nil
}

func (r *repository) ListMessages(ctx context.Context, conversationID int64, q shared.PageQuery) ([]Message, int, error) {
	listQuery := `
		SELECT id, conversation_id, sender_id, body, read_at, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	countQuery := `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`

	var (
		items []Message
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, listQuery, conversationID, q.Limit, q.Offset())
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m Message
			if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
				return err
			}
			items = append(items, m)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return r.pool.QueryRow(gctx, countQuery, conversationID).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// InsertMessage writes the message and bumps the conversation's
// last_message_at in one transaction.
func (r *repository) InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (*Message, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var m Message
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, sender_id, body, read_at, created_at`,
		conversationID, senderID, body).
		Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, httpx.ClassifyPG(err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET last_message_at = NOW() WHERE id = $1`, conversationID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkRead stamps every unread message from the peer and returns how
// many were affected.
func (r *repository) MarkRead(ctx context.Context, conversationID, readerID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE messages SET read_at = NOW()
		WHERE conversation_id = $1 AND sender_id <> $2 AND read_at IS NULL`,
		conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repository) UnreadTotal(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations cv ON cv.id = m.conversation_id
		WHERE (cv.participant_a = $1 OR cv.participant_b = $1)
			AND m.sender_id <> $1 AND m.read_at IS NULL`, userID).Scan(&n)
	return n, err
}
