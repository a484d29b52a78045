package messaging

import (
	"context"
	"log/slog"
	"strings"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

// Service handles two-party messaging. Every operation takes the
// acting user and refuses access to conversations they are not part
// of.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Inbox(ctx context.Context, userID int64, q shared.PageQuery) ([]ConversationSummary, shared.Pagination, error) {
	if q.Page < 1 {
		q.Page = shared.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = shared.DefaultLimit
	}
	items, total, err := s.repo.ListConversations(ctx, userID, q)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if items == nil {
		items = []ConversationSummary{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

// Send delivers a message, creating the conversation on first contact.
func (s *Service) Send(ctx context.Context, senderID int64, req SendMessageInput) (*Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, httpx.Validation("body required")
	}
	if req.RecipientID == senderID {
		return nil, httpx.Validation("cannot message yourself")
	}

	cv, err := s.repo.FindOrCreateConversation(ctx, senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	return s.repo.InsertMessage(ctx, cv.ID, senderID, body)
}

func (s *Service) Messages(ctx context.Context, userID, conversationID int64, q shared.PageQuery) ([]Message, shared.Pagination, error) {
	if q.Page < 1 {
		q.Page = shared.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = shared.DefaultLimit
	}
	if err := s.authorize(ctx, userID, conversationID); err != nil {
		return nil, shared.Pagination{}, err
	}
	items, total, err := s.repo.ListMessages(ctx, conversationID, q)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if items == nil {
		items = []Message{}
	}
	return items, shared.NewPagination(q.Page, q.Limit, total), nil
}

// MarkRead stamps the peer's unread messages and returns the count.
func (s *Service) MarkRead(ctx context.Context, userID, conversationID int64) (int, error) {
	if err := s.authorize(ctx, userID, conversationID); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, conversationID, userID)
}

func (s *Service) UnreadTotal(ctx context.Context, userID int64) (int, error) {
	return s.repo.UnreadTotal(ctx, userID)
}

func (s *Service) authorize(ctx context.Context, userID, conversationID int64) error {
	cv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if cv.ParticipantA != userID && cv.ParticipantB != userID {
		return httpx.Forbidden("not a participant in this conversation")
	}
	return nil
}
