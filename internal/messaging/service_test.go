package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type pairKey struct {
	a int64
	b int64
}

type mockRepository struct {
	conversations map[int64]*Conversation
	byPair        map[pairKey]int64
	messages      map[int64][]Message
	nextConvID    int64
	nextMsgID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		conversations: make(map[int64]*Conversation),
		byPair:        make(map[pairKey]int64),
		messages:      make(map[int64][]Message),
		nextConvID:    1,
		nextMsgID:     1,
	}
}

func normalizePair(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

func (m *mockRepository) ListConversations(ctx context.Context, userID int64, q shared.PageQuery) ([]ConversationSummary, int, error) {
	summaries := []ConversationSummary{}
	for _, cv := range m.conversations {
		if cv.ParticipantA != userID && cv.ParticipantB != userID {
			continue
		}
		peer := cv.ParticipantA
		if peer == userID {
			peer = cv.ParticipantB
		}
		summary := ConversationSummary{ID: cv.ID, PeerID: peer}
		for _, msg := range m.messages[cv.ID] {
			summary.LastBody = msg.Body
			summary.LastSentAt = msg.CreatedAt
			if msg.SenderID != userID && msg.ReadAt == nil {
				summary.UnreadCount++
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, len(summaries), nil
}

func (m *mockRepository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	cv, ok := m.conversations[id]
	if !ok {
		return nil, httpx.NotFound("conversation not found")
	}
	copied := *cv
	return &copied, nil
}

func (m *mockRepository) FindOrCreateConversation(ctx context.Context, a, b int64) (*Conversation, error) {
	key := normalizePair(a, b)
	if id, ok := m.byPair[key]; ok {
		return m.GetConversation(ctx, id)
	}
	cv := &Conversation{ID: m.nextConvID, ParticipantA: key.a, ParticipantB: key.b, CreatedAt: time.Now()}
	m.nextConvID++
	m.conversations[cv.ID] = cv
	m.byPair[key] = cv.ID
	return cv, nil
}

func (m *mockRepository) ListMessages(ctx context.Context, conversationID int64, q shared.PageQuery) ([]Message, int, error) {
	msgs := m.messages[conversationID]
	return append([]Message{}, msgs...), len(msgs), nil
}

func (m *mockRepository) InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (*Message, error) {
	msg := Message{
		ID:             m.nextMsgID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	m.nextMsgID++
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	m.conversations[conversationID].LastMessageAt = msg.CreatedAt
	return &msg, nil
}

func (m *mockRepository) MarkRead(ctx context.Context, conversationID, readerID int64) (int, error) {
	count := 0
	now := time.Now()
	msgs := m.messages[conversationID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && msgs[i].ReadAt == nil {
			msgs[i].ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) UnreadTotal(ctx context.Context, userID int64) (int, error) {
	total := 0
	for id, cv := range m.conversations {
		if cv.ParticipantA != userID && cv.ParticipantB != userID {
			continue
		}
		for _, msg := range m.messages[id] {
			if msg.SenderID != userID && msg.ReadAt == nil {
				total++
			}
		}
	}
	return total, nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestSendCreatesConversationOnFirstContact(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	msg, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.SenderID)
	assert.Equal(t, "hello", msg.Body)

	// A reply from the other side lands in the same conversation.
	reply, err := svc.Send(context.Background(), 2, SendMessageInput{RecipientID: 1, Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, msg.ConversationID, reply.ConversationID)
	assert.Len(t, repo.conversations, 1)
}

func TestSendRejectsSelfMessage(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 1, Body: "note to self"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSendRejectsBlankBody(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "   "})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestMessagesRequiresParticipation(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	msg, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "hello"})
	require.NoError(t, err)

	_, _, err = svc.Messages(context.Background(), 3, msg.ConversationID, shared.PageQuery{})
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	items, _, err := svc.Messages(context.Background(), 2, msg.ConversationID, shared.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMarkReadCountsOnlyPeerMessages(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	msg, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "one"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "two"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), 2, SendMessageInput{RecipientID: 1, Body: "ack"})
	require.NoError(t, err)

	marked, err := svc.MarkRead(context.Background(), 2, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, marked, "only the peer's messages are stamped")

	marked, err = svc.MarkRead(context.Background(), 2, msg.ConversationID)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestMarkReadForbiddenForOutsiders(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	msg, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "hello"})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), 9, msg.ConversationID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUnreadTotal(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Send(context.Background(), 1, SendMessageInput{RecipientID: 2, Body: "one"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), 3, SendMessageInput{RecipientID: 2, Body: "two"})
	require.NoError(t, err)

	total, err := svc.UnreadTotal(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	total, err = svc.UnreadTotal(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, total)
}
