package announcements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type mockRepository struct {
	items  map[int64]*Announcement
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{items: make(map[int64]*Announcement), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]Announcement, int, error) {
	items := []Announcement{}
	for _, a := range m.items {
		items = append(items, *a)
	}
	return items, len(items), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Announcement, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, httpx.NotFound("announcement not found")
	}
	copied := *a
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, a Announcement) (*Announcement, error) {
	a.ID = m.nextID
	m.nextID++
	m.items[a.ID] = &a
	return &a, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Announcement, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, httpx.NotFound("announcement not found")
	}
	if title, ok := updates["title"].(string); ok {
		a.Title = title
	}
	if body, ok := updates["body"].(string); ok {
		a.Body = body
	}
	copied := *a
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return httpx.NotFound("announcement not found")
	}
	delete(m.items, id)
	return nil
}

// MarkPublished mirrors the conditional UPDATE: only a draft row
// transitions, anything else reports no rows.
func (m *mockRepository) MarkPublished(ctx context.Context, id int64) (*Announcement, error) {
	a, ok := m.items[id]
	if !ok || a.Status != StatusDraft {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	a.Status = StatusPublished
	a.PublishedAt = &now
	copied := *a
	return &copied, nil
}

type mockEnqueuer struct {
	calls []int64
	err   error
}

func (m *mockEnqueuer) EnqueueAnnouncementFanout(ctx context.Context, announcementID int64) error {
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, announcementID)
	return nil
}

type mockIdem struct {
	keys map[string]bool
	err  error
}

func newMockIdem() *mockIdem {
	return &mockIdem{keys: make(map[string]bool)}
}

func (m *mockIdem) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.err != nil {
		return m.err
	}
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func seedDraft(t *testing.T, svc *Service) *Announcement {
	t.Helper()
	created, err := svc.Create(context.Background(), CreateAnnouncementInput{
		BranchID: 1,
		Title:    "Semester break",
		Body:     "Classes resume on Monday.",
		Audience: "students",
	}, 5)
	require.NoError(t, err)
	return created
}

func TestCreateAnnouncementStartsAsDraft(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil, nil)
	created := seedDraft(t, svc)

	assert.Equal(t, StatusDraft, created.Status)
	assert.Equal(t, AudienceStudents, created.Audience)
	assert.Equal(t, int64(5), created.AuthorID)
	assert.Nil(t, created.PublishedAt)
}

func TestCreateAnnouncementRejectsUnknownAudience(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateAnnouncementInput{
		BranchID: 1, Title: "x", Body: "y", Audience: "everyone",
	}, 5)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPublishDraft(t *testing.T) {
	enq := &mockEnqueuer{}
	idem := newMockIdem()
	svc := NewService(newMockRepository(), enq, idem, nil, nil)
	created := seedDraft(t, svc)

	published, err := svc.Publish(context.Background(), created.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, StatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, []int64{created.ID}, enq.calls)
}

func TestPublishTwiceIsConflict(t *testing.T) {
	enq := &mockEnqueuer{}
	svc := NewService(newMockRepository(), enq, newMockIdem(), nil, nil)
	created := seedDraft(t, svc)

	_, err := svc.Publish(context.Background(), created.ID, 5)
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), created.ID, 5)
	require.ErrorIs(t, err, httpx.ErrConflict)
	assert.Len(t, enq.calls, 1, "a repeat publish must not fan out again")
}

func TestPublishMissingAnnouncement(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil, nil)

	_, err := svc.Publish(context.Background(), 404, 5)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestPublishIdempotencyConflictSkipsFanout(t *testing.T) {
	enq := &mockEnqueuer{}
	idem := newMockIdem()
	idem.keys["announcement:1"] = true
	svc := NewService(newMockRepository(), enq, idem, nil, nil)
	created := seedDraft(t, svc)
	require.Equal(t, int64(1), created.ID)

	published, err := svc.Publish(context.Background(), created.ID, 5)
	require.NoError(t, err)

	assert.Equal(t, StatusPublished, published.Status)
	assert.Empty(t, enq.calls, "a replayed publish key must suppress the fanout")
}

func TestPublishEnqueueFailureDoesNotFailRequest(t *testing.T) {
	enq := &mockEnqueuer{err: errors.New("redis down")}
	svc := NewService(newMockRepository(), enq, newMockIdem(), nil, nil)
	created := seedDraft(t, svc)

	published, err := svc.Publish(context.Background(), created.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, published.Status)
}

func TestUpdatePublishedAnnouncementIsConflict(t *testing.T) {
	svc := NewService(newMockRepository(), &mockEnqueuer{}, newMockIdem(), nil, nil)
	created := seedDraft(t, svc)

	_, err := svc.Publish(context.Background(), created.ID, 5)
	require.NoError(t, err)

	title := "Edited"
	_, err = svc.Update(context.Background(), created.ID, UpdateAnnouncementInput{Title: &title}, 5)
	require.ErrorIs(t, err, httpx.ErrConflict)
	assert.Contains(t, err.Error(), "cannot be edited")
}

func TestUpdateDraft(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil, nil)
	created := seedDraft(t, svc)

	title := "Term break"
	updated, err := svc.Update(context.Background(), created.ID, UpdateAnnouncementInput{Title: &title}, 5)
	require.NoError(t, err)
	assert.Equal(t, "Term break", updated.Title)
	assert.Equal(t, StatusDraft, updated.Status)
}
