package branches

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	branches map[int64]*Branch
	nextID   int64

	createCalls int
	updateCalls int

	listErr   error
	createErr error
	deleteErr error

	lastUpdates map[string]any
}

func newMockRepository() *mockRepository {
	return &mockRepository{branches: make(map[int64]*Branch), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, q shared.PageQuery) ([]Branch, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	matched := []Branch{}
	for _, b := range m.branches {
		if q.Search != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, *b)
	}
	total := len(matched)
	offset := q.Offset()
	if offset >= len(matched) {
		return []Branch{}, total, nil
	}
	end := offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*BranchDetail, error) {
	b, ok := m.branches[id]
	if !ok {
		return nil, httpx.NotFound("branch not found")
	}
	return &BranchDetail{Branch: *b, Users: []MemberSummary{}, Students: []MemberSummary{}, Teachers: []MemberSummary{}}, nil
}

func (m *mockRepository) Create(ctx context.Context, b Branch) (*Branch, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	b.ID = m.nextID
	m.nextID++
	m.branches[b.ID] = &b
	return &b, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Branch, error) {
	m.updateCalls++
	m.lastUpdates = updates
	b, ok := m.branches[id]
	if !ok {
		return nil, httpx.NotFound("branch not found")
	}
	if name, ok := updates["name"].(string); ok {
		b.Name = name
	}
	if code, ok := updates["code"].(string); ok {
		b.Code = code
	}
	if active, ok := updates["is_active"].(bool); ok {
		b.IsActive = active
	}
	copied := *b
	return &copied, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.branches[id]; !ok {
		return httpx.NotFound("branch not found")
	}
	delete(m.branches, id)
	return nil
}

func (m *mockRepository) Count(ctx context.Context) (int, error) {
	return len(m.branches), nil
}

type mockAudit struct {
	entries []shared.AuditLog
	err     error
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, log)
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateBranch(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit, nil)

	created, err := svc.Create(context.Background(), CreateBranchRequest{
		Name: "  Main Campus ",
		Code: "main",
	}, 42)
	require.NoError(t, err)

	assert.Equal(t, "Main Campus", created.Name)
	assert.Equal(t, "MAIN", created.Code)
	assert.Equal(t, "UTC", created.Timezone)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.IsActive)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "create", audit.entries[0].Action)
	assert.Equal(t, "branch", audit.entries[0].Entity)
	assert.Equal(t, int64(42), audit.entries[0].ActorID)
}

func TestCreateBranchValidatesBeforeWrite(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateBranchRequest{Name: "  ", Code: ""}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "code")
	assert.Zero(t, repo.createCalls, "invalid payload must not reach storage")
}

func TestListBranchesPaginationAgreesWithSlice(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), CreateBranchRequest{
			Name: "Campus " + strings.Repeat("x", i+1),
			Code: "C" + strings.Repeat("X", i+1),
		}, 1)
		require.NoError(t, err)
	}

	items, pagination, err := svc.List(context.Background(), shared.PageQuery{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, items, 10)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
	assert.Equal(t, 2, pagination.Page)
}

func TestListBranchesDefaultsMangledQuery(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	items, pagination, err := svc.List(context.Background(), shared.PageQuery{Page: -1, Limit: 0})
	require.NoError(t, err)

	assert.NotNil(t, items)
	assert.Equal(t, shared.DefaultPage, pagination.Page)
	assert.Equal(t, shared.DefaultLimit, pagination.Limit)
}

func TestUpdateBranchPartial(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, &mockAudit{}, nil)
	created, err := svc.Create(context.Background(), CreateBranchRequest{Name: "Main", Code: "MAIN"}, 1)
	require.NoError(t, err)

	name := "Main Campus"
	updated, err := svc.Update(context.Background(), created.ID, UpdateBranchRequest{Name: &name}, 1)
	require.NoError(t, err)

	assert.Equal(t, "Main Campus", updated.Name)
	assert.Equal(t, "MAIN", updated.Code, "untouched fields never reach storage")
	_, hasCode := repo.lastUpdates["code"]
	assert.False(t, hasCode)
}

func TestUpdateBranchEmptyPayloadReturnsCurrent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	created, err := svc.Create(context.Background(), CreateBranchRequest{Name: "Main", Code: "MAIN"}, 1)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateBranchRequest{}, 1)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Zero(t, repo.updateCalls, "empty update must not write")
}

func TestUpdateBranchRejectsBlankName(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	created, err := svc.Create(context.Background(), CreateBranchRequest{Name: "Main", Code: "MAIN"}, 1)
	require.NoError(t, err)

	blank := "   "
	_, err = svc.Update(context.Background(), created.ID, UpdateBranchRequest{Name: &blank}, 1)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteBranchSurfacesConflict(t *testing.T) {
	repo := newMockRepository()
	repo.deleteErr = httpx.Conflict("record is referenced by dependent rows")
	svc := NewService(repo, nil, nil)

	err := svc.Delete(context.Background(), 1, 1)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestGetBranchNotFound(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{err: context.DeadlineExceeded}
	svc := NewService(repo, audit, nil)

	created, err := svc.Create(context.Background(), CreateBranchRequest{Name: "Main", Code: "MAIN"}, 1)
	require.NoError(t, err)
	assert.NotNil(t, created)
}
