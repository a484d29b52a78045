package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]User, int, error) {
	items := []User{}
	for _, u := range m.users {
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		items = append(items, *u)
	}
	return items, len(items), nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.NotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, u User) (*User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, httpx.Conflict("duplicate value: email exists")
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = &u
	return &u, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.NotFound("user not found")
	}
	if hash, ok := updates["password_hash"].(string); ok {
		u.PasswordHash = hash
	}
	if name, ok := updates["full_name"].(string); ok {
		u.FullName = name
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Deactivate(ctx context.Context, id int64) error {
	u, ok := m.users[id]
	if !ok {
		return httpx.NotFound("user not found")
	}
	u.IsActive = false
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	created, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "Admin@Scholaris.Local",
		FullName: "budi santoso",
		Role:     "Staff",
		Password: "hunter2hunter2",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "admin@scholaris.local", created.Email)
	assert.Equal(t, "Budi Santoso", created.FullName)
	assert.Equal(t, RoleStaff, created.Role)
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Email: "x@y.z", FullName: "X Y", Role: "principal", Password: "hunter2hunter2",
	}, 1)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateUserDuplicateEmailIsConflict(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	input := CreateUserInput{Email: "x@y.z", FullName: "X Y", Role: "staff", Password: "hunter2hunter2"}

	_, err := svc.Create(context.Background(), input, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input, 1)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateUserPasswordRehashes(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)
	created, err := svc.Create(context.Background(), CreateUserInput{
		Email: "x@y.z", FullName: "X Y", Role: "staff", Password: "hunter2hunter2",
	}, 1)
	require.NoError(t, err)

	password := "correct horse battery"
	updated, err := svc.Update(context.Background(), created.ID, UpdateUserInput{Password: &password}, 1)
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("hunter2hunter2")))
}

func TestDeactivateKeepsRow(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	created, err := svc.Create(context.Background(), CreateUserInput{
		Email: "x@y.z", FullName: "X Y", Role: "teacher", Password: "hunter2hunter2",
	}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID, 1))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err, "deactivated accounts stay fetchable")
	assert.False(t, got.IsActive)
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleStaff, RoleTeacher, RoleStudent, RoleParent} {
		assert.True(t, role.Valid(), string(role))
	}
	assert.False(t, Role("janitor").Valid())
}
