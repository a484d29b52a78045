package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholaris/scholaris/internal/shared"
)

type mockRepository struct {
	users    map[string]*User
	sessions map[string]int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]*User), sessions: make(map[string]int64)}
}

func (m *mockRepository) addUser(t *testing.T, email, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &User{
		ID:           int64(len(m.users) + 1),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: string(hash),
		Role:         "staff",
		IsActive:     active,
	}
	m.users[strings.ToLower(email)] = u
	return u
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	m.sessions[id] = userID
	return nil
}

func (m *mockRepository) DeleteSession(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	return nil
}

func newTestRouter(t *testing.T, repo *mockRepository) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "scholaris_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("test-secret")
	h := NewHandler(slog.Default(), NewService(repo), sessions, csrf)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/auth", h.MountRoutes)
	return r
}

type authEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func postLogin(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, authEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	var env authEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestLoginSuccess(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "staff@scholaris.local", "hunter2hunter2", true)
	router := newTestRouter(t, repo)

	rec, env := postLogin(t, router, `{"email":"staff@scholaris.local","password":"hunter2hunter2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var resp struct {
		User      *User  `json:"user"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "staff@scholaris.local", resp.User.Email)
	assert.NotEmpty(t, resp.CSRFToken)
	assert.Len(t, repo.sessions, 1, "login must register the session")
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "staff@scholaris.local", "hunter2hunter2", true)
	router := newTestRouter(t, repo)

	rec, env := postLogin(t, router, `{"email":"staff@scholaris.local","password":"wrong-password"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid credentials", env.Message)
}

func TestLoginUnknownAccountSameError(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec, env := postLogin(t, router, `{"email":"ghost@scholaris.local","password":"hunter2hunter2"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", env.Message, "missing accounts are indistinguishable from bad passwords")
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "gone@scholaris.local", "hunter2hunter2", false)
	router := newTestRouter(t, repo)

	rec, _ := postLogin(t, router, `{"email":"gone@scholaris.local","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec, env := postLogin(t, router, `{"email":"not-an-email","password":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestMeRequiresAuthentication(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginNeverKeepsPreLoginSessionID(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(t, "staff@scholaris.local", "hunter2hunter2", true)
	router := newTestRouter(t, repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"email":"staff@scholaris.local","password":"hunter2hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "scholaris_session", Value: "attacker-chosen-id"})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.sessions, 1)
	for id := range repo.sessions {
		assert.NotEqual(t, "attacker-chosen-id", id,
			"authenticated session must not live under a client-supplied ID")
	}
}
