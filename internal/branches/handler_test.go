package branches

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/shared"
)

type allowAllResolver struct{}

func (allowAllResolver) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return shared.AllScopes(), nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)
	h := NewHandler(slog.Default(), svc, rbac.Middleware{Service: allowAllResolver{}})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess := &shared.Session{}
			sess.SetUser(1)
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/branches", h.MountRoutes)
	return r, repo
}

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Pagination *shared.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestBranchCreateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Main Campus","code":"MAIN","city":"Jakarta"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/branches", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var created Branch
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Main Campus", created.Name)
	assert.Equal(t, "MAIN", created.Code)
}

func TestBranchCreateEndpointRejectsInvalidBody(t *testing.T) {
	router, repo := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/branches", strings.NewReader(`{"name":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
	assert.Zero(t, repo.createCalls)
}

func TestBranchListEndpoint(t *testing.T) {
	router, repo := newTestRouter(t)
	for _, name := range []string{"Main Campus", "North Campus", "East Campus"} {
		code := strings.ToUpper(name[:4])
		repo.branches[repo.nextID] = &Branch{ID: repo.nextID, Name: name, Code: code, IsActive: true}
		repo.nextID++
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/branches?page=1&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.Pages)

	var items []Branch
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
}

func TestBranchGetEndpointNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/branches/999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}

func TestBranchGetEndpointRejectsNonNumericID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/branches/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBranchDeleteEndpoint(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.branches[1] = &Branch{ID: 1, Name: "Main", Code: "MAIN"}
	repo.nextID = 2

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/branches/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, repo.branches)
}
