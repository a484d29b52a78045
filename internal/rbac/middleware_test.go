package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/shared"
)

func TestHasAnyPermission(t *testing.T) {
	granted := []string{"students.view", "courses.view"}

	assert.True(t, HasAnyPermission(granted, []string{"students.view"}))
	assert.True(t, HasAnyPermission(granted, []string{"grades.edit", "courses.view"}))
	assert.True(t, HasAnyPermission(granted, []string{"Students.View"}))
	assert.False(t, HasAnyPermission(granted, []string{"grades.edit"}))
	assert.True(t, HasAnyPermission(granted, nil))
	assert.False(t, HasAnyPermission(nil, []string{"students.view"}))
}

func TestHasAllPermissions(t *testing.T) {
	granted := []string{"students.view", "students.edit"}

	assert.True(t, HasAllPermissions(granted, []string{"students.view", "students.edit"}))
	assert.False(t, HasAllPermissions(granted, []string{"students.view", "grades.edit"}))
	assert.True(t, HasAllPermissions(granted, nil))
}

type staticResolver struct {
	perms []string
	err   error
}

func (s staticResolver) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.perms, s.err
}

func authedRequest(t *testing.T, userID int64) *http.Request {
	t.Helper()
	sess := &shared.Session{}
	sess.SetUser(userID)
	r := httptest.NewRequest("GET", "/students", nil)
	return r.WithContext(shared.ContextWithSession(r.Context(), sess))
}

func TestRequireAnyAllowsGrantedUser(t *testing.T) {
	mw := Middleware{Service: staticResolver{perms: []string{shared.PermStudentsView}}}

	called := false
	handler := mw.RequireAny(shared.PermStudentsView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, 7))

	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyRejectsMissingPermission(t *testing.T) {
	mw := Middleware{Service: staticResolver{perms: []string{shared.PermCoursesView}}}

	handler := mw.RequireAny(shared.PermStudentsEdit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, 7))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequireAnyRejectsAnonymous(t *testing.T) {
	mw := Middleware{Service: staticResolver{perms: []string{shared.PermStudentsView}}}

	handler := mw.RequireAny(shared.PermStudentsView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/students", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
