package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "scholaris_session", "test-secret", time.Hour, false), mr
}

func TestLoadDiscardsUnknownCookieValue(t *testing.T) {
	sm, mr := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "scholaris_session", Value: "attacker-chosen-id"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen-id", sess.ID)
	assert.True(t, sess.isNew)

	sess.SetUser(42)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	assert.False(t, mr.Exists("session:attacker-chosen-id"))
	assert.True(t, mr.Exists("session:"+sess.ID))
}

func TestRotateAssignsFreshIDAndDropsOldState(t *testing.T) {
	sm, mr := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.Set("csrf_token", "pre-login-token")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))

	oldID := sess.ID
	require.True(t, mr.Exists("session:"+oldID))

	require.NoError(t, sm.Rotate(context.Background(), sess))
	assert.NotEqual(t, oldID, sess.ID)
	assert.Empty(t, sess.Get("csrf_token"))
	assert.False(t, mr.Exists("session:"+oldID))

	sess.SetUser(42)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))
	stored, err := mr.Get("session:" + sess.ID)
	require.NoError(t, err)
	assert.Contains(t, stored, `"user_id":"42"`)
}

func TestLoadRoundTripPreservesUser(t *testing.T) {
	sm, _ := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser(7)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))

	next := httptest.NewRequest("GET", "/", nil)
	next.AddCookie(&http.Cookie{Name: "scholaris_session", Value: sess.ID})
	reloaded, err := sm.Load(context.Background(), next)
	require.NoError(t, err)
	id, ok := reloaded.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}
