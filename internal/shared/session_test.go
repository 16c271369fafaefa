package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "wz_session", time.Hour, false), mr
}

func TestCommitSkipsUntouchedSession(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/wallpapers", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	assert.Empty(t, rec.Result().Cookies(), "anonymous request must not receive a session cookie")
	assert.Empty(t, mr.Keys(), "anonymous request must not persist a session")
}

func TestCommitPersistsModifiedSession(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("u1")
	sess.Set("theme", "dark")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "wz_session", cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.Len(t, mr.Keys(), 1)

	// A follow-up request carrying the cookie restores the stored state.
	next := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	next.AddCookie(cookies[0])
	restored, err := sm.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "u1", restored.User())
	assert.Equal(t, "dark", restored.Get("theme"))
}

func TestCommitAfterDestroyClearsSession(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.NoError(t, err)
	sess.SetUser("u1")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	require.Len(t, mr.Keys(), 1)

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	assert.Empty(t, mr.Keys(), "destroy must drop the stored session")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
