package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"diradmin/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SessionStore for tests.
type memStore struct {
	sessions map[string]model.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]model.Session)}
}

func (m *memStore) CreateSession(s model.Session) error {
	m.sessions[s.Token] = s
	return nil
}

func (m *memStore) GetSession(token string) (model.Session, bool, error) {
	s, ok := m.sessions[token]
	return s, ok, nil
}

func (m *memStore) DeleteSession(token string) error {
	delete(m.sessions, token)
	return nil
}

// loggedInRequest returns a request carrying a fresh session for the role.
func loggedInRequest(t *testing.T, sm *SessionManager, role Role) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	sm.CreateSession(rec, "someone", string(role))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestRequirePage_AllowsPermittedRole(t *testing.T) {
	sm := NewSessionManager("test-secret", newMemStore())

	invoked := 0
	guarded := sm.RequirePage([]Role{RoleSuperAdmin}, func(w http.ResponseWriter, r *http.Request) {
		invoked++
	})

	rec := httptest.NewRecorder()
	guarded(rec, loggedInRequest(t, sm, RoleSuperAdmin))

	assert.Equal(t, 1, invoked)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePage_DeniesOtherRoles(t *testing.T) {
	sm := NewSessionManager("test-secret", newMemStore())

	for _, role := range []Role{RoleOperator, RoleViewer} {
		invoked := 0
		guarded := sm.RequirePage([]Role{RoleSuperAdmin}, func(w http.ResponseWriter, r *http.Request) {
			invoked++
		})

		rec := httptest.NewRecorder()
		guarded(rec, loggedInRequest(t, sm, role))

		assert.Zero(t, invoked, "handler must not run for role %s", role)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/?error=")
	}
}

func TestRequirePage_RedirectsAnonymousToLogin(t *testing.T) {
	sm := NewSessionManager("test-secret", newMemStore())

	invoked := 0
	guarded := sm.RequirePage(AnyRole, func(w http.ResponseWriter, r *http.Request) {
		invoked++
	})

	rec := httptest.NewRecorder()
	guarded(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Zero(t, invoked)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAPI(t *testing.T) {
	sm := NewSessionManager("test-secret", newMemStore())

	invoked := 0
	guarded := sm.RequireAPI([]Role{RoleSuperAdmin, RoleOperator}, func(w http.ResponseWriter, r *http.Request) {
		invoked++
	})

	// Anonymous: 401.
	rec := httptest.NewRecorder()
	guarded(rec, httptest.NewRequest(http.MethodPost, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, invoked)

	// Viewer: 403.
	rec = httptest.NewRecorder()
	guarded(rec, loggedInRequest(t, sm, RoleViewer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, invoked)

	// Operator: allowed.
	rec = httptest.NewRecorder()
	guarded(rec, loggedInRequest(t, sm, RoleOperator))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, invoked)
}

func TestSessionLifecycle(t *testing.T) {
	sm := NewSessionManager("test-secret", newMemStore())

	rec := httptest.NewRecorder()
	csrf := sm.CreateSession(rec, "admin", "super_admin")
	assert.NotEmpty(t, csrf)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	sess, ok := sm.GetSession(req)
	require.True(t, ok)
	assert.Equal(t, "admin", sess.Username)
	assert.Equal(t, "super_admin", sess.Role)
	assert.Equal(t, csrf, sess.CSRFToken)

	rec2 := httptest.NewRecorder()
	sm.DestroySession(rec2, req)

	_, ok = sm.GetSession(req)
	assert.False(t, ok)
}

func TestGetSession_RejectsForgedCookie(t *testing.T) {
	store := newMemStore()
	sm := NewSessionManager("test-secret", store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "diradmin_session", Value: "forged"})

	_, ok := sm.GetSession(req)
	assert.False(t, ok)
}

func TestValidateCSRF(t *testing.T) {
	sm := NewSessionManager("test-secret", newMemStore())

	rec := httptest.NewRecorder()
	csrf := sm.CreateSession(rec, "admin", "super_admin")
	cookie := rec.Result().Cookies()[0]

	invoked := 0
	guarded := sm.ValidateCSRF(func(w http.ResponseWriter, r *http.Request) {
		invoked++
	})

	// Missing token: rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	req.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	guarded(rec2, req)
	assert.Equal(t, http.StatusForbidden, rec2.Code)
	assert.Zero(t, invoked)

	// Header token: accepted.
	req = httptest.NewRequest(http.MethodPost, "/api/users", nil)
	req.AddCookie(cookie)
	req.Header.Set("X-CSRF-Token", csrf)
	rec3 := httptest.NewRecorder()
	guarded(rec3, req)
	assert.Equal(t, 1, invoked)
}
