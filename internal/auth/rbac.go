package auth

import (
	"net/http"
	"net/url"
)

// Role is the console's closed permission enum. There is no ordering between
// roles: every route names the exact set it admits.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

// AnyRole admits every authenticated caller.
var AnyRole = []Role{RoleSuperAdmin, RoleOperator, RoleViewer}

func roleAllowed(role string, allowed []Role) bool {
	for _, a := range allowed {
		if Role(role) == a {
			return true
		}
	}
	return false
}

// RequirePage guards a page route. Unauthenticated callers are sent to the
// login form; authenticated callers outside the allowed set get a notice on
// the dashboard. The guarded handler never runs on denial.
func (sm *SessionManager) RequirePage(allowed []Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sm.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !roleAllowed(sess.Role, allowed) {
			notice := url.QueryEscape("You do not have permission to access this resource.")
			http.Redirect(w, r, "/?error="+notice, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireAPI guards a JSON route: 401 without a session, 403 outside the
// allowed set.
func (sm *SessionManager) RequireAPI(allowed []Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sm.GetSession(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		if !roleAllowed(sess.Role, allowed) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"permission denied"}`))
			return
		}
		next(w, r)
	}
}
